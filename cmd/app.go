package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"job-portal/internal/api"
	"job-portal/internal/auth"
	"job-portal/internal/blob"
	"job-portal/internal/jobboard"
	"job-portal/internal/notifier"
	"job-portal/internal/profile"
	"job-portal/internal/registry"
	"job-portal/internal/storage"
)

// appDeps 进程运行所需的组件。
type appDeps struct {
	handler  http.Handler
	hub      *notifier.Hub
	registry adminBootstrapper
}

type appBuilder func(AppConfig) (appDeps, func(), error)

// buildApp 按配置装配存储、认证、通知与 HTTP 路由，返回的 cleanup 按逆序释放资源。
func buildApp(cfg AppConfig) (appDeps, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	fail := func(err error) (appDeps, func(), error) {
		cleanup()
		return appDeps{}, func() {}, err
	}

	store, err := storage.NewStore(cfg.Database)
	if err != nil {
		return fail(fmt.Errorf("init store: %w", err))
	}
	closers = append(closers, func() { _ = store.Close() })

	blobs, err := blob.NewLocalStore(cfg.Storage)
	if err != nil {
		return fail(fmt.Errorf("init blob store: %w", err))
	}

	adminTokens, err := auth.NewIssuer(auth.KindAdmin, cfg.Auth.AdminSecret, auth.AdminTokenTTL)
	if err != nil {
		return fail(fmt.Errorf("admin tokens: %w", err))
	}
	companyTokens, err := auth.NewIssuer(auth.KindCompany, cfg.Auth.CompanySecret, parseDuration(cfg.Auth.CompanyTokenTTL, auth.DefaultCompanyTokenTTL))
	if err != nil {
		return fail(fmt.Errorf("company tokens: %w", err))
	}
	identity, err := auth.NewIdentityVerifier(cfg.Identity, &http.Client{Timeout: 10 * time.Second})
	if err != nil {
		return fail(fmt.Errorf("identity verifier: %w", err))
	}

	hub := notifier.NewHub(newLogger("ws"), cfg.Notify.Realtime)
	closers = append(closers, func() { _ = hub.Close() })
	notif := notifier.Fanout{hub, notifier.NewLogNotifier(newLogger("notify"))}
	if cfg.Notify.Broker.URL != "" {
		broker, err := notifier.DialBroker(cfg.Notify.Broker)
		if err != nil {
			return fail(fmt.Errorf("init broker: %w", err))
		}
		closers = append(closers, func() { _ = broker.Close() })
		notif = append(notif, broker)
	}

	var alerts registry.RegistrationAlerter
	if cfg.Notify.Mail.Enabled() {
		alerts = notifier.NewRegistrationMailer(cfg.Notify.Mail, nil)
	} else {
		log.Printf("registration alerts disabled: missing host/port/from/admin_to")
	}

	reg := registry.NewService(registry.Deps{
		Store:         store,
		Hasher:        auth.NewHasher(cfg.Auth.BcryptCost),
		CompanyTokens: companyTokens,
		AdminTokens:   adminTokens,
		Blobs:         blobs,
		Alerts:        alerts,
		Logger:        newLogger("registry"),
	})
	jobs := jobboard.NewService(store, notif, blobs, newLogger("jobboard"))

	handler := api.NewHandler(api.Options{
		Registry: reg,
		Jobs:     jobs,
		Profiles: profile.NewService(store),
		Auth: api.Authenticators{
			Admin:   auth.NewAdminAuthenticator(adminTokens, store),
			Company: auth.NewCompanyAuthenticator(companyTokens, store),
			Seeker:  auth.NewSeekerAuthenticator(identity, store, newLogger("auth")),
		},
		Realtime:  hub.Handler(),
		UploadDir: blobs.Dir(),
		CORS:      cfg.CORS,
		Logger:    newLogger("api"),
	})

	return appDeps{handler: handler, hub: hub, registry: reg}, cleanup, nil
}

func newLogger(prefix string) *log.Logger {
	return log.New(os.Stdout, "["+prefix+"] ", log.LstdFlags)
}
