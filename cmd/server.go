package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"job-portal/internal/api"
	"job-portal/internal/auth"
	"job-portal/internal/blob"
	"job-portal/internal/notifier"
	"job-portal/internal/storage"
)

// AppConfig 应用配置。
type AppConfig struct {
	Server   ServerConfig        `yaml:"server"`
	Database storage.Config      `yaml:"database"`
	Auth     AuthConfig          `yaml:"auth"`
	Identity auth.IdentityConfig `yaml:"identity"`
	Storage  blob.Config         `yaml:"storage"`
	Notify   NotifyConfig        `yaml:"notify"`
	CORS     api.CORSConfig      `yaml:"cors"`
	Admin    AdminConfig         `yaml:"admin"`
}

type ServerConfig struct {
	Addr            string `yaml:"addr"`
	ReadTimeout     string `yaml:"read_timeout"`
	WriteTimeout    string `yaml:"write_timeout"`
	ShutdownTimeout string `yaml:"shutdown_timeout"`
}

type AuthConfig struct {
	AdminSecret     string `yaml:"admin_secret"`
	CompanySecret   string `yaml:"company_secret"`
	CompanyTokenTTL string `yaml:"company_token_ttl"`
	BcryptCost      int    `yaml:"bcrypt_cost"`
}

type NotifyConfig struct {
	Mail     notifier.MailConfig   `yaml:"mail"`
	Broker   notifier.BrokerConfig `yaml:"broker"`
	Realtime notifier.HubConfig    `yaml:"realtime"`
}

// AdminConfig 初始管理员，仅 -bootstrap-admin 模式使用。
type AdminConfig struct {
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

type httpServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

func main() {
	bootstrap := flag.Bool("bootstrap-admin", false, "create the initial administrator and exit")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("load .env error: %v", err)
	}

	cfg, err := loadConfig()
	if err != nil {
		log.Printf("load config error: %v", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *bootstrap {
		created, err := bootstrapAdmin(ctx, cfg, buildApp)
		if err != nil {
			log.Printf("bootstrap admin error: %v", err)
			os.Exit(1)
		}
		if created {
			log.Printf("admin %s created", cfg.Admin.Email)
		} else {
			log.Printf("admin %s already exists", cfg.Admin.Email)
		}
		return
	}

	deps, cleanup, err := buildApp(cfg)
	if err != nil {
		log.Printf("init app error: %v", err)
		os.Exit(1)
	}
	defer cleanup()

	addr := cfg.Server.Addr
	if addr == "" {
		addr = ":8080"
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           deps.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       parseDuration(cfg.Server.ReadTimeout, 30*time.Second),
		WriteTimeout:      parseDuration(cfg.Server.WriteTimeout, 30*time.Second),
	}

	log.Printf("listening on %s", addr)
	if err := runServer(ctx, srv, deps.hub, parseDuration(cfg.Server.ShutdownTimeout, 5*time.Second)); err != nil {
		log.Printf("server error: %v", err)
	}
}

// runServer 运行 HTTP 服务，ctx 取消或服务异常退出时优雅关闭服务并断开实时连接。
func runServer(ctx context.Context, srv httpServer, realtime io.Closer, timeout time.Duration) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		if realtime != nil {
			_ = realtime.Close()
		}
		return err
	})

	return g.Wait()
}

func loadConfig() (AppConfig, error) {
	path := os.Getenv("CONFIG_FILE")
	if path == "" {
		path = "config.yaml"
	}
	var cfg AppConfig
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		log.Printf("config %s not found, using defaults and environment", path)
	case err != nil:
		return AppConfig{}, err
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return AppConfig{}, err
		}
	}
	applyEnv(&cfg, os.Getenv)
	return cfg, nil
}

// applyEnv 用环境变量覆盖密钥、连接串等敏感配置。
func applyEnv(cfg *AppConfig, getenv func(string) string) {
	set := func(dst *string, key string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	set(&cfg.Auth.AdminSecret, "ADMIN_JWT_SECRET")
	set(&cfg.Auth.CompanySecret, "JWT_SECRET")
	set(&cfg.Identity.Secret, "IDENTITY_SECRET")
	set(&cfg.Identity.UserInfoURL, "IDENTITY_USERINFO_URL")
	set(&cfg.Database.Driver, "DATABASE_DRIVER")
	set(&cfg.Database.DSN, "DATABASE_DSN")
	set(&cfg.Notify.Broker.URL, "RABBITMQ_URL")
	set(&cfg.Notify.Mail.Password, "SMTP_PASSWORD")
	set(&cfg.Admin.Email, "INITIAL_ADMIN_EMAIL")
	set(&cfg.Admin.Password, "INITIAL_ADMIN_PASSWORD")
	if port := getenv("PORT"); port != "" {
		cfg.Server.Addr = ":" + port
	}
}

func parseDuration(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		log.Printf("invalid duration %q, using %s", s, def)
		return def
	}
	return d
}
