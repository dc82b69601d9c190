package main

import (
	"context"
	"errors"
)

type adminBootstrapper interface {
	BootstrapAdmin(ctx context.Context, email, password string) (bool, error)
}

// bootstrapAdmin 使用配置中的初始管理员账号创建管理员，已存在时不做修改。
func bootstrapAdmin(ctx context.Context, cfg AppConfig, build appBuilder) (bool, error) {
	if cfg.Admin.Email == "" || cfg.Admin.Password == "" {
		return false, errors.New("INITIAL_ADMIN_EMAIL and INITIAL_ADMIN_PASSWORD are required")
	}
	deps, cleanup, err := build(cfg)
	if err != nil {
		return false, err
	}
	defer cleanup()

	return deps.registry.BootstrapAdmin(ctx, cfg.Admin.Email, cfg.Admin.Password)
}
