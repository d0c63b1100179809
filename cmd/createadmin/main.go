package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/ogurasousui/workforce-api/internal/adapters/repository/postgres"
	"github.com/ogurasousui/workforce-api/internal/core/user"
	"github.com/ogurasousui/workforce-api/internal/platform/config"
	pg "github.com/ogurasousui/workforce-api/internal/platform/db/postgres"
	"github.com/ogurasousui/workforce-api/internal/platform/logger"
	"github.com/ogurasousui/workforce-api/internal/platform/security"
)

func main() {
	var (
		configPath = flag.String("config", envOr("CONFIG_PATH", "assets/local.yaml"), "path to config file")
		username   = flag.String("username", envOr("ADMIN_USERNAME", "admin"), "admin username")
		email      = flag.String("email", envOr("ADMIN_EMAIL", "admin@company.com"), "admin email")
		password   = flag.String("password", os.Getenv("ADMIN_PASSWORD"), "admin password (or ADMIN_PASSWORD)")
	)
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zl, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	dbPool, err := pg.NewPool(ctx, cfg.Database)
	if err != nil {
		zl.Fatal("failed to initialize database pool", zap.Error(err))
	}
	defer dbPool.Close()

	svc := user.NewService(postgres.NewUserRepository(dbPool), security.NewBcryptHasher(cfg.Auth.BcryptCost), nil)
	created, err := ensureAdmin(ctx, svc, user.CreateUserInput{
		Username: *username,
		Email:    *email,
		Password: *password,
		Role:     user.RoleAdmin,
	})
	if err != nil {
		zl.Fatal("failed to create admin user", zap.Error(err))
	}
	if !created {
		zl.Info("admin user already exists", zap.String("username", *username))
		return
	}
	zl.Info("admin user created", zap.String("username", *username), zap.String("email", *email))
}

type userCreator interface {
	CreateUser(ctx context.Context, in user.CreateUserInput) (*user.User, error)
}

// ensureAdmin は管理者ユーザーを作成します。同名のユーザーが既に存在する場合は何もしません。
func ensureAdmin(ctx context.Context, svc userCreator, in user.CreateUserInput) (bool, error) {
	if in.Password == "" {
		return false, errors.New("password is required (use -password or ADMIN_PASSWORD)")
	}
	if _, err := svc.CreateUser(ctx, in); err != nil {
		if errors.Is(err, user.ErrUsernameAlreadyExists) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
