package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/ogurasousui/workforce-api/internal/adapters/email"
	"github.com/ogurasousui/workforce-api/internal/adapters/http/handler"
	"github.com/ogurasousui/workforce-api/internal/adapters/repository/postgres"
	"github.com/ogurasousui/workforce-api/internal/core/attendance"
	"github.com/ogurasousui/workforce-api/internal/core/auth"
	"github.com/ogurasousui/workforce-api/internal/core/employee"
	"github.com/ogurasousui/workforce-api/internal/core/invitation"
	"github.com/ogurasousui/workforce-api/internal/core/salary"
	"github.com/ogurasousui/workforce-api/internal/core/user"
	"github.com/ogurasousui/workforce-api/internal/platform/config"
	pg "github.com/ogurasousui/workforce-api/internal/platform/db/postgres"
	"github.com/ogurasousui/workforce-api/internal/platform/logger"
	"github.com/ogurasousui/workforce-api/internal/platform/security"
	"github.com/ogurasousui/workforce-api/internal/platform/server"
)

const mailDrainTimeout = 30 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "assets/local.yaml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zl, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	if err := run(ctx, cfg, zl); err != nil {
		zl.Fatal("server stopped with error", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, zl *zap.Logger) error {
	dbPool, err := pg.NewPool(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer dbPool.Close()

	txManager := pg.NewTransactionManager(dbPool)
	hasher := security.NewBcryptHasher(cfg.Auth.BcryptCost)
	issuer := security.NewJWTIssuer(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL)

	userRepo := postgres.NewUserRepository(dbPool)
	employeeRepo := postgres.NewEmployeeRepository(dbPool)
	invitationRepo := postgres.NewInvitationRepository(dbPool)
	salaryRepo := postgres.NewSalaryRepository(dbPool)
	attendanceRepo := postgres.NewAttendanceRepository(dbPool)

	var sender email.Sender
	if cfg.SMTP.Enabled {
		sender = email.NewSMTPSender(cfg.SMTP)
	} else {
		sender = email.NewLogSender(zl)
	}
	mailer, err := email.NewMailer(sender, cfg.Invitation.AcceptURL, cfg.SMTP.FromName, cfg.Invitation.TTL)
	if err != nil {
		return err
	}
	dispatcher := email.NewAsyncDispatcher(mailer, zl, cfg.SMTP.SendTimeout)
	defer func() {
		drainCtx, cancel := context.WithTimeout(context.Background(), mailDrainTimeout)
		defer cancel()
		if err := dispatcher.Close(drainCtx); err != nil {
			zl.Warn("pending emails were not delivered before shutdown", zap.Error(err))
		}
	}()

	authSvc := auth.NewService(userRepo, hasher, issuer)
	userSvc := user.NewService(userRepo, hasher, nil)
	employeeSvc := employee.NewService(employeeRepo, nil, txManager)
	invitationSvc, err := invitation.NewService(invitation.Dependencies{
		Repo:      invitationRepo,
		Users:     userRepo,
		Employees: employeeRepo,
		Hasher:    hasher,
		Tokens:    security.TokenGenerator{},
		Notifier:  dispatcher,
		Tx:        txManager,
		Logger:    zl.Named("invitation"),
		TTL:       cfg.Invitation.TTL,
	})
	if err != nil {
		return err
	}
	salarySvc := salary.NewService(salaryRepo, employeeRepo, dispatcher, txManager, salary.WithLogger(zl.Named("salary")))
	attendanceSvc := attendance.NewService(attendanceRepo, employeeRepo, nil, txManager)

	router, err := handler.NewRouter(handler.Dependencies{
		Auth:        authSvc,
		Users:       userSvc,
		Employees:   employeeSvc,
		Invitations: invitationSvc,
		Salaries:    salarySvc,
		Attendance:  attendanceSvc,
		DB:          dbPool,
		Logger:      zl,
		PublicRPS:   cfg.RateLimit.PublicRPS,
		PublicBurst: cfg.RateLimit.PublicBurst,
	})
	if err != nil {
		return err
	}

	return server.New(cfg.Server, router, dbPool, zl).Run(ctx)
}
