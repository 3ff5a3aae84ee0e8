// Command create-admin bootstraps an Admin account in the configured store.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/spec-kit/civic-report/internal/config"
	"github.com/spec-kit/civic-report/internal/observability"
	"github.com/spec-kit/civic-report/internal/persistence"
	"github.com/spec-kit/civic-report/internal/repository"
	"github.com/spec-kit/civic-report/internal/service"
	apperrors "github.com/spec-kit/civic-report/pkg/util/errorutil"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		var domainErr *apperrors.DomainError
		if errors.As(err, &domainErr) && len(domainErr.Details) > 0 {
			fmt.Fprintf(os.Stderr, "create-admin: %s %v\n", domainErr.Message, domainErr.Details)
		} else {
			fmt.Fprintf(os.Stderr, "create-admin: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(args []string) error {
	var input service.RegisterInput
	flagSet := pflag.NewFlagSet("create-admin", pflag.ContinueOnError)
	flagSet.StringVar(&input.FullName, "name", "", "full name of the administrator")
	flagSet.StringVar(&input.Email, "email", "", "login email")
	flagSet.StringVar(&input.Password, "password", "", "initial password (falls back to CREATE_ADMIN_PASSWORD)")
	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if input.Password == "" {
		input.Password = os.Getenv("CREATE_ADMIN_PASSWORD")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return err
	}
	defer pg.Close()
	if !pg.Enabled() {
		return errors.New("POSTGRES_DSN must be set; an in-memory admin would vanish on exit")
	}
	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			return err
		}
	}

	accounts := service.NewAccountService(cfg.Auth, service.AccountDependencies{
		AccountRepo: repository.NewAccountRepository(pg.PoolHandle()),
	}, logger)
	admin, err := accounts.CreateAdmin(ctx, input)
	if err != nil {
		return err
	}
	logger.Info("admin created", zap.String("account_id", admin.ID), zap.String("email", admin.Email))
	fmt.Printf("created admin %s (%s)\n", admin.Email, admin.ID)
	return nil
}
