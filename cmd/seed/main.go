// Command seed recreates the development accounts.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/RegaWeng/riseUp/pkg/auth"
	"github.com/RegaWeng/riseUp/pkg/config"
	pgrepo "github.com/RegaWeng/riseUp/pkg/repository/postgres"
	"github.com/RegaWeng/riseUp/pkg/role"
	"github.com/RegaWeng/riseUp/pkg/storage/postgres"
)

type devAccount struct {
	name     string
	email    string
	password string
	typ      role.AccountType
}

var devAccounts = []devAccount{
	{name: "Alibaba User", email: "alibaba@example.com", password: "alibaba123", typ: role.AccountUser},
	{name: "Your Boss", email: "yourboss@company.com", password: "yourboss123", typ: role.AccountEmployer},
	{name: "Admin User", email: "admin@riseup.com", password: "admin123", typ: role.AccountAdmin},
}

func main() {
	cfg := config.Load()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))

	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}
	ctx := context.Background()
	pool, err := postgres.Connect(ctx, cfg.DatabaseURL, cfg.DBMaxConns)
	if err != nil {
		log.Fatalf("postgres connect: %v", err)
	}
	defer pool.Close()
	if err := postgres.Migrate(ctx, pool); err != nil {
		log.Fatalf("postgres migrate: %v", err)
	}

	if err := seed(ctx, pgrepo.NewUserRepository(pool), logger); err != nil {
		log.Fatalf("seed dev accounts: %v", err)
	}
}

func seed(ctx context.Context, repo auth.UserRepository, logger *slog.Logger) error {
	emails := make([]string, 0, len(devAccounts))
	for _, a := range devAccounts {
		emails = append(emails, a.email)
	}
	n, err := repo.DeleteByEmail(ctx, emails...)
	if err != nil {
		return err
	}
	logger.Info("cleared existing dev accounts", "deleted", n)

	for _, a := range devAccounts {
		user, err := auth.NewUser(a.name, a.email, a.password, a.typ)
		if err != nil {
			return err
		}
		if err := repo.Create(ctx, user); err != nil {
			return err
		}
		logger.Info("created dev account", "email", a.email, "type", string(a.typ), "password", a.password)
	}
	return nil
}
