// Command admin creates or updates an admin account with a bcrypt password.
//
//	admin -name "Store Owner" -email owner@example.com -password '...'
//
// The password may also come from ADMIN_PASSWORD to keep it out of shell history.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/Skotchmaster/shopfront/internal/config"
	"github.com/Skotchmaster/shopfront/internal/db"
	"github.com/Skotchmaster/shopfront/internal/logging"
	"github.com/Skotchmaster/shopfront/internal/repo"
	"github.com/Skotchmaster/shopfront/internal/service"
)

func main() {
	name := flag.String("name", "", "admin display name")
	email := flag.String("email", "", "admin email")
	password := flag.String("password", os.Getenv("ADMIN_PASSWORD"), "admin password")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger := logging.New(cfg.LogLevel)

	if err := run(cfg, *name, *email, *password, logger); err != nil {
		logger.Error("provision_admin_error", "error", err)
		if errors.Is(err, service.ErrValidation) {
			flag.Usage()
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func run(cfg *config.Config, name, email, password string, logger *slog.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	gdb, err := db.Open(ctx, cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close(gdb)

	if cfg.DBMigrate {
		if err := db.Migrate(gdb, cfg.DBDriver, cfg.DatabaseURL); err != nil {
			return err
		}
	}

	svc := &service.AuthService{Repo: repo.New(gdb)}
	admin, created, err := svc.ProvisionAdmin(ctx, name, email, password)
	if err != nil {
		return err
	}

	action := "updated"
	if created {
		action = "created"
	}
	logger.Info("admin_"+action, "admin_id", admin.ID, "email", admin.Email)
	return nil
}
