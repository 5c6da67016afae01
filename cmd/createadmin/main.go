// Command createadmin bootstraps an Admin account (User + Admin record).
//
//	createadmin --username root --email root@example.com --password '...' --role super_admin
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"charity-backend/internal/app"
	"charity-backend/internal/core/config"
	"charity-backend/internal/core/logger"
	"charity-backend/internal/domain"
	"charity-backend/internal/service"
	"charity-backend/pkg/utils"
)

type CLI struct {
	Config   string `help:"Config file path." env:"CONFIG_PATH" type:"path"`
	Username string `help:"Login name." required:""`
	Email    string `help:"Email address." required:""`
	Password string `help:"Password (min 8 characters)." required:"" env:"ADMIN_PASSWORD"`
	Name     string `help:"First name." default:""`
	Role     string `help:"One of super_admin, campaign_manager, content_moderator, financial_manager." default:"super_admin" enum:"super_admin,campaign_manager,content_moderator,financial_manager"`
}

func (c *CLI) Run() error {
	cfg, err := config.Read(c.Config)
	if err != nil {
		return err
	}
	log, cleanup := logger.New("warn", false)
	defer cleanup()

	db, err := app.OpenDB(cfg, log)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}()

	if len(c.Password) < utils.MinPasswordLen {
		return fmt.Errorf("password must be at least %d characters", utils.MinPasswordLen)
	}
	hash, err := utils.HashPassword(c.Password)
	if err != nil {
		return err
	}
	u := &domain.User{
		ID:           utils.NewID(),
		Username:     strings.TrimSpace(c.Username),
		Email:        strings.TrimSpace(c.Email),
		FirstName:    strings.TrimSpace(c.Name),
		PasswordHash: hash,
	}
	a := &domain.Admin{ID: utils.NewID(), UserID: u.ID, Role: domain.Role(c.Role), IsActive: true}
	if err := service.CreateAdminTx(context.Background(), db, u, a); err != nil {
		return err
	}
	log.Info("admin created", zap.String("username", u.Username), zap.String("role", c.Role))
	fmt.Fprintf(os.Stdout, "created %s admin %q (%s)\n", a.Role.Display(), u.Username, a.ID)
	return nil
}

func main() {
	_ = godotenv.Load()
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("createadmin"),
		kong.Description("Create an admin account for the charity backend."),
	)
	ctx.FatalIfErrorf(ctx.Run())
}
