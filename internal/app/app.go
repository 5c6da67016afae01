// Package app wires configuration, storage and services into the two HTTP
// engines. Both binaries and the end-to-end tests build through it.
package app

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"charity-backend/internal/access"
	"charity-backend/internal/account"
	"charity-backend/internal/core/auth"
	"charity-backend/internal/core/config"
	"charity-backend/internal/core/database"
	"charity-backend/internal/core/logger"
	"charity-backend/internal/core/throttle"
	"charity-backend/internal/domain"
	"charity-backend/internal/ledger"
	"charity-backend/internal/notify"
	"charity-backend/internal/repo"
	"charity-backend/internal/service"
	"charity-backend/internal/transport/http/handler"
	"charity-backend/internal/transport/http/router"
)

type App struct {
	Log     *zap.Logger
	DB      *gorm.DB
	JWT     *auth.JWTer
	Mailer  notify.Mailer
	Limiter throttle.Limiter

	deps     router.Deps
	accounts *account.Service
	closers  []func() error
}

// OpenDB 连库（带启动重试），按配置自动迁移
func OpenDB(cfg *config.Config, l *zap.Logger) (*gorm.DB, error) {
	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		Username:           cfg.DB.Username,
		Password:           cfg.DB.Password,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
		ConnectTimeoutSec:  cfg.DB.ConnectTimeoutSec,
		SQLLog:             logger.ForGorm(l),
	})
	if err != nil {
		return nil, err
	}
	l.Info("database connected", zap.String("driver", cfg.DB.Driver), zap.String("dsn", database.MaskDSN(cfg.DB.DSN)))
	if cfg.DB.AutoMigrate {
		if err := db.AutoMigrate(domain.Models()...); err != nil {
			return nil, err
		}
		l.Info("automigrate done")
	}
	return db, nil
}

// NewMailer 未配置 SMTP 主机时只打日志
func NewMailer(cfg config.Mail, l *zap.Logger) notify.Mailer {
	if cfg.Host == "" {
		l.Warn("mail.host not set, emails are logged only")
		return notify.LogMailer{L: l}
	}
	return notify.NewSMTPMailer(notify.SMTPOptions{
		Host:       cfg.Host,
		Port:       cfg.Port,
		Username:   cfg.Username,
		Password:   cfg.Password,
		From:       cfg.From,
		TimeoutSec: cfg.TimeoutSec,
	})
}

// newLimiter 配了 redis 用固定窗口（多实例共享），否则进程内令牌桶
func newLimiter(cfg *config.Config) (throttle.Limiter, func() error) {
	window := time.Duration(cfg.Throttle.WindowSec) * time.Second
	if cfg.Redis.Addr != "" {
		rl := throttle.NewRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Throttle.Requests, window)
		return rl, rl.Close
	}
	return throttle.NewMemory(cfg.Throttle.Requests, window), nil
}

// New mailer 为 nil 时按配置选择
func New(cfg *config.Config, db *gorm.DB, l *zap.Logger, mailer notify.Mailer) *App {
	if mailer == nil {
		mailer = NewMailer(cfg.Mail, l)
	}
	a := &App{Log: l, DB: db, Mailer: mailer}

	a.JWT = &auth.JWTer{
		Secret:     []byte(cfg.JWT.Secret),
		Issuer:     cfg.JWT.Issuer,
		TTL:        time.Duration(cfg.JWT.AccessTokenTTLMin) * time.Minute,
		RefreshTTL: time.Duration(cfg.JWT.RefreshTokenTTLMin) * time.Minute,
	}
	resetTTL := time.Duration(cfg.Reset.TTLMin) * time.Minute
	resets := &auth.ResetTokens{Secret: []byte(cfg.Reset.Secret), Issuer: cfg.JWT.Issuer, TTL: resetTTL}

	notifier := notify.NewNotifier(mailer, notify.Options{
		Site:        cfg.Mail.Site,
		Currency:    cfg.Mail.Currency,
		FrontendURL: cfg.Reset.FrontendURL,
		ResetTTL:    resetTTL,
	})

	lim, closeLim := newLimiter(cfg)
	a.Limiter = lim
	if closeLim != nil {
		a.closers = append(a.closers, closeLim)
	}

	ev := access.NewEvaluator(repo.NewAdminRepo(db))
	accounts := account.NewService(db, a.JWT, resets, notifier, l)
	a.accounts = accounts
	campaigns := service.NewCampaignService(db, cfg.Pagination.PageSize, cfg.Pagination.MaxPageSize)
	donations := service.NewDonationService(db, ledger.New(db), ev, notifier, l)
	comments := service.NewCommentService(db, ev)
	donors := service.NewDonorService(db)
	admins := service.NewAdminService(db)
	dashboard := service.NewDashboardService(db, admins)

	a.deps = router.Deps{
		Log:       l,
		JWT:       a.JWT,
		Evaluator: ev,
		Registry: router.NewRegistry(
			handler.NewAccount(accounts, donations, lim, l),
			handler.NewAdmin(admins, dashboard),
			handler.NewCampaign(campaigns),
			handler.NewDonation(donations),
			handler.NewComment(comments),
			handler.NewDonor(donors),
		),
		CORSOrigins:    cfg.App.CORSOrigins,
		RequestTimeout: time.Duration(cfg.App.RequestTimeoutSec) * time.Second,
		MaxConcurrent:  cfg.App.MaxConcurrent,
		MaxBodyBytes:   cfg.App.MaxBodyBytes,
	}
	return a
}

// API 用户端 /api/v1
func (a *App) API() *gin.Engine { return router.NewAPIEngine(a.deps) }

// Admin 管理端 /admin/v1
func (a *App) Admin() *gin.Engine { return router.NewAdminEngine(a.deps) }

func (a *App) Close() {
	// 先等在途的重置邮件，再断开依赖
	a.accounts.Wait()
	for _, c := range a.closers {
		if err := c(); err != nil {
			a.Log.Warn("close failed", zap.Error(err))
		}
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
