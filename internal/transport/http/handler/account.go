package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"charity-backend/internal/access"
	"charity-backend/internal/account"
	"charity-backend/internal/core/auth"
	"charity-backend/internal/core/throttle"
	"charity-backend/internal/domain"
	"charity-backend/internal/service"
	"charity-backend/internal/transport/http/ez"
)

// Account 注册、登录、刷新、找回密码与“我的”接口
type Account struct {
	accounts  *account.Service
	donations *service.DonationService
	limiter   throttle.Limiter
	log       *zap.Logger
}

func NewAccount(accounts *account.Service, donations *service.DonationService, lim throttle.Limiter, l *zap.Logger) *Account {
	return &Account{accounts: accounts, donations: donations, limiter: lim, log: l}
}

func (h *Account) Priority() int { return 10 }

type userOut struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
}

func newUserOut(u *domain.User) userOut {
	return userOut{ID: u.ID, Username: u.Username, Email: u.Email, FirstName: u.FirstName}
}

type signupOut struct {
	Message string            `json:"message"`
	Donor   service.DonorView `json:"donor"`
}

type loginIn struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginOut struct {
	auth.TokenPair
	User userOut `json:"user"`
}

type adminLoginOut struct {
	auth.TokenPair
	Admin service.AdminView `json:"admin"`
}

type refreshIn struct {
	Refresh string `json:"refresh" binding:"required"`
}

type resetIn struct {
	Email string `json:"email"`
}

func (h *Account) MountAPI(e ez.EZ) {
	ez.RegisterAction(e, ez.Action[account.SignupInput, signupOut]{
		Method: http.MethodPost,
		Path:   "/signup",
		Binder: ez.BindJSON,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, _ access.Principal, in *account.SignupInput) (signupOut, error) {
			d, err := h.accounts.Signup(c.Request.Context(), *in)
			if err != nil {
				return signupOut{}, err
			}
			return signupOut{Message: "Account created successfully", Donor: service.NewDonorView(d)}, nil
		},
	})

	ez.RegisterAction(e, ez.Action[loginIn, loginOut]{
		Method:     http.MethodPost,
		Path:       "/auth/login",
		Binder:     ez.BindJSON,
		Middleware: throttled(h.limiter, "login", h.log),
		Handler: func(c *gin.Context, _ access.Principal, in *loginIn) (loginOut, error) {
			s, err := h.accounts.Login(c.Request.Context(), in.Username, in.Password)
			if err != nil {
				return loginOut{}, err
			}
			return loginOut{TokenPair: s.TokenPair, User: newUserOut(s.User)}, nil
		},
	})

	ez.RegisterAction(e, ez.Action[refreshIn, auth.TokenPair]{
		Method: http.MethodPost,
		Path:   "/auth/refresh",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, _ access.Principal, in *refreshIn) (auth.TokenPair, error) {
			return h.accounts.Refresh(c.Request.Context(), in.Refresh)
		},
	})

	ez.RegisterAction(e, ez.Action[resetIn, Message]{
		Method:     http.MethodPost,
		Path:       "/password-reset",
		Binder:     ez.BindJSON,
		Middleware: throttled(h.limiter, "password_reset", h.log),
		Handler: func(c *gin.Context, _ access.Principal, in *resetIn) (Message, error) {
			msg, err := h.accounts.RequestPasswordReset(c.Request.Context(), in.Email)
			return Message{Message: msg}, err
		},
	})

	ez.RegisterAction(e, ez.Action[account.ResetConfirmInput, Message]{
		Method:     http.MethodPost,
		Path:       "/password-reset/confirm",
		Binder:     ez.BindJSON,
		Middleware: throttled(h.limiter, "password_reset_confirm", h.log),
		Handler: func(c *gin.Context, _ access.Principal, in *account.ResetConfirmInput) (Message, error) {
			if err := h.accounts.ConfirmPasswordReset(c.Request.Context(), *in); err != nil {
				return Message{}, err
			}
			return Message{Message: "Password has been reset successfully."}, nil
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, *account.Profile]{
		Method: http.MethodGet,
		Path:   "/my-profile",
		Auth:   true,
		Handler: func(c *gin.Context, p access.Principal, _ *struct{}) (*account.Profile, error) {
			return h.accounts.Profile(c.Request.Context(), p.UserID)
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, []service.DonationView]{
		Method: http.MethodGet,
		Path:   "/my-donations",
		Auth:   true,
		Handler: func(c *gin.Context, p access.Principal, _ *struct{}) ([]service.DonationView, error) {
			return h.donations.Mine(c.Request.Context(), p)
		},
	})
}

func (h *Account) MountAdmin(e ez.EZ) {
	ez.RegisterAction(e, ez.Action[loginIn, adminLoginOut]{
		Method:     http.MethodPost,
		Path:       "/login",
		Binder:     ez.BindJSON,
		Middleware: throttled(h.limiter, "admin_login", h.log),
		Handler: func(c *gin.Context, _ access.Principal, in *loginIn) (adminLoginOut, error) {
			s, err := h.accounts.AdminLogin(c.Request.Context(), in.Username, in.Password)
			if err != nil {
				return adminLoginOut{}, err
			}
			return adminLoginOut{TokenPair: s.TokenPair, Admin: service.NewAdminView(s.Admin)}, nil
		},
	})
}
