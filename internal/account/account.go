// Package account owns the credential flows: donor signup, donor and admin
// login, token refresh and the two-step password reset.
//
// Security-sensitive failures collapse to generic messages. Login never says
// which field was wrong, and a reset request looks identical whether or not
// the email is registered.
package account

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"charity-backend/internal/apperr"
	"charity-backend/internal/core/auth"
	"charity-backend/internal/core/database"
	"charity-backend/internal/domain"
	"charity-backend/internal/notify"
	"charity-backend/internal/repo"
	"charity-backend/pkg/utils"
)

const (
	MsgInvalidCredentials = "invalid credentials"
	MsgAccessDenied       = "access denied"
	MsgResetRequested     = "If an account with this email exists, a password reset link has been sent."
	MsgInvalidResetLink   = "invalid or expired reset link"
)

// Notifier 账号相关邮件；发送失败只记日志
type Notifier interface {
	Welcome(ctx context.Context, u *domain.User, donorName string) error
	PasswordReset(ctx context.Context, u *domain.User, uid, token string) error
}

type Service struct {
	db       *gorm.DB
	users    *repo.UserRepo
	donors   *repo.DonorRepo
	admins   *repo.AdminRepo
	jwt      *auth.JWTer
	reset    *auth.ResetTokens
	notifier Notifier
	log      *zap.Logger
	validate *validator.Validate
	now      func() time.Time

	pending sync.WaitGroup // 后台发送中的重置邮件
}

func NewService(db *gorm.DB, jwt *auth.JWTer, reset *auth.ResetTokens, n Notifier, l *zap.Logger) *Service {
	if l == nil {
		l = zap.NewNop()
	}
	return &Service{
		db:       db,
		users:    repo.NewUserRepo(db),
		donors:   repo.NewDonorRepo(db),
		admins:   repo.NewAdminRepo(db),
		jwt:      jwt,
		reset:    reset,
		notifier: n,
		log:      l,
		validate: validator.New(),
		now:      time.Now,
	}
}

/* ---------- signup ---------- */

type SignupInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Email    string `json:"email"`
}

func (in *SignupInput) normalize() {
	in.Username = strings.TrimSpace(in.Username)
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
}

// Signup 原子创建 User + Donor，提交后再发欢迎邮件
func (s *Service) Signup(ctx context.Context, in SignupInput) (*domain.Donor, error) {
	in.normalize()
	if in.Username == "" || in.Password == "" || in.Name == "" || in.Email == "" {
		return nil, apperr.BadRequest("all fields are required: username, password, name, and email")
	}
	if s.validate.Var(in.Email, "email,max=191") != nil {
		return nil, apperr.BadRequest("please enter a valid email address")
	}
	if len(in.Username) > 150 || strings.ContainsAny(in.Username, " \t\r\n") {
		return nil, apperr.BadRequest("username must be at most 150 characters without spaces")
	}
	if err := checkPassword(in.Password); err != nil {
		return nil, err
	}
	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, apperr.Internal("hash password failed", err)
	}

	u := &domain.User{
		ID:           utils.NewID(),
		Username:     in.Username,
		Email:        in.Email,
		FirstName:    in.Name,
		PasswordHash: hash,
	}
	donor := &domain.Donor{ID: utils.NewID(), UserID: u.ID, Name: in.Name}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := repo.NewUserRepo(tx)
		if taken, err := users.UsernameTaken(ctx, u.Username); err != nil {
			return apperr.Internal("check username failed", err)
		} else if taken {
			return apperr.BadRequest("username already exists")
		}
		if taken, err := users.EmailTaken(ctx, u.Email); err != nil {
			return apperr.Internal("check email failed", err)
		} else if taken {
			return apperr.BadRequest("email already exists")
		}
		if err := users.Create(ctx, u); err != nil {
			return err
		}
		return repo.NewDonorRepo(tx).Create(ctx, donor)
	})
	if err != nil {
		// 并发注册：唯一约束兜底
		if database.IsDuplicateKey(err) {
			return nil, apperr.BadRequest("username or email already exists")
		}
		var ae *apperr.Error
		if errors.As(err, &ae) {
			return nil, err
		}
		return nil, apperr.Internal("signup failed", err)
	}
	donor.User = u

	hooks := notify.NewAfterCommit(s.log)
	hooks.Add("welcome_email", func(ctx context.Context) error {
		return s.notifier.Welcome(ctx, u, donor.Name)
	})
	hooks.Run(ctx)
	return donor, nil
}

func checkPassword(pw string) error {
	if len(pw) < utils.MinPasswordLen {
		return apperr.BadRequest("password must be at least 8 characters")
	}
	return nil
}

/* ---------- login ---------- */

type Session struct {
	auth.TokenPair
	User *domain.User `json:"user"`
}

// authenticate 未知用户与密码错误返回同一个 401
func (s *Service) authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, apperr.BadRequest("username and password are required")
	}
	u, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, apperr.Internal("load user failed", err)
	}
	if u == nil {
		utils.BurnPasswordCheck(password)
		return nil, apperr.Unauthorized(MsgInvalidCredentials)
	}
	if !utils.CheckPassword(password, u.PasswordHash) {
		return nil, apperr.Unauthorized(MsgInvalidCredentials)
	}
	return u, nil
}

func (s *Service) issue(ctx context.Context, u *domain.User) (auth.TokenPair, error) {
	pair, err := s.jwt.IssuePair(u.ID)
	if err != nil {
		return auth.TokenPair{}, apperr.Internal("issue token failed", err)
	}
	now := s.now()
	if err := s.users.TouchLastLogin(ctx, u.ID, now); err != nil {
		s.log.Warn("touch last login failed", zap.String("user_id", u.ID), zap.Error(err))
	} else {
		u.LastLoginAt = &now
	}
	return pair, nil
}

func (s *Service) Login(ctx context.Context, username, password string) (*Session, error) {
	u, err := s.authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}
	pair, err := s.issue(ctx, u)
	if err != nil {
		return nil, err
	}
	return &Session{TokenPair: pair, User: u}, nil
}

type AdminSession struct {
	auth.TokenPair
	Admin *domain.Admin
}

// AdminLogin 凭证正确但没有有效 Admin 记录时返回 403，而不是 401
func (s *Service) AdminLogin(ctx context.Context, username, password string) (*AdminSession, error) {
	u, err := s.authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}
	a, err := s.admins.FindByUserID(ctx, u.ID)
	if err != nil {
		return nil, apperr.Internal("load admin failed", err)
	}
	if a == nil || !a.IsActive {
		return nil, apperr.Forbidden(MsgAccessDenied)
	}
	pair, err := s.issue(ctx, u)
	if err != nil {
		return nil, err
	}
	a.User = u
	return &AdminSession{TokenPair: pair, Admin: a}, nil
}

func (s *Service) Refresh(ctx context.Context, refresh string) (auth.TokenPair, error) {
	c, err := s.jwt.Parse(refresh, auth.TypeRefresh)
	if err != nil {
		return auth.TokenPair{}, apperr.Unauthorized("invalid refresh token")
	}
	u, err := s.users.FindByID(ctx, c.UID)
	if err != nil {
		return auth.TokenPair{}, apperr.Internal("load user failed", err)
	}
	if u == nil {
		return auth.TokenPair{}, apperr.Unauthorized("invalid refresh token")
	}
	pair, err := s.jwt.IssuePair(u.ID)
	if err != nil {
		return auth.TokenPair{}, apperr.Internal("issue token failed", err)
	}
	return pair, nil
}

/* ---------- password reset ---------- */

// RequestPasswordReset 无论邮箱是否存在都返回同一条消息；只有存在时才发信
func (s *Service) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", apperr.BadRequest("email is required")
	}
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return "", apperr.Internal("load user failed", err)
	}
	if u == nil {
		return MsgResetRequested, nil
	}
	// 签发与发信都在后台：响应耗时不随邮箱是否注册而变化
	hooks := notify.NewAfterCommit(s.log)
	hooks.Add("password_reset_email", func(ctx context.Context) error {
		token, err := s.reset.Make(u.ID, u.PasswordHash, u.Email)
		if err != nil {
			return fmt.Errorf("make reset token: %w", err)
		}
		return s.notifier.PasswordReset(ctx, u, auth.EncodeUID(u.ID), token)
	})
	hooks.Go(ctx, &s.pending)
	return MsgResetRequested, nil
}

// Wait 等待后台的重置邮件发完（关闭进程 / 测试用）
func (s *Service) Wait() { s.pending.Wait() }

type ResetConfirmInput struct {
	UID         string `json:"uid"`
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

// ConfirmPasswordReset uid 解码、用户查找、令牌校验任一失败都返回同一个 400
func (s *Service) ConfirmPasswordReset(ctx context.Context, in ResetConfirmInput) error {
	if in.UID == "" || in.Token == "" || in.NewPassword == "" {
		return apperr.BadRequest("all fields are required")
	}
	if err := checkPassword(in.NewPassword); err != nil {
		return err
	}
	userID, err := auth.DecodeUID(in.UID)
	if err != nil {
		return apperr.BadRequest(MsgInvalidResetLink)
	}
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return apperr.Internal("load user failed", err)
	}
	if u == nil {
		return apperr.BadRequest(MsgInvalidResetLink)
	}
	if err := s.reset.Check(in.Token, u.ID, u.PasswordHash, u.Email); err != nil {
		return apperr.BadRequest(MsgInvalidResetLink)
	}
	hash, err := utils.HashPassword(in.NewPassword)
	if err != nil {
		return apperr.Internal("hash password failed", err)
	}
	if err := s.users.UpdatePassword(ctx, u.ID, hash); err != nil {
		return apperr.Internal("update password failed", err)
	}
	return nil
}

/* ---------- profile ---------- */

type Profile struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FullName  string `json:"fullName"`
	FirstName string `json:"firstName"`
}

func (s *Service) Profile(ctx context.Context, userID string) (*Profile, error) {
	d, err := s.donors.FindByUserID(ctx, userID)
	if err != nil {
		return nil, apperr.Internal("load donor failed", err)
	}
	if d == nil || d.User == nil {
		return nil, apperr.NotFound("donor profile not found")
	}
	return &Profile{
		ID:        d.User.ID,
		Username:  d.User.Username,
		Email:     d.User.Email,
		FullName:  d.Name,
		FirstName: d.User.FirstName,
	}, nil
}
