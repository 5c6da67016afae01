package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"

	"charity-backend/internal/access"
	"charity-backend/internal/apperr"
	"charity-backend/internal/core/database"
	"charity-backend/internal/domain"
	"charity-backend/internal/repo"
	"charity-backend/pkg/utils"
)

// AdminInput 同时创建 User 与 Admin
type AdminInput struct {
	Username  string      `json:"username"`
	Email     string      `json:"email"`
	Password  string      `json:"password"`
	FirstName string      `json:"firstName"`
	Role      domain.Role `json:"role"`
	IsActive  *bool       `json:"isActive"`
}

type AdminPatch struct {
	Role      *domain.Role `json:"role"`
	IsActive  *bool        `json:"isActive"`
	FirstName *string      `json:"firstName"`
}

// AdminService 后台账号管理（仅 super admin）
type AdminService struct {
	db       *gorm.DB
	admins   *repo.AdminRepo
	validate *validator.Validate
}

func NewAdminService(db *gorm.DB) *AdminService {
	return &AdminService{db: db, admins: repo.NewAdminRepo(db), validate: validator.New()}
}

func (s *AdminService) List(ctx context.Context, w Window) (List[AdminView], error) {
	offset, limit := w.Resolve()
	items, total, err := s.admins.List(ctx, offset, limit)
	if err != nil {
		return List[AdminView]{}, apperr.Internal("list admins failed", err)
	}
	return windowList(mapViews(items, NewAdminView), total, offset, limit), nil
}

func (s *AdminService) load(ctx context.Context, id string) (*domain.Admin, error) {
	a, err := s.admins.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.Internal("load admin failed", err)
	}
	if a == nil {
		return nil, apperr.NotFound("admin not found")
	}
	return a, nil
}

func (s *AdminService) Get(ctx context.Context, id string) (AdminView, error) {
	a, err := s.load(ctx, id)
	if err != nil {
		return AdminView{}, err
	}
	return NewAdminView(a), nil
}

// ForUser 当前登录者的 Admin 视图（dashboard 用）
func (s *AdminService) ForUser(ctx context.Context, userID string) (AdminView, error) {
	a, err := s.admins.FindByUserID(ctx, userID)
	if err != nil {
		return AdminView{}, apperr.Internal("load admin failed", err)
	}
	if a == nil {
		return AdminView{}, apperr.NotFound("admin not found")
	}
	full, err := s.load(ctx, a.ID)
	if err != nil {
		return AdminView{}, err
	}
	return NewAdminView(full), nil
}

func (s *AdminService) Create(ctx context.Context, in AdminInput) (AdminView, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	in.FirstName = strings.TrimSpace(in.FirstName)
	if in.Username == "" || in.Email == "" || in.Password == "" {
		return AdminView{}, apperr.BadRequest("username, email and password are required")
	}
	if s.validate.Var(in.Email, "email") != nil {
		return AdminView{}, apperr.BadRequest("please enter a valid email address")
	}
	if len(in.Password) < utils.MinPasswordLen {
		return AdminView{}, apperr.BadRequest("password must be at least 8 characters")
	}
	if in.Role == "" {
		in.Role = domain.RoleCampaignManager
	}
	if !in.Role.Valid() {
		return AdminView{}, apperr.BadRequest("invalid role")
	}
	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return AdminView{}, apperr.Internal("hash password failed", err)
	}

	u := &domain.User{ID: utils.NewID(), Username: in.Username, Email: in.Email, FirstName: in.FirstName, PasswordHash: hash}
	a := &domain.Admin{ID: utils.NewID(), UserID: u.ID, Role: in.Role, IsActive: true}
	if in.IsActive != nil {
		a.IsActive = *in.IsActive
	}
	err = CreateAdminTx(ctx, s.db, u, a)
	if err != nil {
		return AdminView{}, err
	}
	a.User = u
	return NewAdminView(a), nil
}

// CreateAdminTx 在一个事务里写入 User + Admin；用户名 / 邮箱重复返回 400
func CreateAdminTx(ctx context.Context, db *gorm.DB, u *domain.User, a *domain.Admin) error {
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := repo.NewUserRepo(tx)
		if taken, err := users.UsernameTaken(ctx, u.Username); err != nil {
			return err
		} else if taken {
			return apperr.BadRequest("username already exists")
		}
		if taken, err := users.EmailTaken(ctx, u.Email); err != nil {
			return err
		} else if taken {
			return apperr.BadRequest("email already exists")
		}
		if err := users.Create(ctx, u); err != nil {
			return err
		}
		return repo.NewAdminRepo(tx).Create(ctx, a)
	})
	var ae *apperr.Error
	switch {
	case err == nil, errors.As(err, &ae):
		return err
	case database.IsDuplicateKey(err):
		return apperr.BadRequest("username or email already exists")
	default:
		return apperr.Internal("create admin failed", err)
	}
}

// Update 超级管理员不能降级或停用自己
func (s *AdminService) Update(ctx context.Context, p access.Principal, id string, in AdminPatch) (AdminView, error) {
	a, err := s.load(ctx, id)
	if err != nil {
		return AdminView{}, err
	}
	self := a.UserID == p.UserID
	fields := map[string]any{}
	if in.Role != nil {
		if !in.Role.Valid() {
			return AdminView{}, apperr.BadRequest("invalid role")
		}
		if self && *in.Role != a.Role {
			return AdminView{}, apperr.BadRequest("you cannot change your own role")
		}
		fields["role"] = *in.Role
	}
	if in.IsActive != nil {
		if self && !*in.IsActive {
			return AdminView{}, apperr.BadRequest("you cannot deactivate your own account")
		}
		fields["is_active"] = *in.IsActive
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repo.NewAdminRepo(tx).Update(ctx, a.ID, fields); err != nil {
			return err
		}
		if in.FirstName != nil {
			return repo.NewUserRepo(tx).UpdateFirstName(ctx, a.UserID, strings.TrimSpace(*in.FirstName))
		}
		return nil
	})
	if err != nil {
		return AdminView{}, apperr.Internal("update admin failed", err)
	}
	return s.Get(ctx, id)
}

// Delete 只删 Admin 记录，User 保留
func (s *AdminService) Delete(ctx context.Context, p access.Principal, id string) error {
	a, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if a.UserID == p.UserID {
		return apperr.BadRequest("you cannot delete your own admin account")
	}
	ok, err := s.admins.Delete(ctx, a.ID)
	if err != nil {
		return apperr.Internal("delete admin failed", err)
	}
	if !ok {
		return apperr.NotFound("admin not found")
	}
	return nil
}
