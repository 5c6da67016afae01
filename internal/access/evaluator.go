package access

import (
	"context"

	"charity-backend/internal/domain"
)

// AdminFinder 读取当前 Admin 状态；不存在返回 nil, nil
type AdminFinder interface {
	FindByUserID(ctx context.Context, userID string) (*domain.Admin, error)
}

// Principal 已认证主体；UserID 为空即匿名
type Principal struct {
	UserID string
}

func (p Principal) Anonymous() bool { return p.UserID == "" }

type Evaluator struct {
	admins AdminFinder
}

func NewEvaluator(admins AdminFinder) *Evaluator { return &Evaluator{admins: admins} }

// Allow anonymous principals are denied without touching storage.
func (e *Evaluator) Allow(ctx context.Context, p Principal, c Capability) (bool, error) {
	set, err := e.Capabilities(ctx, p)
	if err != nil {
		return false, err
	}
	return set.Has(c), nil
}

func (e *Evaluator) Capabilities(ctx context.Context, p Principal) (Set, error) {
	if p.Anonymous() {
		return Set{}, nil
	}
	a, err := e.admins.FindByUserID(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	return Of(a), nil
}
