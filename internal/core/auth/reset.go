package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const typePasswordReset = "password_reset"

// ErrInvalidResetLink 重置链接任何一步校验失败都归为这一个错误
var ErrInvalidResetLink = errors.New("invalid or expired reset link")

type resetClaims struct {
	Type        string `json:"typ"`
	Fingerprint string `json:"fp"`
	jwt.RegisteredClaims
}

// ResetTokens 签发与校验密码重置令牌。
// 令牌绑定用户 id 与当前密码哈希的指纹：密码一旦修改，之前签发的所有令牌全部失效。
type ResetTokens struct {
	Secret []byte
	Issuer string
	TTL    time.Duration
	now    func() time.Time
}

func (r *ResetTokens) clock() time.Time {
	if r.now != nil {
		return r.now()
	}
	return time.Now()
}

func (r *ResetTokens) fingerprint(passwordHash, email string) string {
	m := hmac.New(sha256.New, r.Secret)
	m.Write([]byte(passwordHash))
	m.Write([]byte{0})
	m.Write([]byte(email))
	return hex.EncodeToString(m.Sum(nil))[:32]
}

func (r *ResetTokens) Make(userID, passwordHash, email string) (string, error) {
	now := r.clock()
	claims := resetClaims{
		Type:        typePasswordReset,
		Fingerprint: r.fingerprint(passwordHash, email),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    r.Issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(r.TTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(r.Secret)
}

// Check 令牌必须签给 userID，且用户密码与邮箱自签发后未变
func (r *ResetTokens) Check(token, userID, passwordHash, email string) error {
	t, err := jwt.ParseWithClaims(token, &resetClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected alg")
		}
		return r.Secret, nil
	}, jwt.WithIssuer(r.Issuer), jwt.WithSubject(userID), jwt.WithTimeFunc(r.clock))
	if err != nil {
		return ErrInvalidResetLink
	}
	c, ok := t.Claims.(*resetClaims)
	if !ok || !t.Valid || c.Type != typePasswordReset {
		return ErrInvalidResetLink
	}
	if !hmac.Equal([]byte(c.Fingerprint), []byte(r.fingerprint(passwordHash, email))) {
		return ErrInvalidResetLink
	}
	return nil
}

// EncodeUID URL 安全的 base64 用户 id
func EncodeUID(userID string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(userID))
}

func DecodeUID(uid string) (string, error) {
	b, err := base64.RawURLEncoding.DecodeString(uid)
	if err != nil || len(b) == 0 {
		return "", ErrInvalidResetLink
	}
	return string(b), nil
}
