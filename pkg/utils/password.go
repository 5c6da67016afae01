package utils

import "golang.org/x/crypto/bcrypt"

// MinPasswordLen 新密码最小长度
const MinPasswordLen = 8

// dummyHash 用于用户不存在时仍执行一次 bcrypt 比较，避免通过耗时区分账号是否存在
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("charity-dummy-password"), bcrypt.DefaultCost)

func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func CheckPassword(pw, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(pw)) == nil
}

// BurnPasswordCheck 与 CheckPassword 耗时一致，但结果恒为 false
func BurnPasswordCheck(pw string) {
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(pw))
}
