package crypto

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// MaxPasswordBytes bcrypt 只接受 72 字节以内的密码
const MaxPasswordBytes = 72

var (
	// ErrMismatch 密码与哈希不匹配
	ErrMismatch = errors.New("password does not match")
	// ErrTooLong 密码超过 MaxPasswordBytes 字节
	ErrTooLong = errors.New("password exceeds 72 bytes")
)

// HashPassword 使用 bcrypt 生成带盐哈希，cost 为 0 时使用默认值
func HashPassword(plain string, cost int) (string, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", ErrTooLong
	}
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// ComparePassword 比对明文与哈希，不匹配时返回 ErrMismatch
func ComparePassword(hashed, plain string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrMismatch
	}
	return err
}
