package security

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrPasswordTooLong は bcrypt の入力上限 (72 バイト) を超える場合に返却されます。
var ErrPasswordTooLong = errors.New("security: password exceeds 72 bytes")

// BcryptHasher は bcrypt を用いたパスワードハッシュ実装です。
type BcryptHasher struct {
	Cost int
}

// NewBcryptHasher は BcryptHasher を生成します。cost が範囲外の場合は bcrypt.DefaultCost を使用します。
func NewBcryptHasher(cost int) BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return BcryptHasher{Cost: cost}
}

// Hash は平文パスワードからハッシュを生成します。
func (b BcryptHasher) Hash(plain string) (string, error) {
	if len(plain) > 72 {
		return "", ErrPasswordTooLong
	}
	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	h, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", fmt.Errorf("security: hash password: %w", err)
	}
	return string(h), nil
}

// Verify はハッシュと平文パスワードが一致するかを返します。
func (b BcryptHasher) Verify(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
