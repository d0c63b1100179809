package security

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// InvitationTokenSize は招待トークンのエントロピー (バイト数) です。base64url で 43 文字になります。
const InvitationTokenSize = 32

// GenerateToken は暗号論的乱数から URL セーフなトークンを生成します。
func GenerateToken(size int) (string, error) {
	if size <= 0 {
		return "", fmt.Errorf("security: token size must be positive, got %d", size)
	}

	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("security: generate token: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// TokenGenerator は招待トークン生成器です。
type TokenGenerator struct{}

// NewToken は InvitationTokenSize バイトのトークンを返します。
func (TokenGenerator) NewToken() (string, error) {
	return GenerateToken(InvitationTokenSize)
}
