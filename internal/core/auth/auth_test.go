package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ogurasousui/workforce-api/internal/core/user"
)

type fakeUsers struct {
	users map[string]*user.User
}

func (f fakeUsers) FindByID(_ context.Context, id string) (*user.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	return u, nil
}

func (f fakeUsers) FindByUsername(_ context.Context, username string) (*user.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, user.ErrUserNotFound
}

type plainVerifier struct{}

func (plainVerifier) Verify(hash, plain string) bool {
	return hash == "hashed:"+plain
}

type fakeTokens struct {
	expiresAt time.Time
}

func (f fakeTokens) Issue(subject, role string) (string, time.Time, error) {
	return subject + "|" + role, f.expiresAt, nil
}

func (f fakeTokens) Verify(token string) (string, string, error) {
	subject, role, ok := strings.Cut(token, "|")
	if !ok {
		return "", "", errors.New("malformed")
	}
	return subject, role, nil
}

func newTestService() *Service {
	users := fakeUsers{users: map[string]*user.User{
		"user-1": {ID: "user-1", Username: "admin", PasswordHash: "hashed:secret", Role: user.RoleAdmin, IsActive: true},
		"user-2": {ID: "user-2", Username: "gone", PasswordHash: "hashed:secret", Role: user.RoleEmployee, IsActive: false},
	}}
	return NewService(users, plainVerifier{}, fakeTokens{expiresAt: time.Date(2025, 1, 1, 0, 30, 0, 0, time.UTC)})
}

func TestService_Login(t *testing.T) {
	t.Parallel()

	svc := newTestService()

	token, err := svc.Login(context.Background(), " admin ", "secret")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if token.Token != "user-1|admin" {
		t.Fatalf("unexpected token %q", token.Token)
	}

	tests := []struct {
		name     string
		username string
		password string
		want     error
	}{
		{name: "wrong password", username: "admin", password: "nope", want: ErrInvalidCredentials},
		{name: "unknown user", username: "ghost", password: "secret", want: ErrInvalidCredentials},
		{name: "empty", want: ErrInvalidCredentials},
		{name: "inactive", username: "gone", password: "secret", want: ErrInactiveUser},
	}
	for _, tt := range tests {
		if _, err := svc.Login(context.Background(), tt.username, tt.password); !errors.Is(err, tt.want) {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.want, err)
		}
	}
}

func TestService_Authenticate(t *testing.T) {
	t.Parallel()

	svc := newTestService()

	principal, err := svc.Authenticate(context.Background(), "user-1|employee")
	if err != nil {
		t.Fatalf("Authenticate returned error: %v", err)
	}
	if !principal.IsAdmin() {
		t.Fatalf("expected role from the stored user, got %s", principal.Role)
	}

	if _, err := svc.Authenticate(context.Background(), "garbage"); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("expected ErrUnauthenticated, got %v", err)
	}
	if _, err := svc.Authenticate(context.Background(), "user-9|admin"); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("expected ErrUnauthenticated for unknown user, got %v", err)
	}
	if _, err := svc.Authenticate(context.Background(), "user-2|employee"); !errors.Is(err, ErrInactiveUser) {
		t.Errorf("expected ErrInactiveUser, got %v", err)
	}
}
