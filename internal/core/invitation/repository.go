package invitation

import (
	"context"
	"time"
)

// Repository は招待の永続化を行うインターフェースです。
type Repository interface {
	Create(ctx context.Context, invitation *Invitation) (*Invitation, error)
	FindByToken(ctx context.Context, token string) (*Invitation, error)
	// FindByTokenForUpdate はトランザクション内で行ロックを取得して招待を読み込みます。
	FindByTokenForUpdate(ctx context.Context, token string) (*Invitation, error)
	FindPendingByEmail(ctx context.Context, email string) (*Invitation, error)
	FindPendingByEmployeeCode(ctx context.Context, employeeCode string) (*Invitation, error)
	// MarkAccepted は pending の招待のみを accepted に更新します。対象が無い場合は ErrInvitationInvalid を返します。
	MarkAccepted(ctx context.Context, id string, acceptedAt time.Time) error
	List(ctx context.Context, filter ListInvitationsFilter) ([]*Invitation, string, error)
}

// ListInvitationsFilter は一覧取得用フィルタです。
type ListInvitationsFilter struct {
	Status *Status
	Limit  int
	Offset int
}
