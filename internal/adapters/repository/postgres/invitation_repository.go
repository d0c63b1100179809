package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/ogurasousui/workforce-api/internal/core/invitation"
	pgdb "github.com/ogurasousui/workforce-api/internal/platform/db/postgres"
)

const invitationColumns = `id, email, token, status, employee_code, hire_date, department, position,
               base_salary::text, expires_at, accepted_at, created_at, updated_at`

// InvitationRepository は PostgreSQL を利用した招待永続化の実装です。
type InvitationRepository struct {
	pool pgdb.Queryer
}

// NewInvitationRepository は InvitationRepository を生成します。
func NewInvitationRepository(pool pgdb.Queryer) *InvitationRepository {
	return &InvitationRepository{pool: pool}
}

// Create は招待を新規作成します。
func (r *InvitationRepository) Create(ctx context.Context, inv *invitation.Invitation) (*invitation.Invitation, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO invitations (email, token, status, employee_code, hire_date, department, position,
                                 base_salary, expires_at, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
        RETURNING `+invitationColumns+`
    `,
		inv.Email,
		inv.Token,
		string(inv.Status),
		inv.EmployeeCode,
		dateOnly(inv.HireDate),
		nullableText(inv.Department),
		nullableText(inv.Position),
		nullableDecimal(inv.BaseSalary),
		inv.ExpiresAt,
		inv.CreatedAt,
		inv.UpdatedAt,
	)

	created, err := scanInvitation(row)
	if err != nil {
		return nil, translateInvitationPgError(err)
	}
	return created, nil
}

// FindByToken はトークンで招待を取得します。
func (r *InvitationRepository) FindByToken(ctx context.Context, token string) (*invitation.Invitation, error) {
	return r.findOne(ctx, `
        SELECT `+invitationColumns+`
          FROM invitations
         WHERE token = $1
         LIMIT 1
    `, token)
}

// FindByTokenForUpdate はトークンで招待を取得し、トランザクション終了まで行ロックを保持します。
func (r *InvitationRepository) FindByTokenForUpdate(ctx context.Context, token string) (*invitation.Invitation, error) {
	return r.findOne(ctx, `
        SELECT `+invitationColumns+`
          FROM invitations
         WHERE token = $1
         LIMIT 1
           FOR UPDATE
    `, token)
}

// FindPendingByEmail はメールアドレス宛ての pending の招待を取得します。
func (r *InvitationRepository) FindPendingByEmail(ctx context.Context, email string) (*invitation.Invitation, error) {
	return r.findOne(ctx, `
        SELECT `+invitationColumns+`
          FROM invitations
         WHERE email = $1 AND status = 'pending'
         LIMIT 1
    `, email)
}

// FindPendingByEmployeeCode は社員コードを予約している pending の招待を取得します。
func (r *InvitationRepository) FindPendingByEmployeeCode(ctx context.Context, employeeCode string) (*invitation.Invitation, error) {
	return r.findOne(ctx, `
        SELECT `+invitationColumns+`
          FROM invitations
         WHERE employee_code = $1 AND status = 'pending'
         LIMIT 1
    `, employeeCode)
}

func (r *InvitationRepository) findOne(ctx context.Context, query string, args ...any) (*invitation.Invitation, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	found, err := scanInvitation(exec.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, translateInvitationPgError(err)
	}
	return found, nil
}

// MarkAccepted は pending の招待を accepted に更新します。
func (r *InvitationRepository) MarkAccepted(ctx context.Context, id string, acceptedAt time.Time) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `
        UPDATE invitations
           SET status = 'accepted',
               accepted_at = $1,
               updated_at = $1
         WHERE id = $2 AND status = 'pending'
    `, acceptedAt, id)
	if err != nil {
		return translateInvitationPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return invitation.ErrInvitationInvalid
	}
	return nil
}

// List は招待の一覧を作成日時の降順で取得します。
func (r *InvitationRepository) List(ctx context.Context, filter invitation.ListInvitationsFilter) ([]*invitation.Invitation, string, error) {
	if filter.Limit <= 0 {
		return nil, "", invitation.ErrInvalidPageSize
	}
	if filter.Offset < 0 {
		return nil, "", invitation.ErrInvalidPageToken
	}

	limitWithBuffer := filter.Limit + 1

	args := make([]any, 0, 3)
	whereClause := ""
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		whereClause = " WHERE status = $" + strconv.Itoa(len(args))
	}

	limitPlaceholder := "$" + strconv.Itoa(len(args)+1)
	args = append(args, limitWithBuffer)
	offsetPlaceholder := "$" + strconv.Itoa(len(args)+1)
	args = append(args, filter.Offset)

	query := `
        SELECT ` + invitationColumns + `
          FROM invitations` + whereClause + `
         ORDER BY created_at DESC, id DESC
         LIMIT ` + limitPlaceholder + `
        OFFSET ` + offsetPlaceholder + `
    `

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, "", translateInvitationPgError(err)
	}
	defer rows.Close()

	invitations := make([]*invitation.Invitation, 0, filter.Limit)
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, "", translateInvitationPgError(err)
		}
		invitations = append(invitations, inv)
	}

	if err := rows.Err(); err != nil {
		return nil, "", translateInvitationPgError(err)
	}

	var nextToken string
	if len(invitations) == limitWithBuffer {
		invitations = invitations[:filter.Limit]
		nextToken = strconv.Itoa(filter.Offset + filter.Limit)
	}

	return invitations, nextToken, nil
}

func scanInvitation(row pgx.Row) (*invitation.Invitation, error) {
	var (
		id, email, token     string
		status, code         string
		hireDate             time.Time
		department, position sql.NullString
		baseSalary           sql.NullString
		expiresAt            time.Time
		acceptedAt           sql.NullTime
		createdAt, updatedAt time.Time
	)

	if err := row.Scan(
		&id,
		&email,
		&token,
		&status,
		&code,
		&hireDate,
		&department,
		&position,
		&baseSalary,
		&expiresAt,
		&acceptedAt,
		&createdAt,
		&updatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, invitation.ErrInvitationNotFound
		}
		return nil, err
	}

	salary, err := decimalPtr(baseSalary)
	if err != nil {
		return nil, err
	}

	return &invitation.Invitation{
		ID:           id,
		Email:        email,
		Token:        token,
		Status:       invitation.Status(status),
		EmployeeCode: code,
		HireDate:     dateOnly(hireDate),
		Department:   textPtr(department),
		Position:     textPtr(position),
		BaseSalary:   salary,
		ExpiresAt:    expiresAt.UTC(),
		AcceptedAt:   timePtr(acceptedAt),
		CreatedAt:    createdAt,
		UpdatedAt:    updatedAt,
	}, nil
}

func translateInvitationPgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return invitation.ErrInvitationNotFound
	}

	if constraint, ok := pgdb.ConstraintViolation(err, pgdb.UniqueViolationCode); ok {
		switch constraint {
		case "invitations_pending_email_key":
			return invitation.ErrPendingInvitationForEmail
		case "invitations_pending_employee_code_key":
			return invitation.ErrPendingInvitationForEmployeeCode
		case "invitations_token_key":
			return invitation.ErrTokenAlreadyExists
		}
		return err
	}
	if _, ok := pgdb.ConstraintViolation(err, pgdb.CheckViolationCode); ok {
		return invitation.ErrInvalidStatus
	}
	if _, ok := pgdb.ConstraintViolation(err, pgdb.InvalidTextCode); ok {
		return invitation.ErrInvitationNotFound
	}

	if _, ok := pgdb.ConstraintViolation(err, pgdb.StringTruncationCode); ok {
		return invitation.ErrValueTooLong
	}
	if _, ok := pgdb.ConstraintViolation(err, pgdb.NumericOutOfRangeCode); ok {
		return invitation.ErrInvalidBaseSalary
	}

	return err
}
