package postgres

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/ogurasousui/workforce-api/internal/core/user"
	pgdb "github.com/ogurasousui/workforce-api/internal/platform/db/postgres"
)

const userColumns = `id, username, email, password_hash, role, is_active, created_at, updated_at`

// UserRepository は PostgreSQL を利用したユーザー永続化の実装です。
type UserRepository struct {
	pool pgdb.Queryer
}

// NewUserRepository は UserRepository を生成します。
func NewUserRepository(pool pgdb.Queryer) *UserRepository {
	return &UserRepository{pool: pool}
}

// Create はユーザーを新規作成します。
func (r *UserRepository) Create(ctx context.Context, u *user.User) (*user.User, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO users (username, email, password_hash, role, is_active, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING `+userColumns+`
    `, u.Username, u.Email, u.PasswordHash, string(u.Role), u.IsActive, u.CreatedAt, u.UpdatedAt)

	created, err := scanUser(row)
	if err != nil {
		return nil, translateUserPgError(err)
	}
	return created, nil
}

// FindByID はIDでユーザーを取得します。
func (r *UserRepository) FindByID(ctx context.Context, id string) (*user.User, error) {
	return r.findOne(ctx, `
        SELECT `+userColumns+`
          FROM users
         WHERE id = $1
         LIMIT 1
    `, id)
}

// FindByUsername はユーザー名でユーザーを取得します。
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*user.User, error) {
	return r.findOne(ctx, `
        SELECT `+userColumns+`
          FROM users
         WHERE username = $1
         LIMIT 1
    `, username)
}

// FindByEmail はメールアドレスでユーザーを取得します。
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	return r.findOne(ctx, `
        SELECT `+userColumns+`
          FROM users
         WHERE email = $1
         LIMIT 1
    `, email)
}

// FindByEmailOrUsername はメールアドレスまたはユーザー名が一致するユーザーを取得します。
// 両方に一致する行がある場合はメールアドレスの一致を優先します。
func (r *UserRepository) FindByEmailOrUsername(ctx context.Context, email, username string) (*user.User, error) {
	return r.findOne(ctx, `
        SELECT `+userColumns+`
          FROM users
         WHERE email = $1 OR username = $2
         ORDER BY (email = $1) DESC
         LIMIT 1
    `, email, username)
}

func (r *UserRepository) findOne(ctx context.Context, query string, args ...any) (*user.User, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	found, err := scanUser(exec.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, translateUserPgError(err)
	}
	return found, nil
}

// List はユーザーの一覧を取得します。
func (r *UserRepository) List(ctx context.Context, filter user.ListUsersFilter) ([]*user.User, string, error) {
	if filter.Limit <= 0 {
		return nil, "", user.ErrInvalidPageSize
	}
	if filter.Offset < 0 {
		return nil, "", user.ErrInvalidPageToken
	}

	limitWithBuffer := filter.Limit + 1

	args := make([]any, 0, 3)
	whereClause := ""
	if filter.Role != nil {
		args = append(args, string(*filter.Role))
		whereClause = " WHERE role = $" + strconv.Itoa(len(args))
	}

	limitPlaceholder := "$" + strconv.Itoa(len(args)+1)
	args = append(args, limitWithBuffer)
	offsetPlaceholder := "$" + strconv.Itoa(len(args)+1)
	args = append(args, filter.Offset)

	query := `
        SELECT ` + userColumns + `
          FROM users` + whereClause + `
         ORDER BY created_at DESC, id DESC
         LIMIT ` + limitPlaceholder + `
        OFFSET ` + offsetPlaceholder + `
    `

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, "", translateUserPgError(err)
	}
	defer rows.Close()

	users := make([]*user.User, 0, filter.Limit)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, "", translateUserPgError(err)
		}
		users = append(users, u)
	}

	if err := rows.Err(); err != nil {
		return nil, "", translateUserPgError(err)
	}

	var nextToken string
	if len(users) == limitWithBuffer {
		users = users[:filter.Limit]
		nextToken = strconv.Itoa(filter.Offset + filter.Limit)
	}

	return users, nextToken, nil
}

func scanUser(row pgx.Row) (*user.User, error) {
	var (
		id, username, email  string
		passwordHash, role   string
		isActive             bool
		createdAt, updatedAt time.Time
	)

	if err := row.Scan(&id, &username, &email, &passwordHash, &role, &isActive, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrUserNotFound
		}
		return nil, err
	}

	return &user.User{
		ID:           id,
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         user.Role(role),
		IsActive:     isActive,
		CreatedAt:    createdAt,
		UpdatedAt:    updatedAt,
	}, nil
}

func translateUserPgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return user.ErrUserNotFound
	}

	if constraint, ok := pgdb.ConstraintViolation(err, pgdb.UniqueViolationCode); ok {
		switch constraint {
		case "users_username_key":
			return user.ErrUsernameAlreadyExists
		default:
			return user.ErrEmailAlreadyExists
		}
	}
	if _, ok := pgdb.ConstraintViolation(err, pgdb.CheckViolationCode); ok {
		return user.ErrInvalidRole
	}
	if _, ok := pgdb.ConstraintViolation(err, pgdb.InvalidTextCode); ok {
		return user.ErrUserNotFound
	}

	if _, ok := pgdb.ConstraintViolation(err, pgdb.StringTruncationCode); ok {
		return user.ErrValueTooLong
	}

	return err
}
