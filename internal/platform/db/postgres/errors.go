package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL の SQLSTATE のうちリポジトリが変換対象とするもの。
const (
	UniqueViolationCode     = "23505"
	ForeignKeyViolationCode = "23503"
	CheckViolationCode      = "23514"
	InvalidTextCode         = "22P02"
	StringTruncationCode    = "22001"
	NumericOutOfRangeCode   = "22003"
)

// ConstraintViolation は err が code に該当する制約違反であれば制約名を返します。
func ConstraintViolation(err error, code string) (string, bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return "", false
	}
	if pgErr.Code != code {
		return "", false
	}
	return pgErr.ConstraintName, true
}
