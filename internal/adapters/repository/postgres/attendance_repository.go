package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/ogurasousui/workforce-api/internal/core/attendance"
	pgdb "github.com/ogurasousui/workforce-api/internal/platform/db/postgres"
)

const attendanceColumns = `id, employee_id, date, check_in_at, check_out_at, status, notes, created_at, updated_at`

// AttendanceRepository は PostgreSQL を利用した勤怠永続化の実装です。
type AttendanceRepository struct {
	pool pgdb.Queryer
}

// NewAttendanceRepository は AttendanceRepository を生成します。
func NewAttendanceRepository(pool pgdb.Queryer) *AttendanceRepository {
	return &AttendanceRepository{pool: pool}
}

// Create は勤怠を新規作成します。同日の勤怠が既にある場合は ErrAlreadySubmitted を返します。
func (r *AttendanceRepository) Create(ctx context.Context, rec *attendance.Record) (*attendance.Record, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO attendance (employee_id, date, check_in_at, check_out_at, status, notes, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING `+attendanceColumns+`
    `,
		rec.EmployeeID,
		dateOnly(rec.Date),
		nullableTimestamp(rec.CheckInAt),
		nullableTimestamp(rec.CheckOutAt),
		string(rec.Status),
		nullableText(rec.Notes),
		rec.CreatedAt,
		rec.UpdatedAt,
	)

	created, err := scanAttendance(row)
	if err != nil {
		return nil, translateAttendancePgError(err)
	}
	return created, nil
}

// Update は打刻時刻・区分・備考を更新します。
func (r *AttendanceRepository) Update(ctx context.Context, rec *attendance.Record) (*attendance.Record, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        UPDATE attendance
           SET check_in_at = $1,
               check_out_at = $2,
               status = $3,
               notes = $4,
               updated_at = $5
         WHERE id = $6
        RETURNING `+attendanceColumns+`
    `,
		nullableTimestamp(rec.CheckInAt),
		nullableTimestamp(rec.CheckOutAt),
		string(rec.Status),
		nullableText(rec.Notes),
		rec.UpdatedAt,
		rec.ID,
	)

	updated, err := scanAttendance(row)
	if err != nil {
		return nil, translateAttendancePgError(err)
	}
	return updated, nil
}

// FindByID は ID で勤怠を取得します。
func (r *AttendanceRepository) FindByID(ctx context.Context, id string) (*attendance.Record, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+attendanceColumns+`
          FROM attendance
         WHERE id = $1
         LIMIT 1
    `, id)

	found, err := scanAttendance(row)
	if err != nil {
		return nil, translateAttendancePgError(err)
	}
	return found, nil
}

// FindByEmployeeAndDate は社員と日付で勤怠を取得します。
func (r *AttendanceRepository) FindByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*attendance.Record, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+attendanceColumns+`
          FROM attendance
         WHERE employee_id = $1 AND date = $2
         LIMIT 1
    `, employeeID, dateOnly(date))

	found, err := scanAttendance(row)
	if err != nil {
		return nil, translateAttendancePgError(err)
	}
	return found, nil
}

// List は社員の勤怠を日付の降順で取得します。
func (r *AttendanceRepository) List(ctx context.Context, filter attendance.ListFilter) ([]*attendance.Record, error) {
	if strings.TrimSpace(filter.EmployeeID) == "" {
		return nil, attendance.ErrInvalidEmployeeID
	}

	args := []any{filter.EmployeeID}
	conditions := []string{"employee_id = $1"}

	if filter.From != nil {
		args = append(args, dateOnly(*filter.From))
		conditions = append(conditions, "date >= $"+strconv.Itoa(len(args)))
	}
	if filter.To != nil {
		args = append(args, dateOnly(*filter.To))
		conditions = append(conditions, "date <= $"+strconv.Itoa(len(args)))
	}

	query := `
        SELECT ` + attendanceColumns + `
          FROM attendance
         WHERE ` + strings.Join(conditions, " AND ") + `
         ORDER BY date DESC
    `

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, translateAttendancePgError(err)
	}
	defer rows.Close()

	records := make([]*attendance.Record, 0)
	for rows.Next() {
		rec, err := scanAttendance(rows)
		if err != nil {
			return nil, translateAttendancePgError(err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, translateAttendancePgError(err)
	}
	return records, nil
}

func scanAttendance(row pgx.Row) (*attendance.Record, error) {
	var (
		id, employeeID       string
		date                 time.Time
		checkIn, checkOut    sql.NullTime
		status               string
		notes                sql.NullString
		createdAt, updatedAt time.Time
	)

	if err := row.Scan(&id, &employeeID, &date, &checkIn, &checkOut, &status, &notes, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, attendance.ErrRecordNotFound
		}
		return nil, err
	}

	return &attendance.Record{
		ID:         id,
		EmployeeID: employeeID,
		Date:       dateOnly(date),
		CheckInAt:  timePtr(checkIn),
		CheckOutAt: timePtr(checkOut),
		Status:     attendance.Status(status),
		Notes:      textPtr(notes),
		CreatedAt:  createdAt,
		UpdatedAt:  updatedAt,
	}, nil
}

func translateAttendancePgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return attendance.ErrRecordNotFound
	}

	if _, ok := pgdb.ConstraintViolation(err, pgdb.UniqueViolationCode); ok {
		return attendance.ErrAlreadySubmitted
	}
	if _, ok := pgdb.ConstraintViolation(err, pgdb.ForeignKeyViolationCode); ok {
		return attendance.ErrEmployeeNotFound
	}
	if _, ok := pgdb.ConstraintViolation(err, pgdb.CheckViolationCode); ok {
		return attendance.ErrInvalidStatus
	}
	if _, ok := pgdb.ConstraintViolation(err, pgdb.InvalidTextCode); ok {
		return attendance.ErrRecordNotFound
	}

	if _, ok := pgdb.ConstraintViolation(err, pgdb.StringTruncationCode); ok {
		return attendance.ErrInvalidStatus
	}

	return err
}
