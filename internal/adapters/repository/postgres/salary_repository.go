package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/ogurasousui/workforce-api/internal/core/salary"
	pgdb "github.com/ogurasousui/workforce-api/internal/platform/db/postgres"
	"github.com/shopspring/decimal"
)

const salaryColumns = `id, employee_id, month, year, base_amount::text, overtime_amount::text, bonus::text,
               deductions::text, net_amount::text, status, payment_date, created_at, updated_at`

// SalaryRepository は PostgreSQL を利用した給与レコード永続化の実装です。
type SalaryRepository struct {
	pool pgdb.Queryer
}

// NewSalaryRepository は SalaryRepository を生成します。
func NewSalaryRepository(pool pgdb.Queryer) *SalaryRepository {
	return &SalaryRepository{pool: pool}
}

// Create は給与レコードを新規作成します。
func (r *SalaryRepository) Create(ctx context.Context, rec *salary.Record) (*salary.Record, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO salary_records (employee_id, month, year, base_amount, overtime_amount, bonus, deductions,
                                    net_amount, status, payment_date, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
        RETURNING `+salaryColumns+`
    `,
		rec.EmployeeID,
		rec.Month,
		rec.Year,
		rec.BaseAmount.String(),
		rec.OvertimeAmount.String(),
		rec.Bonus.String(),
		rec.Deductions.String(),
		rec.NetAmount.String(),
		string(rec.Status),
		nullableDate(rec.PaymentDate),
		rec.CreatedAt,
		rec.UpdatedAt,
	)

	created, err := scanSalaryRecord(row)
	if err != nil {
		return nil, translateSalaryPgError(err)
	}
	return created, nil
}

// Update は金額・状態・支払日を更新します。
func (r *SalaryRepository) Update(ctx context.Context, rec *salary.Record) (*salary.Record, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        UPDATE salary_records
           SET base_amount = $1,
               overtime_amount = $2,
               bonus = $3,
               deductions = $4,
               net_amount = $5,
               status = $6,
               payment_date = $7,
               updated_at = $8
         WHERE id = $9
        RETURNING `+salaryColumns+`
    `,
		rec.BaseAmount.String(),
		rec.OvertimeAmount.String(),
		rec.Bonus.String(),
		rec.Deductions.String(),
		rec.NetAmount.String(),
		string(rec.Status),
		nullableDate(rec.PaymentDate),
		rec.UpdatedAt,
		rec.ID,
	)

	updated, err := scanSalaryRecord(row)
	if err != nil {
		return nil, translateSalaryPgError(err)
	}
	return updated, nil
}

// FindByID は ID で給与レコードを取得します。
func (r *SalaryRepository) FindByID(ctx context.Context, id string) (*salary.Record, error) {
	return r.findOne(ctx, `
        SELECT `+salaryColumns+`
          FROM salary_records
         WHERE id = $1
         LIMIT 1
    `, id)
}

// FindByIDForUpdate は ID で給与レコードを取得し、行ロックを保持します。
func (r *SalaryRepository) FindByIDForUpdate(ctx context.Context, id string) (*salary.Record, error) {
	return r.findOne(ctx, `
        SELECT `+salaryColumns+`
          FROM salary_records
         WHERE id = $1
         LIMIT 1
           FOR UPDATE
    `, id)
}

func (r *SalaryRepository) findOne(ctx context.Context, query string, args ...any) (*salary.Record, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	found, err := scanSalaryRecord(exec.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, translateSalaryPgError(err)
	}
	return found, nil
}

// ListByEmployee は社員の給与レコードを新しい期間から順に返します。
func (r *SalaryRepository) ListByEmployee(ctx context.Context, employeeID string) ([]*salary.Record, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT `+salaryColumns+`
          FROM salary_records
         WHERE employee_id = $1
         ORDER BY year DESC, month DESC
    `, employeeID)
	if err != nil {
		return nil, translateSalaryPgError(err)
	}
	defer rows.Close()

	records := make([]*salary.Record, 0)
	for rows.Next() {
		rec, err := scanSalaryRecord(rows)
		if err != nil {
			return nil, translateSalaryPgError(err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, translateSalaryPgError(err)
	}
	return records, nil
}

func scanSalaryRecord(row pgx.Row) (*salary.Record, error) {
	var (
		id, employeeID       string
		month, year          int
		base, overtime       string
		bonus, deductions    string
		net, status          string
		paymentDate          sql.NullTime
		createdAt, updatedAt time.Time
	)

	if err := row.Scan(
		&id,
		&employeeID,
		&month,
		&year,
		&base,
		&overtime,
		&bonus,
		&deductions,
		&net,
		&status,
		&paymentDate,
		&createdAt,
		&updatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, salary.ErrRecordNotFound
		}
		return nil, err
	}

	rec := &salary.Record{
		ID:          id,
		EmployeeID:  employeeID,
		Month:       month,
		Year:        year,
		Status:      salary.Status(status),
		PaymentDate: datePtr(paymentDate),
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}

	amounts := []struct {
		raw  string
		dest *decimal.Decimal
	}{
		{base, &rec.BaseAmount},
		{overtime, &rec.OvertimeAmount},
		{bonus, &rec.Bonus},
		{deductions, &rec.Deductions},
		{net, &rec.NetAmount},
	}
	for _, a := range amounts {
		d, err := parseDecimal(a.raw)
		if err != nil {
			return nil, err
		}
		*a.dest = d
	}

	return rec, nil
}

func translateSalaryPgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return salary.ErrRecordNotFound
	}

	if _, ok := pgdb.ConstraintViolation(err, pgdb.UniqueViolationCode); ok {
		return salary.ErrRecordAlreadyExists
	}
	if _, ok := pgdb.ConstraintViolation(err, pgdb.ForeignKeyViolationCode); ok {
		return salary.ErrEmployeeNotFound
	}
	if constraint, ok := pgdb.ConstraintViolation(err, pgdb.CheckViolationCode); ok {
		if constraint == "salary_records_status_check" {
			return salary.ErrInvalidStatus
		}
		return salary.ErrInvalidPeriod
	}
	if _, ok := pgdb.ConstraintViolation(err, pgdb.InvalidTextCode); ok {
		return salary.ErrRecordNotFound
	}

	if _, ok := pgdb.ConstraintViolation(err, pgdb.StringTruncationCode); ok {
		return salary.ErrInvalidStatus
	}
	if _, ok := pgdb.ConstraintViolation(err, pgdb.NumericOutOfRangeCode); ok {
		return salary.ErrInvalidAmount
	}

	return err
}
