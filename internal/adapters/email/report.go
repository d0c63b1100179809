package email

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/ogurasousui/workforce-api/internal/core/employee"
	"github.com/ogurasousui/workforce-api/internal/core/salary"
)

// SalaryReportFilename は添付する給与明細のファイル名を返します。
func SalaryReportFilename(emp *employee.Employee, rec *salary.Record) string {
	return fmt.Sprintf("salary_report_%s_%d_%d.csv", emp.EmployeeCode, rec.Month, rec.Year)
}

// SalaryReportCSV は社員 1 名 1 か月分の給与明細を CSV で返します。
func SalaryReportCSV(emp *employee.Employee, rec *salary.Record) ([]byte, error) {
	paymentDate := "Not paid"
	if rec.PaymentDate != nil {
		paymentDate = rec.PaymentDate.Format(dateLayout)
	}

	rows := [][]string{
		{"Employee Salary Report"},
		{},
		{"Employee Details"},
		{"Employee ID", emp.EmployeeCode},
		{"Name", emp.FirstName + " " + emp.LastName},
		{"Department", orNA(emp.Department)},
		{"Position", orNA(emp.Position)},
		{},
		{"Salary Details"},
		{"Month", fmt.Sprintf("%d/%d", rec.Month, rec.Year)},
		{"Base Amount", "$" + formatAmount(rec.BaseAmount)},
		{"Overtime Amount", "$" + formatAmount(rec.OvertimeAmount)},
		{"Bonus", "$" + formatAmount(rec.Bonus)},
		{"Deductions", "$" + formatAmount(rec.Deductions)},
		{"Net Amount", "$" + formatAmount(rec.NetAmount)},
		{"Status", string(rec.Status)},
		{"Payment Date", paymentDate},
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(rows); err != nil {
		return nil, fmt.Errorf("email: write salary report: %w", err)
	}
	return buf.Bytes(), nil
}

func formatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func orNA(value *string) string {
	if value == nil || *value == "" {
		return "N/A"
	}
	return *value
}
