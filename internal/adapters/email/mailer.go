package email

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"math"
	"net/url"
	"time"

	"github.com/ogurasousui/workforce-api/internal/core/employee"
	"github.com/ogurasousui/workforce-api/internal/core/salary"
)

const (
	invitationSubject = "Employee Invitation - Join Our Team"
	dateLayout        = "2006-01-02"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// Attachment はメールに添付するファイルです。
type Attachment struct {
	Filename string
	Content  []byte
}

// Message は送信するメール 1 通分の内容です。
type Message struct {
	To          string
	Subject     string
	HTML        string
	Attachments []Attachment
}

// Sender はメールを実際に配送します。
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Mailer は招待メールと給与更新メールを組み立てて Sender に渡します。
// invitation.Notifier と salary.Notifier を満たします。
type Mailer struct {
	sender        Sender
	acceptURL     string
	companyName   string
	invitationTTL time.Duration
}

// NewMailer は Mailer を生成します。acceptURL は招待受諾画面の URL です。
func NewMailer(sender Sender, acceptURL, companyName string, invitationTTL time.Duration) (*Mailer, error) {
	if sender == nil {
		return nil, fmt.Errorf("email: sender is required")
	}
	if _, err := url.Parse(acceptURL); err != nil {
		return nil, fmt.Errorf("email: parse accept url: %w", err)
	}
	return &Mailer{
		sender:        sender,
		acceptURL:     acceptURL,
		companyName:   companyName,
		invitationTTL: invitationTTL,
	}, nil
}

// SendInvitation は受諾リンクを含む招待メールを送信します。
func (m *Mailer) SendInvitation(ctx context.Context, to, token string) error {
	link, err := m.invitationLink(token)
	if err != nil {
		return err
	}

	body, err := render("invitation.html", map[string]any{
		"Link":        template.URL(link),
		"ValidDays":   int(math.Ceil(m.invitationTTL.Hours() / 24)),
		"CompanyName": m.companyName,
	})
	if err != nil {
		return err
	}

	return m.sender.Send(ctx, Message{To: to, Subject: invitationSubject, HTML: body})
}

// SendSalaryUpdate は給与明細の CSV を添付した更新通知を送信します。
func (m *Mailer) SendSalaryUpdate(ctx context.Context, to string, emp *employee.Employee, rec *salary.Record) error {
	if emp == nil || rec == nil {
		return fmt.Errorf("email: employee and salary record are required")
	}

	paymentDate := ""
	if rec.PaymentDate != nil {
		paymentDate = rec.PaymentDate.Format(dateLayout)
	}

	body, err := render("salary_update.html", map[string]any{
		"EmployeeName":   emp.FullName(),
		"Month":          rec.Month,
		"Year":           rec.Year,
		"Status":         string(rec.Status),
		"BaseAmount":     formatAmount(rec.BaseAmount),
		"OvertimeAmount": formatAmount(rec.OvertimeAmount),
		"Bonus":          formatAmount(rec.Bonus),
		"Deductions":     formatAmount(rec.Deductions),
		"NetAmount":      formatAmount(rec.NetAmount),
		"PaymentDate":    paymentDate,
		"CompanyName":    m.companyName,
	})
	if err != nil {
		return err
	}

	report, err := SalaryReportCSV(emp, rec)
	if err != nil {
		return err
	}

	return m.sender.Send(ctx, Message{
		To:      to,
		Subject: fmt.Sprintf("Salary Update - %d/%d", rec.Month, rec.Year),
		HTML:    body,
		Attachments: []Attachment{{
			Filename: SalaryReportFilename(emp, rec),
			Content:  report,
		}},
	})
}

func (m *Mailer) invitationLink(token string) (string, error) {
	u, err := url.Parse(m.acceptURL)
	if err != nil {
		return "", fmt.Errorf("email: parse accept url: %w", err)
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("email: render %s: %w", name, err)
	}
	return buf.String(), nil
}
