package email

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/smtp"
	"strconv"
	"time"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/ogurasousui/workforce-api/internal/platform/config"
)

// SMTPSender は gomail で組み立てたメッセージを SMTP で配送します。
// 接続は ctx に従って切断されるため、Send から戻った後に通信が残ることはありません。
type SMTPSender struct {
	host     string
	port     int
	username string
	password string
	from     string
	fromName string
	timeout  time.Duration
	dialer   net.Dialer
}

// NewSMTPSender は smtp 設定から SMTPSender を生成します。
func NewSMTPSender(cfg config.SMTPConfig) *SMTPSender {
	return &SMTPSender{
		host:     cfg.Host,
		port:     cfg.Port,
		username: cfg.Username,
		password: cfg.Password,
		from:     cfg.FromEmail,
		fromName: cfg.FromName,
		timeout:  cfg.SendTimeout,
	}
}

// Send はメールを送信します。ctx のキャンセルまたは送信タイムアウトで接続を閉じて中断します。
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	m := s.compose(msg)

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	sender := gomail.SendFunc(func(from string, to []string, w io.WriterTo) error {
		return s.deliver(ctx, from, to, w)
	})
	if err := gomail.Send(sender, m); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("email: smtp send to %s: %w", msg.To, ctxErr)
		}
		return fmt.Errorf("email: smtp send to %s: %w", msg.To, err)
	}
	return nil
}

// deliver は 1 通分の SMTP セッションを張ります。ポート 465 は暗黙の TLS、それ以外は STARTTLS を試みます。
func (s *SMTPSender) deliver(ctx context.Context, from string, to []string, w io.WriterTo) error {
	conn, err := s.dialer.DialContext(ctx, "tcp", net.JoinHostPort(s.host, strconv.Itoa(s.port)))
	if err != nil {
		return err
	}
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	tlsConfig := &tls.Config{ServerName: s.host}
	if s.port == 465 {
		conn = tls.Client(conn, tlsConfig)
	}

	c, err := smtp.NewClient(conn, s.host)
	if err != nil {
		_ = conn.Close()
		return err
	}
	defer c.Close()

	if s.port != 465 {
		if ok, _ := c.Extension("STARTTLS"); ok {
			if err := c.StartTLS(tlsConfig); err != nil {
				return err
			}
		}
	}
	if s.username != "" {
		if ok, _ := c.Extension("AUTH"); ok {
			if err := c.Auth(smtp.PlainAuth("", s.username, s.password, s.host)); err != nil {
				return err
			}
		}
	}

	if err := c.Mail(from); err != nil {
		return err
	}
	for _, addr := range to {
		if err := c.Rcpt(addr); err != nil {
			return err
		}
	}
	data, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.WriteTo(data); err != nil {
		_ = data.Close()
		return err
	}
	if err := data.Close(); err != nil {
		return err
	}
	return c.Quit()
}

func (s *SMTPSender) compose(msg Message) *gomail.Message {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.from, s.fromName)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/html", msg.HTML)

	for _, a := range msg.Attachments {
		content := a.Content
		m.Attach(a.Filename, gomail.SetCopyFunc(func(w io.Writer) error {
			_, err := w.Write(content)
			return err
		}))
	}

	return m
}

// LogSender は SMTP が無効な環境でメールを送信せずにログへ記録します。
type LogSender struct {
	logger *zap.Logger
}

// NewLogSender は LogSender を生成します。
func NewLogSender(logger *zap.Logger) *LogSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSender{logger: logger}
}

// Send はメールの宛先と件名をログ出力します。
func (s *LogSender) Send(_ context.Context, msg Message) error {
	names := make([]string, 0, len(msg.Attachments))
	for _, a := range msg.Attachments {
		names = append(names, a.Filename)
	}
	s.logger.Info("smtp disabled, email not sent",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.Strings("attachments", names),
	)
	return nil
}
