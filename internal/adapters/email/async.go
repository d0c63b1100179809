package email

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ogurasousui/workforce-api/internal/core/employee"
	"github.com/ogurasousui/workforce-api/internal/core/salary"
)

// ErrDispatcherClosed は Close 後に送信を依頼した場合に返されます。
var ErrDispatcherClosed = errors.New("email: dispatcher closed")

// Notifier は招待メールと給与更新メールの送信口です。
type Notifier interface {
	SendInvitation(ctx context.Context, to, token string) error
	SendSalaryUpdate(ctx context.Context, to string, emp *employee.Employee, rec *salary.Record) error
}

// AsyncDispatcher は送信をバックグラウンドで実行し、呼び出し元を SMTP の応答待ちから切り離します。
// 送信失敗はログに記録され、呼び出し元には返りません。
type AsyncDispatcher struct {
	next    Notifier
	logger  *zap.Logger
	timeout time.Duration

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// NewAsyncDispatcher は AsyncDispatcher を生成します。timeout は 1 通あたりの上限です。
func NewAsyncDispatcher(next Notifier, logger *zap.Logger, timeout time.Duration) *AsyncDispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AsyncDispatcher{next: next, logger: logger, timeout: timeout}
}

// SendInvitation は招待メールの送信を予約します。
func (d *AsyncDispatcher) SendInvitation(ctx context.Context, to, token string) error {
	return d.dispatch(ctx, "invitation", to, func(ctx context.Context) error {
		return d.next.SendInvitation(ctx, to, token)
	})
}

// SendSalaryUpdate は給与更新メールの送信を予約します。
func (d *AsyncDispatcher) SendSalaryUpdate(ctx context.Context, to string, emp *employee.Employee, rec *salary.Record) error {
	return d.dispatch(ctx, "salary_update", to, func(ctx context.Context) error {
		return d.next.SendSalaryUpdate(ctx, to, emp, rec)
	})
}

func (d *AsyncDispatcher) dispatch(ctx context.Context, kind, to string, send func(context.Context) error) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return ErrDispatcherClosed
	}
	d.wg.Add(1)
	d.mu.Unlock()

	// リクエストの終了で送信が中断されないよう、キャンセルを引き継がない context を使います。
	sendCtx := context.WithoutCancel(ctx)

	go func() {
		defer d.wg.Done()

		if d.timeout > 0 {
			var cancel context.CancelFunc
			sendCtx, cancel = context.WithTimeout(sendCtx, d.timeout)
			defer cancel()
		}

		if err := send(sendCtx); err != nil {
			d.logger.Warn("failed to send email",
				zap.String("kind", kind),
				zap.String("to", to),
				zap.Error(err),
			)
			return
		}
		d.logger.Debug("email sent", zap.String("kind", kind), zap.String("to", to))
	}()

	return nil
}

// Close は新規の送信受付を止め、送信中のメールが終わるか ctx が終了するまで待ちます。
func (d *AsyncDispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
