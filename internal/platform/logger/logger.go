package logger

import (
	"context"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ogurasousui/workforce-api/internal/platform/config"
)

type ctxKey struct{}

// New は設定に従って *zap.Logger を生成します。
// development が true の場合は人間向けのコンソール出力、それ以外は JSON 出力です。
func New(cfg config.LogConfig) (*zap.Logger, error) {
	lvl := parseLevel(cfg.Level)
	if cfg.Development {
		c := zap.NewDevelopmentConfig()
		c.Level = zap.NewAtomicLevelAt(lvl)
		return c.Build()
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), zapcore.AddSync(os.Stdout), lvl)
	return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)), nil
}

// parseLevel は zap のレベル名を解釈します。解釈できない場合は Info を返します。
func parseLevel(l string) zapcore.Level {
	lvl, err := zapcore.ParseLevel(strings.ToLower(strings.TrimSpace(l)))
	if err != nil {
		return zapcore.InfoLevel
	}
	return lvl
}

// WithContext は logger を context に格納します。
func WithContext(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext は context に格納された logger を返します。未設定の場合は zap.L() です。
func FromContext(ctx context.Context) *zap.Logger {
	if ctx == nil {
		return zap.L()
	}
	if l, ok := ctx.Value(ctxKey{}).(*zap.Logger); ok && l != nil {
		return l
	}
	return zap.L()
}
