// Package logging 建立服務使用的 slog logger。
//
// std 後端使用 slog 內建的文字輸出，zap 後端透過 slog-zap 轉接到 zap 的 JSON 輸出。
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	slogzap "github.com/samber/slog-zap/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"debate_arena/pkg/config"
)

const (
	BackendStd = "std"
	BackendZap = "zap"
)

// New 依設定建立 logger，並設為 slog 的預設 logger
func New(cfg config.LogConfig) *slog.Logger {
	return newWithWriter(cfg, os.Stdout)
}

func newWithWriter(cfg config.LogConfig, w io.Writer) *slog.Logger {
	level := ParseLevel(cfg.Level)

	var h slog.Handler
	switch cfg.Backend {
	case BackendZap:
		h = newZapHandler(level, w)
	default:
		h = slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	}

	service := cfg.Service
	if service == "" {
		service = "debate-arena"
	}
	h = h.WithAttrs([]slog.Attr{
		slog.String("service", service),
		slog.String("instance_id", instanceID()),
	})

	l := slog.New(h)
	slog.SetDefault(l)
	return l
}

func newZapHandler(level slog.Level, w io.Writer) slog.Handler {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	core := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(w), toZapLevel(level))
	// 大量重複的 log 進行取樣
	core = zapcore.NewSamplerWithOptions(core, time.Second, 100, 10)

	z := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
	return slogzap.Option{Level: level, Logger: z}.NewZapHandler()
}

// ParseLevel 不認得的字串一律視為 info
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func toZapLevel(lvl slog.Level) zapcore.Level {
	switch {
	case lvl <= slog.LevelDebug:
		return zapcore.DebugLevel
	case lvl == slog.LevelInfo:
		return zapcore.InfoLevel
	case lvl == slog.LevelWarn:
		return zapcore.WarnLevel
	default:
		return zapcore.ErrorLevel
	}
}

func instanceID() string {
	hn, _ := os.Hostname()
	return hn + "-" + uuid.New().String()[:8]
}
