package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"auctionscan/internal/shared/types"
)

// Init 按 [log] 配置初始化全局 zerolog logger。
// format = json 时输出结构化日志, 否则输出带颜色的控制台格式; file 非空时额外追加写入该文件。
func Init(cfg types.LogConf) error {
	var file io.Writer
	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file %s: %w", cfg.File, err)
		}
		file = f
	}
	setup(cfg, os.Stderr, file)
	Info().Str("level", log.Logger.GetLevel().String()).Str("format", formatOf(cfg)).Msg("Logger initialized.")
	return nil
}

func setup(cfg types.LogConf, out, file io.Writer) {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || cfg.Level == "" {
		if cfg.Level != "" {
			fmt.Fprintf(os.Stderr, "Unknown log level '%s', defaulting to 'info'\n", cfg.Level)
		}
		level = zerolog.InfoLevel
	}

	zerolog.TimestampFunc = func() time.Time {
		return time.Now().UTC()
	}

	var w io.Writer = out
	if formatOf(cfg) == "console" {
		w = zerolog.ConsoleWriter{Out: out, TimeFormat: "2006-01-02 15:04:05"}
	}
	if file != nil {
		// 文件里始终是 JSON, 方便事后用 jq 过滤某个 run_id
		w = zerolog.MultiLevelWriter(w, file)
	}

	log.Logger = zerolog.New(w).Level(level).With().Timestamp().Logger()
}

func formatOf(cfg types.LogConf) string {
	if strings.EqualFold(cfg.Format, "json") {
		return "json"
	}
	return "console"
}

// WithComponent 返回带 component 字段的子 logger。
func WithComponent(name string) zerolog.Logger {
	return log.Logger.With().Str("component", name).Logger()
}

// Event wraps a zerolog event for the package-level helpers.
type Event struct {
	*zerolog.Event
}

func Debug() *Event { return &Event{log.Debug()} }
func Info() *Event  { return &Event{log.Info()} }
func Warn() *Event  { return &Event{log.Warn()} }

// Fatal logs and exits the process.
func Fatal() *Event { return &Event{log.Fatal()} }

func (e *Event) Str(key, value string) *Event {
	e.Event = e.Event.Str(key, value)
	return e
}

func (e *Event) Int(key string, value int) *Event {
	e.Event = e.Event.Int(key, value)
	return e
}

func (e *Event) Err(err error) *Event {
	e.Event = e.Event.Err(err)
	return e
}

func (e *Event) Msgf(format string, v ...interface{}) {
	e.Event.Msgf(format, v...)
}
