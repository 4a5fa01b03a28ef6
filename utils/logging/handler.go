package logging

import (
	"io"
	"log/slog"
	"strings"

	"github.com/m-mizutani/clog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/masq"
)

const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// New builds a logger writing to w. Fields tagged `masq:"secret"` and the bot token are redacted.
func New(w io.Writer, format, level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, goerr.Wrap(err, "invalid log level", goerr.V("level", level))
	}

	filter := masq.New(
		masq.WithTag("secret"),
		masq.WithFieldName("BotToken"),
	)

	switch strings.ToLower(format) {
	case FormatConsole, "":
		return slog.New(clog.New(
			clog.WithWriter(w),
			clog.WithLevel(lvl),
			clog.WithReplaceAttr(filter),
			clog.WithSource(lvl <= slog.LevelDebug),
		)), nil
	case FormatJSON:
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level:       lvl,
			ReplaceAttr: filter,
			AddSource:   lvl <= slog.LevelDebug,
		})), nil
	default:
		return nil, goerr.New("unsupported log format", goerr.V("format", format))
	}
}
