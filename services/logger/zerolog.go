package logsvc

import (
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/Joud158/PolyLab/core"
	"github.com/Joud158/PolyLab/core/user"
)

// ZerologLogger is the console logger used in development and tests.
type ZerologLogger struct {
	log zerolog.Logger
}

var _ core.Logger = (*ZerologLogger)(nil)

func NewZerologLogger(conf *core.Config) *ZerologLogger {
	var log zerolog.Logger
	if conf.Debug {
		output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
		log = zerolog.New(output).With().Timestamp().Logger()
	} else {
		log = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}

	switch conf.LogLevel {
	case "debug":
		log = log.Level(zerolog.DebugLevel)
	case "warn":
		log = log.Level(zerolog.WarnLevel)
	case "error":
		log = log.Level(zerolog.ErrorLevel)
	default:
		log = log.Level(zerolog.InfoLevel)
	}

	return &ZerologLogger{log: log}
}

func (l *ZerologLogger) Debug(msg string, args ...interface{}) {
	l.event(l.log.Debug(), args).Msg(msg)
}

func (l *ZerologLogger) Info(msg string, args ...interface{}) {
	l.event(l.log.Info(), args).Msg(msg)
}

func (l *ZerologLogger) Error(msg string, args ...interface{}) {
	l.event(l.log.Error(), args).Msg(msg)
}

func (l *ZerologLogger) event(ev *zerolog.Event, args []interface{}) *zerolog.Event {
	var n int
	for _, arg := range args {
		switch v := arg.(type) {
		case error:
			ev = ev.Err(v)
		case user.Identity:
			ev = ev.Int("user_id", v.ID).Str("user_email", v.Email)
		default:
			ev = ev.Interface("ctx"+strconv.Itoa(n), v)
			n++
		}
	}
	return ev
}
