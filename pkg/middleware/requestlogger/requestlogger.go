// Package requestlogger logs one record per completed HTTP request.
package requestlogger

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/launchpad/pkg/logger"
	"github.com/gaze-network/launchpad/pkg/logger/slogx"
	"github.com/gaze-network/launchpad/pkg/middleware/requestcontext"
	"github.com/gofiber/fiber/v2"
)

type Config struct {
	WithRequestHeader    bool     `env:"REQUEST_HEADER" envDefault:"false" mapstructure:"request_header"`
	WithRequestQuery     bool     `env:"REQUEST_QUERY" envDefault:"false" mapstructure:"request_query"`
	Disable              bool     `env:"DISABLE" envDefault:"false" mapstructure:"disable"` // only errors are logged
	HiddenRequestHeaders []string `env:"HIDDEN_REQUEST_HEADERS" mapstructure:"hidden_request_headers"`
}

func New(config Config) fiber.Handler {
	hidden := make(map[string]struct{}, len(config.HiddenRequestHeaders))
	for _, header := range config.HiddenRequestHeaders {
		hidden[strings.ToLower(strings.TrimSpace(header))] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()

		level := slog.LevelInfo
		attrs := []slog.Attr{
			slogx.String("event", "api_request"),
			slogx.Duration("latency", time.Since(start)),
		}
		if err != nil || status >= http.StatusInternalServerError {
			level = slog.LevelError
			logErr := err
			if logErr == nil {
				logErr = fiber.NewError(status)
			}
			attrs = append(attrs, slogx.Error(logErr))
		}
		if config.Disable && level == slog.LevelInfo {
			return nil
		}

		request := []slog.Attr{
			slogx.String("method", c.Method()),
			slogx.String("path", c.Path()),
			slogx.String("route", c.Route().Path),
			slogx.String("ip", requestcontext.GetClientIP(c.UserContext())),
			slogx.String("user_agent", string(c.Context().UserAgent())),
			slogx.Int("length", len(c.Body())),
		}
		if caller := requestcontext.GetCaller(c.UserContext()); caller != "" {
			request = append(request, slogx.String("caller", caller))
		}
		if config.WithRequestQuery {
			request = append(request, slogx.String("query", string(c.Request().URI().QueryString())))
		}
		if config.WithRequestHeader {
			var headers []any
			for k, v := range c.GetReqHeaders() {
				if _, found := hidden[strings.ToLower(k)]; !found {
					headers = append(headers, slog.Any(k, v))
				}
			}
			request = append(request, slog.Group("header", headers...))
		}

		attrs = append(attrs,
			slog.Attr{Key: "request", Value: slog.GroupValue(request...)},
			slog.Attr{Key: "response", Value: slog.GroupValue(
				slogx.Int("status", status),
				slogx.Int("length", len(c.Response().Body())),
			)},
		)
		logger.LogAttrs(c.UserContext(), level, "Request completed", attrs...)
		return errors.WithStack(err)
	}
}
