package errorhandler

import (
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/launchpad/common/errs"
	"github.com/gaze-network/launchpad/pkg/logger"
	"github.com/gaze-network/launchpad/pkg/logger/slogx"
	"github.com/gofiber/fiber/v2"
)

// kindStatus maps error kinds to the HTTP status returned to clients. Kinds are
// checked in order, so the more specific kinds come first.
var kindStatus = []struct {
	kind   errs.ErrorKind
	status int
}{
	{errs.NotFound, http.StatusNotFound},
	{errs.PermissionDenied, http.StatusForbidden},
	{errs.Conflict, http.StatusConflict},
	{errs.InvalidArgument, http.StatusBadRequest},
	{errs.Unsupported, http.StatusBadRequest},
	{errs.OverflowUint128, http.StatusBadRequest},
	{errs.OverflowUint64, http.StatusBadRequest},
	{errs.Unavailable, http.StatusServiceUnavailable},
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func NewHTTPErrorHandler() func(ctx *fiber.Ctx, err error) error {
	return func(ctx *fiber.Ctx, err error) error {
		if e := new(errs.PublicError); errors.As(err, &e) {
			return errors.WithStack(ctx.Status(http.StatusBadRequest).JSON(errorResponse{
				Error: e.Message(),
				Code:  e.Code(),
			}))
		}
		if e := new(fiber.Error); errors.As(err, &e) {
			return errors.WithStack(ctx.Status(e.Code).JSON(errorResponse{
				Error: e.Error(),
			}))
		}
		for _, ks := range kindStatus {
			if !errors.Is(err, ks.kind) {
				continue
			}
			if ks.status >= http.StatusInternalServerError {
				logger.WarnContext(ctx.UserContext(), "Dependency unavailable, api error",
					slogx.String("event", "api_unavailable"),
					slogx.Error(err),
				)
				return errors.WithStack(ctx.Status(ks.status).JSON(errorResponse{
					Error: http.StatusText(ks.status),
					Code:  string(ks.kind),
				}))
			}
			return errors.WithStack(ctx.Status(ks.status).JSON(errorResponse{
				Error: err.Error(),
				Code:  string(ks.kind),
			}))
		}

		logger.ErrorContext(ctx.UserContext(), "Something went wrong, unhandled api error", err,
			slogx.String("event", "api_unhandled_error"),
		)

		return errors.WithStack(ctx.Status(http.StatusInternalServerError).JSON(errorResponse{
			Error: "Internal Server Error",
		}))
	}
}
