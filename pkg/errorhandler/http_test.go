package errorhandler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/launchpad/common/errs"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPErrorHandler(t *testing.T) {
	testcases := []struct {
		name     string
		err      error
		status   int
		expected errorResponse
	}{
		{
			name:     "public error",
			err:      errs.NewPublicError("bad request body"),
			status:   http.StatusBadRequest,
			expected: errorResponse{Error: "bad request body", Code: string(errs.InvalidArgument)},
		},
		{
			name:     "fiber error",
			err:      fiber.ErrMethodNotAllowed,
			status:   http.StatusMethodNotAllowed,
			expected: errorResponse{Error: "Method Not Allowed"},
		},
		{
			name:     "not found",
			err:      errors.Wrap(errs.NotFound, "sale"),
			status:   http.StatusNotFound,
			expected: errorResponse{Error: "sale: Not Found", Code: string(errs.NotFound)},
		},
		{
			name:     "conflict",
			err:      errors.Wrap(errs.Conflict, "already set"),
			status:   http.StatusConflict,
			expected: errorResponse{Error: "already set: Conflict", Code: string(errs.Conflict)},
		},
		{
			name:     "unavailable hides the cause",
			err:      errors.Wrap(errs.Unavailable, "dial tcp 10.0.0.1:443"),
			status:   http.StatusServiceUnavailable,
			expected: errorResponse{Error: "Service Unavailable", Code: string(errs.Unavailable)},
		},
		{
			name:     "unhandled",
			err:      errors.New("boom"),
			status:   http.StatusInternalServerError,
			expected: errorResponse{Error: "Internal Server Error"},
		},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			app := fiber.New(fiber.Config{ErrorHandler: NewHTTPErrorHandler()})
			app.Get("/", func(c *fiber.Ctx) error { return tc.err })

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tc.status, resp.StatusCode)

			var body errorResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tc.expected, body)
		})
	}
}
