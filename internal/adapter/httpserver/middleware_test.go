package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/pscheid92/syncvision/internal/platform/correlation"
	apperrors "github.com/pscheid92/syncvision/internal/platform/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEchoContext() (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func decodeErrorResponse(t *testing.T, rec *httptest.ResponseRecorder) apperrors.ErrorResponse {
	t.Helper()
	var resp apperrors.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestMiddlewareWithStructuredError(t *testing.T) {
	c, rec := newEchoContext()

	handler := ErrorHandlingMiddleware()(func(c echo.Context) error {
		return apperrors.ValidationError("Invalid request body.")
	})

	require.NoError(t, handler(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeErrorResponse(t, rec)
	assert.Equal(t, "Invalid request body.", resp.Error)
	assert.Equal(t, apperrors.TypeValidation, resp.Type)
}

func TestMiddlewareWithWrappedStructuredError(t *testing.T) {
	c, rec := newEchoContext()

	handler := ErrorHandlingMiddleware()(func(c echo.Context) error {
		return fmt.Errorf("create: %w", apperrors.InternalError("Error creating task", errors.New("write failed")))
	})

	require.NoError(t, handler(c))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Error creating task", decodeErrorResponse(t, rec).Error)
}

func TestMiddlewareWithStandardError(t *testing.T) {
	c, rec := newEchoContext()

	handler := ErrorHandlingMiddleware()(func(c echo.Context) error {
		return errors.New("connection reset by peer")
	})

	require.NoError(t, handler(c))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	resp := decodeErrorResponse(t, rec)
	assert.Equal(t, "internal server error", resp.Error)
	assert.Equal(t, apperrors.TypeInternal, resp.Type)
	assert.NotContains(t, rec.Body.String(), "connection reset")
}

func TestMiddlewareWithNoError(t *testing.T) {
	c, rec := newEchoContext()

	handler := ErrorHandlingMiddleware()(func(c echo.Context) error {
		return c.String(http.StatusOK, "success")
	})

	require.NoError(t, handler(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "success", rec.Body.String())
}

func TestMiddlewarePassesHTTPErrorThrough(t *testing.T) {
	c, rec := newEchoContext()

	handler := ErrorHandlingMiddleware()(func(c echo.Context) error {
		return echo.ErrStatusRequestEntityTooLarge
	})

	err := handler(c)

	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusRequestEntityTooLarge, httpErr.Code)
	assert.Empty(t, rec.Body.String())
}

func TestMiddlewareWithContextFields(t *testing.T) {
	c, rec := newEchoContext()

	handler := ErrorHandlingMiddleware()(func(c echo.Context) error {
		return apperrors.ValidationError("Invalid status: must be one of Pending, In Progress, Completed.").
			WithField("field", "status")
	})

	require.NoError(t, handler(c))

	resp := decodeErrorResponse(t, rec)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Len(t, resp.Context, 1)
	assert.Equal(t, "status", resp.Context["field"])
}

func TestMiddlewareAllErrorTypes(t *testing.T) {
	tests := []struct {
		name       string
		err        *apperrors.Error
		wantStatus int
		wantType   apperrors.ErrorType
	}{
		{
			name:       "validation",
			err:        apperrors.ValidationError("invalid"),
			wantStatus: http.StatusBadRequest,
			wantType:   apperrors.TypeValidation,
		},
		{
			name:       "not_found",
			err:        apperrors.NotFoundError("missing"),
			wantStatus: http.StatusNotFound,
			wantType:   apperrors.TypeNotFound,
		},
		{
			name:       "rate_limited",
			err:        apperrors.RateLimitedError("slow down"),
			wantStatus: http.StatusTooManyRequests,
			wantType:   apperrors.TypeRateLimited,
		},
		{
			name:       "internal",
			err:        apperrors.InternalError("failed", errors.New("cause")),
			wantStatus: http.StatusInternalServerError,
			wantType:   apperrors.TypeInternal,
		},
		{
			name:       "unavailable",
			err:        apperrors.UnavailableError("store down", errors.New("breaker open")),
			wantStatus: http.StatusServiceUnavailable,
			wantType:   apperrors.TypeUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newEchoContext()

			handler := ErrorHandlingMiddleware()(func(c echo.Context) error {
				return tt.err
			})

			require.NoError(t, handler(c))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantType, decodeErrorResponse(t, rec).Type)
		})
	}
}

func TestHandleError(t *testing.T) {
	c, rec := newEchoContext()

	require.NoError(t, HandleError(c, apperrors.ValidationError("test")))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeErrorResponse(t, rec)
	assert.Equal(t, "test", resp.Error)
	assert.Equal(t, apperrors.TypeValidation, resp.Type)
}

func TestHandleErrorWithNil(t *testing.T) {
	c, rec := newEchoContext()

	assert.NoError(t, HandleError(c, nil))
	assert.Empty(t, rec.Body.String())
}

func TestCorrelationMiddleware(t *testing.T) {
	c, rec := newEchoContext()
	c.Request().Header.Set("X-Request-ID", "abc-123")

	var seen string
	handler := correlationMiddleware(func(c echo.Context) error {
		seen, _ = correlation.ID(c.Request().Context())
		return nil
	})

	require.NoError(t, handler(c))
	assert.Equal(t, "abc-123", seen)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
}
