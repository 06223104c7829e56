package resp

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asif-git-hub/adda-chat-app/internal/pkg/errs"
)

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) JSONResponse {
	t.Helper()

	var body JSONResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestRespondSuccess(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)

	RespondSuccess(rec, req, map[string]string{"status": "ok"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	body := decodeBody(t, rec)
	assert.Equal(t, 0, body.Code)
	assert.Equal(t, "success", body.Message)
}

func TestRespondError_StatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        *errs.CustomError
		wantStatus int
		wantCode   int
	}{
		{
			name:       "error carrying its own http status",
			err:        errs.NewError(errs.ErrRateLimitExceeded),
			wantStatus: http.StatusTooManyRequests,
			wantCode:   errs.ErrRateLimitExceeded,
		},
		{
			name:       "ack-only error remapped to 400",
			err:        errs.NewError(errs.ErrUsernameTaken),
			wantStatus: http.StatusBadRequest,
			wantCode:   errs.ErrUsernameTaken,
		},
		{
			name:       "nil error falls back to unknown",
			err:        nil,
			wantStatus: http.StatusInternalServerError,
			wantCode:   errs.ErrUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/", nil)

			RespondError(rec, req, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)

			body := decodeBody(t, rec)
			assert.Equal(t, tt.wantCode, body.Code)
			assert.NotEmpty(t, body.Message)
		})
	}
}
