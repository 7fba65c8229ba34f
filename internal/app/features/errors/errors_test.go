package errors_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	uierrors "github.com/homeandown/estatehub/internal/app/features/errors"
	"github.com/homeandown/estatehub/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRecoverer_PanicBecomesJSON500(t *testing.T) {
	el := uierrors.NewErrorLogger(zap.NewNop())
	h := el.Recoverer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/x", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body uierrors.Body
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "An internal error occurred.", body.Error)
}

func TestLogFormError_EchoesForm(t *testing.T) {
	el := uierrors.NewErrorLogger(zap.NewNop())
	rec := httptest.NewRecorder()
	req := testutil.NewAuthenticatedRequest("POST", "/forms/users", testutil.AdminUser())

	form := map[string]string{"email": "bad"}
	el.LogFormError(rec, req, http.StatusUnprocessableEntity, "invalid user", errors.New("email"),
		"Please fix the highlighted fields.", form, map[string]string{"email": "must be a valid email"})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var body struct {
		Error  string            `json:"error"`
		Form   map[string]string `json:"form"`
		Fields map[string]string `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "bad", body.Form["email"])
	assert.Equal(t, "must be a valid email", body.Fields["email"])
}

func TestForbiddenEndpoint(t *testing.T) {
	rec := httptest.NewRecorder()
	req := testutil.NewAuthenticatedRequest("GET", "/forbidden", testutil.BuyerUser())
	uierrors.NewHandler().Forbidden(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), `"is_logged_in":true`)
}
