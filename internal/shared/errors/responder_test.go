package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

var errOutOfStock = errors.New("out of stock")

func respond(t *testing.T, r *Responder, err error) (*httptest.ResponseRecorder, ProblemDetail) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/v1/things/1", nil)
	r.RespondError(c, err)

	var problem ProblemDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	return rec, problem
}

func TestResponder_MapperWins(t *testing.T) {
	r := NewResponder("https://errors.example", func(err error) (ProblemDetail, bool) {
		if errors.Is(err, errOutOfStock) {
			return ErrConflict.WithDetail(err.Error()), true
		}
		return ProblemDetail{}, false
	})

	rec, problem := respond(t, r, fmt.Errorf("reserve: %w", errOutOfStock))
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, ContentTypeProblemJSON, rec.Header().Get("Content-Type"))
	require.Equal(t, "https://errors.example"+TypeConflict, problem.Type)
	require.Equal(t, "/v1/things/1", problem.Instance)
}

func TestResponder_WrappedProblemAndFallback(t *testing.T) {
	r := NewResponder("")

	rec, problem := respond(t, r, fmt.Errorf("lookup: %w", NewNotFoundProblem("session", "s-1")))
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, TypeNotFound, problem.Type)

	rec, problem = respond(t, r, errors.New("boom"))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, "unexpected error", problem.Detail)
}

func TestWithExtension_DoesNotShareMaps(t *testing.T) {
	base := ErrBadGateway.WithExtension("operation", "create-service")
	derived := base.WithExtension("upstreamStatus", 503)

	require.Len(t, base.Extensions, 1)
	require.Len(t, derived.Extensions, 2)
}
