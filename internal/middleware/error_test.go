package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	apperrors "github.com/jwalitptl/cds-engine/pkg/errors"
)

func errorRouter(err error) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/", func(c *gin.Context) {
		c.Error(err)
	})
	return r
}

func doRequest(r *gin.Engine) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	r.ServeHTTP(w, req)
	return w
}

func TestErrorHandlerMapsAppErrors(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"not found", apperrors.NewNotFound("patient", nil), http.StatusNotFound},
		{"validation", apperrors.NewValidation("reason is required"), http.StatusBadRequest},
		{"invalid state", apperrors.NewInvalidState("already overridden"), http.StatusConflict},
		{"plain error", fmt.Errorf("connection refused"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := doRequest(errorRouter(tc.err))
			assert.Equal(t, tc.status, w.Code)
		})
	}
}

func TestErrorHandlerUnwrapsServiceContext(t *testing.T) {
	// Services wrap repo errors with fmt.Errorf context; the HTTP mapping
	// must survive the wrapping.
	err := fmt.Errorf("failed to load patient chart: %w", apperrors.NewNotFound("patient", nil))
	w := doRequest(errorRouter(err))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "patient not found")
}
