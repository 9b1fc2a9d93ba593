package handler

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/erp/vendorledger/internal/domain/shared"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type errorOnly struct {
	BaseHandler
	err error
}

func (h *errorOnly) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/fail", func(c *gin.Context) { h.HandleError(c, h.err) })
}

func TestBaseHandler_HandleError(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", shared.ErrNotFound, http.StatusNotFound, shared.CodeNotFound},
		{"validation", shared.NewValidationError("amount must be positive"), http.StatusBadRequest, shared.CodeValidation},
		{"over allocation", shared.ErrOverAllocation, http.StatusUnprocessableEntity, shared.CodeOverAllocation},
		{"invalid state", shared.ErrInvalidState, http.StatusUnprocessableEntity, shared.CodeInvalidState},
		{"stock moved", shared.ErrStockAlreadyMoved, http.StatusConflict, shared.CodeStockAlreadyMoved},
		{"conflict", shared.ErrConcurrencyConflict, http.StatusConflict, shared.CodeConcurrencyConflict},
		{"configuration", shared.NewConfigurationError("no sequence for %s", "PI"), http.StatusInternalServerError, shared.CodeConfiguration},
		{"wrapped domain", fmt.Errorf("service: %w", shared.ErrInvalidState), http.StatusUnprocessableEntity, shared.CodeInvalidState},
		{"plain error", errors.New("db down"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newTestRouter(&errorOnly{err: tc.err}, uuid.Nil)
			w, body := doJSON(t, r, http.MethodGet, "/api/v1/fail", nil)

			assert.Equal(t, tc.status, w.Code)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tc.code, errorCode(t, body))
		})
	}
}

func TestBaseHandler_HidesInternalMessages(t *testing.T) {
	r := newTestRouter(&errorOnly{err: errors.New("pq: password authentication failed")}, uuid.Nil)
	w, _ := doJSON(t, r, http.MethodGet, "/api/v1/fail", nil)

	assert.NotContains(t, w.Body.String(), "password")
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}
