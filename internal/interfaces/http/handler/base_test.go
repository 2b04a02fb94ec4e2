package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mecatos/backend/internal/domain/shared"
	"github.com/mecatos/backend/internal/interfaces/http/dto"
	"github.com/mecatos/backend/internal/interfaces/http/middleware"
)

func newTestContext(t *testing.T) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestGetRequestID(t *testing.T) {
	t.Run("prefers context value", func(t *testing.T) {
		c, _ := newTestContext(t)
		c.Set(middleware.RequestIDKey, "ctx-id")
		c.Request.Header.Set(middleware.RequestIDHeader, "header-id")

		assert.Equal(t, "ctx-id", getRequestID(c))
	})

	t.Run("falls back to header", func(t *testing.T) {
		c, _ := newTestContext(t)
		c.Request.Header.Set(middleware.RequestIDHeader, "header-id")

		assert.Equal(t, "header-id", getRequestID(c))
	})

	t.Run("empty when absent", func(t *testing.T) {
		c, _ := newTestContext(t)

		assert.Equal(t, "", getRequestID(c))
	})
}

func TestGetTenantID(t *testing.T) {
	t.Run("returns tenant set by middleware", func(t *testing.T) {
		c, _ := newTestContext(t)
		tenantID := uuid.New()
		c.Set(middleware.TenantIDKey, tenantID)

		got, err := getTenantID(c)
		require.NoError(t, err)
		assert.Equal(t, tenantID, got)
	})

	t.Run("errors when absent", func(t *testing.T) {
		c, _ := newTestContext(t)

		_, err := getTenantID(c)
		assert.Error(t, err)
	})
}

func TestBaseHandlerResponses(t *testing.T) {
	var h BaseHandler

	t.Run("success", func(t *testing.T) {
		c, w := newTestContext(t)
		h.Success(c, gin.H{"value": 1})

		assert.Equal(t, http.StatusOK, w.Code)
		resp := decodeResponse(t, w)
		assert.True(t, resp.Success)
		assert.Nil(t, resp.Error)
	})

	t.Run("success with meta", func(t *testing.T) {
		c, w := newTestContext(t)
		h.SuccessWithMeta(c, []int{1, 2}, 45, 2, 20)

		assert.Equal(t, http.StatusOK, w.Code)
		resp := decodeResponse(t, w)
		require.NotNil(t, resp.Meta)
		assert.Equal(t, int64(45), resp.Meta.Total)
		assert.Equal(t, 2, resp.Meta.Page)
		assert.Equal(t, 3, resp.Meta.TotalPages)
	})

	t.Run("created", func(t *testing.T) {
		c, w := newTestContext(t)
		h.Created(c, gin.H{"id": "x"})

		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("no content", func(t *testing.T) {
		c, w := newTestContext(t)
		h.NoContent(c)
		c.Writer.WriteHeaderNow()

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Body.String())
	})

	t.Run("bad request carries request id", func(t *testing.T) {
		c, w := newTestContext(t)
		c.Set(middleware.RequestIDKey, "req-7")
		h.BadRequest(c, "bad input")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decodeResponse(t, w)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeBadRequest, resp.Error.Code)
		assert.Equal(t, "req-7", resp.Error.RequestID)
	})
}

func TestHandleDomainError(t *testing.T) {
	var h BaseHandler

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "not found",
			err:        shared.NewDomainError("NOT_FOUND", "Count not found"),
			wantStatus: http.StatusNotFound,
			wantCode:   dto.ErrCodeNotFound,
		},
		{
			name:       "sku taken",
			err:        shared.NewDomainError("SKU_TAKEN", "SKU already in use"),
			wantStatus: http.StatusConflict,
			wantCode:   dto.ErrCodeAlreadyExists,
		},
		{
			name:       "validation prefix",
			err:        shared.NewDomainError("INVALID_QUANTITY", "Quantity must not be negative"),
			wantStatus: http.StatusBadRequest,
			wantCode:   dto.ErrCodeInvalidInput,
		},
		{
			name:       "insufficient stock",
			err:        shared.NewDomainError("INSUFFICIENT_STOCK", "Not enough stock"),
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   dto.ErrCodeInsufficientStock,
		},
		{
			name:       "unknown error type",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   dto.ErrCodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newTestContext(t)
			h.HandleDomainError(c, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			resp := decodeResponse(t, w)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
		})
	}
}
