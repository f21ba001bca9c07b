package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	billingapp "github.com/freightdesk/backend/internal/application/billing"
	"github.com/freightdesk/backend/internal/domain/billing"
	"github.com/freightdesk/backend/internal/domain/shared"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockFeeRepository implements billing.FeeRepository for handler tests
type MockFeeRepository struct {
	mock.Mock
}

func (m *MockFeeRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Fee, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Fee), args.Error(1)
}

func (m *MockFeeRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*billing.Fee, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Fee), args.Error(1)
}

func (m *MockFeeRepository) FindByName(ctx context.Context, tenantID uuid.UUID, name string) (*billing.Fee, error) {
	args := m.Called(ctx, tenantID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Fee), args.Error(1)
}

func (m *MockFeeRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter billing.FeeFilter) ([]billing.Fee, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.Fee), args.Error(1)
}

func (m *MockFeeRepository) Save(ctx context.Context, fee *billing.Fee) error {
	args := m.Called(ctx, fee)
	return args.Error(0)
}

func (m *MockFeeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockFeeRepository) ExistsByName(ctx context.Context, tenantID uuid.UUID, name string) (bool, error) {
	args := m.Called(ctx, tenantID, name)
	return args.Bool(0), args.Error(1)
}

var _ billing.FeeRepository = (*MockFeeRepository)(nil)

func setupFeeTestRouter() (*gin.Engine, *MockFeeRepository, *FeeHandler) {
	gin.SetMode(gin.TestMode)

	mockRepo := new(MockFeeRepository)
	service := billingapp.NewFeeService(mockRepo)
	feeHandler := NewFeeHandler(service)

	return gin.New(), mockRepo, feeHandler
}

func TestFeeHandler_Create(t *testing.T) {
	t.Run("creates a fee", func(t *testing.T) {
		router, mockRepo, feeHandler := setupFeeTestRouter()
		router.POST("/billing/fees", feeHandler.Create)

		tenantID := uuid.New()

		mockRepo.On("ExistsByName", mock.Anything, tenantID, "Customs Clearance").Return(false, nil)
		mockRepo.On("Save", mock.Anything, mock.AnythingOfType("*billing.Fee")).Return(nil)

		body, _ := json.Marshal(billingapp.CreateFeeRequest{
			Name:          "Customs Clearance",
			DefaultAmount: decimal.RequireFromString("850.00"),
			Taxable:       true,
			TaxRate:       decimal.RequireFromString("5"),
		})

		req, _ := http.NewRequest(http.MethodPost, "/billing/fees", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Tenant-ID", tenantID.String())

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)

		var response map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.True(t, response["success"].(bool))
		mockRepo.AssertExpectations(t)
	})

	t.Run("maps a duplicate name to 409", func(t *testing.T) {
		router, mockRepo, feeHandler := setupFeeTestRouter()
		router.POST("/billing/fees", feeHandler.Create)

		tenantID := uuid.New()

		mockRepo.On("ExistsByName", mock.Anything, tenantID, "Customs Clearance").Return(true, nil)

		body, _ := json.Marshal(billingapp.CreateFeeRequest{
			Name:          "Customs Clearance",
			DefaultAmount: decimal.RequireFromString("850.00"),
		})

		req, _ := http.NewRequest(http.MethodPost, "/billing/fees", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Tenant-ID", tenantID.String())

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), "DUPLICATE_FEE_NAME")
	})

	t.Run("rejects a missing name with 400", func(t *testing.T) {
		router, _, feeHandler := setupFeeTestRouter()
		router.POST("/billing/fees", feeHandler.Create)

		body := []byte(`{"default_amount": "850.00"}`)

		req, _ := http.NewRequest(http.MethodPost, "/billing/fees", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Tenant-ID", uuid.New().String())

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rejects a missing tenant header with 400", func(t *testing.T) {
		router, _, feeHandler := setupFeeTestRouter()
		router.POST("/billing/fees", feeHandler.Create)

		body := []byte(`{"name": "Port Handling", "default_amount": "120.00"}`)

		req, _ := http.NewRequest(http.MethodPost, "/billing/fees", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestFeeHandler_GetByID(t *testing.T) {
	t.Run("returns 404 for an unknown fee", func(t *testing.T) {
		router, mockRepo, feeHandler := setupFeeTestRouter()
		router.GET("/billing/fees/:id", feeHandler.GetByID)

		tenantID := uuid.New()
		feeID := uuid.New()

		mockRepo.On("FindByIDForTenant", mock.Anything, tenantID, feeID).
			Return(nil, shared.ErrNotFound)

		req, _ := http.NewRequest(http.MethodGet, "/billing/fees/"+feeID.String(), nil)
		req.Header.Set("X-Tenant-ID", tenantID.String())

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "ERR_NOT_FOUND")
	})

	t.Run("returns the fee", func(t *testing.T) {
		router, mockRepo, feeHandler := setupFeeTestRouter()
		router.GET("/billing/fees/:id", feeHandler.GetByID)

		tenantID := uuid.New()
		fee, err := billing.NewFee(tenantID, "Port Handling", decimal.RequireFromString("120.00"), false, decimal.Zero)
		require.NoError(t, err)

		mockRepo.On("FindByIDForTenant", mock.Anything, tenantID, fee.ID).Return(fee, nil)

		req, _ := http.NewRequest(http.MethodGet, "/billing/fees/"+fee.ID.String(), nil)
		req.Header.Set("X-Tenant-ID", tenantID.String())

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Port Handling")
	})
}
