package billing

import (
	"context"
	"testing"
	"time"

	"notely/cmd/server/testutil"
	"notely/internal/services/entitlements"
	"notely/internal/services/profiles"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

const testUserID = "683cdb8aa96ad71e8e075bd0"

type MockBillingService struct {
	mock.Mock
}

func (m *MockBillingService) Purchase(ctx context.Context, profileID, productID string, now time.Time) (*entitlements.Purchase, error) {
	args := m.Called(ctx, profileID, productID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entitlements.Purchase), args.Error(1)
}

func (m *MockBillingService) History(ctx context.Context, profileID string) ([]*entitlements.Purchase, error) {
	args := m.Called(ctx, profileID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entitlements.Purchase), args.Error(1)
}

func setupBillingTest(t *testing.T) (*fiber.App, *MockBillingService) {
	t.Helper()

	svc := &MockBillingService{}
	app := testutil.CreateTestApp(t)
	h := NewHandlers(svc, testutil.CreateTestValidator(t))

	app.Get("/api/v1/billing/products", h.Products)
	grp := app.Group("/api/v1/billing", testutil.AsProfile(&profiles.Profile{ID: testUserID}))
	grp.Post("/purchase", h.Purchase)
	grp.Get("/history", h.History)

	t.Cleanup(func() { svc.AssertExpectations(t) })
	return app, svc
}

func TestProductsHideSKUTokens(t *testing.T) {
	app, _ := setupBillingTest(t)

	resp, err := app.Test(testutil.CreateJSONRequest("GET", "/api/v1/billing/products", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var got []map[string]any
	testutil.DecodeJSON(t, resp, &got)
	require.Len(t, got, len(entitlements.Products))
	for _, p := range got {
		assert.NotContains(t, p, "SKUToken")
		assert.NotEmpty(t, p["id"])
	}
}

func TestPurchase(t *testing.T) {
	tests := []struct {
		name      string
		productID string
		ret       *entitlements.Purchase
		err       error
		status    int
		message   string
	}{
		{
			name:      "approved",
			productID: "pro_monthly",
			ret: &entitlements.Purchase{
				ID:        bson.NewObjectID(),
				UserID:    testUserID,
				ProductID: "pro_monthly",
				Tier:      entitlements.TierPro,
				Status:    entitlements.PurchaseStatusActive,
			},
			status: fiber.StatusCreated,
		},
		{
			name:      "unknown product",
			productID: "gold_forever",
			err:       entitlements.ErrProductNotFound,
			status:    fiber.StatusNotFound,
		},
		{
			name:      "declined by provider",
			productID: "pro_monthly",
			err:       &entitlements.BillingError{Message: "card declined"},
			status:    fiber.StatusPaymentRequired,
			message:   "card declined",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, svc := setupBillingTest(t)
			if tt.ret != nil {
				svc.On("Purchase", mock.Anything, testUserID, tt.productID, mock.AnythingOfType("time.Time")).Return(tt.ret, nil).Once()
			} else {
				svc.On("Purchase", mock.Anything, testUserID, tt.productID, mock.AnythingOfType("time.Time")).Return(nil, tt.err).Once()
			}

			resp, err := app.Test(testutil.CreateJSONRequest("POST", "/api/v1/billing/purchase", PurchaseRequest{ProductID: tt.productID}), -1)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)

			if tt.message != "" {
				var body map[string]string
				testutil.DecodeJSON(t, resp, &body)
				assert.Equal(t, tt.message, body["error"])
			}
		})
	}
}

func TestPurchaseRequiresProduct(t *testing.T) {
	app, _ := setupBillingTest(t)

	resp, err := app.Test(testutil.CreateJSONRequest("POST", "/api/v1/billing/purchase", map[string]string{}), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestHistory(t *testing.T) {
	app, svc := setupBillingTest(t)
	svc.On("History", mock.Anything, testUserID).Return([]*entitlements.Purchase{{ProductID: "pro_yearly"}}, nil).Once()

	resp, err := app.Test(testutil.CreateJSONRequest("GET", "/api/v1/billing/history", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var got []entitlements.Purchase
	testutil.DecodeJSON(t, resp, &got)
	require.Len(t, got, 1)
	assert.Equal(t, "pro_yearly", got[0].ProductID)
}
