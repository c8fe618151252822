package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"smart-trolley-backend/models"
	"smart-trolley-backend/services"
)

func newCheckoutFixture(products ...models.Product) (services.CheckoutService, services.CartService, *mockSaleRepo, *mockProductRepo) {
	cartRepo := newMockCartRepo()
	productRepo := newMockProductRepo(products...)
	settingsRepo := newMockSettingsRepo()
	heartbeat := services.NewHeartbeatTracker("TROLLEY-01", "Walk-in Customer")
	cartSvc := services.NewCartService(cartRepo, productRepo, settingsRepo, heartbeat, zap.NewNop())
	saleRepo := newMockSaleRepo(productRepo)
	checkoutSvc := services.NewCheckoutService(cartSvc, saleRepo, zap.NewNop())
	return checkoutSvc, cartSvc, saleRepo, productRepo
}

func TestCheckout_PersistsSaleDecrementsStockClearsCart(t *testing.T) {
	checkoutSvc, cartSvc, saleRepo, productRepo := newCheckoutFixture(testProduct())

	_, _ = cartSvc.Scan(context.Background(), "P1")
	_, _ = cartSvc.Scan(context.Background(), "P1")

	resp, svcErr := checkoutSvc.Checkout(context.Background(), 0)
	assert.Nil(t, svcErr)
	assert.Equal(t, 180.0, resp.Sale.Total)
	assert.Equal(t, 0.0, resp.DiscountApplied)
	assert.Len(t, resp.Sale.Items, 1)
	assert.Equal(t, "P1", resp.Sale.Items[0].ID)
	assert.Equal(t, 2, resp.Sale.Items[0].Qty)
	assert.Equal(t, 90.0, resp.Sale.Items[0].FinalPrice)
	assert.Equal(t, "Grains", resp.Sale.Items[0].Category)

	assert.Equal(t, 3, productRepo.stock("P1"))

	sales, err := saleRepo.FindAll(context.Background())
	assert.NoError(t, err)
	assert.Len(t, sales, 1)

	view, _ := cartSvc.View(context.Background())
	assert.Empty(t, view.Items)
}

func TestCheckout_AppliesOrderDiscount(t *testing.T) {
	checkoutSvc, cartSvc, _, _ := newCheckoutFixture(testProduct())

	_, _ = cartSvc.Scan(context.Background(), "P1")
	_, _ = cartSvc.Scan(context.Background(), "P1")

	resp, svcErr := checkoutSvc.Checkout(context.Background(), 50)
	assert.Nil(t, svcErr)
	assert.Equal(t, 90.0, resp.Sale.Total)
	assert.Equal(t, 50.0, resp.DiscountApplied)
	// Line snapshots keep their pre-order-discount prices.
	assert.Equal(t, 90.0, resp.Sale.Items[0].FinalPrice)
}

func TestCheckout_EmptyCart(t *testing.T) {
	checkoutSvc, _, saleRepo, _ := newCheckoutFixture(testProduct())

	_, svcErr := checkoutSvc.Checkout(context.Background(), 0)
	assert.NotNil(t, svcErr)
	assert.Equal(t, 400, svcErr.StatusCode)

	sales, _ := saleRepo.FindAll(context.Background())
	assert.Empty(t, sales)
}

func TestCheckout_DiscountOutOfRange(t *testing.T) {
	checkoutSvc, cartSvc, _, _ := newCheckoutFixture(testProduct())
	_, _ = cartSvc.Scan(context.Background(), "P1")

	for _, dp := range []float64{-1, 100.5, 200} {
		_, svcErr := checkoutSvc.Checkout(context.Background(), dp)
		assert.NotNil(t, svcErr)
		assert.Equal(t, 400, svcErr.StatusCode)
	}

	view, _ := cartSvc.View(context.Background())
	assert.Equal(t, 1, view.Items["P1"].Qty)
}

func TestCheckout_PersistFailureLeavesStateIntact(t *testing.T) {
	checkoutSvc, cartSvc, saleRepo, productRepo := newCheckoutFixture(testProduct())

	_, _ = cartSvc.Scan(context.Background(), "P1")
	saleRepo.createErr = errors.New("connection reset")

	_, svcErr := checkoutSvc.Checkout(context.Background(), 0)
	assert.NotNil(t, svcErr)
	assert.Equal(t, 500, svcErr.StatusCode)

	assert.Equal(t, 5, productRepo.stock("P1"))
	sales, _ := saleRepo.FindAll(context.Background())
	assert.Empty(t, sales)

	view, _ := cartSvc.View(context.Background())
	assert.Equal(t, 1, view.Items["P1"].Qty, "cart survives a failed checkout")
}

func TestCheckout_StockClampedAtZero(t *testing.T) {
	low := testProduct()
	low.Stock = 1
	checkoutSvc, cartSvc, _, productRepo := newCheckoutFixture(low)

	_, _ = cartSvc.Scan(context.Background(), "P1")
	_, _ = cartSvc.Scan(context.Background(), "P1")
	_, _ = cartSvc.Scan(context.Background(), "P1")

	resp, svcErr := checkoutSvc.Checkout(context.Background(), 0)
	assert.Nil(t, svcErr)
	assert.Equal(t, 3, resp.Sale.Items[0].Qty)
	assert.Equal(t, 0, productRepo.stock("P1"))
}

func TestCheckout_ItemsOrderedByProductID(t *testing.T) {
	second := models.Product{ID: "A9", Name: "Milk Packet", Unit: "500 ml", Price: 40, Stock: 10, Category: "Dairy"}
	checkoutSvc, cartSvc, _, _ := newCheckoutFixture(testProduct(), second)

	_, _ = cartSvc.Scan(context.Background(), "P1")
	_, _ = cartSvc.Scan(context.Background(), "A9")

	resp, svcErr := checkoutSvc.Checkout(context.Background(), 0)
	assert.Nil(t, svcErr)
	assert.Equal(t, []string{"A9", "P1"}, []string{resp.Sale.Items[0].ID, resp.Sale.Items[1].ID})
}

func TestSalesHistory(t *testing.T) {
	checkoutSvc, cartSvc, _, _ := newCheckoutFixture(testProduct())

	_, _ = cartSvc.Scan(context.Background(), "P1")
	_, _ = checkoutSvc.Checkout(context.Background(), 0)
	_, _ = cartSvc.Scan(context.Background(), "P1")
	_, _ = checkoutSvc.Checkout(context.Background(), 10)

	sales, svcErr := checkoutSvc.SalesHistory(context.Background())
	assert.Nil(t, svcErr)
	assert.Len(t, sales, 2)
	assert.Equal(t, 90.0, sales[0].Total)
	assert.Equal(t, 81.0, sales[1].Total)
}
