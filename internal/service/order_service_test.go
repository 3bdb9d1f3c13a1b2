package service

import (
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/morphcute/kim-dispo-vape-shop/models"
)

func newOrderServiceForTest() (*OrderService, *fakeCatalog, *fakeFlavorRepo, *fakeOrderRepo) {
	catalog := newFakeCatalog()
	flavorRepo := &fakeFlavorRepo{catalog: catalog}
	orderRepo := newFakeOrderRepo(catalog)
	svc := NewOrderService(orderRepo, flavorRepo, testLogger())
	return svc, catalog, flavorRepo, orderRepo
}

func validCheckout(flavorID int64, quantity int) CheckoutRequest {
	return CheckoutRequest{
		Customer:      "Maria Santos",
		Address:       "123 Session Road, Baguio City",
		PaymentMethod: "cod",
		Items:         []CheckoutItemRequest{{FlavorID: flavorID, Quantity: quantity}},
	}
}

func TestCheckout_DecrementsStockAndSnapshotsPrice(t *testing.T) {
	svc, catalog, _, _ := newOrderServiceForTest()
	flavor := catalog.addFlavor(models.Flavor{
		Name:         "BLACK CURRANT",
		Code:         "BLACK WAVE",
		Stock:        5,
		SellingPrice: decimal.RequireFromString("100"),
		IsActive:     true,
		BrandID:      1,
	})

	order, err := svc.Checkout(validCheckout(flavor.ID, 3))
	require.NoError(t, err)

	assert.Equal(t, models.StatusPreparing, order.Status)
	assert.Equal(t, "300.00", order.Total.StringFixed(2))
	require.Len(t, order.Items, 1)
	assert.Equal(t, "100.00", order.Items[0].UnitPrice.StringFixed(2))

	left, err := svc.flavorRepo.GetByID(flavor.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, left.Stock)
}

func TestCheckout_RejectsWhenStockCannotCover(t *testing.T) {
	svc, catalog, _, _ := newOrderServiceForTest()
	flavor := catalog.addFlavor(models.Flavor{
		Name:         "MIXED BERRIES",
		Stock:        5,
		SellingPrice: decimal.RequireFromString("100"),
		IsActive:     true,
	})

	_, err := svc.Checkout(validCheckout(flavor.ID, 3))
	require.NoError(t, err)

	_, err = svc.Checkout(validCheckout(flavor.ID, 3))
	var stockErr *models.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, flavor.ID, stockErr.FlavorID)
	assert.Equal(t, 3, stockErr.Requested)
	assert.Equal(t, 2, stockErr.Available)

	// The rejected checkout must not have touched stock.
	left, err := svc.flavorRepo.GetByID(flavor.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, left.Stock)
}

func TestCheckout_ValidationRunsBeforeStockReads(t *testing.T) {
	svc, catalog, flavorRepo, _ := newOrderServiceForTest()
	flavor := catalog.addFlavor(models.Flavor{
		Name: "STRAWBERRY", Stock: 9, SellingPrice: decimal.RequireFromString("90"), IsActive: true,
	})

	req := validCheckout(flavor.ID, 1)
	req.Customer = "Jo"

	_, err := svc.Checkout(req)
	var validationErr *models.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Fields, "customer")
	assert.Zero(t, flavorRepo.getCalls, "invalid request must not read the catalog")
}

func TestCheckout_CollectsAllFieldErrors(t *testing.T) {
	svc, _, _, _ := newOrderServiceForTest()

	_, err := svc.Checkout(CheckoutRequest{
		Customer:      "Jo",
		Address:       "short",
		PaymentMethod: "bitcoin",
		Items:         []CheckoutItemRequest{{FlavorID: 1, Quantity: 0}},
	})

	var validationErr *models.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Fields, "customer")
	assert.Contains(t, validationErr.Fields, "address")
	assert.Contains(t, validationErr.Fields, "payment_method")
	assert.Contains(t, validationErr.Fields, "items[0].quantity")
}

func TestCheckout_UnknownFlavorRejectsWholeOrder(t *testing.T) {
	svc, catalog, _, orderRepo := newOrderServiceForTest()
	flavor := catalog.addFlavor(models.Flavor{
		Name: "BLACK CURRANT", Stock: 5, SellingPrice: decimal.RequireFromString("100"), IsActive: true,
	})

	req := validCheckout(flavor.ID, 1)
	req.Items = append(req.Items, CheckoutItemRequest{FlavorID: 9999, Quantity: 1})

	_, err := svc.Checkout(req)
	var skuErr *models.UnknownSKUError
	require.ErrorAs(t, err, &skuErr)
	assert.Equal(t, int64(9999), skuErr.FlavorID)

	orders, err := orderRepo.GetAll()
	require.NoError(t, err)
	assert.Empty(t, orders)

	left, err := svc.flavorRepo.GetByID(flavor.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, left.Stock)
}

func TestCheckout_InactiveFlavorRejected(t *testing.T) {
	svc, catalog, _, _ := newOrderServiceForTest()
	flavor := catalog.addFlavor(models.Flavor{
		Name: "RETIRED", Stock: 5, SellingPrice: decimal.RequireFromString("100"), IsActive: false,
	})

	_, err := svc.Checkout(validCheckout(flavor.ID, 1))
	var skuErr *models.UnknownSKUError
	require.ErrorAs(t, err, &skuErr)
}

func TestCheckout_MergesDuplicateCartLines(t *testing.T) {
	svc, catalog, _, _ := newOrderServiceForTest()
	flavor := catalog.addFlavor(models.Flavor{
		Name: "MIXED BERRIES", Stock: 3, SellingPrice: decimal.RequireFromString("120"), IsActive: true,
	})

	// Two lines of 2 for the same flavor add up to 4 against stock 3; the
	// split must not sneak past the check.
	req := validCheckout(flavor.ID, 2)
	req.Items = append(req.Items, CheckoutItemRequest{FlavorID: flavor.ID, Quantity: 2})

	_, err := svc.Checkout(req)
	var stockErr *models.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 4, stockErr.Requested)
	assert.Equal(t, 3, stockErr.Available)
}

func TestCheckout_PersistenceFailureLeavesStockUnchanged(t *testing.T) {
	svc, catalog, _, orderRepo := newOrderServiceForTest()
	first := catalog.addFlavor(models.Flavor{
		Name: "BLACK CURRANT", Stock: 5, SellingPrice: decimal.RequireFromString("100"), IsActive: true,
	})
	second := catalog.addFlavor(models.Flavor{
		Name: "MIXED BERRIES", Stock: 4, SellingPrice: decimal.RequireFromString("120"), IsActive: true,
	})
	orderRepo.insertErr = assert.AnError

	req := validCheckout(first.ID, 2)
	req.Items = append(req.Items, CheckoutItemRequest{FlavorID: second.ID, Quantity: 1})

	_, err := svc.Checkout(req)
	require.ErrorIs(t, err, assert.AnError)

	// The failed attempt must have rolled every decrement back.
	left, err := svc.flavorRepo.GetByID(first.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, left.Stock)
	left, err = svc.flavorRepo.GetByID(second.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, left.Stock)

	orders, err := orderRepo.GetAll()
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestCheckout_LinesReachRepositoryInFlavorOrder(t *testing.T) {
	svc, catalog, _, orderRepo := newOrderServiceForTest()
	var ids []int64
	for _, name := range []string{"A", "B", "C"} {
		f := catalog.addFlavor(models.Flavor{
			Name: name, Stock: 5, SellingPrice: decimal.RequireFromString("100"), IsActive: true,
		})
		ids = append(ids, f.ID)
	}

	// Cart order reversed; the decrements must still run in ascending
	// flavor order so concurrent checkouts lock rows consistently.
	req := validCheckout(ids[2], 1)
	req.Items = append(req.Items,
		CheckoutItemRequest{FlavorID: ids[0], Quantity: 1},
		CheckoutItemRequest{FlavorID: ids[1], Quantity: 1},
	)

	order, err := svc.Checkout(req)
	require.NoError(t, err)

	stored, err := orderRepo.GetByID(order.ID)
	require.NoError(t, err)
	require.Len(t, stored.Items, 3)
	for i := 1; i < len(stored.Items); i++ {
		assert.Less(t, stored.Items[i-1].FlavorID, stored.Items[i].FlavorID)
	}
}

func TestCheckout_ValidationCountsRunesNotBytes(t *testing.T) {
	svc, catalog, _, _ := newOrderServiceForTest()
	flavor := catalog.addFlavor(models.Flavor{
		Name: "BLACK CURRANT", Stock: 5, SellingPrice: decimal.RequireFromString("100"), IsActive: true,
	})

	// Two runes, six bytes: still too short.
	req := validCheckout(flavor.ID, 1)
	req.Customer = "日本"

	_, err := svc.Checkout(req)
	var validationErr *models.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Fields, "customer")

	req.Customer = "日本語"
	_, err = svc.Checkout(req)
	require.NoError(t, err)
}

func TestCheckout_ConcurrentOrdersNeverOversell(t *testing.T) {
	svc, catalog, _, orderRepo := newOrderServiceForTest()
	flavor := catalog.addFlavor(models.Flavor{
		Name: "STRAWBERRY", Stock: 10, SellingPrice: decimal.RequireFromString("100"), IsActive: true,
	})

	const attempts = 25
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Checkout(validCheckout(flavor.ID, 1))
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			var stockErr *models.InsufficientStockError
			require.ErrorAs(t, err, &stockErr)
		}
	}
	assert.Equal(t, 10, succeeded)

	left, err := svc.flavorRepo.GetByID(flavor.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, left.Stock)

	orders, err := orderRepo.GetAll()
	require.NoError(t, err)
	assert.Len(t, orders, 10)
}

func TestUpdateStatus_AdjacentMovesOnly(t *testing.T) {
	svc, catalog, _, orderRepo := newOrderServiceForTest()
	flavor := catalog.addFlavor(models.Flavor{
		Name: "BLACK CURRANT", Stock: 5, SellingPrice: decimal.RequireFromString("100"), IsActive: true,
	})
	order, err := svc.Checkout(validCheckout(flavor.ID, 1))
	require.NoError(t, err)

	// Skipping a state is rejected.
	err = svc.UpdateStatus(order.ID, models.StatusDelivered)
	var transitionErr *models.InvalidTransitionError
	require.ErrorAs(t, err, &transitionErr)
	assert.Equal(t, models.StatusPreparing, transitionErr.From)

	require.NoError(t, svc.UpdateStatus(order.ID, models.StatusShipped))

	// Backward by one is a permitted correction.
	require.NoError(t, svc.UpdateStatus(order.ID, models.StatusPreparing))
	require.NoError(t, svc.UpdateStatus(order.ID, models.StatusShipped))
	require.NoError(t, svc.UpdateStatus(order.ID, models.StatusDelivered))

	// Re-asserting the current status is a no-op, not an error.
	require.NoError(t, svc.UpdateStatus(order.ID, models.StatusDelivered))

	stored, err := orderRepo.GetByID(order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDelivered, stored.Status)
}

func TestUpdateStatus_UnknownOrder(t *testing.T) {
	svc, _, _, _ := newOrderServiceForTest()
	err := svc.UpdateStatus(42, models.StatusShipped)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestDeleteOrder_RestoresStock(t *testing.T) {
	svc, catalog, _, _ := newOrderServiceForTest()
	flavor := catalog.addFlavor(models.Flavor{
		Name: "MIXED BERRIES", Stock: 5, SellingPrice: decimal.RequireFromString("100"), IsActive: true,
	})

	order, err := svc.Checkout(validCheckout(flavor.ID, 3))
	require.NoError(t, err)

	left, err := svc.flavorRepo.GetByID(flavor.ID)
	require.NoError(t, err)
	require.Equal(t, 2, left.Stock)

	require.NoError(t, svc.DeleteOrder(order.ID))

	restored, err := svc.flavorRepo.GetByID(flavor.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, restored.Stock)

	_, err = svc.GetOrderByID(order.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestDeleteOrder_Unknown(t *testing.T) {
	svc, _, _, _ := newOrderServiceForTest()
	assert.ErrorIs(t, svc.DeleteOrder(7), models.ErrNotFound)
}

func TestOrderTotal_MatchesItemSum(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 8).Draw(t, "lines")
		lines := make([]pricedLine, n)
		expected := decimal.Zero
		for i := range lines {
			cents := rapid.Int64Range(0, 5_000_00).Draw(t, "price_cents")
			qty := rapid.IntRange(1, 50).Draw(t, "quantity")
			price := decimal.New(cents, -2)
			lines[i] = pricedLine{flavorID: int64(i + 1), quantity: qty, unitPrice: price}
			expected = expected.Add(price.Mul(decimal.NewFromInt(int64(qty))))
		}

		total := orderTotal(lines)
		if !total.Equal(expected.Round(2)) {
			t.Fatalf("total %s != expected %s", total, expected.Round(2))
		}
		if total.Exponent() < -2 {
			t.Fatalf("total %s has sub-centavo precision", total)
		}
	})
}
