package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cisnerospos/posgw/internal/domain"
)

func testProduct(id string, price domain.Cents, stock int) domain.Product {
	return domain.Product{ID: id, Name: "product " + id, Price: price, Stock: stock}
}

func TestAddProduct_NewLine(t *testing.T) {
	c := New()

	err := c.AddProduct(testProduct("p1", 2000, 3))

	require.NoError(t, err)
	require.Equal(t, 1, c.Len())
	line := c.Lines()[0]
	assert.Equal(t, "p1", line.ProductID)
	assert.Equal(t, "product p1", line.Name)
	assert.Equal(t, domain.Cents(2000), line.Price)
	assert.Equal(t, 1, line.Quantity)
}

func TestAddProduct_OutOfStock(t *testing.T) {
	c := New()

	err := c.AddProduct(testProduct("p1", 2000, 0))

	assert.ErrorIs(t, err, ErrOutOfStock)
	assert.Equal(t, 0, c.Len())
}

func TestAddProduct_RepeatedCallsIncrementUntilCeiling(t *testing.T) {
	// Product A: price 20, stock 3. Three adds succeed, the fourth fails
	// and the quantity stays at 3.
	c := New()
	a := testProduct("p1", 2000, 3)

	for i := 1; i <= 3; i++ {
		require.NoError(t, c.AddProduct(a))
		assert.Equal(t, i, c.Lines()[0].Quantity)
	}
	assert.Equal(t, domain.Cents(6000), c.Total())

	err := c.AddProduct(a)
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Equal(t, 3, c.Lines()[0].Quantity)
	assert.Equal(t, domain.Cents(6000), c.Total())
}

func TestAddProduct_PreservesInsertionOrder(t *testing.T) {
	c := New()
	require.NoError(t, c.AddProduct(testProduct("p2", 3500, 5)))
	require.NoError(t, c.AddProduct(testProduct("p1", 2000, 5)))
	require.NoError(t, c.AddProduct(testProduct("p2", 3500, 5)))

	lines := c.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, "p2", lines[0].ProductID)
	assert.Equal(t, 2, lines[0].Quantity)
	assert.Equal(t, "p1", lines[1].ProductID)
}

func TestSetQuantity(t *testing.T) {
	tests := []struct {
		name      string
		productID string
		quantity  int
		wantErr   error
		wantQty   int
	}{
		{"valid update", "p1", 4, nil, 4},
		{"to ceiling exactly", "p1", 5, nil, 5},
		{"zero quantity", "p1", 0, ErrInvalidQuantity, 1},
		{"negative quantity", "p1", -2, ErrInvalidQuantity, 1},
		{"above ceiling", "p1", 6, ErrInsufficientStock, 1},
		{"unknown product", "p9", 2, ErrUnknownProduct, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New()
			require.NoError(t, c.AddProduct(testProduct("p1", 2000, 5)))

			err := c.SetQuantity(tt.productID, tt.quantity)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantQty, c.Lines()[0].Quantity)
		})
	}
}

func TestSetQuantity_UsesLatestSnapshot(t *testing.T) {
	c := New()
	require.NoError(t, c.AddProduct(testProduct("p1", 2000, 5)))

	// A fresh snapshot lowers the available stock to 2.
	c.SetCatalog([]domain.Product{testProduct("p1", 2000, 2)})

	assert.ErrorIs(t, c.SetQuantity("p1", 3), ErrInsufficientStock)
	assert.NoError(t, c.SetQuantity("p1", 2))
}

func TestRemoveProduct(t *testing.T) {
	c := New()
	require.NoError(t, c.AddProduct(testProduct("p1", 2000, 5)))
	require.NoError(t, c.AddProduct(testProduct("p2", 3500, 5)))

	c.RemoveProduct("p1")

	require.Equal(t, 1, c.Len())
	assert.Equal(t, "p2", c.Lines()[0].ProductID)

	// Removing an absent product is not an error.
	c.RemoveProduct("p1")
	c.RemoveProduct("never-added")
	assert.Equal(t, 1, c.Len())
}

func TestRemoveLastLine_CartBecomesEmpty(t *testing.T) {
	c := New()
	require.NoError(t, c.AddProduct(testProduct("p1", 2000, 5)))

	c.RemoveProduct("p1")

	assert.Equal(t, 0, c.Len())
	assert.Equal(t, domain.Cents(0), c.Total())
	_, err := c.ToSaleRequest()
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestTotal(t *testing.T) {
	c := New()
	assert.Equal(t, domain.Cents(0), c.Total())

	// p1 x2 at 20.00 plus p2 x1 at 35.00 is 75.00.
	require.NoError(t, c.AddProduct(testProduct("p1", 2000, 5)))
	require.NoError(t, c.AddProduct(testProduct("p1", 2000, 5)))
	require.NoError(t, c.AddProduct(testProduct("p2", 3500, 5)))

	assert.Equal(t, domain.Cents(7500), c.Total())
}

func TestTotal_AddRemoveRoundTrip(t *testing.T) {
	c := New()
	require.NoError(t, c.AddProduct(testProduct("p1", 1999, 5)))
	before := c.Total()

	require.NoError(t, c.AddProduct(testProduct("p2", 333, 5)))
	c.RemoveProduct("p2")

	assert.Equal(t, before, c.Total())
}

func TestTotal_ManyLinesExact(t *testing.T) {
	// Amounts that accumulate rounding error in floating point stay exact
	// in cents.
	c := New()
	products := make([]domain.Product, 0, 100)
	for i := 0; i < 100; i++ {
		p := testProduct(string(rune('a'+i%26))+string(rune('0'+i/26)), 10, 1)
		products = append(products, p)
		require.NoError(t, c.AddProduct(p))
	}
	c.SetCatalog(products)

	assert.Equal(t, domain.Cents(1000), c.Total())
}

func TestToSaleRequest(t *testing.T) {
	c := New()
	require.NoError(t, c.AddProduct(testProduct("p1", 2000, 5)))
	require.NoError(t, c.AddProduct(testProduct("p1", 2000, 5)))
	require.NoError(t, c.AddProduct(testProduct("p2", 3500, 5)))

	req, err := c.ToSaleRequest()

	require.NoError(t, err)
	assert.Equal(t, []SaleRequestItem{
		{ProductID: "p1", Quantity: 2},
		{ProductID: "p2", Quantity: 1},
	}, req.Items)
	assert.Equal(t, domain.Cents(7500), req.Total)
}

func TestToSaleRequest_EmptyCart(t *testing.T) {
	c := New()

	req, err := c.ToSaleRequest()

	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Nil(t, req)
}

func TestClear(t *testing.T) {
	c := New()
	require.NoError(t, c.AddProduct(testProduct("p1", 2000, 5)))
	require.NoError(t, c.AddProduct(testProduct("p2", 3500, 5)))

	c.Clear()

	assert.Equal(t, 0, c.Len())
	assert.Equal(t, domain.Cents(0), c.Total())

	// The cart is usable again after clearing.
	require.NoError(t, c.AddProduct(testProduct("p1", 2000, 5)))
	assert.Equal(t, 1, c.Len())
}
