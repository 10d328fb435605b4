package cart

import (
	"errors"

	"github.com/cisnerospos/posgw/internal/domain"
)

var (
	ErrOutOfStock        = errors.New("product is out of stock")
	ErrInsufficientStock = errors.New("not enough stock available")
	ErrInvalidQuantity   = errors.New("quantity must be at least 1")
	ErrUnknownProduct    = errors.New("product is not in the cart")
	ErrEmptyCart         = errors.New("cart is empty")
)

// Line is one product selection in an in-progress sale. Name and price are
// captured at add time so the cart can be displayed without re-querying the
// catalog.
type Line struct {
	ProductID string
	Name      string
	Price     domain.Cents
	Quantity  int
}

// Subtotal returns price times quantity for this line
func (l Line) Subtotal() domain.Cents {
	return l.Price.Mul(l.Quantity)
}

// SaleRequestItem references a product and quantity for checkout
type SaleRequestItem struct {
	ProductID string
	Quantity  int
}

// SaleRequest is the checkout payload derived from a non-empty cart
type SaleRequest struct {
	Items []SaleRequestItem
	Total domain.Cents
}

// Cart holds the line items for one in-progress sale, at most one line per
// product, in insertion order. Stock checks run against the last catalog
// snapshot supplied to it; the cart performs no I/O of its own. A cart is
// owned by a single session and is not safe for concurrent use.
type Cart struct {
	lines   []*Line
	index   map[string]*Line
	ceiling map[string]int // productID -> available stock per latest snapshot
}

// New creates an empty cart
func New() *Cart {
	return &Cart{
		index:   make(map[string]*Line),
		ceiling: make(map[string]int),
	}
}

// SetCatalog replaces the stock ceilings with a fresh catalog snapshot.
// Existing lines are not clamped; the ceilings apply to future mutations.
func (c *Cart) SetCatalog(products []domain.Product) {
	c.ceiling = make(map[string]int, len(products))
	for _, p := range products {
		c.ceiling[p.ID] = p.Stock
	}
}

// AddProduct inserts a new line with quantity 1, or increments an existing
// line by 1. The given product's stock is remembered as the ceiling for
// later quantity changes. The cart is left unchanged on failure.
func (c *Cart) AddProduct(p domain.Product) error {
	c.ceiling[p.ID] = p.Stock

	line, ok := c.index[p.ID]
	if !ok {
		if p.Stock <= 0 {
			return ErrOutOfStock
		}
		line = &Line{
			ProductID: p.ID,
			Name:      p.Name,
			Price:     p.Price,
			Quantity:  1,
		}
		c.lines = append(c.lines, line)
		c.index[p.ID] = line
		return nil
	}

	if line.Quantity+1 > p.Stock {
		return ErrInsufficientStock
	}
	line.Quantity++
	return nil
}

// SetQuantity replaces a line's quantity. The new quantity must be at least
// 1 and no greater than the stock recorded for the product in the latest
// catalog snapshot. The cart is left unchanged on failure.
func (c *Cart) SetQuantity(productID string, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}

	line, ok := c.index[productID]
	if !ok {
		return ErrUnknownProduct
	}

	if quantity > c.ceiling[productID] {
		return ErrInsufficientStock
	}

	line.Quantity = quantity
	return nil
}

// RemoveProduct removes the line for a product. Removing an absent product
// is a no-op.
func (c *Cart) RemoveProduct(productID string) {
	if _, ok := c.index[productID]; !ok {
		return
	}
	delete(c.index, productID)
	for i, line := range c.lines {
		if line.ProductID == productID {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			break
		}
	}
}

// Total returns the exact sum of price times quantity over all lines
func (c *Cart) Total() domain.Cents {
	var total domain.Cents
	for _, line := range c.lines {
		total += line.Subtotal()
	}
	return total
}

// ToSaleRequest derives the checkout payload from the current cart
func (c *Cart) ToSaleRequest() (*SaleRequest, error) {
	if len(c.lines) == 0 {
		return nil, ErrEmptyCart
	}

	items := make([]SaleRequestItem, 0, len(c.lines))
	for _, line := range c.lines {
		items = append(items, SaleRequestItem{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
		})
	}

	return &SaleRequest{
		Items: items,
		Total: c.Total(),
	}, nil
}

// Clear empties the cart unconditionally
func (c *Cart) Clear() {
	c.lines = nil
	c.index = make(map[string]*Line)
}

// Len returns the number of lines
func (c *Cart) Len() int {
	return len(c.lines)
}

// Lines returns a copy of the lines in insertion order
func (c *Cart) Lines() []Line {
	out := make([]Line, 0, len(c.lines))
	for _, line := range c.lines {
		out = append(out, *line)
	}
	return out
}
