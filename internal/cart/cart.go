// Package cart owns the shopping cart line items and their derived totals.
// State changes go through a closed command set applied by a pure transition
// function; the Store wraps it with locking, write-through persistence and
// observer notification.
package cart

import "github.com/Skotchmaster/storefront/internal/money"

// LineItem is one product entry in the cart. Items are unique per ProductID;
// adding the same product again merges into the existing line.
type LineItem struct {
	ProductID int         `json:"product_id"`
	Name      string      `json:"name"`
	UnitPrice money.Cents `json:"unit_price"`
	Quantity  int         `json:"quantity"`
	Image     string      `json:"image,omitempty"`
	Category  string      `json:"category,omitempty"`
}

// State is the cart snapshot. TotalItems and TotalPrice are always recomputed
// from Items, never trusted from a previous state or from persisted data.
type State struct {
	Items      []LineItem  `json:"items"`
	TotalItems int         `json:"total_items"`
	TotalPrice money.Cents `json:"total_price"`
}

type command interface {
	isCommand()
}

type addItem struct {
	Item LineItem
}

type removeItem struct {
	ProductID int
}

type updateQuantity struct {
	ProductID int
	Quantity  int
}

type clearCart struct{}

func (addItem) isCommand()        {}
func (removeItem) isCommand()     {}
func (updateQuantity) isCommand() {}
func (clearCart) isCommand()      {}

// apply is the pure transition function. It never mutates its input and
// always returns a state whose totals match its items.
func apply(s State, cmd command) State {
	switch c := cmd.(type) {
	case addItem:
		items := cloneItems(s.Items)
		merged := false
		for i := range items {
			if items[i].ProductID == c.Item.ProductID {
				items[i].Quantity += c.Item.Quantity
				merged = true
				break
			}
		}
		if !merged {
			items = append(items, c.Item)
		}
		return finalize(items)

	case removeItem:
		items := make([]LineItem, 0, len(s.Items))
		for _, it := range s.Items {
			if it.ProductID != c.ProductID {
				items = append(items, it)
			}
		}
		return finalize(items)

	case updateQuantity:
		if c.Quantity <= 0 {
			return apply(s, removeItem{ProductID: c.ProductID})
		}
		items := cloneItems(s.Items)
		for i := range items {
			if items[i].ProductID == c.ProductID {
				items[i].Quantity = c.Quantity
				break
			}
		}
		return finalize(items)

	case clearCart:
		return State{Items: []LineItem{}}
	}

	return s
}

// finalize recomputes both totals from scratch.
func finalize(items []LineItem) State {
	total := 0
	var price money.Cents
	for _, it := range items {
		total += it.Quantity
		price += it.UnitPrice.Mul(it.Quantity)
	}
	return State{Items: items, TotalItems: total, TotalPrice: price}
}

func cloneItems(items []LineItem) []LineItem {
	out := make([]LineItem, len(items))
	copy(out, items)
	return out
}
