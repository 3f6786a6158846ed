// Package checkout turns the current cart into a persisted order: validate
// the form, charge through the payment boundary, write the order rows, then
// clear the cart.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Skotchmaster/storefront/internal/cart"
	"github.com/Skotchmaster/storefront/internal/money"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrMissingField = errors.New("missing required field")
	ErrEmptyCart    = errors.New("cart is empty")
)

// Form mirrors the checkout form: shipping details plus card fields. All
// fields are required.
type Form struct {
	FullName   string `json:"full_name"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	CardNumber string `json:"card_number"`
	Expiry     string `json:"expiry"`
	CVV        string `json:"cvv"`
}

func (f Form) validate() error {
	fields := map[string]string{
		"full_name":   f.FullName,
		"address":     f.Address,
		"city":        f.City,
		"postal_code": f.PostalCode,
		"card_number": f.CardNumber,
		"expiry":      f.Expiry,
		"cvv":         f.CVV,
	}
	for name, v := range fields {
		if strings.TrimSpace(v) == "" {
			return fmt.Errorf("%s: %w", name, ErrMissingField)
		}
	}
	return nil
}

// Charger is the payment boundary. The stub stands in for a real processor.
type Charger interface {
	Charge(ctx context.Context, amount money.Cents, form Form) error
}

type StubCharger struct{}

func (StubCharger) Charge(ctx context.Context, _ money.Cents, _ Form) error {
	return ctx.Err()
}

type Order struct {
	ID         string      `gorm:"primaryKey"     json:"id"`
	UserID     string      `gorm:"index"          json:"user_id"`
	FullName   string      `gorm:"not null"       json:"full_name"`
	Address    string      `gorm:"not null"       json:"address"`
	City       string      `gorm:"not null"       json:"city"`
	PostalCode string      `gorm:"not null"       json:"postal_code"`
	Total      money.Cents `gorm:"not null"       json:"total"`
	Status     string      `gorm:"not null"       json:"status"`
	CreatedAt  int64       `gorm:"not null"       json:"created_at"`
}

func (Order) TableName() string {
	return "orders"
}

type OrderItem struct {
	ID        uint        `gorm:"primaryKey"                  json:"id"`
	OrderID   string      `gorm:"index;not null"              json:"order_id"`
	ProductID int         `gorm:"not null"                    json:"product_id"`
	Name      string      `gorm:"not null"                    json:"name"`
	UnitPrice money.Cents `gorm:"not null"                    json:"unit_price"`
	Quantity  int         `gorm:"default:1;check:quantity>0"  json:"quantity"`
}

func (OrderItem) TableName() string {
	return "order_items"
}

type Service struct {
	db      *gorm.DB
	cart    *cart.Store
	charger Charger
	log     *slog.Logger
}

func NewService(db *gorm.DB, cartStore *cart.Store, charger Charger, log *slog.Logger) (*Service, error) {
	if err := db.AutoMigrate(&Order{}, &OrderItem{}); err != nil {
		return nil, fmt.Errorf("migrate order tables: %w", err)
	}
	return &Service{db: db, cart: cartStore, charger: charger, log: log}, nil
}

// PlaceOrder runs the whole flow against the current cart snapshot. A
// validation or charge failure leaves the cart untouched. userID may be empty
// for guest checkout.
func (s *Service) PlaceOrder(ctx context.Context, form Form, userID string) (*Order, error) {
	if err := form.validate(); err != nil {
		return nil, err
	}

	snap := s.cart.Snapshot()
	if len(snap.Items) == 0 {
		return nil, ErrEmptyCart
	}

	if err := s.charger.Charge(ctx, snap.TotalPrice, form); err != nil {
		return nil, fmt.Errorf("charge: %w", err)
	}

	order := &Order{
		ID:         uuid.NewString(),
		UserID:     userID,
		FullName:   form.FullName,
		Address:    form.Address,
		City:       form.City,
		PostalCode: form.PostalCode,
		Total:      snap.TotalPrice,
		Status:     "placed",
		CreatedAt:  time.Now().Unix(),
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(order).Error; err != nil {
			return err
		}
		for _, it := range snap.Items {
			item := OrderItem{
				OrderID:   order.ID,
				ProductID: it.ProductID,
				Name:      it.Name,
				UnitPrice: it.UnitPrice,
				Quantity:  it.Quantity,
			}
			if err := tx.Create(&item).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("save order: %w", err)
	}

	// The order is already durable; a failed cart clear only costs the user
	// an extra clear on next load.
	if _, err := s.cart.Clear(ctx); err != nil {
		s.log.Warn("clear_cart_after_checkout_failed", "order_id", order.ID, "error", err)
	}

	s.log.Info("order_placed", "order_id", order.ID, "total", order.Total.String(), "items", len(snap.Items))
	return order, nil
}

// Orders lists a user's orders, newest first.
func (s *Service) Orders(ctx context.Context, userID string) ([]Order, error) {
	var orders []Order
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

// Items returns the line rows of one order.
func (s *Service) Items(ctx context.Context, orderID string) ([]OrderItem, error) {
	var items []OrderItem
	err := s.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	return items, nil
}
