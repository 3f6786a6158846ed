package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/Skotchmaster/storefront/internal/cart"
	"github.com/Skotchmaster/storefront/internal/catalog"
	"github.com/Skotchmaster/storefront/internal/checkout"
	"github.com/Skotchmaster/storefront/internal/session"
)

func timeNow() time.Time {
	return time.Now().UTC()
}

func lineItem(p catalog.Product) cart.LineItem {
	return cart.LineItem{
		ProductID: p.ID,
		Name:      p.Name,
		UnitPrice: p.Price,
		Image:     p.Image,
		Category:  p.Category,
	}
}

func runDemo(ctx context.Context, logger *slog.Logger, products *catalog.Catalog, cartStore *cart.Store, sessionStore *session.Store, orders *checkout.Service) {
	l := logger.With("svc", "demo")

	l.Info("catalog_loaded", "products", len(products.All()), "categories", products.Categories())

	headphones, _ := products.ByID(1)
	speaker, _ := products.ByID(7)

	if _, err := cartStore.AddItem(ctx, lineItem(headphones), 2); err != nil {
		l.Error("add_item_failed", "error", err)
	}
	if _, err := cartStore.AddItem(ctx, lineItem(speaker), 1); err != nil {
		l.Error("add_item_failed", "error", err)
	}
	snap, err := cartStore.UpdateQuantity(ctx, headphones.ID, 1)
	if err != nil {
		l.Error("update_quantity_failed", "error", err)
	}
	l.Info("cart_ready", "total_items", snap.TotalItems, "total_price", snap.TotalPrice.String())

	sess, err := sessionStore.Login(ctx, "user@example.com", "password")
	if err != nil {
		l.Error("login_failed", "error", err)
		return
	}
	if !sess.Authenticated {
		l.Warn("login_rejected", "reason", sess.LastError)
		return
	}
	l.Info("logged_in", "email", sess.User.Email)

	order, err := orders.PlaceOrder(ctx, checkout.Form{
		FullName:   sess.User.Name,
		Address:    "1 Main Street",
		City:       "Springfield",
		PostalCode: "12345",
		CardNumber: "4242424242424242",
		Expiry:     "12/30",
		CVV:        "123",
	}, sess.User.ID)
	if err != nil {
		l.Error("checkout_failed", "error", err)
		return
	}

	l.Info("demo_finished",
		"order_id", order.ID,
		"order_total", order.Total.String(),
		"cart_items", cartStore.Snapshot().TotalItems,
	)
}
