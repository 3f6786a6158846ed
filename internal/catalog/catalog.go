// Package catalog serves the static product list the storefront sells from.
// There is no backing service; the list ships with the binary.
package catalog

import (
	"strings"

	"github.com/Skotchmaster/storefront/internal/money"
)

type Product struct {
	ID          int         `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Price       money.Cents `json:"price"`
	Category    string      `json:"category"`
	Image       string      `json:"image"`
	Stock       int         `json:"stock"`
}

type Catalog struct {
	products []Product
}

func New(products []Product) *Catalog {
	return &Catalog{products: products}
}

// Default returns the built-in demo catalog.
func Default() *Catalog {
	return New([]Product{
		{ID: 1, Name: "Wireless Headphones", Description: "Over-ear headphones with active noise cancelling", Price: 9999, Category: "Tech", Image: "/images/headphones.jpg", Stock: 25},
		{ID: 2, Name: "Smart Watch", Description: "Fitness tracking watch with heart rate monitor", Price: 14999, Category: "Tech", Image: "/images/watch.jpg", Stock: 18},
		{ID: 3, Name: "Leather Backpack", Description: "Handcrafted full-grain leather backpack", Price: 8950, Category: "Fashion", Image: "/images/backpack.jpg", Stock: 12},
		{ID: 4, Name: "Running Shoes", Description: "Lightweight trainers for daily runs", Price: 7499, Category: "Fashion", Image: "/images/shoes.jpg", Stock: 30},
		{ID: 5, Name: "Ceramic Mug Set", Description: "Set of four stoneware mugs", Price: 2999, Category: "Home", Image: "/images/mugs.jpg", Stock: 40},
		{ID: 6, Name: "Desk Lamp", Description: "Adjustable LED desk lamp with USB charging port", Price: 4599, Category: "Home", Image: "/images/lamp.jpg", Stock: 22},
		{ID: 7, Name: "Bluetooth Speaker", Description: "Portable waterproof speaker with 12h battery", Price: 5999, Category: "Tech", Image: "/images/speaker.jpg", Stock: 15},
		{ID: 8, Name: "Wool Scarf", Description: "Merino wool scarf, machine washable", Price: 3499, Category: "Fashion", Image: "/images/scarf.jpg", Stock: 35},
	})
}

func (c *Catalog) All() []Product {
	out := make([]Product, len(c.products))
	copy(out, c.products)
	return out
}

func (c *Catalog) ByID(id int) (Product, bool) {
	for _, p := range c.products {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}

// Categories returns the distinct categories in catalog order.
func (c *Catalog) Categories() []string {
	seen := make(map[string]bool)
	var out []string
	for _, p := range c.products {
		if !seen[p.Category] {
			seen[p.Category] = true
			out = append(out, p.Category)
		}
	}
	return out
}

// Filter narrows by category (empty or "All" matches everything) and by a
// case-insensitive substring of the name or description.
func (c *Catalog) Filter(category, query string) []Product {
	query = strings.ToLower(query)
	var out []Product
	for _, p := range c.products {
		if category != "" && category != "All" && p.Category != category {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(p.Name), query) &&
			!strings.Contains(strings.ToLower(p.Description), query) {
			continue
		}
		out = append(out, p)
	}
	return out
}
