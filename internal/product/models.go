// Package product provides the product catalog consumed by terminal order
// entry.
package product

import (
	"errors"
	"time"
)

// Store errors.
var (
	ErrProductNotFound  = errors.New("product not found")
	ErrUnknownCategory  = errors.New("unknown product category")
	ErrProductExists    = errors.New("product already exists")
	ErrStoreUnavailable = errors.New("product store unavailable")
)

// Categories in catalog display order.
var Categories = []string{"pt", "ph", "tb", "st", "gn"}

// CategoryNames maps category codes to display labels.
var CategoryNames = map[string]string{
	"pt": "Papel Toalha",
	"ph": "Papel Higiênico",
	"tb": "Toalha Bobina",
	"st": "Sacos e Talheres",
	"gn": "Guardanapos",
}

// ValidCategory reports whether c is a known category code.
func ValidCategory(c string) bool {
	_, ok := CategoryNames[c]
	return ok
}

// Product is one catalog entry.
type Product struct {
	ID        int64
	ProductID string
	Name      string
	Category  string
	Unit      string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
