package models

import "github.com/prodtrack/prodtrack/internal/product"

// CatalogProduct is the wire representation of a catalog entry.
type CatalogProduct struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Category  string `json:"category"`
	Unit      string `json:"unit"`
}

// NewCatalogProduct converts a domain product to its wire form.
func NewCatalogProduct(p *product.Product) CatalogProduct {
	return CatalogProduct{
		ProductID: p.ProductID,
		Name:      p.Name,
		Category:  p.Category,
		Unit:      p.Unit,
	}
}

// NewCatalogProducts converts a slice of domain products.
func NewCatalogProducts(products []*product.Product) []CatalogProduct {
	out := make([]CatalogProduct, 0, len(products))
	for _, p := range products {
		out = append(out, NewCatalogProduct(p))
	}
	return out
}

// CatalogResponse is the full catalog grouped by category code.
type CatalogResponse struct {
	Success    bool                        `json:"success"`
	Categories map[string]string           `json:"categories"`
	Products   map[string][]CatalogProduct `json:"products"`
}

// AddProductRequest is the request body for adding a catalog product.
type AddProductRequest struct {
	Category string `json:"category"`
	Name     string `json:"name"`
}
