package models

import "github.com/shopspring/decimal"

// Category groups brands on the storefront. Slug is unique and used in
// storefront URLs.
type Category struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
	Slug string `json:"slug" db:"slug"`
}

// Brand belongs to exactly one category. Poster is the public URL of the
// uploaded poster image, empty when none has been uploaded yet.
type Brand struct {
	ID         int64     `json:"id" db:"id"`
	Name       string    `json:"name" db:"name"`
	Poster     string    `json:"poster,omitempty" db:"poster"`
	CategoryID int64     `json:"category_id" db:"category_id"`
	Category   *Category `json:"category,omitempty"`
}

// Flavor is the sellable SKU. Stock never goes below zero; the order
// pipeline is the only writer that decrements it.
type Flavor struct {
	ID           int64           `json:"id" db:"id"`
	Name         string          `json:"name" db:"name"`
	Code         string          `json:"code" db:"code"`
	Stock        int             `json:"stock" db:"stock"`
	CostPrice    decimal.Decimal `json:"cost_price" db:"cost_price"`
	SellingPrice decimal.Decimal `json:"selling_price" db:"selling_price"`
	IsActive     bool            `json:"is_active" db:"is_active"`
	BrandID      int64           `json:"brand_id" db:"brand_id"`
}
