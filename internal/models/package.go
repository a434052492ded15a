package models

// Package is one purchasable bundle inside a catalog subcategory.
// IDs are assigned sequentially per subcategory when the admin adds one.
type Package struct {
	ID       int     `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Validity string  `json:"validity"`
}
