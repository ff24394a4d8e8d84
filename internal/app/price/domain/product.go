package domain

// ProductStatus represents the lifecycle status of a product as seen by pricing.
type ProductStatus string

const (
	ProductStatusActive       ProductStatus = "active"
	ProductStatusInactive     ProductStatus = "inactive"
	ProductStatusDiscontinued ProductStatus = "discontinued"
	ProductStatusSuspended    ProductStatus = "suspended"
)

// PriceLocked reports whether prices of a product in this status may not change.
func (s ProductStatus) PriceLocked() bool {
	return s == ProductStatusDiscontinued || s == ProductStatusSuspended
}

// ProductInfo is the slice of the product record the price engine needs.
type ProductInfo struct {
	ProductID string
	Name      string
	Status    ProductStatus
}
