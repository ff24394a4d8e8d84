package contracts

import (
	"context"

	"github.com/light-bringer/pricing-service/internal/app/price/domain"
)

// ProductLookup resolves the product a price belongs to.
type ProductLookup interface {
	// GetProduct returns nil and no error when the product does not exist.
	GetProduct(ctx context.Context, r Reader, productID string) (*domain.ProductInfo, error)
}
