package repo

import (
	"context"
	"fmt"

	"cloud.google.com/go/spanner"
	"google.golang.org/grpc/codes"

	"github.com/light-bringer/pricing-service/internal/app/price/contracts"
	"github.com/light-bringer/pricing-service/internal/app/price/domain"
	"github.com/light-bringer/pricing-service/internal/models/m_product"
)

// ProductRepo implements ProductLookup for Spanner.
type ProductRepo struct {
	model *m_product.Model
}

// NewProductRepo creates a new ProductRepo.
func NewProductRepo() contracts.ProductLookup {
	return &ProductRepo{model: m_product.NewModel()}
}

// GetProduct reads the product row; a missing row is not an error.
func (r *ProductRepo) GetProduct(ctx context.Context, reader contracts.Reader, productID string) (*domain.ProductInfo, error) {
	row, err := reader.ReadRow(ctx, m_product.TableName, spanner.Key{productID}, r.model.ReadColumns())
	if err != nil {
		if spanner.ErrCode(err) == codes.NotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read product: %w", err)
	}

	var data m_product.Data
	if err := row.ToStruct(&data); err != nil {
		return nil, fmt.Errorf("failed to parse product: %w", err)
	}

	return &domain.ProductInfo{
		ProductID: data.ProductID,
		Name:      data.Name,
		Status:    domain.ProductStatus(data.Status),
	}, nil
}
