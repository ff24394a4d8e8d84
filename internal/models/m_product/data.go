package m_product

import (
	"time"
)

// Data represents the columns of the products table pricing depends on.
type Data struct {
	ProductID string    `spanner:"product_id"`
	Name      string    `spanner:"name"`
	Status    string    `spanner:"status"`
	CreatedAt time.Time `spanner:"created_at"`
	UpdatedAt time.Time `spanner:"updated_at"`
}
