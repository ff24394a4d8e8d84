package m_product

// Field name constants for the products table.
// Pricing only reads this table; the catalog service owns it.
const (
	TableName = "products"

	ProductID = "product_id"
	Name      = "name"
	Status    = "status"
	CreatedAt = "created_at"
	UpdatedAt = "updated_at"
)
