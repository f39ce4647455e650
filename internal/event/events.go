package event

const (
	TopicProductCreated = "product.created"
	TopicProductUpdated = "product.updated"
	TopicProductDeleted = "product.deleted"
)

// ProductChangedEvent is the payload for product.created and product.updated.
type ProductChangedEvent struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Sku       string  `json:"sku"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
	Category  string  `json:"category"`
}

// ProductDeletedEvent is the payload for product.deleted.
type ProductDeletedEvent struct {
	ProductID string `json:"product_id"`
	Sku       string `json:"sku"`
}
