package service_test

import (
	"context"
	"encoding/json"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huynhvq/inventory-tracker/internal/apperr"
	"github.com/huynhvq/inventory-tracker/internal/event"
	"github.com/huynhvq/inventory-tracker/internal/model"
	"github.com/huynhvq/inventory-tracker/internal/repository"
	"github.com/huynhvq/inventory-tracker/internal/service"
	"github.com/huynhvq/inventory-tracker/internal/storage/db"
)

// fakeDB satisfies db.DB for tests that never touch SQL; transactions just
// run the callback.
type fakeDB struct{}

func (fakeDB) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (fakeDB) Query(context.Context, string, ...any) (pgx.Rows, error) { return nil, nil }

func (fakeDB) QueryRow(context.Context, string, ...any) pgx.Row { return nil }

func (f fakeDB) WithTx(_ context.Context, txFunc func(db.DB) error) error { return txFunc(f) }

type memProductRepo struct {
	products map[uuid.UUID]model.Product
}

func newMemProductRepo() *memProductRepo {
	return &memProductRepo{products: map[uuid.UUID]model.Product{}}
}

func (r *memProductRepo) WithDB(db.DB) repository.ProductRepository { return r }

func (r *memProductRepo) CreateProduct(_ context.Context, product model.Product) error {
	r.products[product.ID] = product
	return nil
}

func (r *memProductRepo) GetProduct(_ context.Context, id uuid.UUID) (model.Product, error) {
	product, ok := r.products[id]
	if !ok {
		return model.Product{}, apperr.ProductNotFoundErr
	}
	return product, nil
}

func (r *memProductRepo) ListAllProducts(context.Context) ([]model.Product, error) {
	products := make([]model.Product, 0, len(r.products))
	for _, product := range r.products {
		products = append(products, product)
	}
	sort.Slice(products, func(i, j int) bool {
		return products[i].CreatedAt.After(products[j].CreatedAt)
	})
	return products, nil
}

func (r *memProductRepo) UpdateProduct(_ context.Context, product model.Product) error {
	if _, ok := r.products[product.ID]; !ok {
		return apperr.ProductNotFoundErr
	}
	r.products[product.ID] = product
	return nil
}

func (r *memProductRepo) DeleteProduct(_ context.Context, id uuid.UUID) error {
	if _, ok := r.products[id]; !ok {
		return apperr.ProductNotFoundErr
	}
	delete(r.products, id)
	return nil
}

func (r *memProductRepo) SkuExists(_ context.Context, sku string, excludeID uuid.UUID) (bool, error) {
	for _, product := range r.products {
		if product.Sku == sku && product.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

type memOutboxRepo struct {
	msgs []repository.CreateOutboxMsgParams
}

func (r *memOutboxRepo) WithDB(db.DB) repository.OutboxMsgRepository { return r }

func (r *memOutboxRepo) CreateOutboxMsg(_ context.Context, params repository.CreateOutboxMsgParams) error {
	r.msgs = append(r.msgs, params)
	return nil
}

func (r *memOutboxRepo) ListUnprocessedOutboxMsgs(context.Context, repository.ListUnprocessedOutboxMsgsParams) ([]repository.ListUnprocessedOutboxMsgsResult, error) {
	return nil, nil
}

func (r *memOutboxRepo) BulkUpdateOutboxMsgs(context.Context, repository.BulkUpdateOutboxMsgsParams) error {
	return nil
}

func (r *memOutboxRepo) topics() []string {
	topics := make([]string, 0, len(r.msgs))
	for _, msg := range r.msgs {
		topics = append(topics, msg.Topic)
	}
	return topics
}

func newTestService() (service.ProductService, *memProductRepo, *memOutboxRepo) {
	productRepo := newMemProductRepo()
	outboxRepo := &memOutboxRepo{}
	svc := service.NewProductService(fakeDB{}, productRepo, outboxRepo)
	return svc, productRepo, outboxRepo
}

func validParams() service.ProductParams {
	return service.ProductParams{
		Name:     "Widget",
		Sku:      "W-1",
		Quantity: 5,
		Price:    9.99,
		Category: "Tools",
	}
}

func TestCreateProduct(t *testing.T) {
	ctx := context.Background()

	t.Run("Should assign id and timestamps and persist", func(t *testing.T) {
		svc, _, outboxRepo := newTestService()

		product, err := svc.CreateProduct(ctx, validParams())
		require.NoError(t, err)

		assert.NotEqual(t, uuid.Nil, product.ID)
		assert.False(t, product.CreatedAt.IsZero())
		assert.Equal(t, product.CreatedAt, product.UpdatedAt)

		got, err := svc.GetProduct(ctx, product.ID)
		require.NoError(t, err)
		assert.Equal(t, product, got)

		require.Equal(t, []string{event.TopicProductCreated}, outboxRepo.topics())

		var ev event.ProductChangedEvent
		require.NoError(t, json.Unmarshal(outboxRepo.msgs[0].Payload, &ev))
		assert.Equal(t, product.ID.String(), ev.ProductID)
		assert.Equal(t, "W-1", ev.Sku)
	})

	t.Run("Should trim surrounding whitespace", func(t *testing.T) {
		svc, _, _ := newTestService()

		params := validParams()
		params.Name = "  Widget  "
		params.Sku = " W-1 "
		params.Category = " Tools "

		product, err := svc.CreateProduct(ctx, params)
		require.NoError(t, err)

		assert.Equal(t, "Widget", product.Name)
		assert.Equal(t, "W-1", product.Sku)
		assert.Equal(t, "Tools", product.Category)
	})

	t.Run("Should accept zero quantity and zero price", func(t *testing.T) {
		svc, _, _ := newTestService()

		params := validParams()
		params.Quantity = 0
		params.Price = 0

		product, err := svc.CreateProduct(ctx, params)
		require.NoError(t, err)
		assert.Equal(t, 0, product.Quantity)
		assert.Equal(t, float64(0), product.Price)
	})

	t.Run("Should reject blank fields without persisting", func(t *testing.T) {
		svc, productRepo, outboxRepo := newTestService()

		params := validParams()
		params.Name = "   "

		_, err := svc.CreateProduct(ctx, params)
		assert.ErrorIs(t, err, apperr.ValidationErr)
		assert.Empty(t, productRepo.products)
		assert.Empty(t, outboxRepo.msgs)
	})

	t.Run("Should reject negative quantity and price", func(t *testing.T) {
		svc, _, _ := newTestService()

		params := validParams()
		params.Quantity = -1
		_, err := svc.CreateProduct(ctx, params)
		assert.ErrorIs(t, err, apperr.ValidationErr)

		params = validParams()
		params.Price = -0.01
		_, err = svc.CreateProduct(ctx, params)
		assert.ErrorIs(t, err, apperr.ValidationErr)
	})

	t.Run("Should reject duplicate sku and keep the first product", func(t *testing.T) {
		svc, _, outboxRepo := newTestService()

		first, err := svc.CreateProduct(ctx, validParams())
		require.NoError(t, err)

		params := validParams()
		params.Name = "Other Widget"

		_, err = svc.CreateProduct(ctx, params)
		assert.ErrorIs(t, err, apperr.SkuAlreadyExistsErr)

		got, err := svc.GetProduct(ctx, first.ID)
		require.NoError(t, err)
		assert.Equal(t, first, got)
		assert.Len(t, outboxRepo.msgs, 1)
	})
}

func TestUpdateProduct(t *testing.T) {
	ctx := context.Background()

	t.Run("Should replace fields but keep id and created_at", func(t *testing.T) {
		svc, _, outboxRepo := newTestService()

		created, err := svc.CreateProduct(ctx, validParams())
		require.NoError(t, err)

		params := validParams()
		params.Quantity = 3

		updated, err := svc.UpdateProduct(ctx, created.ID, params)
		require.NoError(t, err)

		assert.Equal(t, created.ID, updated.ID)
		assert.Equal(t, created.CreatedAt, updated.CreatedAt)
		assert.Equal(t, 3, updated.Quantity)

		assert.Equal(t, []string{event.TopicProductCreated, event.TopicProductUpdated}, outboxRepo.topics())
	})

	t.Run("Should allow keeping the product's own sku", func(t *testing.T) {
		svc, _, _ := newTestService()

		created, err := svc.CreateProduct(ctx, validParams())
		require.NoError(t, err)

		_, err = svc.UpdateProduct(ctx, created.ID, validParams())
		assert.NoError(t, err)
	})

	t.Run("Should reject sku claimed by another product", func(t *testing.T) {
		svc, _, _ := newTestService()

		_, err := svc.CreateProduct(ctx, validParams())
		require.NoError(t, err)

		params := validParams()
		params.Sku = "W-2"
		second, err := svc.CreateProduct(ctx, params)
		require.NoError(t, err)

		params.Sku = "W-1"
		_, err = svc.UpdateProduct(ctx, second.ID, params)
		assert.ErrorIs(t, err, apperr.SkuAlreadyExistsErr)
	})

	t.Run("Should report not found for unknown id", func(t *testing.T) {
		svc, productRepo, outboxRepo := newTestService()

		_, err := svc.UpdateProduct(ctx, uuid.New(), validParams())
		assert.ErrorIs(t, err, apperr.ProductNotFoundErr)
		assert.Empty(t, productRepo.products)
		assert.Empty(t, outboxRepo.msgs)
	})
}

func TestDeleteProduct(t *testing.T) {
	ctx := context.Background()

	t.Run("Should remove the product and emit an event", func(t *testing.T) {
		svc, _, outboxRepo := newTestService()

		created, err := svc.CreateProduct(ctx, validParams())
		require.NoError(t, err)

		require.NoError(t, svc.DeleteProduct(ctx, created.ID))

		_, err = svc.GetProduct(ctx, created.ID)
		assert.ErrorIs(t, err, apperr.ProductNotFoundErr)

		assert.Equal(t, []string{event.TopicProductCreated, event.TopicProductDeleted}, outboxRepo.topics())

		var ev event.ProductDeletedEvent
		require.NoError(t, json.Unmarshal(outboxRepo.msgs[1].Payload, &ev))
		assert.Equal(t, created.ID.String(), ev.ProductID)
		assert.Equal(t, created.Sku, ev.Sku)
	})

	t.Run("Should report not found for unknown id", func(t *testing.T) {
		svc, _, _ := newTestService()

		err := svc.DeleteProduct(ctx, uuid.New())
		assert.ErrorIs(t, err, apperr.ProductNotFoundErr)
	})
}

func TestListAllProducts(t *testing.T) {
	ctx := context.Background()

	t.Run("Should return remaining products newest first", func(t *testing.T) {
		svc, productRepo, _ := newTestService()

		skus := []string{"A-1", "A-2", "A-3"}
		ids := make([]uuid.UUID, 0, len(skus))
		for i, sku := range skus {
			params := validParams()
			params.Sku = sku

			product, err := svc.CreateProduct(ctx, params)
			require.NoError(t, err)

			// spread creation times so ordering is deterministic
			product.CreatedAt = product.CreatedAt.Add(time.Duration(i) * time.Second)
			productRepo.products[product.ID] = product
			ids = append(ids, product.ID)
		}

		require.NoError(t, svc.DeleteProduct(ctx, ids[1]))

		products, err := svc.ListAllProducts(ctx)
		require.NoError(t, err)

		require.Len(t, products, 2)
		assert.Equal(t, ids[2], products[0].ID)
		assert.Equal(t, ids[0], products[1].ID)
	})
}
