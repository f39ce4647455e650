package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/huynhvq/inventory-tracker/internal/apperr"
	"github.com/huynhvq/inventory-tracker/internal/event"
	"github.com/huynhvq/inventory-tracker/internal/model"
	"github.com/huynhvq/inventory-tracker/internal/repository"
	"github.com/huynhvq/inventory-tracker/internal/storage/db"
	"github.com/huynhvq/inventory-tracker/pkg/outbox"
	"github.com/huynhvq/inventory-tracker/pkg/ptr"
)

// ProductParams carries the five caller-supplied fields shared by create
// and update. ID and timestamps are always assigned by the service.
type ProductParams struct {
	Name     string
	Sku      string
	Quantity int
	Price    float64
	Category string
}

type ProductService interface {
	CreateProduct(ctx context.Context, params ProductParams) (model.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (model.Product, error)
	ListAllProducts(ctx context.Context) ([]model.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, params ProductParams) (model.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
}

type productService struct {
	db            db.DB
	productRepo   repository.ProductRepository
	outboxMsgRepo repository.OutboxMsgRepository
}

func NewProductService(
	db db.DB,
	productRepo repository.ProductRepository,
	outboxMsgRepo repository.OutboxMsgRepository,
) ProductService {
	return &productService{
		db:            db,
		productRepo:   productRepo,
		outboxMsgRepo: outboxMsgRepo,
	}
}

func (s *productService) CreateProduct(ctx context.Context, params ProductParams) (model.Product, error) {
	params, err := normalizeParams(params)
	if err != nil {
		return model.Product{}, err
	}

	exists, err := s.productRepo.SkuExists(ctx, params.Sku, uuid.Nil)
	if err != nil {
		return model.Product{}, fmt.Errorf("product repository sku exists: %w", err)
	}
	if exists {
		return model.Product{}, apperr.SkuAlreadyExistsErr
	}

	id, err := uuid.NewV7()
	if err != nil {
		return model.Product{}, fmt.Errorf("generate uuid v7: %w", err)
	}

	now := time.Now()
	product := model.Product{
		ID:        id,
		Name:      params.Name,
		Sku:       params.Sku,
		Quantity:  params.Quantity,
		Price:     params.Price,
		Category:  params.Category,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.db.WithTx(ctx, func(db db.DB) error {
		if err := s.productRepo.
			WithDB(db).
			CreateProduct(ctx, product); err != nil {
			return fmt.Errorf("product repository create product: %w", err)
		}

		if err := s.enqueueChangedEvent(ctx, db, event.TopicProductCreated, product); err != nil {
			return err
		}

		return nil
	}); err != nil {
		return model.Product{}, fmt.Errorf("db with tx: %w", err)
	}

	return product, nil
}

func (s *productService) GetProduct(ctx context.Context, id uuid.UUID) (model.Product, error) {
	product, err := s.productRepo.GetProduct(ctx, id)
	if err != nil {
		return model.Product{}, fmt.Errorf("product repository get product: %w", err)
	}

	return product, nil
}

func (s *productService) ListAllProducts(ctx context.Context) ([]model.Product, error) {
	products, err := s.productRepo.ListAllProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("product repository list all products: %w", err)
	}

	return products, nil
}

func (s *productService) UpdateProduct(ctx context.Context, id uuid.UUID, params ProductParams) (model.Product, error) {
	params, err := normalizeParams(params)
	if err != nil {
		return model.Product{}, err
	}

	existing, err := s.productRepo.GetProduct(ctx, id)
	if err != nil {
		return model.Product{}, fmt.Errorf("product repository get product: %w", err)
	}

	exists, err := s.productRepo.SkuExists(ctx, params.Sku, id)
	if err != nil {
		return model.Product{}, fmt.Errorf("product repository sku exists: %w", err)
	}
	if exists {
		return model.Product{}, apperr.SkuAlreadyExistsErr
	}

	product := model.Product{
		ID:        existing.ID,
		Name:      params.Name,
		Sku:       params.Sku,
		Quantity:  params.Quantity,
		Price:     params.Price,
		Category:  params.Category,
		CreatedAt: existing.CreatedAt,
		UpdatedAt: time.Now(),
	}

	if err := s.db.WithTx(ctx, func(db db.DB) error {
		if err := s.productRepo.
			WithDB(db).
			UpdateProduct(ctx, product); err != nil {
			return fmt.Errorf("product repository update product: %w", err)
		}

		if err := s.enqueueChangedEvent(ctx, db, event.TopicProductUpdated, product); err != nil {
			return err
		}

		return nil
	}); err != nil {
		return model.Product{}, fmt.Errorf("db with tx: %w", err)
	}

	return product, nil
}

func (s *productService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	existing, err := s.productRepo.GetProduct(ctx, id)
	if err != nil {
		return fmt.Errorf("product repository get product: %w", err)
	}

	if err := s.db.WithTx(ctx, func(db db.DB) error {
		if err := s.productRepo.
			WithDB(db).
			DeleteProduct(ctx, id); err != nil {
			return fmt.Errorf("product repository delete product: %w", err)
		}

		ev := event.ProductDeletedEvent{
			ProductID: existing.ID.String(),
			Sku:       existing.Sku,
		}
		evBytes, err := json.Marshal(ev)
		if err != nil {
			return fmt.Errorf("marshal event: %w", err)
		}

		if err := s.outboxMsgRepo.
			WithDB(db).
			CreateOutboxMsg(ctx, repository.CreateOutboxMsgParams{
				Topic:        event.TopicProductDeleted,
				Headers:      outbox.BuildHeaders(ctx),
				Payload:      evBytes,
				PartitionKey: ptr.New(existing.ID.String()),
			}); err != nil {
			return fmt.Errorf("outbox msg repository create outbox msg: %w", err)
		}

		return nil
	}); err != nil {
		return fmt.Errorf("db with tx: %w", err)
	}

	return nil
}

func (s *productService) enqueueChangedEvent(ctx context.Context, db db.DB, topic string, product model.Product) error {
	ev := event.ProductChangedEvent{
		ProductID: product.ID.String(),
		Name:      product.Name,
		Sku:       product.Sku,
		Quantity:  product.Quantity,
		Price:     product.Price,
		Category:  product.Category,
	}

	evBytes, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	if err := s.outboxMsgRepo.
		WithDB(db).
		CreateOutboxMsg(ctx, repository.CreateOutboxMsgParams{
			Topic:        topic,
			Headers:      outbox.BuildHeaders(ctx),
			Payload:      evBytes,
			PartitionKey: ptr.New(product.ID.String()),
		}); err != nil {
		return fmt.Errorf("outbox msg repository create outbox msg: %w", err)
	}

	return nil
}

// normalizeParams trims the text fields and rejects values the request
// validator cannot see: all-whitespace strings and negative numbers.
func normalizeParams(params ProductParams) (ProductParams, error) {
	params.Name = strings.TrimSpace(params.Name)
	params.Sku = strings.TrimSpace(params.Sku)
	params.Category = strings.TrimSpace(params.Category)

	if params.Name == "" || params.Sku == "" || params.Category == "" {
		return ProductParams{}, apperr.ValidationErr
	}
	if params.Quantity < 0 || params.Price < 0 {
		return ProductParams{}, apperr.ValidationErr
	}

	return params, nil
}
