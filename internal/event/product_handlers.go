package event

import (
	"context"
	"log/slog"
)

func (s *Service) handleProductCreatedEvent(ctx context.Context, ev ProductChangedEvent) error {
	s.logger.InfoContext(ctx, "handling product created event", slog.Any("event", ev))
	return nil
}

func (s *Service) handleProductUpdatedEvent(ctx context.Context, ev ProductChangedEvent) error {
	s.logger.InfoContext(ctx, "handling product updated event", slog.Any("event", ev))

	if ev.Quantity == 0 {
		s.logger.WarnContext(ctx, "product is out of stock",
			slog.String("product_id", ev.ProductID),
			slog.String("sku", ev.Sku),
		)
	}

	return nil
}

func (s *Service) handleProductDeletedEvent(ctx context.Context, ev ProductDeletedEvent) error {
	s.logger.InfoContext(ctx, "handling product deleted event", slog.Any("event", ev))
	return nil
}
