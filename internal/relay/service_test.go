package relay_test

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huynhvq/inventory-tracker/internal/config"
	"github.com/huynhvq/inventory-tracker/internal/relay"
	"github.com/huynhvq/inventory-tracker/internal/repository"
	"github.com/huynhvq/inventory-tracker/internal/storage/db"
	"github.com/huynhvq/inventory-tracker/internal/storage/mq"
	"github.com/huynhvq/inventory-tracker/pkg/ptr"
)

type fakeDB struct{}

func (fakeDB) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (fakeDB) Query(context.Context, string, ...any) (pgx.Rows, error) { return nil, nil }

func (fakeDB) QueryRow(context.Context, string, ...any) pgx.Row { return nil }

func (f fakeDB) WithTx(_ context.Context, txFunc func(db.DB) error) error { return txFunc(f) }

// queueOutboxRepo hands out its pending messages once and records the bulk
// update that marks them processed.
type queueOutboxRepo struct {
	mu      sync.Mutex
	pending []repository.ListUnprocessedOutboxMsgsResult
	updated []repository.BulkUpdateOutboxMsgsItem
}

func (r *queueOutboxRepo) WithDB(db.DB) repository.OutboxMsgRepository { return r }

func (r *queueOutboxRepo) CreateOutboxMsg(context.Context, repository.CreateOutboxMsgParams) error {
	return nil
}

func (r *queueOutboxRepo) ListUnprocessedOutboxMsgs(_ context.Context, params repository.ListUnprocessedOutboxMsgsParams) ([]repository.ListUnprocessedOutboxMsgsResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := min(int(params.BatchSize), len(r.pending))
	batch := r.pending[:n]
	r.pending = r.pending[n:]
	return batch, nil
}

func (r *queueOutboxRepo) BulkUpdateOutboxMsgs(_ context.Context, params repository.BulkUpdateOutboxMsgsParams) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.updated = append(r.updated, params.Items...)
	return nil
}

func (r *queueOutboxRepo) updates() []repository.BulkUpdateOutboxMsgsItem {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]repository.BulkUpdateOutboxMsgsItem(nil), r.updated...)
}

type recordingProducer struct {
	mu        sync.Mutex
	produced  []mq.ProduceMsg
	failTopic string
}

func (p *recordingProducer) Produce(_ context.Context, msg mq.ProduceMsg) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if msg.Topic == p.failTopic {
		return errors.New("broker unavailable")
	}
	p.produced = append(p.produced, msg)
	return nil
}

func (p *recordingProducer) producedMsgs() []mq.ProduceMsg {
	p.mu.Lock()
	defer p.mu.Unlock()

	return append([]mq.ProduceMsg(nil), p.produced...)
}

func pendingMsg(topic string) repository.ListUnprocessedOutboxMsgsResult {
	return repository.ListUnprocessedOutboxMsgsResult{
		ID:           uuid.New(),
		Topic:        topic,
		Headers:      map[string]string{"x-correlation-id": "test"},
		Payload:      []byte(`{"product_id":"p-1"}`),
		PartitionKey: ptr.New("p-1"),
	}
}

func runRelay(t *testing.T, repo *queueOutboxRepo, producer *recordingProducer) {
	t.Helper()

	svc := relay.NewService(
		config.Relay{BatchSize: 10, Interval: time.Millisecond},
		slog.New(slog.DiscardHandler),
		fakeDB{},
		repo,
		producer,
	)

	cleanup := svc.Run(context.Background())
	t.Cleanup(cleanup)
}

func TestRelayService(t *testing.T) {
	t.Run("Should produce pending messages and mark them processed", func(t *testing.T) {
		msg := pendingMsg("product.created")
		repo := &queueOutboxRepo{pending: []repository.ListUnprocessedOutboxMsgsResult{msg}}
		producer := &recordingProducer{}

		runRelay(t, repo, producer)

		require.Eventually(t, func() bool {
			return len(repo.updates()) == 1
		}, time.Second, 5*time.Millisecond)

		produced := producer.producedMsgs()
		require.Len(t, produced, 1)
		assert.Equal(t, "product.created", produced[0].Topic)
		assert.Equal(t, msg.Headers, produced[0].Headers)
		assert.Equal(t, []byte(msg.Payload), produced[0].Payload)
		require.NotNil(t, produced[0].PartitionKey)
		assert.Equal(t, "p-1", *produced[0].PartitionKey)

		update := repo.updates()[0]
		assert.Equal(t, msg.ID, update.ID)
		assert.Nil(t, update.Error)
	})

	t.Run("Should record the produce error and still mark the message", func(t *testing.T) {
		ok := pendingMsg("product.created")
		failed := pendingMsg("product.deleted")
		repo := &queueOutboxRepo{pending: []repository.ListUnprocessedOutboxMsgsResult{ok, failed}}
		producer := &recordingProducer{failTopic: "product.deleted"}

		runRelay(t, repo, producer)

		require.Eventually(t, func() bool {
			return len(repo.updates()) == 2
		}, time.Second, 5*time.Millisecond)

		byID := map[uuid.UUID]repository.BulkUpdateOutboxMsgsItem{}
		for _, item := range repo.updates() {
			byID[item.ID] = item
		}

		assert.Nil(t, byID[ok.ID].Error)
		require.NotNil(t, byID[failed.ID].Error)
		assert.Equal(t, "broker unavailable", *byID[failed.ID].Error)
	})
}
