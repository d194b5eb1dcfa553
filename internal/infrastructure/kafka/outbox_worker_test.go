package kafka

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/DRSN-tech/catalog-service/internal/usecase"
	"github.com/DRSN-tech/catalog-service/pkg/e"
	"github.com/DRSN-tech/catalog-service/pkg/logger"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOutboxRepo struct {
	mu        sync.Mutex
	pending   []*usecase.OutboxEvent
	inflight  map[int64]*usecase.OutboxEvent
	processed []int64
	requeued  []int64
	failed    []int64
}

func newFakeOutboxRepo(n int) *fakeOutboxRepo {
	r := &fakeOutboxRepo{inflight: map[int64]*usecase.OutboxEvent{}}
	for i := 1; i <= n; i++ {
		r.pending = append(r.pending, &usecase.OutboxEvent{
			ID:        int64(i),
			EventID:   uuid.New(),
			ProductID: int64(100 + i),
			Payload:   []byte{byte(i)},
			Status:    usecase.Pending,
		})
	}
	return r
}

func (r *fakeOutboxRepo) Create(context.Context, *usecase.OutboxEvent) (*usecase.OutboxEvent, error) {
	return nil, errors.New("not used")
}

func (r *fakeOutboxRepo) GetAndMarkAsProcessing(_ context.Context, limit int) ([]*usecase.OutboxEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := min(limit, len(r.pending))
	batch := r.pending[:n]
	r.pending = r.pending[n:]
	for _, ev := range batch {
		ev.Status = usecase.Processing
		r.inflight[ev.ID] = ev
	}
	return batch, nil
}

func (r *fakeOutboxRepo) MarkAsProcessed(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.inflight, id)
	r.processed = append(r.processed, id)
	return nil
}

func (r *fakeOutboxRepo) MarkAsPending(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ev := r.inflight[id]
	delete(r.inflight, id)
	ev.Status = usecase.Pending
	r.pending = append(r.pending, ev)
	r.requeued = append(r.requeued, id)
	return nil
}

func (r *fakeOutboxRepo) MarkAsFailed(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.inflight, id)
	r.failed = append(r.failed, id)
	return nil
}

func (r *fakeOutboxRepo) failedIDs() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int64(nil), r.failed...)
}

func (r *fakeOutboxRepo) snapshot() (processed, requeued []int64, pending int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int64(nil), r.processed...), append([]int64(nil), r.requeued...), len(r.pending)
}

type fakeProducer struct {
	mu      sync.Mutex
	sent    []*usecase.WriteRawMessageReq
	failOn  map[int64]error
	onWrite func()
}

func (p *fakeProducer) WriteRawMessage(_ context.Context, req *usecase.WriteRawMessageReq) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.onWrite != nil {
		p.onWrite()
	}
	if err, ok := p.failOn[req.ProductID]; ok {
		return err
	}
	p.sent = append(p.sent, req)
	return nil
}

type fakeListener struct {
	notifications chan *pgconn.Notification
	closed        chan struct{}
}

func newFakeListener() *fakeListener {
	return &fakeListener{
		notifications: make(chan *pgconn.Notification, 1),
		closed:        make(chan struct{}),
	}
}

func (l *fakeListener) WaitForNotification(ctx context.Context) (*pgconn.Notification, error) {
	select {
	case n := <-l.notifications:
		return n, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (l *fakeListener) Close(context.Context) error {
	close(l.closed)
	return nil
}

func newTestWorker(repo usecase.OutboxRepository, producer usecase.MessageProducer, batch int) *OutboxWorker {
	return NewOutboxWorker(repo, logger.NewNopLogger(), producer, OutboxWorkerCfg{
		Channel:       "outbox_pending",
		BatchSize:     batch,
		PollInterval:  time.Hour,
		ReconnectBase: time.Millisecond,
		ReconnectMax:  time.Millisecond,
	})
}

func TestOutboxWorker_DrainPublishesEverything(t *testing.T) {
	repo := newFakeOutboxRepo(5)
	producer := &fakeProducer{}
	w := newTestWorker(repo, producer, 2)

	w.drain(context.Background())

	processed, requeued, pending := repo.snapshot()
	assert.Equal(t, []int64{1, 2, 3, 4, 5}, processed)
	assert.Empty(t, requeued)
	assert.Zero(t, pending)

	require.Len(t, producer.sent, 5)
	assert.Equal(t, int64(101), producer.sent[0].ProductID)
	assert.Equal(t, []byte{1}, producer.sent[0].Payload)
}

func TestOutboxWorker_FailedEventReturnsToPending(t *testing.T) {
	repo := newFakeOutboxRepo(3)
	producer := &fakeProducer{failOn: map[int64]error{102: errors.New("dial tcp: connection refused")}}
	w := newTestWorker(repo, producer, 2)

	w.drain(context.Background())

	processed, requeued, pending := repo.snapshot()
	assert.Equal(t, []int64{1}, processed)
	assert.Equal(t, []int64{2}, requeued)
	assert.Equal(t, 2, pending)

	delete(producer.failOn, 102)
	w.drain(context.Background())

	processed, _, pending = repo.snapshot()
	assert.ElementsMatch(t, []int64{1, 2, 3}, processed)
	assert.Zero(t, pending)
}

func TestOutboxWorker_PermanentFailureIsNotRequeued(t *testing.T) {
	repo := newFakeOutboxRepo(3)
	producer := &fakeProducer{failOn: map[int64]error{102: kafka.MessageSizeTooLarge}}
	w := newTestWorker(repo, producer, 2)

	w.drain(context.Background())

	processed, requeued, pending := repo.snapshot()
	assert.Equal(t, []int64{1, 3}, processed)
	assert.Empty(t, requeued)
	assert.Zero(t, pending)
	assert.Equal(t, []int64{2}, repo.failedIDs())

	// Повторный проход не трогает отброшенное событие.
	w.drain(context.Background())
	assert.Len(t, producer.sent, 2)
	assert.Equal(t, []int64{2}, repo.failedIDs())
}

func TestOutboxWorker_MarksProcessedAfterShutdown(t *testing.T) {
	repo := newFakeOutboxRepo(1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Остановка приходит, когда сообщение уже ушло в Kafka.
	producer := &fakeProducer{onWrite: cancel}
	w := newTestWorker(repo, producer, 10)

	w.drain(ctx)

	processed, requeued, pending := repo.snapshot()
	assert.Equal(t, []int64{1}, processed)
	assert.Empty(t, requeued)
	assert.Zero(t, pending)
	assert.Empty(t, repo.inflight)
}

func TestOutboxWorker_NotificationTriggersDrain(t *testing.T) {
	repo := newFakeOutboxRepo(0)
	producer := &fakeProducer{}
	w := newTestWorker(repo, producer, 10)

	conn := newFakeListener()
	dials := make(chan struct{}, 1)
	w.dial = func(context.Context) (listener, error) {
		dials <- struct{}{}
		return conn, nil
	}

	w.Start(context.Background())
	<-dials

	repo.mu.Lock()
	repo.pending = append(repo.pending, &usecase.OutboxEvent{ID: 9, EventID: uuid.New(), ProductID: 7})
	repo.mu.Unlock()
	conn.notifications <- &pgconn.Notification{Channel: "outbox_pending"}

	assert.Eventually(t, func() bool {
		processed, _, _ := repo.snapshot()
		return len(processed) == 1
	}, time.Second, 5*time.Millisecond)

	w.Stop()
	<-conn.closed
}

func TestOutboxWorker_ReconnectsAfterDialFailure(t *testing.T) {
	w := newTestWorker(newFakeOutboxRepo(0), &fakeProducer{}, 10)

	var mu sync.Mutex
	attempts := 0
	conn := newFakeListener()
	w.dial = func(context.Context) (listener, error) {
		mu.Lock()
		defer mu.Unlock()
		attempts++
		if attempts < 3 {
			return nil, errors.New("connection refused")
		}
		return conn, nil
	}

	w.Start(context.Background())
	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return attempts >= 3
	}, time.Second, 5*time.Millisecond)

	w.Stop()
	<-conn.closed
}

func TestIsRetryableError(t *testing.T) {
	assert.False(t, isRetryableError(nil))
	assert.True(t, isRetryableError(errors.New("dial tcp 10.0.0.1:9092: i/o timeout")))
	assert.True(t, isRetryableError(errors.New("Broker Not Available")))
	assert.False(t, isRetryableError(errors.New("message too large")))

	assert.True(t, isRetryableError(fmt.Errorf("write: %w", context.Canceled)))
	assert.True(t, isRetryableError(&net.OpError{Op: "dial", Net: "tcp", Err: errors.New("refused")}))
	assert.True(t, isRetryableError(kafka.RequestTimedOut))
	assert.False(t, isRetryableError(kafka.MessageSizeTooLarge))
	assert.False(t, isRetryableError(e.Wrap("Permanent Kafka failure", kafka.TopicAuthorizationFailed)))
	assert.True(t, isRetryableError(kafka.WriteErrors{nil, kafka.NotLeaderForPartition}))
	assert.False(t, isRetryableError(kafka.WriteErrors{nil, kafka.MessageSizeTooLarge}))
}

func TestNewMessage(t *testing.T) {
	msg := NewMessage(usecase.NewWriteRawMessageReq(42, []byte("payload")))
	assert.Equal(t, []byte("42"), msg.Key)
	assert.Equal(t, []byte("payload"), msg.Value)
}
