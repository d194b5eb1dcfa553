package kafka

import (
	"context"
	"errors"
	"io"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/DRSN-tech/catalog-service/internal/usecase"
	"github.com/DRSN-tech/catalog-service/pkg/e"
	"github.com/DRSN-tech/catalog-service/pkg/jitter"
	"github.com/DRSN-tech/catalog-service/pkg/logger"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/segmentio/kafka-go"
)

// OutboxWorkerCfg — параметры воркера outbox.
type OutboxWorkerCfg struct {
	DSN           string        // строка подключения для отдельного LISTEN-соединения
	Channel       string        // канал NOTIFY
	BatchSize     int           // сколько событий забирать за проход
	PollInterval  time.Duration // как часто проверять очередь без уведомлений
	ReconnectBase time.Duration
	ReconnectMax  time.Duration
}

// listener — соединение, получающее уведомления LISTEN/NOTIFY. Реализуется *pgx.Conn.
type listener interface {
	WaitForNotification(ctx context.Context) (*pgconn.Notification, error)
	Close(ctx context.Context) error
}

// OutboxWorker публикует события outbox в Kafka. Очередь разбирается при старте,
// по уведомлению outbox_pending и по таймеру PollInterval.
type OutboxWorker struct {
	repo     usecase.OutboxRepository
	logger   logger.Logger
	producer usecase.MessageProducer
	cfg      OutboxWorkerCfg
	dial     func(ctx context.Context) (listener, error)
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

func NewOutboxWorker(
	repo usecase.OutboxRepository,
	logger logger.Logger,
	producer usecase.MessageProducer,
	cfg OutboxWorkerCfg,
) *OutboxWorker {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 10
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 30 * time.Second
	}
	if cfg.ReconnectBase <= 0 {
		cfg.ReconnectBase = time.Second
	}
	if cfg.ReconnectMax <= 0 {
		cfg.ReconnectMax = 30 * time.Second
	}

	w := &OutboxWorker{
		repo:     repo,
		logger:   logger,
		producer: producer,
		cfg:      cfg,
	}
	w.dial = w.listen
	return w
}

func (w *OutboxWorker) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.run(ctx)
	}()
}

// Stop останавливает воркер и ждёт завершения текущего прохода.
func (w *OutboxWorker) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}

func (w *OutboxWorker) run(ctx context.Context) {
	w.logger.Infof("Draining pending outbox events on startup...")
	w.drain(ctx)

	for attempt := 0; ctx.Err() == nil; {
		conn, err := w.dial(ctx)
		if err != nil {
			delay := jitter.ExponentialBackoff(w.cfg.ReconnectBase, w.cfg.ReconnectMax, attempt, jitter.DefaultJitter)
			attempt++
			w.logger.Warnf("outbox listener connect failed: %v, retry in %s", err, delay)

			select {
			case <-ctx.Done():
			case <-time.After(delay):
			}
			continue
		}
		attempt = 0

		// За время переподключения могли прийти события без уведомления.
		w.drain(ctx)

		if err := w.consume(ctx, conn); err != nil {
			w.logger.Warnf("outbox listener connection lost: %v, reconnecting", err)
		}
		_ = conn.Close(context.Background())
	}

	w.logger.Infof("Outbox worker stopped")
}

func (w *OutboxWorker) listen(ctx context.Context) (listener, error) {
	conn, err := pgx.Connect(ctx, w.cfg.DSN)
	if err != nil {
		return nil, e.Wrap("failed to connect for LISTEN", err)
	}

	if _, err := conn.Exec(ctx, "LISTEN "+w.cfg.Channel); err != nil {
		_ = conn.Close(ctx)
		return nil, e.Wrap("failed to LISTEN", err)
	}

	w.logger.Infof("Subscribed to '%s' channel", w.cfg.Channel)
	return conn, nil
}

// consume ждёт уведомлений до ошибки соединения или отмены ctx.
func (w *OutboxWorker) consume(ctx context.Context, conn listener) error {
	for {
		waitCtx, cancel := context.WithTimeout(ctx, w.cfg.PollInterval)
		notif, err := conn.WaitForNotification(waitCtx)
		cancel()

		if ctx.Err() != nil {
			return nil
		}

		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				w.drain(ctx)
				continue
			}
			return err
		}

		if notif != nil && notif.Channel == w.cfg.Channel {
			w.logger.Debugf("Received outbox notification, draining outbox events")
			w.drain(ctx)
		}
	}
}

func (w *OutboxWorker) drain(ctx context.Context) {
	for ctx.Err() == nil {
		hasMore, err := w.processBatch(ctx)
		if err != nil {
			w.logger.Warnf("Batch processing failed: %v", err)
			return
		}
		if !hasMore {
			return
		}
	}
}

// processBatch публикует одну пачку событий. hasMore=false, если очередь пуста
// или хотя бы одно событие вернулось в очередь (повтор будет на следующем проходе).
// Событие с постоянной ошибкой Kafka помечается failed и больше не публикуется.
func (w *OutboxWorker) processBatch(ctx context.Context) (bool, error) {
	events, err := w.repo.GetAndMarkAsProcessing(ctx, w.cfg.BatchSize)
	if err != nil {
		return false, err
	}

	if len(events) == 0 {
		return false, nil
	}

	// Статус фиксируется и после отмены ctx, иначе событие повиснет в processing.
	markCtx := context.WithoutCancel(ctx)

	requeued := false
	for _, event := range events {
		err := w.processEvent(ctx, event)
		switch {
		case err == nil:
			if err := w.repo.MarkAsProcessed(markCtx, event.ID); err != nil {
				w.logger.Warnf("mark processed failed: %v", err)
			}
		case isRetryableError(err):
			requeued = true
			w.logger.Warnf("publish outbox event %s failed: %v", event.EventID, err)

			if err := w.repo.MarkAsPending(markCtx, event.ID); err != nil {
				w.logger.Warnf("return outbox event %s to pending failed: %v", event.EventID, err)
			}
		default:
			w.logger.Errorf(err, "outbox event %s dropped", event.EventID)

			if err := w.repo.MarkAsFailed(markCtx, event.ID); err != nil {
				w.logger.Warnf("mark outbox event %s as failed: %v", event.EventID, err)
			}
		}
	}

	return !requeued && len(events) == w.cfg.BatchSize, nil
}

func (w *OutboxWorker) processEvent(ctx context.Context, event *usecase.OutboxEvent) error {
	if err := w.SendBytes(ctx, event.ProductID, event.Payload); err != nil {
		if isRetryableError(err) {
			return e.Wrap("Temporary Kafka failure, will retry", err)
		}
		return e.Wrap("Permanent Kafka failure", err)
	}
	return nil
}

func (w *OutboxWorker) SendBytes(ctx context.Context, productID int64, payload []byte) error {
	return w.producer.WriteRawMessage(ctx, usecase.NewWriteRawMessageReq(productID, payload))
}

// isRetryableError: отмена, таймауты, сетевые сбои и временные коды Kafka.
// Всё остальное (слишком большое сообщение, нет прав на топик) считается постоянным.
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}

	var writeErrs kafka.WriteErrors
	if errors.As(err, &writeErrs) {
		for _, we := range writeErrs {
			if we != nil && isRetryableError(we) {
				return true
			}
		}
		return false
	}

	var kerr kafka.Error
	if errors.As(err, &kerr) {
		return kerr.Temporary()
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	errStr := strings.ToLower(err.Error())
	retryablePhrases := []string{
		"connection refused",
		"i/o timeout",
		"network is unreachable",
		"broker not available",
		"connection reset",
		"broken pipe",
		"no such host",
	}
	for _, phrase := range retryablePhrases {
		if strings.Contains(errStr, phrase) {
			return true
		}
	}
	return false
}
