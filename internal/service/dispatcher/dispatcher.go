package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"mintlite/internal/channel"
	"mintlite/internal/domain"
	"mintlite/internal/pkg/backoff"
	"mintlite/internal/pkg/metrics"
	"mintlite/internal/repository"
)

const queueDepthInterval = 15 * time.Second

type Config struct {
	Workers        int
	PollInterval   time.Duration
	LeaseTTL       time.Duration
	AttemptTimeout time.Duration
	Policy         backoff.Policy
}

// Throttle gates dispatch throughput. *ratelimit.Limiter satisfies it.
type Throttle interface {
	Allow(ctx context.Context) (bool, time.Duration)
}

// Dispatcher drains the notification queue: each worker claims the next due
// notification, hands it to the channel's adapter under a per-attempt
// deadline, and settles the row according to the adapter's verdict.
type Dispatcher struct {
	cfg          Config
	notifRepo    repository.NotificationRepository
	attemptRepo  repository.DeliveryAttemptRepository
	adapters     map[domain.Channel]channel.Adapter
	limiter      Throttle
	logger       *zap.Logger
	workerPrefix string
}

func New(
	cfg Config,
	notifRepo repository.NotificationRepository,
	attemptRepo repository.DeliveryAttemptRepository,
	adapters []channel.Adapter,
	limiter Throttle,
	logger *zap.Logger,
) *Dispatcher {
	byChannel := make(map[domain.Channel]channel.Adapter, len(adapters))
	for _, a := range adapters {
		byChannel[a.Channel()] = a
	}
	return &Dispatcher{
		cfg:          cfg,
		notifRepo:    notifRepo,
		attemptRepo:  attemptRepo,
		adapters:     byChannel,
		limiter:      limiter,
		logger:       logger,
		workerPrefix: uuid.NewString()[:8],
	}
}

// Run blocks until ctx is canceled and all workers have drained their
// in-flight attempt.
func (d *Dispatcher) Run(ctx context.Context) {
	d.logger.Info("dispatcher starting",
		zap.Int("workers", d.cfg.Workers),
		zap.Duration("poll_interval", d.cfg.PollInterval),
		zap.Duration("lease_ttl", d.cfg.LeaseTTL))

	var wg sync.WaitGroup
	for i := 0; i < d.cfg.Workers; i++ {
		workerID := fmt.Sprintf("%s-%d", d.workerPrefix, i)
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.runWorker(ctx, workerID)
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		d.trackQueueDepth(ctx)
	}()

	wg.Wait()
	d.logger.Info("dispatcher stopped")
}

func (d *Dispatcher) runWorker(ctx context.Context, workerID string) {
	for ctx.Err() == nil {
		// Throttle before claiming so a deferred notification keeps its
		// place in the queue instead of burning a retry.
		allowed, wait := d.limiter.Allow(ctx)
		if !allowed {
			metrics.IncRateLimitDeferral()
			sleep(ctx, wait)
			continue
		}

		notif, err := d.notifRepo.ClaimNext(ctx, workerID, d.cfg.LeaseTTL)
		if errors.Is(err, domain.ErrNotFound) {
			sleep(ctx, d.cfg.PollInterval)
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			d.logger.Error("claim next notification", zap.String("worker", workerID), zap.Error(err))
			sleep(ctx, d.cfg.PollInterval)
			continue
		}

		d.dispatch(ctx, workerID, notif)
	}
}

func (d *Dispatcher) dispatch(ctx context.Context, workerID string, notif *domain.Notification) {
	adapter, ok := d.adapters[notif.Channel]
	if !ok {
		d.settle(ctx, workerID, notif, channel.PermanentFailure("no adapter for channel "+string(notif.Channel)), 0)
		return
	}

	attemptCtx, cancel := context.WithTimeout(ctx, d.cfg.AttemptTimeout)
	start := time.Now()
	result := adapter.Deliver(attemptCtx, notif)
	duration := time.Since(start)
	cancel()

	metrics.RecordDispatch(string(notif.Channel), string(result.Outcome), duration)
	d.settle(ctx, workerID, notif, result, duration)
}

func (d *Dispatcher) settle(ctx context.Context, workerID string, notif *domain.Notification, result channel.DeliveryResult, duration time.Duration) {
	attemptOrdinal := notif.RetryCount + 1
	d.recordAttempt(ctx, notif, attemptOrdinal, result, duration)

	var err error
	switch result.Outcome {
	case channel.OutcomeDelivered:
		var providerID *string
		if result.ProviderMessageID != "" {
			providerID = &result.ProviderMessageID
		}
		err = d.notifRepo.MarkSent(ctx, notif.ID, workerID, providerID)
		if err == nil {
			d.logger.Info("notification sent",
				zap.String("id", notif.ID.String()),
				zap.String("channel", string(notif.Channel)),
				zap.Int("attempt", attemptOrdinal))
		}

	case channel.OutcomeTransientFailure:
		if d.cfg.Policy.Exhausted(attemptOrdinal) {
			err = d.notifRepo.MarkFailed(ctx, notif.ID, workerID, attemptOrdinal, result.Reason)
			if err == nil {
				d.logger.Warn("notification failed, retries exhausted",
					zap.String("id", notif.ID.String()),
					zap.String("channel", string(notif.Channel)),
					zap.Int("attempts", attemptOrdinal),
					zap.String("reason", result.Reason))
			}
		} else {
			retryAt := time.Now().UTC().Add(d.cfg.Policy.Delay(attemptOrdinal))
			err = d.notifRepo.ReleaseForRetry(ctx, notif.ID, workerID, attemptOrdinal, retryAt, result.Reason)
			if err == nil {
				d.logger.Info("notification requeued",
					zap.String("id", notif.ID.String()),
					zap.String("channel", string(notif.Channel)),
					zap.Int("attempt", attemptOrdinal),
					zap.Time("retry_at", retryAt),
					zap.String("reason", result.Reason))
			}
		}

	case channel.OutcomePermanentFailure:
		if result.Bounce {
			err = d.notifRepo.MarkBounced(ctx, notif.ID, workerID, result.Reason)
		} else {
			err = d.notifRepo.MarkFailed(ctx, notif.ID, workerID, attemptOrdinal, result.Reason)
		}
		if err == nil {
			d.logger.Warn("notification permanently failed",
				zap.String("id", notif.ID.String()),
				zap.String("channel", string(notif.Channel)),
				zap.Bool("bounce", result.Bounce),
				zap.String("reason", result.Reason))
		}
	}

	if errors.Is(err, domain.ErrClaimLost) {
		// The lease expired mid-attempt and another worker re-claimed the
		// row. The other worker owns settlement now; a duplicate send is
		// possible and accepted.
		d.logger.Warn("claim lost during settlement",
			zap.String("id", notif.ID.String()),
			zap.String("worker", workerID))
		return
	}
	if err != nil {
		d.logger.Error("settle notification",
			zap.String("id", notif.ID.String()),
			zap.String("outcome", string(result.Outcome)),
			zap.Error(err))
	}
}

func (d *Dispatcher) recordAttempt(ctx context.Context, notif *domain.Notification, ordinal int, result channel.DeliveryResult, duration time.Duration) {
	attempt := &domain.DeliveryAttempt{
		ID:             uuid.New(),
		NotificationID: notif.ID,
		Attempt:        ordinal,
		Channel:        notif.Channel,
		Outcome:        string(result.Outcome),
		DurationMS:     duration.Milliseconds(),
	}
	if result.Reason != "" {
		attempt.Reason = &result.Reason
	}
	if err := d.attemptRepo.Create(ctx, attempt); err != nil {
		d.logger.Warn("record delivery attempt", zap.String("id", notif.ID.String()), zap.Error(err))
	}
}

func (d *Dispatcher) trackQueueDepth(ctx context.Context) {
	ticker := time.NewTicker(queueDepthInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			depth, err := d.notifRepo.CountPending(ctx)
			if err != nil {
				if ctx.Err() == nil {
					d.logger.Warn("count pending notifications", zap.Error(err))
				}
				continue
			}
			metrics.SetQueueDepth(depth)
		}
	}
}

func sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
