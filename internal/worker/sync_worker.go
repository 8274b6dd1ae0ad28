package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"veloce/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RegisterClient is the slice of the Sheets service the worker needs.
type RegisterClient interface {
	AppendBooking(ctx context.Context, booking *models.Booking, carName string) error
}

// SyncTask is one booking waiting to be appended to the register.
type SyncTask struct {
	Booking  models.Booking `json:"booking"`
	CarName  string         `json:"car_name"`
	Attempts int            `json:"attempts"`
}

// SyncWorker drains queued bookings into the Sheets register. Tasks go
// through redis when available so a restart does not lose them; otherwise
// they live in a bounded in-memory queue.
type SyncWorker struct {
	register      RegisterClient
	redis         *redis.Client
	retryPolicy   RetryPolicy
	queue         chan SyncTask
	redisQueueKey string
	deadLetterKey string
	pollInterval  time.Duration
	logger        *zerolog.Logger
}

// NewSyncWorker builds a worker with sane defaults.
func NewSyncWorker(register RegisterClient, redisClient *redis.Client, retry RetryPolicy, logger *zerolog.Logger) *SyncWorker {
	if retry.MaxRetries == 0 {
		retry.MaxRetries = 5
	}
	if retry.InitialDelay == 0 {
		retry.InitialDelay = 2 * time.Second
	}
	if retry.MaxDelay == 0 {
		retry.MaxDelay = 1 * time.Minute
	}
	if retry.BackoffFactor == 0 {
		retry.BackoffFactor = 2
	}

	return &SyncWorker{
		register:      register,
		redis:         redisClient,
		retryPolicy:   retry,
		queue:         make(chan SyncTask, 128),
		redisQueueKey: "bookings:sync",
		deadLetterKey: "bookings:deadletter",
		pollInterval:  2 * time.Second,
		logger:        logger,
	}
}

// Enqueue schedules a booking for register sync via redis or the in-memory
// queue. It never blocks the caller.
func (w *SyncWorker) Enqueue(ctx context.Context, booking models.Booking, carName string) error {
	if booking.ID == 0 {
		return errors.New("booking id is required")
	}

	task := SyncTask{Booking: booking, CarName: carName}

	// Try redis first for durability.
	if w.redis != nil {
		if err := w.pushRedis(ctx, task); err != nil {
			w.logger.Warn().Err(err).Msg("sync_worker: redis push failed, fallback to memory queue")
		} else {
			return nil
		}
	}

	select {
	case w.queue <- task:
	default:
		w.logger.Error().Int64("booking_id", booking.ID).Msg("sync_worker: queue full, task dropped")
		return errors.New("sync queue is full")
	}

	return nil
}

// Start launches the main loop; stops when ctx is done.
func (w *SyncWorker) Start(ctx context.Context) {
	w.logger.Info().Msg("sync_worker: started")
	defer w.logger.Info().Msg("sync_worker: stopped")

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if t, ok := w.tryLocalQueue(); ok {
			w.processTask(ctx, t)
			continue
		}

		if t, ok := w.tryRedis(ctx); ok {
			w.processTask(ctx, t)
			continue
		}

		w.sleep(ctx, w.pollInterval)
	}
}

func (w *SyncWorker) tryLocalQueue() (SyncTask, bool) {
	select {
	case t := <-w.queue:
		return t, true
	default:
		return SyncTask{}, false
	}
}

func (w *SyncWorker) tryRedis(ctx context.Context) (SyncTask, bool) {
	if w.redis == nil {
		return SyncTask{}, false
	}
	res, err := w.redis.BRPop(ctx, time.Second, w.redisQueueKey).Result()
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) || errors.Is(err, redis.Nil) {
			return SyncTask{}, false
		}
		w.logger.Error().Err(err).Msg("sync_worker: redis BRPOP error")
		return SyncTask{}, false
	}
	if len(res) != 2 {
		return SyncTask{}, false
	}
	var task SyncTask
	if err := json.Unmarshal([]byte(res[1]), &task); err != nil {
		w.logger.Error().Err(err).Msg("sync_worker: decode redis task")
		return SyncTask{}, false
	}
	return task, true
}

func (w *SyncWorker) processTask(ctx context.Context, task SyncTask) {
	for {
		err := w.register.AppendBooking(ctx, &task.Booking, task.CarName)
		if err == nil {
			w.logger.Info().Int64("booking_id", task.Booking.ID).Msg("sync_worker: booking synced")
			return
		}

		task.Attempts++
		if task.Attempts >= w.retryPolicy.MaxRetries {
			w.logger.Error().Err(err).
				Int64("booking_id", task.Booking.ID).
				Int("attempts", task.Attempts).
				Msg("sync_worker: giving up, pushing to dead letter")
			w.pushDeadLetter(ctx, task)
			return
		}

		delay := w.retryPolicy.NextDelay(task.Attempts)
		w.logger.Warn().Err(err).
			Int64("booking_id", task.Booking.ID).
			Int("attempt", task.Attempts).
			Dur("next_delay", delay).
			Msg("sync_worker: append failed, retrying")

		if !w.sleep(ctx, delay) {
			return
		}
	}
}

// sleep waits for d or until ctx is done; reports whether the full wait
// elapsed.
func (w *SyncWorker) sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func (w *SyncWorker) pushRedis(ctx context.Context, task SyncTask) error {
	if w.redis == nil {
		return errors.New("redis client is nil")
	}
	data, err := json.Marshal(task)
	if err != nil {
		return err
	}
	return w.redis.LPush(ctx, w.redisQueueKey, data).Err()
}

func (w *SyncWorker) pushDeadLetter(ctx context.Context, task SyncTask) {
	if w.redis == nil {
		return
	}
	data, err := json.Marshal(task)
	if err != nil {
		w.logger.Error().Err(err).Int64("booking_id", task.Booking.ID).Msg("sync_worker: encode deadletter")
		return
	}
	if err := w.redis.LPush(ctx, w.deadLetterKey, data).Err(); err != nil {
		w.logger.Error().Err(err).Int64("booking_id", task.Booking.ID).Msg("sync_worker: deadletter push")
	}
}
