package payments

import (
	"context"
	"qris-payment-service/internal/app/contracts"
	"qris-payment-service/internal/pkg/constvars"
	"qris-payment-service/internal/pkg/utils"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const (
	defaultExpiryWorkerInterval  = 30 * time.Second
	defaultExpiryWorkerBatchSize = 100
)

// ExpiryWorker periodically expires pending orders whose payment window has
// elapsed. When a locker is set only one instance sweeps per tick. The cron
// schedule has a one second resolution.
type ExpiryWorker struct {
	log       *zap.Logger
	usecase   contracts.PaymentUsecase
	locker    contracts.LockerService
	interval  time.Duration
	batchSize int
	now       func() time.Time
	cron      *cron.Cron
	cancel    context.CancelFunc
}

func NewExpiryWorker(log *zap.Logger, usecase contracts.PaymentUsecase, locker contracts.LockerService, interval time.Duration, batchSize int) *ExpiryWorker {
	if interval <= 0 {
		interval = defaultExpiryWorkerInterval
	}
	if batchSize <= 0 {
		batchSize = defaultExpiryWorkerBatchSize
	}
	return &ExpiryWorker{
		log:       log,
		usecase:   usecase,
		locker:    locker,
		interval:  interval,
		batchSize: batchSize,
		now:       time.Now,
	}
}

// Start schedules the sweep until Stop is called or ctx ends. A sweep that
// outlasts the interval makes the next tick skip.
func (w *ExpiryWorker) Start(ctx context.Context) {
	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	c.Schedule(cron.Every(w.interval), cron.FuncJob(func() {
		if runCtx.Err() != nil {
			return
		}
		w.RunOnce(runCtx)
	}))
	c.Start()
	w.cron = c
}

// Stop cancels in-flight sweeps and waits for them to return.
func (w *ExpiryWorker) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	if w.cron != nil {
		stopped := w.cron.Stop()
		<-stopped.Done()
	}
}

// RunOnce expires due orders in batches until none are left.
func (w *ExpiryWorker) RunOnce(ctx context.Context) int {
	ctx = context.WithValue(ctx, constvars.CONTEXT_REQUEST_ID_KEY, utils.GenerateRequestID())

	if w.locker != nil {
		acquired, token, err := w.locker.TryLock(ctx, constvars.RedisKeyExpiryWorkerLock, 2*w.interval)
		if err != nil {
			w.log.Warn("payments.ExpiryWorker lock attempt failed", zap.Error(err))
			return 0
		}
		if !acquired {
			w.log.Debug("payments.ExpiryWorker lock held by another instance")
			return 0
		}
		defer func() {
			if err := w.locker.Unlock(context.WithoutCancel(ctx), constvars.RedisKeyExpiryWorkerLock, token); err != nil {
				w.log.Warn("payments.ExpiryWorker unlock failed", zap.Error(err))
			}
		}()
	}

	total := 0
	for ctx.Err() == nil {
		expired, err := w.usecase.ExpireDueOrders(ctx, w.now(), w.batchSize)
		total += expired
		if err != nil {
			w.log.Warn("payments.ExpiryWorker sweep failed", zap.Error(err))
			break
		}
		if expired < w.batchSize {
			break
		}
	}
	return total
}
