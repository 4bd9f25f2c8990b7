package orderstore

import (
	"context"
	"hash/fnv"
	"qris-payment-service/internal/app/contracts"
	"qris-payment-service/internal/app/models"
	"qris-payment-service/internal/pkg/exceptions"
	"sort"
	"sync"
	"time"
)

const memoryShardCount = 32

type memoryShard struct {
	mu     sync.RWMutex
	orders map[string]models.PaymentOrder
}

type memoryOrderStore struct {
	shards [memoryShardCount]*memoryShard
	now    func() time.Time
}

// NewMemoryOrderStore keeps orders in process memory, split across shards by
// order id so unrelated orders never contend on one lock. Terminal orders are
// dropped once their purge time passes.
func NewMemoryOrderStore(now func() time.Time) contracts.PaymentOrderRepository {
	if now == nil {
		now = time.Now
	}
	store := &memoryOrderStore{now: now}
	for i := range store.shards {
		store.shards[i] = &memoryShard{orders: make(map[string]models.PaymentOrder)}
	}
	return store
}

func (s *memoryOrderStore) shardFor(merchantOrderID string) *memoryShard {
	h := fnv.New32a()
	h.Write([]byte(merchantOrderID))
	return s.shards[h.Sum32()%memoryShardCount]
}

func (s *memoryOrderStore) FindByMerchantOrderID(ctx context.Context, merchantOrderID string) (*models.PaymentOrder, error) {
	shard := s.shardFor(merchantOrderID)
	shard.mu.RLock()
	defer shard.mu.RUnlock()

	order, ok := shard.orders[merchantOrderID]
	if !ok || s.isPurged(order) {
		return nil, nil
	}
	return &order, nil
}

func (s *memoryOrderStore) Create(ctx context.Context, order *models.PaymentOrder) error {
	shard := s.shardFor(order.MerchantOrderID)
	shard.mu.Lock()
	defer shard.mu.Unlock()

	if existing, ok := shard.orders[order.MerchantOrderID]; ok && !s.isPurged(existing) {
		return exceptions.ErrOrderAlreadyExists(ErrDuplicateOrder, order.MerchantOrderID)
	}
	shard.orders[order.MerchantOrderID] = *order
	return nil
}

func (s *memoryOrderStore) CompareAndSetStatus(ctx context.Context, merchantOrderID string, update models.StatusUpdate) (*models.PaymentOrder, bool, error) {
	shard := s.shardFor(merchantOrderID)
	shard.mu.Lock()
	defer shard.mu.Unlock()

	current, ok := shard.orders[merchantOrderID]
	if !ok || s.isPurged(current) {
		return nil, false, nil
	}
	if current.Status != update.From {
		return &current, false, nil
	}

	next := update.Apply(current)
	shard.orders[merchantOrderID] = next
	return &next, true, nil
}

// FindExpirable walks the shards one at a time, so a sweep holds at most one
// shard lock.
func (s *memoryOrderStore) FindExpirable(ctx context.Context, now time.Time, limit int) ([]models.PaymentOrder, error) {
	var due []models.PaymentOrder
	for _, shard := range s.shards {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		due = append(due, s.sweepShard(shard, now)...)
	}

	sort.Slice(due, func(i, j int) bool {
		return due[i].ExpiresAt.Before(due[j].ExpiresAt)
	})
	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}
	return due, nil
}

func (s *memoryOrderStore) sweepShard(shard *memoryShard, now time.Time) []models.PaymentOrder {
	shard.mu.Lock()
	defer shard.mu.Unlock()

	var due []models.PaymentOrder
	for id, order := range shard.orders {
		if s.isPurged(order) {
			delete(shard.orders, id)
			continue
		}
		if order.IsExpiredAt(now) {
			due = append(due, order)
		}
	}
	return due
}

func (s *memoryOrderStore) isPurged(order models.PaymentOrder) bool {
	return order.PurgeAt != nil && !s.now().Before(*order.PurgeAt)
}
