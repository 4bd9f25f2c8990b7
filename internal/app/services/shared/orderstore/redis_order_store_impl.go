package orderstore

import (
	"context"
	"fmt"
	"qris-payment-service/internal/app/contracts"
	"qris-payment-service/internal/app/models"
	"qris-payment-service/internal/pkg/constvars"
	"qris-payment-service/internal/pkg/exceptions"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

const (
	orderFieldStatus = "status"
	orderFieldData   = "data"
)

// createOrderScript writes the order hash only when absent and indexes pending
// orders by expiry.
//
// KEYS[1] order hash, KEYS[2] pending index
// ARGV[1] status, ARGV[2] json, ARGV[3] order id, ARGV[4] expiry score or ""
var createOrderScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 1 then
	return 0
end
redis.call("HSET", KEYS[1], "status", ARGV[1], "data", ARGV[2])
if ARGV[4] ~= "" then
	redis.call("ZADD", KEYS[2], ARGV[4], ARGV[3])
end
return 1
`)

// compareAndSetScript replaces the order only while its status equals
// ARGV[1]. Returns -1 when absent, 0 on status mismatch, 1 when applied.
//
// KEYS[1] order hash, KEYS[2] pending index
// ARGV[1] expected status, ARGV[2] new status, ARGV[3] json, ARGV[4] order id,
// ARGV[5] expiry score or "" to leave the index, ARGV[6] retention ms or "0"
var compareAndSetScript = redis.NewScript(`
local current = redis.call("HGET", KEYS[1], "status")
if not current then
	return -1
end
if current ~= ARGV[1] then
	return 0
end
redis.call("HSET", KEYS[1], "status", ARGV[2], "data", ARGV[3])
if ARGV[5] ~= "" then
	redis.call("ZADD", KEYS[2], ARGV[5], ARGV[4])
else
	redis.call("ZREM", KEYS[2], ARGV[4])
end
if tonumber(ARGV[6]) > 0 then
	redis.call("PEXPIRE", KEYS[1], ARGV[6])
end
return 1
`)

type redisOrderStore struct {
	client *redis.Client
}

func NewRedisOrderStore(client *redis.Client) contracts.PaymentOrderRepository {
	return &redisOrderStore{client: client}
}

func orderKey(merchantOrderID string) string {
	return constvars.RedisKeyOrderPrefix + merchantOrderID
}

func expiryScore(order models.PaymentOrder) string {
	if order.Status.IsTerminal() {
		return ""
	}
	return strconv.FormatInt(order.ExpiresAt.UnixMilli(), 10)
}

func (s *redisOrderStore) FindByMerchantOrderID(ctx context.Context, merchantOrderID string) (*models.PaymentOrder, error) {
	key := orderKey(merchantOrderID)
	data, err := s.client.HGet(ctx, key, orderFieldData).Result()
	if err == redis.Nil {
		return nil, nil
	} else if err != nil {
		return nil, exceptions.ErrRedisGetNoData(err, key)
	}

	var order models.PaymentOrder
	if err := json.Unmarshal([]byte(data), &order); err != nil {
		return nil, exceptions.ErrCannotParseJSON(err)
	}
	return &order, nil
}

func (s *redisOrderStore) Create(ctx context.Context, order *models.PaymentOrder) error {
	data, err := json.Marshal(order)
	if err != nil {
		return exceptions.ErrCannotMarshalJSON(err)
	}

	created, err := createOrderScript.Run(ctx, s.client,
		[]string{orderKey(order.MerchantOrderID), constvars.RedisKeyPendingOrdersIndex},
		string(order.Status), string(data), order.MerchantOrderID, expiryScore(*order),
	).Int()
	if err != nil {
		return exceptions.ErrRedisScript(err)
	}
	if created == 0 {
		return exceptions.ErrOrderAlreadyExists(ErrDuplicateOrder, order.MerchantOrderID)
	}
	return nil
}

func (s *redisOrderStore) CompareAndSetStatus(ctx context.Context, merchantOrderID string, update models.StatusUpdate) (*models.PaymentOrder, bool, error) {
	current, err := s.FindByMerchantOrderID(ctx, merchantOrderID)
	if err != nil || current == nil {
		return nil, false, err
	}
	if current.Status != update.From {
		return current, false, nil
	}

	next := update.Apply(*current)
	data, err := json.Marshal(next)
	if err != nil {
		return nil, false, exceptions.ErrCannotMarshalJSON(err)
	}

	var retention int64
	if next.Status.IsTerminal() && next.PurgeAt != nil {
		retention = next.PurgeAt.Sub(update.At).Milliseconds()
	}

	result, err := compareAndSetScript.Run(ctx, s.client,
		[]string{orderKey(merchantOrderID), constvars.RedisKeyPendingOrdersIndex},
		string(update.From), string(next.Status), string(data), merchantOrderID,
		expiryScore(next), strconv.FormatInt(retention, 10),
	).Int()
	if err != nil {
		return nil, false, exceptions.ErrRedisScript(err)
	}

	switch result {
	case 1:
		return &next, true, nil
	case -1:
		return nil, false, nil
	default:
		latest, err := s.FindByMerchantOrderID(ctx, merchantOrderID)
		return latest, false, err
	}
}

func (s *redisOrderStore) FindExpirable(ctx context.Context, now time.Time, limit int) ([]models.PaymentOrder, error) {
	if limit <= 0 {
		limit = 100
	}

	ids, err := s.client.ZRangeByScore(ctx, constvars.RedisKeyPendingOrdersIndex, &redis.ZRangeBy{
		Min:   "-inf",
		Max:   strconv.FormatInt(now.UnixMilli(), 10),
		Count: int64(limit),
	}).Result()
	if err != nil {
		return nil, exceptions.ErrRedisGet(err)
	}

	due := make([]models.PaymentOrder, 0, len(ids))
	for _, id := range ids {
		order, err := s.FindByMerchantOrderID(ctx, id)
		if err != nil {
			return nil, err
		}
		if order == nil {
			if err := s.client.ZRem(ctx, constvars.RedisKeyPendingOrdersIndex, id).Err(); err != nil {
				return nil, exceptions.ErrRedisDelete(fmt.Errorf("prune %s from pending index: %w", id, err))
			}
			continue
		}
		if order.IsExpiredAt(now) {
			due = append(due, *order)
		}
	}
	return due, nil
}
