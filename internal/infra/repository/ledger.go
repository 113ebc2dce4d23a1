package repository

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/KasumiMercury/primind-floor-operations/internal/domain"
	"github.com/KasumiMercury/primind-floor-operations/internal/observability/tracing"
)

const (
	notifiedKeyPrefix      = "floor:notified:"
	notifiedIndexKeyPrefix = "floor:notified-index:"

	DefaultLedgerTTL = 24 * time.Hour
)

type notificationLedger struct {
	client *redis.Client
	ttl    time.Duration
}

func NewNotificationLedger(client *redis.Client, ttl time.Duration) domain.NotificationLedger {
	if ttl <= 0 {
		ttl = DefaultLedgerTTL
	}
	return &notificationLedger{
		client: client,
		ttl:    ttl,
	}
}

func notifiedKey(storeID, positionID string, windowStart time.Time) string {
	return notifiedKeyPrefix + storeID + ":" + positionID + ":" + strconv.FormatInt(windowStart.UnixMilli(), 10)
}

// notifiedIndexKey holds every claimed window start of a position, scored by
// its epoch milliseconds.
func notifiedIndexKey(storeID, positionID string) string {
	return notifiedIndexKeyPrefix + storeID + ":" + positionID
}

func (l *notificationLedger) ClaimWindow(ctx context.Context, storeID, positionID string, windowStart time.Time) (bool, error) {
	key := notifiedKey(storeID, positionID, windowStart)
	ctx, span := tracing.StartRedisOperationSpan(ctx, "claim_window", key)
	defer span.End()

	claimed, err := l.client.SetNX(ctx, key, time.Now().UTC().Format(time.RFC3339), l.ttl).Result()
	if err != nil {
		span.RecordError(err)
		return false, err
	}
	if !claimed {
		return false, nil
	}

	indexKey := notifiedIndexKey(storeID, positionID)
	ms := windowStart.UnixMilli()
	_, err = l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZAdd(ctx, indexKey, redis.Z{Score: float64(ms), Member: strconv.FormatInt(ms, 10)})
		pipe.Expire(ctx, indexKey, l.ttl)
		return nil
	})
	if err != nil {
		span.RecordError(err)
		l.client.Del(ctx, key)
		return false, err
	}
	return true, nil
}

func (l *notificationLedger) ReleaseWindow(ctx context.Context, storeID, positionID string, windowStart time.Time) error {
	key := notifiedKey(storeID, positionID, windowStart)
	ctx, span := tracing.StartRedisOperationSpan(ctx, "release_window", key)
	defer span.End()

	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.ZRem(ctx, notifiedIndexKey(storeID, positionID), strconv.FormatInt(windowStart.UnixMilli(), 10))
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}

func (l *notificationLedger) ClaimedWindows(ctx context.Context, storeID, positionID string, from, to time.Time) ([]time.Time, error) {
	indexKey := notifiedIndexKey(storeID, positionID)
	ctx, span := tracing.StartRedisOperationSpan(ctx, "claimed_windows", indexKey)
	defer span.End()

	members, err := l.client.ZRangeByScore(ctx, indexKey, &redis.ZRangeBy{
		Min: strconv.FormatInt(from.UnixMilli(), 10),
		Max: "(" + strconv.FormatInt(to.UnixMilli(), 10),
	}).Result()
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	starts := make([]time.Time, 0, len(members))
	for _, m := range members {
		ms, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			continue
		}
		starts = append(starts, time.UnixMilli(ms))
	}
	return starts, nil
}
