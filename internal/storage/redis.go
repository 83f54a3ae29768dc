package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/PMacajol/Agro-MAGU/internal/data"
	"github.com/redis/go-redis/v9"
)

const alertIndexKey = "frijol:alerts"

// RedisArchive keeps a longer alert trail than the in-memory history, in a
// sorted set scored by alert time.
type RedisArchive struct {
	client   *redis.Client
	maxItems int64
}

func NewRedisArchive(addr, password string, db int, maxItems int64) (*RedisArchive, error) {
	client := redis.NewClient(&redis.Options{
		Addr:       addr,
		Password:   password,
		DB:         db,
		MaxRetries: 3,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	if maxItems <= 0 {
		maxItems = 500
	}
	return &RedisArchive{client: client, maxItems: maxItems}, nil
}

// Store adds a record and trims the set to the newest maxItems entries.
func (a *RedisArchive) Store(ctx context.Context, rec data.AlertRecord) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal alert: %w", err)
	}

	_, err = a.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZAdd(ctx, alertIndexKey, redis.Z{
			Score:  float64(rec.Timestamp.UnixMilli()),
			Member: payload,
		})
		pipe.ZRemRangeByRank(ctx, alertIndexKey, 0, -(a.maxItems + 1))
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to archive alert %s: %w", rec.ID, err)
	}
	return nil
}

// Recent returns up to count archived records, newest first.
func (a *RedisArchive) Recent(ctx context.Context, count int64) ([]data.AlertRecord, error) {
	if count <= 0 {
		count = a.maxItems
	}
	members, err := a.client.ZRevRange(ctx, alertIndexKey, 0, count-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read alert archive: %w", err)
	}

	records := make([]data.AlertRecord, 0, len(members))
	for _, m := range members {
		var rec data.AlertRecord
		if err := json.Unmarshal([]byte(m), &rec); err != nil {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

func (a *RedisArchive) Close() error {
	return a.client.Close()
}
