package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nazar-zhcet26/Tenant-management/models"
	"github.com/redis/go-redis/v9"
)

const (
	maxDraftUpdateRetries = 10
	draftScanBatch        = 100
)

// RedisDraftStore keeps drafts as JSON values that expire after ttl of inactivity.
type RedisDraftStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisDraftStore(client *redis.Client, ttl time.Duration) *RedisDraftStore {
	return &RedisDraftStore{client: client, prefix: "draft:", ttl: ttl}
}

func (s *RedisDraftStore) key(id string) string {
	return s.prefix + id
}

func (s *RedisDraftStore) Create(ctx context.Context, d models.Draft) error {
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("failed to encode draft: %w", err)
	}
	return s.client.Set(ctx, s.key(d.ID), data, s.ttl).Err()
}

func (s *RedisDraftStore) Get(ctx context.Context, id string) (models.Draft, error) {
	raw, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.Draft{}, ErrDraftNotFound
	}
	if err != nil {
		return models.Draft{}, err
	}
	return decodeDraft(raw)
}

// Update uses WATCH/MULTI so concurrent writers retry instead of clobbering each other.
func (s *RedisDraftStore) Update(ctx context.Context, id string, fn func(models.Draft) (models.Draft, error)) (models.Draft, error) {
	key := s.key(id)
	var result models.Draft

	txf := func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return ErrDraftNotFound
		}
		if err != nil {
			return err
		}
		current, err := decodeDraft(raw)
		if err != nil {
			return err
		}
		next, err := fn(current)
		if err != nil {
			result = current
			return err
		}
		data, err := json.Marshal(next)
		if err != nil {
			return fmt.Errorf("failed to encode draft: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, s.ttl)
			return nil
		})
		if err == nil {
			result = next
		}
		return err
	}

	for i := 0; i < maxDraftUpdateRetries; i++ {
		err := s.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return result, err
	}
	return models.Draft{}, fmt.Errorf("draft %s: too many concurrent updates", id)
}

func (s *RedisDraftStore) Delete(ctx context.Context, id string, check func(models.Draft) error) (models.Draft, error) {
	key := s.key(id)
	var removed models.Draft

	txf := func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return ErrDraftNotFound
		}
		if err != nil {
			return err
		}
		current, err := decodeDraft(raw)
		if err != nil {
			return err
		}
		if check != nil {
			if err := check(current); err != nil {
				return err
			}
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key)
			return nil
		})
		if err == nil {
			removed = current
		}
		return err
	}

	for i := 0; i < maxDraftUpdateRetries; i++ {
		err := s.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return models.Draft{}, err
		}
		return removed, nil
	}
	return models.Draft{}, fmt.Errorf("draft %s: too many concurrent updates", id)
}

// ForEach walks the draft keys with SCAN. Keys that expire mid-walk are skipped.
func (s *RedisDraftStore) ForEach(ctx context.Context, fn func(models.Draft) error) error {
	iter := s.client.Scan(ctx, 0, s.prefix+"*", draftScanBatch).Iterator()
	for iter.Next(ctx) {
		raw, err := s.client.Get(ctx, iter.Val()).Bytes()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return err
		}
		d, err := decodeDraft(raw)
		if err != nil {
			return err
		}
		if err := fn(d); err != nil {
			return err
		}
	}
	return iter.Err()
}

func decodeDraft(raw []byte) (models.Draft, error) {
	var d models.Draft
	if err := json.Unmarshal(raw, &d); err != nil {
		return models.Draft{}, fmt.Errorf("failed to decode draft: %w", err)
	}
	if d.Photos == nil {
		d.Photos = []models.Attachment{}
	}
	if d.Videos == nil {
		d.Videos = []models.Attachment{}
	}
	return d, nil
}
