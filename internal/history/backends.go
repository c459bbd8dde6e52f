package history

import (
	"context"
	"encoding/base64"
	"errors"

	"github.com/redis/go-redis/v9"

	"imagecraft/internal/storage"
)

// RedisBackend keeps one string key per device.
type RedisBackend struct {
	client redis.UniversalClient
}

func NewRedisBackend(client redis.UniversalClient) *RedisBackend {
	return &RedisBackend{client: client}
}

func redisKey(deviceID string) string {
	return DocumentKey + ":" + deviceID
}

func (b *RedisBackend) Load(ctx context.Context, deviceID string) ([]byte, error) {
	data, err := b.client.Get(ctx, redisKey(deviceID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return data, err
}

func (b *RedisBackend) Save(ctx context.Context, deviceID string, data []byte) error {
	return b.client.Set(ctx, redisKey(deviceID), data, 0).Err()
}

// FileBackend stores documents through a storage.Store.
type FileBackend struct {
	store storage.Store
}

func NewFileBackend(store storage.Store) *FileBackend {
	return &FileBackend{store: store}
}

// fileKey encodes the device id so it always maps to one path segment.
func fileKey(deviceID string) string {
	return "history/" + base64.RawURLEncoding.EncodeToString([]byte(deviceID)) + "/" + DocumentKey + ".json"
}

func (b *FileBackend) Load(ctx context.Context, deviceID string) ([]byte, error) {
	data, err := b.store.Get(ctx, fileKey(deviceID))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	return data, err
}

func (b *FileBackend) Save(ctx context.Context, deviceID string, data []byte) error {
	_, err := b.store.Put(ctx, fileKey(deviceID), data, "application/json")
	return err
}
