package readingcache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/aqi-search/internal/domain/aqi"
)

// ValkeyStore shares cached readings across instances using a Valkey-compatible database.
type ValkeyStore struct {
	client valkey.Client
	prefix string
}

// NewValkeyStore constructs a new store backed by Valkey.
func NewValkeyStore(client valkey.Client, prefix string) *ValkeyStore {
	if prefix == "" {
		prefix = "aqi"
	}
	return &ValkeyStore{client: client, prefix: prefix}
}

func (s *ValkeyStore) Get(ctx context.Context, key string) (aqi.Reading, bool, error) {
	if key == "" {
		return aqi.Reading{}, false, nil
	}
	payload, err := s.client.Do(ctx, s.client.B().Get().Key(s.entryKey(key)).Build()).ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return aqi.Reading{}, false, nil
		}
		return aqi.Reading{}, false, err
	}
	var reading aqi.Reading
	if err := json.Unmarshal([]byte(payload), &reading); err != nil {
		return aqi.Reading{}, false, err
	}
	return reading, true, nil
}

func (s *ValkeyStore) Set(ctx context.Context, key string, reading aqi.Reading, ttl time.Duration) error {
	payload, err := json.Marshal(reading)
	if err != nil {
		return err
	}
	builder := s.client.B().Set().Key(s.entryKey(key)).Value(string(payload))
	var cmd valkey.Completed
	if ttl > 0 {
		if ttl < time.Second {
			ttl = time.Second
		}
		cmd = builder.Ex(ttl).Build()
	} else {
		cmd = builder.Build()
	}
	return s.client.Do(ctx, cmd).Error()
}

func (s *ValkeyStore) entryKey(city string) string {
	return fmt.Sprintf("%s:reading:%s", s.prefix, city)
}

var _ aqi.Cache = (*ValkeyStore)(nil)
