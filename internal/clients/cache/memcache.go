package cache

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"max.ks1230/expenses-api/internal/logger"
	"max.ks1230/expenses-api/internal/model/reports"
)

// ErrMiss is returned by GetSummary when nothing is cached under the key.
var ErrMiss = errors.New("cache miss")

type memcacheClient interface {
	Get(key string) (*memcache.Item, error)
	Set(item *memcache.Item) error
	Increment(key string, delta uint64) (uint64, error)
	Add(item *memcache.Item) error
}

// MemcacheClient caches summaries per owner. Each owner has a generation
// counter that is part of every key; bumping it makes all of the owner's
// entries unreachable at once and they age out through the TTL.
type MemcacheClient struct {
	client memcacheClient
	ttl    time.Duration
}

type config interface {
	Hosts() []string
	TTL() time.Duration
}

func NewMemcache(config config) (*MemcacheClient, error) {
	logger.Info("memcached hosts", zap.Strings("hosts", config.Hosts()))
	mc := memcache.New(config.Hosts()...)
	return &MemcacheClient{client: mc, ttl: config.TTL()}, mc.Ping()
}

func generationKey(owner uuid.UUID) string {
	return owner.String() + ":gen"
}

func (mc *MemcacheClient) formatKey(owner uuid.UUID, option string) (string, error) {
	gen := "0"
	item, err := mc.client.Get(generationKey(owner))
	switch {
	case err == nil:
		gen = string(item.Value)
	case !errors.Is(err, memcache.ErrCacheMiss):
		return "", err
	}
	return owner.String() + ":" + gen + ":" + option, nil
}

func (mc *MemcacheClient) CacheSummary(owner uuid.UUID, option string, summary reports.Summary) error {
	logger.Debug("cache summary", zap.Stringer("userID", owner), zap.String("option", option))
	key, err := mc.formatKey(owner, option)
	if err != nil {
		return errors.Wrap(err, "cache summary")
	}
	raw, err := json.Marshal(summary)
	if err != nil {
		return errors.Wrap(err, "cache summary")
	}
	return mc.client.Set(&memcache.Item{
		Key:        key,
		Value:      raw,
		Expiration: int32(mc.ttl / time.Second),
	})
}

func (mc *MemcacheClient) GetSummary(owner uuid.UUID, option string) (reports.Summary, error) {
	logger.Debug("get summary from cache", zap.Stringer("userID", owner), zap.String("option", option))
	key, err := mc.formatKey(owner, option)
	if err != nil {
		return reports.Summary{}, errors.Wrap(err, "get summary")
	}
	item, err := mc.client.Get(key)
	if err != nil {
		if errors.Is(err, memcache.ErrCacheMiss) {
			return reports.Summary{}, ErrMiss
		}
		return reports.Summary{}, errors.Wrap(err, "get summary")
	}
	var summary reports.Summary
	if err = json.Unmarshal(item.Value, &summary); err != nil {
		return reports.Summary{}, errors.Wrap(err, "decode cached summary")
	}
	return summary, nil
}

func (mc *MemcacheClient) InvalidateCache(owner uuid.UUID) error {
	logger.Debug("invalidate cache", zap.Stringer("userID", owner))

	key := generationKey(owner)
	_, err := mc.client.Increment(key, 1)
	if err == nil {
		return nil
	}
	if !errors.Is(err, memcache.ErrCacheMiss) {
		return err
	}
	// No counter yet: start it at 1, which differs from the implicit 0.
	err = mc.client.Add(&memcache.Item{Key: key, Value: []byte(strconv.Itoa(1))})
	if errors.Is(err, memcache.ErrNotStored) {
		_, err = mc.client.Increment(key, 1)
	}
	return err
}
