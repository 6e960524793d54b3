package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/daybook/daybook/internal/calendar"
)

const (
	// entryDatesPrefix is the Redis key prefix for an account's calendar index.
	entryDatesPrefix = "entrydates:"
	// entryDatesGenPrefix prefixes the per-account generation counter. It is
	// bumped on every invalidation and never expires.
	entryDatesGenPrefix = "entrydates:gen:"
	// entryDatesTTL bounds how long a cached index may live without a mutation.
	entryDatesTTL = 24 * time.Hour
)

// setEntryDatesScript stores the index only while the generation still
// matches the one observed when the index was read from the database.
// KEYS[1] = index key, KEYS[2] = generation key
// ARGV[1] = expected generation, ARGV[2] = payload, ARGV[3] = ttl (ms)
var setEntryDatesScript = redis.NewScript(`
local current = redis.call('GET', KEYS[2])
if not current then
	current = '0'
end
if current ~= ARGV[1] then
	return 0
end
redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
return 1
`)

// Both keys share a hash tag so the script and the invalidation transaction
// stay on one slot under Redis Cluster.
func entryDatesKey(ownerID string) string    { return entryDatesPrefix + "{" + ownerID + "}" }
func entryDatesGenKey(ownerID string) string { return entryDatesGenPrefix + "{" + ownerID + "}" }

// GetEntryDates returns the cached calendar index of ownerID and the current
// generation. On ErrCacheMiss the generation is still valid and must be
// handed to SetEntryDates when filling the cache.
func (c *Cache) GetEntryDates(ctx context.Context, ownerID string) ([]calendar.Date, int64, error) {
	vals, err := c.client.MGet(ctx, entryDatesKey(ownerID), entryDatesGenKey(ownerID)).Result()
	if err != nil {
		return nil, 0, fmt.Errorf("get entry dates: %w", err)
	}

	gen, err := parseGeneration(vals[1])
	if err != nil {
		return nil, 0, err
	}

	raw, ok := vals[0].(string)
	if !ok {
		return nil, gen, ErrCacheMiss
	}

	var values []string
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		// Corrupted cache entry - treat as miss
		return nil, gen, ErrCacheMiss
	}
	dates, err := calendar.ParseAll(values)
	if err != nil {
		return nil, gen, ErrCacheMiss
	}
	return dates, gen, nil
}

// SetEntryDates caches the calendar index of ownerID when generation is
// still current. A stale fill is dropped and reports false.
func (c *Cache) SetEntryDates(ctx context.Context, ownerID string, generation int64, dates []calendar.Date) (bool, error) {
	data, err := json.Marshal(calendar.Strings(dates))
	if err != nil {
		return false, fmt.Errorf("marshal entry dates: %w", err)
	}

	stored, err := setEntryDatesScript.Run(ctx, c.client,
		[]string{entryDatesKey(ownerID), entryDatesGenKey(ownerID)},
		strconv.FormatInt(generation, 10), data, entryDatesTTL.Milliseconds(),
	).Int()
	if err != nil {
		return false, fmt.Errorf("set entry dates: %w", err)
	}
	return stored == 1, nil
}

// InvalidateEntryDates drops the cached index after a mutation and bumps the
// generation so in-flight fills started before it are discarded.
func (c *Cache) InvalidateEntryDates(ctx context.Context, ownerID string) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, entryDatesGenKey(ownerID))
		pipe.Del(ctx, entryDatesKey(ownerID))
		return nil
	})
	if err != nil {
		return fmt.Errorf("invalidate entry dates: %w", err)
	}
	return nil
}

func parseGeneration(v any) (int64, error) {
	s, ok := v.(string)
	if !ok {
		return 0, nil
	}
	gen, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: bad generation %q", ErrCacheMiss, s)
	}
	return gen, nil
}
