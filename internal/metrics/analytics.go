package metrics

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// analyticsKey is the Redis sorted set holding query frequencies.
const analyticsKey = "sarkari:analytics:queries"

// QueryCount is one entry of the top-queries list.
type QueryCount struct {
	Query string `json:"query"`
	Count int64  `json:"count"`
}

// QueryAnalytics tracks search query frequencies, either in Redis (shared
// across instances, survives restarts) or in memory.
type QueryAnalytics struct {
	client *redis.Client

	mu     sync.RWMutex
	counts map[string]int64
}

// NewMemoryAnalytics creates in-memory query analytics.
func NewMemoryAnalytics() *QueryAnalytics {
	return &QueryAnalytics{
		counts: make(map[string]int64),
	}
}

// NewRedisAnalytics creates Redis-backed query analytics. The connection is
// verified before returning.
func NewRedisAnalytics(url string) (*QueryAnalytics, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	return &QueryAnalytics{client: client}, nil
}

// RecordQuery increments the count for a normalized query. Failures are
// swallowed; analytics must never break a search.
func (a *QueryAnalytics) RecordQuery(ctx context.Context, query string) {
	query = normalizeQuery(query)
	if query == "" {
		return
	}

	if a.client != nil {
		a.client.ZIncrBy(ctx, analyticsKey, 1, query)
		return
	}

	a.mu.Lock()
	a.counts[query]++
	a.mu.Unlock()
}

// TopQueries returns the limit most frequent queries, descending.
func (a *QueryAnalytics) TopQueries(ctx context.Context, limit int) ([]QueryCount, error) {
	if limit <= 0 {
		limit = 10
	}

	if a.client != nil {
		entries, err := a.client.ZRevRangeWithScores(ctx, analyticsKey, 0, int64(limit-1)).Result()
		if err != nil {
			return nil, fmt.Errorf("loading top queries: %w", err)
		}

		out := make([]QueryCount, 0, len(entries))
		for _, z := range entries {
			query, ok := z.Member.(string)
			if !ok {
				continue
			}
			out = append(out, QueryCount{Query: query, Count: int64(z.Score)})
		}
		return out, nil
	}

	a.mu.RLock()
	out := make([]QueryCount, 0, len(a.counts))
	for q, c := range a.counts {
		out = append(out, QueryCount{Query: q, Count: c})
	}
	a.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Query < out[j].Query
	})

	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Close releases the Redis connection, if any.
func (a *QueryAnalytics) Close() error {
	if a.client != nil {
		return a.client.Close()
	}
	return nil
}

// normalizeQuery folds case and whitespace so "KYC norms" and "kyc  norms"
// count as one query.
func normalizeQuery(query string) string {
	return strings.Join(strings.Fields(strings.ToLower(query)), " ")
}
