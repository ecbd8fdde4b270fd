// components/cache/client.go
package cache

import (
	"bufio"
	"context"
	"fmt"
	"strconv"
	"sort"
	"strings"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/grand-thief-cash/chaos/app/projects/dbkeeper/internal/model"
)

const defaultScanCount = 500

// Client is the slice of redis the maintenance tasks use.
type Client struct {
	rdb redis.UniversalClient
}

func NewClient(rdb redis.UniversalClient) *Client { return &Client{rdb: rdb} }

func (c *Client) Ping(ctx context.Context) error { return c.rdb.Ping(ctx).Err() }

func (c *Client) Close() error { return c.rdb.Close() }

// DeleteMatching removes every key matching the glob pattern and returns how
// many were deleted. Keys are walked with SCAN so the server is never
// blocked by a full keyspace listing.
func (c *Client) DeleteMatching(ctx context.Context, pattern string, count int64) (int64, error) {
	if count <= 0 {
		count = defaultScanCount
	}
	if cc, ok := c.rdb.(*redis.ClusterClient); ok {
		masters, err := clusterMasters(ctx, cc)
		if err != nil {
			return 0, err
		}
		var total int64
		for _, node := range masters {
			n, err := deleteOnNode(ctx, node, pattern, count)
			total += n
			if err != nil {
				return total, fmt.Errorf("master %s: %w", node.Options().Addr, err)
			}
		}
		return total, nil
	}
	return deleteOnNode(ctx, c.rdb, pattern, count)
}

// clusterMasters lists the master clients ordered by address. Only the
// listing goes through ForEachMaster; the deletes run one node at a time.
func clusterMasters(ctx context.Context, cc *redis.ClusterClient) ([]*redis.Client, error) {
	var (
		mu      sync.Mutex
		masters []*redis.Client
	)
	err := cc.ForEachMaster(ctx, func(_ context.Context, node *redis.Client) error {
		mu.Lock()
		masters = append(masters, node)
		mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list cluster masters: %w", err)
	}
	sort.Slice(masters, func(i, j int) bool {
		return masters[i].Options().Addr < masters[j].Options().Addr
	})
	return masters, nil
}

func deleteOnNode(ctx context.Context, rdb redis.Cmdable, pattern string, count int64) (int64, error) {
	var (
		cursor  uint64
		deleted int64
	)
	for {
		keys, next, err := rdb.Scan(ctx, cursor, pattern, count).Result()
		if err != nil {
			return deleted, fmt.Errorf("scan %q: %w", pattern, err)
		}
		if len(keys) > 0 {
			cmds := make([]*redis.IntCmd, 0, len(keys))
			_, err := rdb.Pipelined(ctx, func(p redis.Pipeliner) error {
				for _, k := range keys {
					cmds = append(cmds, p.Del(ctx, k))
				}
				return nil
			})
			if err != nil {
				return deleted, fmt.Errorf("delete batch: %w", err)
			}
			for _, cmd := range cmds {
				deleted += cmd.Val()
			}
		}
		cursor = next
		if cursor == 0 {
			return deleted, nil
		}
	}
}

// Stats reads server version, memory, client count and key count.
func (c *Client) Stats(ctx context.Context) (model.CacheInfo, error) {
	raw, err := c.rdb.Info(ctx).Result()
	if err != nil {
		return model.CacheInfo{}, fmt.Errorf("redis info: %w", err)
	}
	fields := parseInfo(raw)

	info := model.CacheInfo{
		Version:         fields["redis_version"],
		MemoryUsedHuman: fields["used_memory_human"],
	}
	info.MemoryUsed, _ = strconv.ParseInt(fields["used_memory"], 10, 64)
	info.ConnectedClients, _ = strconv.ParseInt(fields["connected_clients"], 10, 64)

	n, err := c.rdb.DBSize(ctx).Result()
	if err != nil {
		return model.CacheInfo{}, fmt.Errorf("redis dbsize: %w", err)
	}
	info.KeyCount = n
	return info, nil
}

// parseInfo turns the INFO text block into key/value pairs.
func parseInfo(raw string) map[string]string {
	out := make(map[string]string)
	sc := bufio.NewScanner(strings.NewReader(raw))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if k, v, ok := strings.Cut(line, ":"); ok {
			out[k] = v
		}
	}
	return out
}
