package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/wyfcoding/nexoshop/pkg/cache"
	"github.com/wyfcoding/nexoshop/pkg/logger"
)

// 会话数据键
const (
	KeyCart          = "cart"
	KeyAdminCheckout = "admin_checkout_data"
	KeyFlash         = "_messages"
)

var knownKeys = []string{KeyCart, KeyAdminCheckout, KeyFlash}

// Store 会话数据存储，值以 JSON 保存
type Store interface {
	// Get 读取到 dest，不存在时返回 false
	Get(ctx context.Context, sid, key string, dest any) (bool, error)
	Set(ctx context.Context, sid, key string, value any) error
	Delete(ctx context.Context, sid, key string) error
	// Destroy 删除会话的全部数据
	Destroy(ctx context.Context, sid string) error
}

type memoryEntry struct {
	values  map[string][]byte
	expires time.Time
}

// MemoryStore 进程内会话存储，每次写入顺延过期时间
type MemoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]*memoryEntry
	now     func() time.Time
}

// NewMemoryStore 创建内存会话存储
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{ttl: ttl, entries: make(map[string]*memoryEntry), now: time.Now}
}

func (m *MemoryStore) live(sid string) *memoryEntry {
	e, ok := m.entries[sid]
	if !ok {
		return nil
	}
	if m.now().After(e.expires) {
		delete(m.entries, sid)
		return nil
	}
	return e
}

func (m *MemoryStore) Get(_ context.Context, sid, key string, dest any) (bool, error) {
	m.mu.Lock()
	e := m.live(sid)
	var raw []byte
	if e != nil {
		raw = e.values[key]
	}
	m.mu.Unlock()
	if raw == nil {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (m *MemoryStore) Set(_ context.Context, sid, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.live(sid)
	if e == nil {
		e = &memoryEntry{values: make(map[string][]byte)}
		m.entries[sid] = e
	}
	e.values[key] = raw
	e.expires = m.now().Add(m.ttl)
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, sid, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e := m.live(sid); e != nil {
		delete(e.values, key)
	}
	return nil
}

func (m *MemoryStore) Destroy(_ context.Context, sid string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, sid)
	return nil
}

// Sweep 清理过期会话，返回清理数量
func (m *MemoryStore) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	now := m.now()
	for sid, e := range m.entries {
		if now.After(e.expires) {
			delete(m.entries, sid)
			n++
		}
	}
	return n
}

// Run 定期清理过期会话，直到 ctx 结束
func (m *MemoryStore) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.Sweep(); n > 0 {
				logger.Debug(ctx, "expired sessions swept", "count", n)
			}
		}
	}
}

// RedisStore 基于 Redis 的会话存储，键为 session:<sid>:<key>
type RedisStore struct {
	cache *cache.RedisCache
	ttl   time.Duration
}

// NewRedisStore 创建 Redis 会话存储
func NewRedisStore(c *cache.RedisCache, ttl time.Duration) *RedisStore {
	return &RedisStore{cache: c, ttl: ttl}
}

func redisKey(sid, key string) string {
	return "session:" + sid + ":" + key
}

func (r *RedisStore) Get(ctx context.Context, sid, key string, dest any) (bool, error) {
	return r.cache.GetJSON(ctx, redisKey(sid, key), dest)
}

func (r *RedisStore) Set(ctx context.Context, sid, key string, value any) error {
	return r.cache.SetJSON(ctx, redisKey(sid, key), value, r.ttl)
}

func (r *RedisStore) Delete(ctx context.Context, sid, key string) error {
	return r.cache.Delete(ctx, redisKey(sid, key))
}

func (r *RedisStore) Destroy(ctx context.Context, sid string) error {
	keys := make([]string, 0, len(knownKeys))
	for _, k := range knownKeys {
		keys = append(keys, redisKey(sid, k))
	}
	return r.cache.Delete(ctx, keys...)
}
