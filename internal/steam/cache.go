package steam

import (
	"sync"
	"time"
)

// cacheEntry 缓存条目
type cacheEntry struct {
	value     string
	expiresAt time.Time
}

// MemoryCache 进程内的头像URL缓存
type MemoryCache struct {
	entries map[string]*cacheEntry
	mutex   sync.RWMutex

	// 配置
	DefaultTTL      time.Duration
	MaxEntries      int
	CleanupInterval time.Duration

	stop     chan struct{}
	stopOnce sync.Once
}

// NewMemoryCache 创建内存缓存并启动清理协程
func NewMemoryCache(ttl time.Duration, maxEntries int) *MemoryCache {
	cache := &MemoryCache{
		entries:         make(map[string]*cacheEntry),
		DefaultTTL:      ttl,
		MaxEntries:      maxEntries,
		CleanupInterval: time.Minute,
		stop:            make(chan struct{}),
	}

	go cache.cleanup()

	return cache
}

// Get 获取缓存条目，过期视为不存在
func (mc *MemoryCache) Get(key string) (string, bool) {
	mc.mutex.RLock()
	entry, exists := mc.entries[key]
	mc.mutex.RUnlock()

	if !exists {
		return "", false
	}

	if time.Now().After(entry.expiresAt) {
		mc.mutex.Lock()
		// 期间可能已被重新写入
		if current, ok := mc.entries[key]; ok && current == entry {
			delete(mc.entries, key)
		}
		mc.mutex.Unlock()
		return "", false
	}

	return entry.value, true
}

// Set 设置缓存条目
func (mc *MemoryCache) Set(key, value string) {
	mc.mutex.Lock()
	defer mc.mutex.Unlock()

	if _, exists := mc.entries[key]; !exists && len(mc.entries) >= mc.MaxEntries {
		mc.evictExpired()

		if len(mc.entries) >= mc.MaxEntries {
			mc.evictOldest()
		}
	}

	mc.entries[key] = &cacheEntry{
		value:     value,
		expiresAt: time.Now().Add(mc.DefaultTTL),
	}
}

// Len 当前条目数
func (mc *MemoryCache) Len() int {
	mc.mutex.RLock()
	defer mc.mutex.RUnlock()
	return len(mc.entries)
}

// Stop 停止清理协程
func (mc *MemoryCache) Stop() {
	mc.stopOnce.Do(func() { close(mc.stop) })
}

// evictExpired 删除过期条目，调用方持有写锁
func (mc *MemoryCache) evictExpired() {
	now := time.Now()
	for key, entry := range mc.entries {
		if now.After(entry.expiresAt) {
			delete(mc.entries, key)
		}
	}
}

// evictOldest 删除最早过期的条目，调用方持有写锁
func (mc *MemoryCache) evictOldest() {
	var oldestKey string
	var oldestTime time.Time

	for key, entry := range mc.entries {
		if oldestKey == "" || entry.expiresAt.Before(oldestTime) {
			oldestKey = key
			oldestTime = entry.expiresAt
		}
	}

	if oldestKey != "" {
		delete(mc.entries, oldestKey)
	}
}

// cleanup 定期清理过期条目
func (mc *MemoryCache) cleanup() {
	ticker := time.NewTicker(mc.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			mc.mutex.Lock()
			mc.evictExpired()
			mc.mutex.Unlock()
		case <-mc.stop:
			return
		}
	}
}
