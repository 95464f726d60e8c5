package steam

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/leighmacdonald/steamid/v4/steamid"
	"go.uber.org/zap"
)

const (
	// DefaultAPIBase Steam Web API地址
	DefaultAPIBase = "https://api.steampowered.com"

	profileURLFormat = "https://steamcommunity.com/profiles/%s"
	maxCacheEntries  = 5000
)

// AvatarStore 统计进程维护的头像缓存
type AvatarStore interface {
	CachedAvatar(ctx context.Context, playerID string) (string, bool, error)
}

// AvatarResolver 解析玩家头像URL
// 查找顺序: 进程内缓存 -> Redis缓存 -> Steam Web API
type AvatarResolver struct {
	store      AvatarStore
	cache      *MemoryCache
	apiKey     string
	apiBase    string
	httpClient *http.Client
	log        *zap.SugaredLogger
}

// AvatarOptions 头像解析配置
type AvatarOptions struct {
	APIKey         string
	APIBase        string
	CacheTTL       time.Duration
	RequestTimeout time.Duration
}

// NewAvatarResolver 创建头像解析器
func NewAvatarResolver(store AvatarStore, opts AvatarOptions, log *zap.SugaredLogger) *AvatarResolver {
	if opts.APIBase == "" {
		opts.APIBase = DefaultAPIBase
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = time.Hour
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 5 * time.Second
	}

	return &AvatarResolver{
		store:      store,
		cache:      NewMemoryCache(opts.CacheTTL, maxCacheEntries),
		apiKey:     opts.APIKey,
		apiBase:    opts.APIBase,
		httpClient: &http.Client{Timeout: opts.RequestTimeout},
		log:        log,
	}
}

// Close 释放缓存清理协程
func (r *AvatarResolver) Close() {
	r.cache.Stop()
}

// ProfileURL 玩家的Steam个人主页
func ProfileURL(playerID string) string {
	return fmt.Sprintf(profileURLFormat, url.PathEscape(playerID))
}

// Resolve 获取头像URL，任何失败都只记录日志并返回 false
func (r *AvatarResolver) Resolve(ctx context.Context, playerID string) (string, bool) {
	if sid := steamid.New(playerID); !sid.Valid() {
		r.log.Debugw("无效的SteamID，跳过头像查询", "player", playerID)
		return "", false
	}
	key := playerID

	if avatar, ok := r.cache.Get(key); ok {
		return avatar, true
	}

	if r.store != nil {
		avatar, ok, err := r.store.CachedAvatar(ctx, key)
		if err != nil {
			r.log.Warnw("读取头像缓存失败", "player", key, "error", err)
		} else if ok {
			r.cache.Set(key, avatar)
			return avatar, true
		}
	}

	if r.apiKey == "" {
		return "", false
	}

	avatar, err := r.fetchAvatar(ctx, key)
	if err != nil {
		r.log.Warnw("查询Steam头像失败", "player", key, "error", err)
		return "", false
	}
	if avatar == "" {
		return "", false
	}

	r.cache.Set(key, avatar)
	return avatar, true
}

// playerSummariesResponse GetPlayerSummaries 响应
type playerSummariesResponse struct {
	Response struct {
		Players []struct {
			SteamID    string `json:"steamid"`
			AvatarFull string `json:"avatarfull"`
		} `json:"players"`
	} `json:"response"`
}

// fetchAvatar 调用 ISteamUser/GetPlayerSummaries
func (r *AvatarResolver) fetchAvatar(ctx context.Context, steamID string) (string, error) {
	query := url.Values{}
	query.Set("key", r.apiKey)
	query.Set("steamids", steamID)
	endpoint := r.apiBase + "/ISteamUser/GetPlayerSummaries/v2/?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("创建请求失败: %w", err)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("请求Steam API失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("Steam API返回状态码 %d", resp.StatusCode)
	}

	var summaries playerSummariesResponse
	if err := json.NewDecoder(resp.Body).Decode(&summaries); err != nil {
		return "", fmt.Errorf("解析Steam API响应失败: %w", err)
	}

	for _, p := range summaries.Response.Players {
		if p.SteamID == steamID {
			return p.AvatarFull, nil
		}
	}

	return "", nil
}
