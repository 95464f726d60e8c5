package models

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

// Redis键名，由外部统计进程维护
const (
	// PlayerStatsKey 玩家ID -> 战绩JSON
	PlayerStatsKey = "stats"
	// PlayerNamesKey 玩家名 -> 玩家ID
	PlayerNamesKey = "players"
	// LastUpdateKey 最后一次统计更新时间（毫秒时间戳）
	LastUpdateKey = "lastUpdate"
	// AvatarKeyPrefix 头像URL缓存键前缀
	AvatarKeyPrefix = "avatar:"

	LeaderboardRatingKey  = "leaderboard:rating"
	LeaderboardKillsKey   = "leaderboard:kills"
	LeaderboardRevivesKey = "leaderboard:revives"

	// scanCount 每次 HSCAN 的建议数量
	scanCount = 100
)

// RedisLeaderboard 只读的Redis战绩存储
type RedisLeaderboard struct {
	client *redis.Client
}

// NewRedisLeaderboard 创建Redis战绩存储
func NewRedisLeaderboard(client *redis.Client) *RedisLeaderboard {
	return &RedisLeaderboard{client: client}
}

// Ping 检查Redis连通性
func (rl *RedisLeaderboard) Ping(ctx context.Context) error {
	return rl.client.Ping(ctx).Err()
}

// GetPlayer 按玩家ID获取战绩记录
func (rl *RedisLeaderboard) GetPlayer(ctx context.Context, playerID string) (*Player, error) {
	data, err := rl.client.HGet(ctx, PlayerStatsKey, playerID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("查询玩家战绩失败: %w", err)
	}
	return decodePlayer(playerID, data)
}

// PlayerCount 玩家总数
func (rl *RedisLeaderboard) PlayerCount(ctx context.Context) (int64, error) {
	n, err := rl.client.HLen(ctx, PlayerNamesKey).Result()
	if err != nil {
		return 0, fmt.Errorf("查询玩家总数失败: %w", err)
	}
	return n, nil
}

// GetPlayerRank 获取玩家排名，从1开始，按分数降序
func (rl *RedisLeaderboard) GetPlayerRank(ctx context.Context, index RankIndex, playerID string) (int, error) {
	rank, err := rl.client.ZRevRank(ctx, rankKey(index), playerID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, fmt.Errorf("%s: %s: %w", index, playerID, ErrMissingRank)
		}
		return 0, fmt.Errorf("查询%s排名失败: %w", index, err)
	}
	// Redis排名从0开始，转换为从1开始
	return int(rank) + 1, nil
}

// GetPlayerRanks 一次查询三个排名索引
func (rl *RedisLeaderboard) GetPlayerRanks(ctx context.Context, playerID string) (Ranks, error) {
	var ranks Ranks
	targets := []struct {
		index RankIndex
		dst   *int
	}{
		{RankRating, &ranks.Overall},
		{RankKills, &ranks.Kills},
		{RankRevives, &ranks.Revives},
	}

	for _, t := range targets {
		rank, err := rl.GetPlayerRank(ctx, t.index, playerID)
		if err != nil {
			return Ranks{}, err
		}
		*t.dst = rank
	}

	return ranks, nil
}

// LastUpdate 读取最后更新时间，不存在时 ok 为 false
func (rl *RedisLeaderboard) LastUpdate(ctx context.Context) (time.Time, bool, error) {
	data, err := rl.client.Get(ctx, LastUpdateKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, fmt.Errorf("查询更新时间失败: %w", err)
	}

	ms, err := strconv.ParseInt(data, 10, 64)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("无效的更新时间 %q: %w", data, err)
	}

	return time.UnixMilli(ms).UTC(), true, nil
}

// CachedAvatar 读取统计进程缓存的头像URL
func (rl *RedisLeaderboard) CachedAvatar(ctx context.Context, playerID string) (string, bool, error) {
	url, err := rl.client.Get(ctx, AvatarKeyPrefix+playerID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("查询头像缓存失败: %w", err)
	}
	return url, url != "", nil
}

// ScanNames 增量扫描玩家名索引，fn 返回 false 时立即停止扫描
func (rl *RedisLeaderboard) ScanNames(ctx context.Context, pattern string, fn func(name, playerID string) bool) error {
	iter := rl.client.HScan(ctx, PlayerNamesKey, 0, pattern, scanCount).Iterator()

	// HSCAN 返回 field、value 交替的序列
	for iter.Next(ctx) {
		name := iter.Val()
		if !iter.Next(ctx) {
			break
		}
		if !fn(name, iter.Val()) {
			return nil
		}
	}

	if err := iter.Err(); err != nil {
		return fmt.Errorf("扫描玩家名失败: %w", err)
	}
	return nil
}

// TopPlayers 获取排行榜第 page 页（从1开始）
func (rl *RedisLeaderboard) TopPlayers(ctx context.Context, page, pageSize int) ([]LeaderboardEntry, error) {
	if page < 1 || pageSize < 1 {
		return nil, nil
	}

	start := int64((page - 1) * pageSize)
	stop := start + int64(pageSize) - 1

	// 按综合评分降序获取
	members, err := rl.client.ZRevRangeWithScores(ctx, LeaderboardRatingKey, start, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("查询排行榜失败: %w", err)
	}
	if len(members) == 0 {
		return nil, nil
	}

	cmds := make([]*redis.StringCmd, len(members))
	_, err = rl.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, member := range members {
			cmds[i] = pipe.HGet(ctx, PlayerStatsKey, fmt.Sprint(member.Member))
		}
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("批量查询玩家战绩失败: %w", err)
	}

	entries := make([]LeaderboardEntry, 0, len(members))
	for i, member := range members {
		playerID := fmt.Sprint(member.Member)
		entry := LeaderboardEntry{
			SteamID: playerID,
			Name:    playerID,
			Rating:  member.Score,
			Rank:    int(start) + i + 1,
		}

		// 缺少战绩记录时仅显示玩家ID
		if data, err := cmds[i].Result(); err == nil {
			if player, err := decodePlayer(playerID, data); err == nil {
				if player.Name != "" {
					entry.Name = player.Name
				}
				entry.Totals = player.Totals()
			}
		}

		entries = append(entries, entry)
	}

	return entries, nil
}

// rankKey 获取排名索引键名
func rankKey(index RankIndex) string {
	switch index {
	case RankKills:
		return LeaderboardKillsKey
	case RankRevives:
		return LeaderboardRevivesKey
	default:
		return LeaderboardRatingKey
	}
}

func decodePlayer(playerID, data string) (*Player, error) {
	var player Player
	if err := json.Unmarshal([]byte(data), &player); err != nil {
		return nil, fmt.Errorf("解析玩家 %s 战绩失败: %w", playerID, err)
	}
	if player.SteamID == "" {
		player.SteamID = playerID
	}
	return &player, nil
}
