// stats.go

package models

import "errors"

var (
	// ErrPlayerNotFound 战绩表中不存在该玩家
	ErrPlayerNotFound = errors.New("player not found")
	// ErrMissingRank 玩家存在但不在排名索引中
	ErrMissingRank = errors.New("player missing from rank index")
)

// RankIndex 排名索引类型
type RankIndex string

const (
	// RankRating 综合评分排名
	RankRating RankIndex = "rating"
	// RankKills 击杀排名
	RankKills RankIndex = "kills"
	// RankRevives 救援排名
	RankRevives RankIndex = "revives"
)

// LeaderboardEntry 排行榜条目
type LeaderboardEntry struct {
	SteamID string
	Name    string
	Rating  float64
	Rank    int // 从1开始
	Totals  PlayerTotals
}

// Ranks 玩家在三个排名索引中的名次（从1开始）
type Ranks struct {
	Overall int
	Kills   int
	Revives int
}
