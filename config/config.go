// config.go

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 机器人配置结构
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Discord     DiscordConfig     `mapstructure:"discord"`
	Redis       RedisConfig       `mapstructure:"redis"`
	Leaderboard LeaderboardConfig `mapstructure:"leaderboard"`
	Emoji       EmojiConfig       `mapstructure:"emoji"`
	Steam       SteamConfig       `mapstructure:"steam"`
}

// ServerConfig 进程级配置
type ServerConfig struct {
	HealthPort int    `mapstructure:"health_port"` // 0 表示不启动健康检查端口
	Debug      bool   `mapstructure:"debug"`
	LogLevel   string `mapstructure:"log_level"`
}

// DiscordConfig Discord配置
type DiscordConfig struct {
	Token   string `mapstructure:"token"`
	GuildID string `mapstructure:"guild_id"`
}

// RedisConfig Redis配置
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// LeaderboardConfig 排行榜配置
type LeaderboardConfig struct {
	PageSize       int           `mapstructure:"page_size"`
	SessionTimeout time.Duration `mapstructure:"session_timeout"`
}

// EmojiConfig 战绩图标
type EmojiConfig struct {
	Kill   string `mapstructure:"kill"`
	Down   string `mapstructure:"down"`
	Death  string `mapstructure:"death"`
	Revive string `mapstructure:"revive"`
	TK     string `mapstructure:"tk"`
	KD     string `mapstructure:"kd"`
}

// SteamConfig Steam Web API配置
type SteamConfig struct {
	APIKey         string        `mapstructure:"api_key"`
	AvatarTTL      time.Duration `mapstructure:"avatar_ttl"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// legacyEnv 兼容旧部署使用的环境变量名
var legacyEnv = map[string]string{
	"discord.token":         "BOT_TOKEN",
	"discord.guild_id":      "GUILD_ID",
	"redis.host":            "REDIS_HOST",
	"redis.port":            "REDIS_PORT",
	"redis.password":        "REDIS_PASS",
	"leaderboard.page_size": "LEADERBOARD_PAGE_SIZE",
	"emoji.kill":            "EMOJI_KILL",
	"emoji.down":            "EMOJI_DOWN",
	"emoji.death":           "EMOJI_DEATH",
	"emoji.revive":          "EMOJI_REVIVE",
	"emoji.tk":              "EMOJI_TK",
	"emoji.kd":              "EMOJI_KD",
	"steam.api_key":         "STEAM_API_KEY",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.health_port", 0)
	v.SetDefault("server.debug", false)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("discord.token", "")
	v.SetDefault("discord.guild_id", "")
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("leaderboard.page_size", 10)
	v.SetDefault("leaderboard.session_timeout", 15*time.Minute)
	v.SetDefault("emoji.kill", "")
	v.SetDefault("emoji.down", "")
	v.SetDefault("emoji.death", "")
	v.SetDefault("emoji.revive", "")
	v.SetDefault("emoji.tk", "")
	v.SetDefault("emoji.kd", "")
	v.SetDefault("steam.api_key", "")
	v.SetDefault("steam.avatar_ttl", time.Hour)
	v.SetDefault("steam.request_timeout", 5*time.Second)
}

// LoadConfig 加载配置
// 优先级: 环境变量 > 配置文件 > 默认值。配置文件不存在时只使用环境变量和默认值。
func LoadConfig(configPath string) (*Config, error) {
	// .env 文件是可选的
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range legacyEnv {
		if err := v.BindEnv(key, strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return nil, fmt.Errorf("无法绑定环境变量 %s: %w", env, err)
		}
	}

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			v.SetConfigFile(configPath)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("无法读取配置文件: %w", err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("无法访问配置文件: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("无法解析配置文件: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate 校验必填项
func (c *Config) Validate() error {
	if c.Discord.Token == "" {
		return errors.New("缺少 Discord 机器人令牌 (discord.token / BOT_TOKEN)")
	}
	if c.Leaderboard.PageSize <= 0 {
		return fmt.Errorf("排行榜每页数量必须为正整数: %d", c.Leaderboard.PageSize)
	}
	if c.Leaderboard.SessionTimeout <= 0 {
		return fmt.Errorf("排行榜会话超时必须为正: %s", c.Leaderboard.SessionTimeout)
	}
	return nil
}

// GetRedisAddr 获取Redis连接地址
func (c *RedisConfig) GetRedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
