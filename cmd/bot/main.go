// main.go

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/jacl-coder/SquadStats-Bot/config"
	"github.com/jacl-coder/SquadStats-Bot/internal/bot"
	"github.com/jacl-coder/SquadStats-Bot/internal/models"
	"github.com/jacl-coder/SquadStats-Bot/internal/monitor"
	"github.com/jacl-coder/SquadStats-Bot/internal/steam"
	"github.com/jacl-coder/SquadStats-Bot/pkg/db"
	"github.com/jacl-coder/SquadStats-Bot/pkg/logger"
)

func main() {
	// 解析命令行参数
	configPath := flag.String("config", "config/config.yaml", "配置文件路径")
	registerOnly := flag.Bool("register", false, "仅注册斜杠命令后退出")
	flag.Parse()

	// 加载配置
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Server.LogLevel, cfg.Server.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}

	os.Exit(exitCode(log, run(cfg, log, *registerOnly)))
}

// exitCode 记录运行结果并刷新日志，返回进程退出码
func exitCode(log *zap.SugaredLogger, err error) int {
	code := 0
	if err != nil {
		log.Errorw("机器人运行失败", "error", err)
		code = 1
	}
	_ = log.Sync()
	return code
}

func run(cfg *config.Config, log *zap.SugaredLogger, registerOnly bool) error {
	ctx := context.Background()

	session, err := bot.NewSession(cfg.Discord.Token)
	if err != nil {
		return err
	}

	if registerOnly {
		return registerCommands(session, cfg, log)
	}

	// 初始化Redis连接
	redisClient, err := db.NewRedis(ctx, cfg.Redis, log)
	if err != nil {
		return fmt.Errorf("初始化Redis失败: %w", err)
	}
	defer db.CloseRedis(redisClient, log)

	store := models.NewRedisLeaderboard(redisClient)

	avatars := steam.NewAvatarResolver(store, steam.AvatarOptions{
		APIKey:         cfg.Steam.APIKey,
		CacheTTL:       cfg.Steam.AvatarTTL,
		RequestTimeout: cfg.Steam.RequestTimeout,
	}, log.Named("steam"))
	defer avatars.Close()

	statsCmd := bot.NewStatsCommand(store, avatars, cfg.Emoji, log.Named("stats"))
	leaderboardCmd := bot.NewLeaderboardCommand(store, cfg.Leaderboard, cfg.Emoji, log.Named("leaderboard"))

	b := bot.New(session, cfg.Discord.GuildID, statsCmd, leaderboardCmd, log.Named("bot"))
	if err := b.Start(); err != nil {
		return err
	}
	defer func() {
		if err := b.Stop(); err != nil {
			log.Warnw("关闭机器人失败", "error", err)
		}
	}()

	var health *monitor.Server
	if cfg.Server.HealthPort > 0 {
		health = monitor.NewServer(cfg.Server.HealthPort, store, b, log.Named("monitor"))
		if err := health.Start(); err != nil {
			return err
		}
	}

	// 等待中断信号
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Info("接收到关闭信号，正在关闭机器人...")

	if health != nil {
		shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := health.Stop(shutdownCtx); err != nil {
			log.Warnw("关闭健康检查服务失败", "error", err)
		}
	}

	return nil
}

// registerCommands 仅连接Discord注册命令
func registerCommands(session *discordgo.Session, cfg *config.Config, log *zap.SugaredLogger) error {
	if err := session.Open(); err != nil {
		return fmt.Errorf("连接Discord失败: %w", err)
	}
	defer session.Close()

	b := bot.New(session, cfg.Discord.GuildID, nil, nil, log.Named("bot"))
	if err := b.RegisterCommands(); err != nil {
		return err
	}

	log.Info("斜杠命令注册完成")
	return nil
}
