package bot

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// Bot Discord机器人
type Bot struct {
	session     *discordgo.Session
	guildID     string
	stats       *StatsCommand
	leaderboard *LeaderboardCommand
	log         *zap.SugaredLogger

	ctx    context.Context
	cancel context.CancelFunc

	removeHandler func()
	isRunning     bool
	mutex         sync.Mutex
}

// New 创建机器人
func New(session *discordgo.Session, guildID string, stats *StatsCommand, leaderboard *LeaderboardCommand, log *zap.SugaredLogger) *Bot {
	ctx, cancel := context.WithCancel(context.Background())
	return &Bot{
		session:     session,
		guildID:     guildID,
		stats:       stats,
		leaderboard: leaderboard,
		log:         log,
		ctx:         ctx,
		cancel:      cancel,
	}
}

// NewSession 创建Discord会话，尚未连接
func NewSession(token string) (*discordgo.Session, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("创建Discord会话失败: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds
	return session, nil
}

// Start 连接Discord并注册命令
func (b *Bot) Start() error {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	if b.isRunning {
		return fmt.Errorf("机器人已经在运行")
	}

	b.removeHandler = b.session.AddHandler(b.onInteraction)
	b.session.AddHandlerOnce(func(s *discordgo.Session, r *discordgo.Ready) {
		b.log.Infow("Discord连接就绪", "user", r.User.Username, "guilds", len(r.Guilds))
	})

	if err := b.session.Open(); err != nil {
		b.removeHandler()
		return fmt.Errorf("连接Discord失败: %w", err)
	}

	if err := b.RegisterCommands(); err != nil {
		b.session.Close()
		b.removeHandler()
		return err
	}

	b.isRunning = true
	b.log.Info("机器人已启动")
	return nil
}

// RegisterCommands 覆盖注册斜杠命令，guildID 为空时注册为全局命令
func (b *Bot) RegisterCommands() error {
	if b.session.State == nil || b.session.State.User == nil {
		return fmt.Errorf("Discord会话尚未就绪，无法注册命令")
	}

	registered, err := b.session.ApplicationCommandBulkOverwrite(b.session.State.User.ID, b.guildID, Commands())
	if err != nil {
		return fmt.Errorf("注册斜杠命令失败: %w", err)
	}

	for _, cmd := range registered {
		b.log.Infow("注册斜杠命令", "command", cmd.Name, "guild", b.guildID)
	}
	return nil
}

// Stop 关闭机器人，结束所有分页会话
func (b *Bot) Stop() error {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	b.cancel()
	if !b.isRunning {
		return nil
	}

	b.removeHandler()
	b.isRunning = false

	if err := b.session.Close(); err != nil {
		return fmt.Errorf("关闭Discord会话失败: %w", err)
	}
	b.log.Info("机器人已停止")
	return nil
}

// Ready 是否已连接Discord
func (b *Bot) Ready() bool {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return b.isRunning && b.session.DataReady
}

func (b *Bot) onInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	b.HandleInteraction(b.ctx, s, i)
}

// HandleInteraction 分发交互事件
func (b *Bot) HandleInteraction(ctx context.Context, r Responder, i *discordgo.InteractionCreate) {
	defer func() {
		if rec := recover(); rec != nil {
			b.log.Errorw("处理交互时发生panic", "panic", rec, "stack", string(debug.Stack()))
		}
	}()

	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		data := i.ApplicationCommandData()
		b.log.Debugw("收到命令", "command", data.Name, "user", interactionUser(i.Interaction))
		switch data.Name {
		case CommandStats:
			b.stats.Execute(ctx, r, i)
		case CommandLeaderboard:
			b.leaderboard.Execute(ctx, r, i)
		default:
			b.log.Warnw("未知命令", "command", data.Name)
		}
	case discordgo.InteractionApplicationCommandAutocomplete:
		if i.ApplicationCommandData().Name == CommandStats {
			b.stats.Autocomplete(ctx, r, i)
		}
	case discordgo.InteractionMessageComponent:
		b.leaderboard.HandleComponent(i)
	}
}
