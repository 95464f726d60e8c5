package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/jacl-coder/SquadStats-Bot/config"
	"github.com/jacl-coder/SquadStats-Bot/internal/format"
	"github.com/jacl-coder/SquadStats-Bot/internal/models"
	"github.com/jacl-coder/SquadStats-Bot/internal/steam"
)

const (
	// minSuggestLength 少于该长度不查询存储
	minSuggestLength = 3
	// maxSuggestions Discord自动补全最多展示的条数
	maxSuggestions = 5

	genericFailureMessage = "Something went wrong while fetching stats. Please try again later."
)

// StatsStore 玩家战绩查询所需的存储接口
type StatsStore interface {
	GetPlayer(ctx context.Context, playerID string) (*models.Player, error)
	GetPlayerRanks(ctx context.Context, playerID string) (models.Ranks, error)
	LastUpdate(ctx context.Context) (time.Time, bool, error)
	ScanNames(ctx context.Context, pattern string, fn func(name, playerID string) bool) error
}

// AvatarSource 头像解析
type AvatarSource interface {
	Resolve(ctx context.Context, playerID string) (string, bool)
}

// StatsCommand /stats 命令处理器
type StatsCommand struct {
	store   StatsStore
	avatars AvatarSource
	emoji   config.EmojiConfig
	log     *zap.SugaredLogger
}

// NewStatsCommand 创建 /stats 命令处理器
func NewStatsCommand(store StatsStore, avatars AvatarSource, emoji config.EmojiConfig, log *zap.SugaredLogger) *StatsCommand {
	return &StatsCommand{
		store:   store,
		avatars: avatars,
		emoji:   emoji,
		log:     log,
	}
}

// NotFoundMessage 未找到玩家时的回复
func NotFoundMessage(target string) string {
	return fmt.Sprintf("No player found matching %s.", target)
}

// Execute 处理 /stats 命令
func (c *StatsCommand) Execute(ctx context.Context, r Responder, i *discordgo.InteractionCreate) {
	options := i.ApplicationCommandData().Options
	target := strings.TrimSpace(stringOption(options, optionTarget))

	var flags discordgo.MessageFlags
	if stringOption(options, optionVisibility) == visibilityPrivate {
		flags = discordgo.MessageFlagsEphemeral
	}

	err := r.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: flags},
	})
	if err != nil {
		c.log.Warnw("延迟回复失败", "command", CommandStats, "user", interactionUser(i.Interaction), "error", err)
		return
	}

	edit := &discordgo.WebhookEdit{}
	embed, err := c.Render(ctx, target)
	switch {
	case errors.Is(err, models.ErrPlayerNotFound):
		content := NotFoundMessage(target)
		edit.Content = &content
	case err != nil:
		c.log.Errorw("查询玩家战绩失败", "target", target, "error", err)
		content := genericFailureMessage
		edit.Content = &content
	default:
		edit.Embeds = &[]*discordgo.MessageEmbed{embed}
	}

	if _, err := r.InteractionResponseEdit(i.Interaction, edit); err != nil {
		c.log.Warnw("发送战绩回复失败", "target", target, "error", err)
	}
}

// Render 查询玩家并生成资料卡片
// 玩家不存在时返回 models.ErrPlayerNotFound，且不再访问排名索引。
func (c *StatsCommand) Render(ctx context.Context, target string) (*discordgo.MessageEmbed, error) {
	if target == "" {
		return nil, models.ErrPlayerNotFound
	}

	player, err := c.store.GetPlayer(ctx, target)
	if err != nil {
		return nil, err
	}

	ranks, err := c.store.GetPlayerRanks(ctx, player.SteamID)
	if err != nil {
		return nil, err
	}

	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("%s's stats", player.Name),
		URL:         steam.ProfileURL(player.SteamID),
		Color:       colorBlurple,
		Description: rankSummary(player.Name, ranks),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Stats", Value: c.statBlock(player.Totals())},
		},
	}

	if c.avatars != nil {
		if avatar, ok := c.avatars.Resolve(ctx, player.SteamID); ok {
			embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: avatar}
		}
	}

	updated, ok, err := c.store.LastUpdate(ctx)
	if err != nil {
		// 更新时间只影响页脚
		c.log.Warnw("读取更新时间失败", "error", err)
	} else if ok {
		embed.Footer = &discordgo.MessageEmbedFooter{Text: "Last updated"}
		embed.Timestamp = updated.Format(time.RFC3339)
	}

	return embed, nil
}

func rankSummary(name string, ranks models.Ranks) string {
	return fmt.Sprintf("%s is ranked **%s** overall.\nThey are ranked **%s** in kills and **%s** in revives.",
		name, format.Rank(ranks.Overall), format.Rank(ranks.Kills), format.Rank(ranks.Revives))
}

func (c *StatsCommand) statBlock(t models.PlayerTotals) string {
	lines := []string{
		fmt.Sprintf("%s **KILLS:** %d", c.emoji.Kill, t.Kills),
		fmt.Sprintf("%s **DOWNS:** %d", c.emoji.Down, t.Downs),
		fmt.Sprintf("%s **DEATHS:** %d", c.emoji.Death, t.Deaths),
		fmt.Sprintf("%s **K/D:** %s", c.emoji.KD, format.Ratio(t.AverageKDR)),
		fmt.Sprintf("%s **REVIVES:** %d", c.emoji.Revive, t.Revives),
		fmt.Sprintf("%s **TKS:** %d", c.emoji.TK, t.TKs),
	}
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	return strings.Join(lines, "\n")
}

// Autocomplete 处理 target 选项的自动补全
func (c *StatsCommand) Autocomplete(ctx context.Context, r Responder, i *discordgo.InteractionCreate) {
	var partial string
	if focused := focusedOption(i.ApplicationCommandData().Options); focused != nil && focused.Type == discordgo.ApplicationCommandOptionString {
		partial = focused.StringValue()
	}

	choices, err := c.Suggest(ctx, partial)
	if err != nil {
		c.log.Warnw("查询补全建议失败", "query", partial, "error", err)
	}

	err = r.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionApplicationCommandAutocompleteResult,
		Data: &discordgo.InteractionResponseData{Choices: choices},
	})
	if err != nil {
		// 交互可能已过期，补全不是关键路径
		c.log.Warnw("发送补全建议失败", "query", partial, "suggestions", len(choices), "error", err)
	}
}

// Suggest 按玩家名大小写不敏感地子串匹配，最多返回5条
func (c *StatsCommand) Suggest(ctx context.Context, partial string) ([]*discordgo.ApplicationCommandOptionChoice, error) {
	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, maxSuggestions)
	if len([]rune(partial)) < minSuggestLength {
		return choices, nil
	}

	pattern := "*" + format.CaseInsensitiveGlob(partial) + "*"
	err := c.store.ScanNames(ctx, pattern, func(name, playerID string) bool {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{Name: name, Value: playerID})
		return len(choices) < maxSuggestions
	})

	return choices, err
}
