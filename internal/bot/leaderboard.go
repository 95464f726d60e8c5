package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/jacl-coder/SquadStats-Bot/config"
	"github.com/jacl-coder/SquadStats-Bot/internal/format"
	"github.com/jacl-coder/SquadStats-Bot/internal/models"
)

const leaderboardTitle = "Top Shooters"

// LeaderboardStore 排行榜查询所需的存储接口
type LeaderboardStore interface {
	PlayerCount(ctx context.Context) (int64, error)
	TopPlayers(ctx context.Context, page, pageSize int) ([]models.LeaderboardEntry, error)
}

// LeaderboardCommand /leaderboard 命令处理器
type LeaderboardCommand struct {
	store    LeaderboardStore
	sessions *SessionRegistry
	emoji    config.EmojiConfig
	pageSize int
	timeout  time.Duration
	log      *zap.SugaredLogger
}

// NewLeaderboardCommand 创建 /leaderboard 命令处理器
func NewLeaderboardCommand(store LeaderboardStore, cfg config.LeaderboardConfig, emoji config.EmojiConfig, log *zap.SugaredLogger) *LeaderboardCommand {
	return &LeaderboardCommand{
		store:    store,
		sessions: NewSessionRegistry(),
		emoji:    emoji,
		pageSize: cfg.PageSize,
		timeout:  cfg.SessionTimeout,
		log:      log,
	}
}

// PageCount 总页数 = ceil(count / pageSize)，至少为1
func PageCount(count int64, pageSize int) int {
	if pageSize <= 0 || count <= 0 {
		return 1
	}
	return int((count + int64(pageSize) - 1) / int64(pageSize))
}

// RenderPage 生成第 page 页的排行榜和翻页按钮
func (c *LeaderboardCommand) RenderPage(ctx context.Context, session *PaginationSession, page int) (*discordgo.MessageEmbed, discordgo.ActionsRow, error) {
	count, err := c.store.PlayerCount(ctx)
	if err != nil {
		return nil, discordgo.ActionsRow{}, err
	}
	pageCount := PageCount(count, c.pageSize)

	entries, err := c.store.TopPlayers(ctx, page, c.pageSize)
	if err != nil {
		return nil, discordgo.ActionsRow{}, err
	}

	embed := &discordgo.MessageEmbed{
		Title:  leaderboardTitle,
		Color:  colorBlurple,
		Fields: make([]*discordgo.MessageEmbedField, 0, len(entries)),
		Footer: &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("Page %d of %d", page, pageCount)},
	}
	for _, entry := range entries {
		embed.Fields = append(embed.Fields, c.entryField(entry))
	}

	return embed, buttonRow(session, page, pageCount), nil
}

func (c *LeaderboardCommand) entryField(entry models.LeaderboardEntry) *discordgo.MessageEmbedField {
	parts := []string{
		fmt.Sprintf("**Rating** %s", format.Count(int(entry.Rating))),
		strings.TrimSpace(fmt.Sprintf("%s %s kills", c.emoji.Kill, format.Count(entry.Totals.Kills))),
		strings.TrimSpace(fmt.Sprintf("%s %s K/D", c.emoji.KD, format.Ratio(entry.Totals.AverageKDR))),
		strings.TrimSpace(fmt.Sprintf("%s %s revives", c.emoji.Revive, format.Count(entry.Totals.Revives))),
	}
	return &discordgo.MessageEmbedField{
		Name:  fmt.Sprintf("#%s %s", format.Count(entry.Rank), entry.Name),
		Value: strings.Join(parts, " · "),
	}
}

// buttonRow 翻页按钮，第一页禁用上一页，最后一页禁用下一页
func buttonRow(session *PaginationSession, page, pageCount int) discordgo.ActionsRow {
	return discordgo.ActionsRow{
		Components: []discordgo.MessageComponent{
			discordgo.Button{
				CustomID: session.CustomID(actionPrev),
				Label:    "Previous",
				Style:    discordgo.PrimaryButton,
				Disabled: page == 1,
			},
			discordgo.Button{
				CustomID: session.CustomID(actionNext),
				Label:    "Next",
				Style:    discordgo.PrimaryButton,
				Disabled: page == pageCount,
			},
		},
	}
}

// Execute 处理 /leaderboard 命令，并启动分页会话
func (c *LeaderboardCommand) Execute(ctx context.Context, r Responder, i *discordgo.InteractionCreate) {
	err := r.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral},
	})
	if err != nil {
		c.log.Warnw("延迟回复失败", "command", CommandLeaderboard, "user", interactionUser(i.Interaction), "error", err)
		return
	}

	// 先注册会话，避免首页发出后立即点击的按钮找不到会话
	session := c.sessions.Open(ctx, c.timeout)

	embed, row, err := c.RenderPage(session.Context(), session, 1)
	if err != nil {
		session.Close()
		c.log.Errorw("查询排行榜失败", "page", 1, "error", err)
		content := genericFailureMessage
		if _, err := r.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{Content: &content}); err != nil {
			c.log.Warnw("发送排行榜回复失败", "error", err)
		}
		return
	}

	_, err = r.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
		Embeds:     &[]*discordgo.MessageEmbed{embed},
		Components: &[]discordgo.MessageComponent{row},
	})
	if err != nil {
		session.Close()
		c.log.Warnw("发送排行榜回复失败", "error", err)
		return
	}

	go c.paginate(r, session)
}

// HandleComponent 将按钮交互投递给对应的分页会话
func (c *LeaderboardCommand) HandleComponent(i *discordgo.InteractionCreate) bool {
	sessionID, _, ok := ParseCustomID(i.MessageComponentData().CustomID)
	if !ok {
		return false
	}
	if !c.sessions.Deliver(sessionID, i) {
		c.log.Debugw("分页会话已过期", "session", sessionID)
		return false
	}
	return true
}

// paginate 分页会话循环，page 仅属于本会话
func (c *LeaderboardCommand) paginate(r Responder, session *PaginationSession) {
	defer session.Close()

	page := 1
	for {
		select {
		case i := <-session.Events():
			if i.Type != discordgo.InteractionMessageComponent {
				continue
			}
			data := i.MessageComponentData()
			if data.ComponentType != discordgo.ButtonComponent {
				continue
			}
			_, action, ok := ParseCustomID(data.CustomID)
			if !ok {
				continue
			}

			next := page
			if action == actionPrev {
				next--
			} else {
				next++
			}

			embed, row, err := c.RenderPage(session.Context(), session, next)
			if err != nil {
				c.log.Errorw("查询排行榜失败", "session", session.ID, "page", next, "error", err)
				err = r.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
					Type: discordgo.InteractionResponseChannelMessageWithSource,
					Data: &discordgo.InteractionResponseData{
						Content: genericFailureMessage,
						Flags:   discordgo.MessageFlagsEphemeral,
					},
				})
				if err != nil {
					c.log.Warnw("回复翻页失败消息失败", "session", session.ID, "error", err)
				}
				continue
			}
			page = next

			err = r.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
				Type: discordgo.InteractionResponseUpdateMessage,
				Data: &discordgo.InteractionResponseData{
					Embeds:     []*discordgo.MessageEmbed{embed},
					Components: []discordgo.MessageComponent{row},
				},
			})
			if err != nil {
				c.log.Warnw("更新排行榜失败", "session", session.ID, "page", page, "error", err)
			}
		case <-session.Done():
			c.log.Debugw("分页会话结束", "session", session.ID, "page", page)
			return
		}
	}
}
