package bot

import "github.com/bwmarrin/discordgo"

// 命令名
const (
	CommandStats       = "stats"
	CommandLeaderboard = "leaderboard"

	optionTarget     = "target"
	optionVisibility = "visibility"

	visibilityPublic  = "public"
	visibilityPrivate = "private"
)

// colorBlurple Discord品牌色
const colorBlurple = 0x5865F2

// Commands 斜杠命令定义
func Commands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        CommandStats,
			Description: "Show stats for a specific player",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:         discordgo.ApplicationCommandOptionString,
					Name:         optionTarget,
					Description:  "A player's name or their Steam ID",
					Required:     true,
					Autocomplete: true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        optionVisibility,
					Description: "If set to private, response will be sent only to the command sender",
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{Name: "Public", Value: visibilityPublic},
						{Name: "Private", Value: visibilityPrivate},
					},
				},
			},
		},
		{
			Name:        CommandLeaderboard,
			Description: "Show the Squad leaderboard",
		},
	}
}

// Responder 回复交互所需的Discord接口，*discordgo.Session 实现了该接口
type Responder interface {
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	InteractionResponseEdit(interaction *discordgo.Interaction, newresp *discordgo.WebhookEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// optionValues 将命令选项转为 name -> option
func optionValues(options []*discordgo.ApplicationCommandInteractionDataOption) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	values := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(options))
	for _, opt := range options {
		values[opt.Name] = opt
	}
	return values
}

// stringOption 读取字符串选项，不存在时返回空串
func stringOption(options []*discordgo.ApplicationCommandInteractionDataOption, name string) string {
	if opt, ok := optionValues(options)[name]; ok && opt.Type == discordgo.ApplicationCommandOptionString {
		return opt.StringValue()
	}
	return ""
}

// focusedOption 自动补全时正在输入的选项
func focusedOption(options []*discordgo.ApplicationCommandInteractionDataOption) *discordgo.ApplicationCommandInteractionDataOption {
	for _, opt := range options {
		if opt.Focused {
			return opt
		}
	}
	return nil
}

// interactionUser 发起交互的用户ID，用于日志
func interactionUser(i *discordgo.Interaction) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}
