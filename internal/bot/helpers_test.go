package bot

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/jacl-coder/SquadStats-Bot/config"
	"github.com/jacl-coder/SquadStats-Bot/internal/models"
)

var testEmoji = config.EmojiConfig{
	Kill:   ":gun:",
	Down:   ":arrow_down:",
	Death:  ":skull:",
	Revive: ":syringe:",
	TK:     ":warning:",
	KD:     ":bar_chart:",
}

// fakeResponder 记录发给Discord的回复
type fakeResponder struct {
	mutex      sync.Mutex
	responds   []*discordgo.InteractionResponse
	edits      []*discordgo.WebhookEdit
	respondErr error
	editErr    error
	updates    chan *discordgo.InteractionResponse
}

func newFakeResponder() *fakeResponder {
	return &fakeResponder{updates: make(chan *discordgo.InteractionResponse, 16)}
}

func (f *fakeResponder) InteractionRespond(_ *discordgo.Interaction, resp *discordgo.InteractionResponse, _ ...discordgo.RequestOption) error {
	f.mutex.Lock()
	f.responds = append(f.responds, resp)
	err := f.respondErr
	f.mutex.Unlock()

	switch resp.Type {
	case discordgo.InteractionResponseUpdateMessage, discordgo.InteractionResponseChannelMessageWithSource:
		f.updates <- resp
	}
	return err
}

func (f *fakeResponder) InteractionResponseEdit(_ *discordgo.Interaction, edit *discordgo.WebhookEdit, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.edits = append(f.edits, edit)
	if f.editErr != nil {
		return nil, f.editErr
	}
	return &discordgo.Message{ID: "message-1"}, nil
}

func (f *fakeResponder) lastEdit() *discordgo.WebhookEdit {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	if len(f.edits) == 0 {
		return nil
	}
	return f.edits[len(f.edits)-1]
}

func (f *fakeResponder) respondCount() int {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return len(f.responds)
}

func (f *fakeResponder) firstRespond() *discordgo.InteractionResponse {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	if len(f.responds) == 0 {
		return nil
	}
	return f.responds[0]
}

// fakeStatsStore 统计各方法调用次数的存储
type fakeStatsStore struct {
	players    map[string]*models.Player
	ranks      map[string]models.Ranks
	names      [][2]string
	lastUpdate time.Time
	scanErr    error

	getCalls  int
	rankCalls int
	scanCalls int
	consumed  int
}

func (f *fakeStatsStore) GetPlayer(_ context.Context, id string) (*models.Player, error) {
	f.getCalls++
	p, ok := f.players[id]
	if !ok {
		return nil, models.ErrPlayerNotFound
	}
	return p, nil
}

func (f *fakeStatsStore) GetPlayerRanks(_ context.Context, id string) (models.Ranks, error) {
	f.rankCalls++
	r, ok := f.ranks[id]
	if !ok {
		return models.Ranks{}, models.ErrMissingRank
	}
	return r, nil
}

func (f *fakeStatsStore) LastUpdate(context.Context) (time.Time, bool, error) {
	if f.lastUpdate.IsZero() {
		return time.Time{}, false, nil
	}
	return f.lastUpdate, true, nil
}

func (f *fakeStatsStore) ScanNames(_ context.Context, _ string, fn func(name, id string) bool) error {
	f.scanCalls++
	for _, pair := range f.names {
		f.consumed++
		if !fn(pair[0], pair[1]) {
			return nil
		}
	}
	return f.scanErr
}

type fakeAvatars map[string]string

func (f fakeAvatars) Resolve(_ context.Context, id string) (string, bool) {
	v, ok := f[id]
	return v, ok
}

// fakeLeaderboardStore 固定人数的排行榜
type fakeLeaderboardStore struct {
	mutex sync.Mutex
	count int64
	err   error
}

func (f *fakeLeaderboardStore) setErr(err error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.err = err
}

func (f *fakeLeaderboardStore) PlayerCount(context.Context) (int64, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return f.count, f.err
}

func (f *fakeLeaderboardStore) TopPlayers(_ context.Context, page, pageSize int) ([]models.LeaderboardEntry, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var entries []models.LeaderboardEntry
	start := (page - 1) * pageSize
	for rank := start + 1; rank <= start+pageSize && int64(rank) <= f.count; rank++ {
		entries = append(entries, models.LeaderboardEntry{
			SteamID: "id",
			Name:    "player",
			Rating:  float64(10000 - rank),
			Rank:    rank,
		})
	}
	return entries, nil
}

var errStoreDown = errors.New("redis: connection refused")

func commandInteraction(name string, options ...*discordgo.ApplicationCommandInteractionDataOption) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{
		Interaction: &discordgo.Interaction{
			ID:   "interaction-1",
			Type: discordgo.InteractionApplicationCommand,
			Data: discordgo.ApplicationCommandInteractionData{
				Name:    name,
				Options: options,
			},
		},
	}
}

func autocompleteInteraction(partial string) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{
		Interaction: &discordgo.Interaction{
			ID:   "interaction-2",
			Type: discordgo.InteractionApplicationCommandAutocomplete,
			Data: discordgo.ApplicationCommandInteractionData{
				Name: CommandStats,
				Options: []*discordgo.ApplicationCommandInteractionDataOption{
					stringOpt(optionTarget, partial, true),
				},
			},
		},
	}
}

func buttonInteraction(customID string) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{
		Interaction: &discordgo.Interaction{
			ID:   "interaction-3",
			Type: discordgo.InteractionMessageComponent,
			Data: discordgo.MessageComponentInteractionData{
				CustomID:      customID,
				ComponentType: discordgo.ButtonComponent,
			},
		},
	}
}

func stringOpt(name, value string, focused bool) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{
		Name:    name,
		Type:    discordgo.ApplicationCommandOptionString,
		Value:   value,
		Focused: focused,
	}
}
