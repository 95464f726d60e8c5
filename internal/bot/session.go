package bot

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
)

// 分页按钮动作
const (
	actionPrev = "prev"
	actionNext = "next"

	customIDPrefix = "leaderboard"
)

// PaginationSession 一次 /leaderboard 调用对应的分页会话
type PaginationSession struct {
	ID     string
	events chan *discordgo.InteractionCreate
	ctx    context.Context
	cancel context.CancelFunc
}

// Events 投递到该会话的组件交互
func (s *PaginationSession) Events() <-chan *discordgo.InteractionCreate {
	return s.events
}

// Done 会话到期或被关闭
func (s *PaginationSession) Done() <-chan struct{} {
	return s.ctx.Done()
}

// Context 会话生命周期内有效的上下文
func (s *PaginationSession) Context() context.Context {
	return s.ctx
}

// Close 提前结束会话
func (s *PaginationSession) Close() {
	s.cancel()
}

// CustomID 按钮的 custom_id
func (s *PaginationSession) CustomID(action string) string {
	return customIDPrefix + ":" + s.ID + ":" + action
}

// ParseCustomID 解析按钮 custom_id，返回会话ID和动作
func ParseCustomID(customID string) (sessionID, action string, ok bool) {
	parts := strings.Split(customID, ":")
	if len(parts) != 3 || parts[0] != customIDPrefix || parts[1] == "" {
		return "", "", false
	}
	switch parts[2] {
	case actionPrev, actionNext:
		return parts[1], parts[2], true
	}
	return "", "", false
}

// SessionRegistry 活跃分页会话表
type SessionRegistry struct {
	sessions map[string]*PaginationSession
	mutex    sync.RWMutex
}

// NewSessionRegistry 创建会话表
func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{
		sessions: make(map[string]*PaginationSession),
	}
}

// Open 创建会话，timeout 后自动失效并从表中移除
func (r *SessionRegistry) Open(parent context.Context, timeout time.Duration) *PaginationSession {
	ctx, cancel := context.WithTimeout(parent, timeout)
	session := &PaginationSession{
		ID:     uuid.NewString(),
		events: make(chan *discordgo.InteractionCreate),
		ctx:    ctx,
		cancel: cancel,
	}

	r.mutex.Lock()
	r.sessions[session.ID] = session
	r.mutex.Unlock()

	go func() {
		<-ctx.Done()
		r.mutex.Lock()
		delete(r.sessions, session.ID)
		r.mutex.Unlock()
	}()

	return session
}

// Deliver 将交互投递给会话，会话不存在或已结束时返回 false
func (r *SessionRegistry) Deliver(sessionID string, i *discordgo.InteractionCreate) bool {
	r.mutex.RLock()
	session, ok := r.sessions[sessionID]
	r.mutex.RUnlock()
	if !ok {
		return false
	}

	select {
	case session.events <- i:
		return true
	case <-session.Done():
		return false
	}
}

// Len 活跃会话数
func (r *SessionRegistry) Len() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return len(r.sessions)
}
