package monitor

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Pinger 存储连通性检查
type Pinger interface {
	Ping(ctx context.Context) error
}

// ReadyChecker Discord连接状态
type ReadyChecker interface {
	Ready() bool
}

// HealthResponse 健康检查响应
type HealthResponse struct {
	Success bool   `json:"success"`
	Redis   string `json:"redis"`
	Discord bool   `json:"discord"`
}

// Server 健康检查HTTP服务
type Server struct {
	port       int
	store      Pinger
	bot        ReadyChecker
	log        *zap.SugaredLogger
	httpServer *http.Server
}

// NewServer 创建健康检查服务
func NewServer(port int, store Pinger, bot ReadyChecker, log *zap.SugaredLogger) *Server {
	return &Server{
		port:  port,
		store: store,
		bot:   bot,
		log:   log,
	}
}

// Handler 创建HTTP处理器
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	return NewLoggingMiddleware(s.log).Middleware(mux)
}

// Start 启动HTTP服务
func (s *Server) Start() error {
	if s.httpServer != nil {
		return fmt.Errorf("健康检查服务已经在运行")
	}

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		s.log.Infow("健康检查服务启动", "port", s.port)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.log.Errorw("健康检查服务错误", "error", err)
		}
	}()

	return nil
}

// Stop 关闭HTTP服务
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("健康检查服务关闭错误: %w", err)
	}
	s.log.Info("健康检查服务已停止")
	return nil
}

// handleHealth 检查Redis与Discord状态
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "仅支持GET方法", http.StatusMethodNotAllowed)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := HealthResponse{Success: true, Redis: "ok"}
	status := http.StatusOK

	if err := s.store.Ping(ctx); err != nil {
		s.log.Warnw("Redis健康检查失败", "error", err)
		resp.Success = false
		resp.Redis = "unreachable"
		status = http.StatusServiceUnavailable
	}
	if s.bot != nil {
		resp.Discord = s.bot.Ready()
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.log.Warnw("编码响应失败", "error", err)
	}
}
