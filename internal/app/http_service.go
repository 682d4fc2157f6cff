package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/freshcart/internal/config"
	"github.com/freshcart/internal/logger"
)

const readHeaderTimeout = 5 * time.Second

// HTTPService 对外 API 服务
type HTTPService struct {
	server *http.Server
}

// NewHTTPService 按服务器配置创建 HTTP 服务
func NewHTTPService(cfg config.ServerConfig, handler http.Handler) *HTTPService {
	return &HTTPService{
		server: &http.Server{
			Addr:              cfg.Addr(),
			Handler:           handler,
			ReadHeaderTimeout: readHeaderTimeout,
			ReadTimeout:       secondsOrZero(cfg.ReadTimeoutSeconds),
			WriteTimeout:      secondsOrZero(cfg.WriteTimeoutSeconds),
			IdleTimeout:       secondsOrZero(cfg.IdleTimeoutSeconds),
		},
	}
}

// Name 服务名称
func (s *HTTPService) Name() string {
	return "http"
}

// Start 监听并阻塞到服务关闭
func (s *HTTPService) Start(_ context.Context) error {
	if s == nil || s.server == nil {
		return errors.New("http server not initialized")
	}
	listener, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return err
	}
	return s.Serve(listener)
}

// Serve 在给定 listener 上提供服务
func (s *HTTPService) Serve(listener net.Listener) error {
	logger.Infow("http_listening", "addr", listener.Addr().String())
	if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop 优雅关闭，等待进行中的请求
func (s *HTTPService) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func secondsOrZero(n int) time.Duration {
	if n <= 0 {
		return 0
	}
	return time.Duration(n) * time.Second
}
