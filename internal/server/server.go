package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"salesconvert.example/sales-convert/pkg/logger"
)

// Options http.Server 的超时配置
type Options struct {
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// Server 封装了 http.Server
type Server struct {
	httpServer      *http.Server
	shutdownTimeout time.Duration
	log             logger.Logger
}

func NewServer(addr string, handler http.Handler, opts Options, log logger.Logger) *Server {
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 30 * time.Second
	}
	return &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      handler,
			ReadTimeout:  opts.ReadTimeout,
			WriteTimeout: opts.WriteTimeout,
			IdleTimeout:  opts.IdleTimeout,
		},
		shutdownTimeout: opts.ShutdownTimeout,
		log:             log,
	}
}

// Run 启动服务器并阻塞，ctx 结束时优雅关闭
func (s *Server) Run(ctx context.Context) error {
	serverErrors := make(chan error, 1)
	go func() {
		s.log.Info(ctx, "server listening", "addr", s.httpServer.Addr)
		serverErrors <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.log.Info(context.Background(), "shutdown signal received, draining connections")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()

		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.log.Error(shutdownCtx, "graceful shutdown failed", "error", err)
			return err
		}
		s.log.Info(shutdownCtx, "server gracefully stopped")
		return nil
	}
}
