package server

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/grandcat/zeroconf"
	"go.uber.org/zap"

	"github.com/solutyics/loanform/internal/discovery"
	"github.com/solutyics/loanform/internal/logging"
	"github.com/solutyics/loanform/internal/predict"
	"github.com/solutyics/loanform/internal/version"
)

// shutdownTimeout bounds how long Start waits for open requests on shutdown
const shutdownTimeout = 10 * time.Second

// Config holds the server configuration
type Config struct {
	Host           string
	Port           int
	AllowedOrigins []string // Cross-origin callers allowed for the API and WebSocket
	Advertise      bool     // Announce the form on the LAN over mDNS
	InstanceName   string   // mDNS instance name (defaults to "loanform")
	RequestTimeout time.Duration
}

// Server serves the web form, the JSON API and metrics
type Server struct {
	config    *Config
	predictor predict.Predictor
	engine    *gin.Engine
	upgrader  websocket.Upgrader

	mu         sync.Mutex
	httpServer *http.Server
	listener   net.Listener
	mdns       *zeroconf.Server
	conns      map[*websocket.Conn]struct{}
	sessions   sync.WaitGroup
}

// New creates a Server that submits forms through predictor
func New(config *Config, predictor predict.Predictor) (*Server, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	s := &Server{
		config:    config,
		predictor: instrumentedPredictor{next: predictor},
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger())
	if c, ok := corsMiddleware(config.AllowedOrigins); ok {
		engine.Use(c)
	}
	engine.SetHTMLTemplate(tmpl)
	s.engine = engine
	s.routes()

	return s, nil
}

// Handler returns the HTTP handler, for use with httptest
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Addr returns the listening address once Start has bound it
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Start listens and serves until ctx is canceled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	httpServer := &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.mu.Lock()
	s.listener = listener
	s.httpServer = httpServer
	s.mu.Unlock()

	logging.Info("Starting loanform web server",
		zap.String("addr", listener.Addr().String()),
		zap.String("version", version.Version),
	)

	if s.config.Advertise {
		s.advertise(listener.Addr())
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- httpServer.Serve(listener)
	}()

	select {
	case <-ctx.Done():
		logging.Info("Shutdown requested, stopping server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	case err := <-errChan:
		s.stopAdvertising()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// Shutdown stops accepting requests and waits for open sessions
func (s *Server) Shutdown(ctx context.Context) error {
	s.stopAdvertising()

	s.mu.Lock()
	httpServer := s.httpServer
	s.mu.Unlock()

	if httpServer == nil {
		return nil
	}
	if err := httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	s.closeConns()

	done := make(chan struct{})
	go func() {
		s.sessions.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		logging.Warn("Timed out waiting for form sessions to close")
	}

	logging.Info("Server stopped")
	return nil
}

func (s *Server) advertise(addr net.Addr) {
	tcp, ok := addr.(*net.TCPAddr)
	if !ok {
		return
	}
	name := s.config.InstanceName
	if name == "" {
		name = discovery.DefaultInstanceName
	}

	srv, err := discovery.Advertise(name, tcp.Port, version.Version)
	if err != nil {
		logging.Warn("mDNS advertisement failed", zap.Error(err))
		return
	}

	s.mu.Lock()
	s.mdns = srv
	s.mu.Unlock()
	logging.Info("Advertising on the local network",
		zap.String("instance", name),
		zap.String("service", discovery.ServiceType),
		zap.Int("port", tcp.Port),
	)
}

func (s *Server) stopAdvertising() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mdns != nil {
		s.mdns.Shutdown()
		s.mdns = nil
	}
}

func corsMiddleware(origins []string) (gin.HandlerFunc, bool) {
	if len(origins) == 0 {
		return nil, false
	}
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
		}
	}
	if !cfg.AllowAllOrigins {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg), true
}

// requestLogger logs every request through the package logger
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		HTTPRequestsTotal.WithLabelValues(c.Request.Method, route, fmt.Sprint(status)).Inc()
		logging.LogHTTPRequest(c.ClientIP(), c.Request.Method, c.Request.URL.Path, status, time.Since(start))
	}
}
