// Package mockserver implements an in-memory stand-in for the MiniDeN
// webchat backend. It exists so the client can be exercised end to end in
// development and tests; it is a fixture, not a backend specification.
package mockserver

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/miniden/webchat/internal/models"
)

// DefaultAutoReplyDelay is how long the simulated manager waits before
// replying to a user message.
const DefaultAutoReplyDelay = 1500 * time.Millisecond

// sessionState is one chat session held in memory.
type sessionState struct {
	ID       int64
	Status   models.SessionStatus
	Messages []models.Message
}

// Server is the mock webchat backend.
type Server struct {
	port           int
	autoReply      bool
	autoReplyDelay time.Duration
	closeCron      string
	out            io.Writer

	mu       sync.Mutex
	sessions map[string]*sessionState // key: session_key
	nextID   int64
	faq      []models.FaqItem

	engine *gin.Engine
}

// Opts holds parameters for creating a Server.
type Opts struct {
	Port           int
	AutoReply      bool          // simulate a manager reply after each user message
	AutoReplyDelay time.Duration // defaults to DefaultAutoReplyDelay
	CloseCron      string        // optional 5-field cron; closes all open sessions
	Faq            []models.FaqItem
	Out            io.Writer
}

// New creates a Server. The FAQ fixture defaults to a built-in set.
func New(opts Opts) (*Server, error) {
	if opts.CloseCron != "" {
		if _, err := cronParser.Parse(opts.CloseCron); err != nil {
			return nil, fmt.Errorf("mockserver: parse close cron %q: %w", opts.CloseCron, err)
		}
	}
	port := opts.Port
	if port <= 0 {
		port = 8077
	}
	delay := opts.AutoReplyDelay
	if delay <= 0 {
		delay = DefaultAutoReplyDelay
	}
	items := opts.Faq
	if len(items) == 0 {
		items = defaultFaq()
	}

	s := &Server{
		port:           port,
		autoReply:      opts.AutoReply,
		autoReplyDelay: delay,
		closeCron:      opts.CloseCron,
		out:            opts.Out,
		sessions:       make(map[string]*sessionState),
		faq:            items,
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	s.registerRoutes(engine)
	s.engine = engine
	return s, nil
}

// Handler exposes the underlying HTTP handler for httptest use.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then shuts down gracefully. When a
// close cron is configured, a scheduler goroutine closes open sessions on
// each fire (simulating the end of support hours).
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", s.port),
		Handler: s.engine,
	}

	go func() {
		<-ctx.Done()
		srv.Shutdown(context.Background())
	}()

	if s.closeCron != "" {
		go s.runCloseScheduler(ctx)
	}

	if s.out != nil {
		fmt.Fprintf(s.out, "Mock webchat backend on http://localhost:%d\n", s.port)
	}

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("mockserver: %w", err)
	}
	return nil
}

// CloseAllSessions marks every non-closed session as closed and appends a
// system notice to its history.
func (s *Server) CloseAllSessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int
	for _, sess := range s.sessions {
		if sess.Status == models.StatusClosed {
			continue
		}
		sess.Status = models.StatusClosed
		sess.Messages = append(sess.Messages, models.Message{
			Sender:    models.SenderSystem,
			Text:      "Чат закрыт. Мы ответим вам в рабочее время.",
			CreatedAt: time.Now(),
		})
		n++
	}
	return n
}

// SessionCount returns the number of known sessions (for tests and status).
func (s *Server) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
