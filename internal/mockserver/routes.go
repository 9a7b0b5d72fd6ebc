package mockserver

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/miniden/webchat/internal/models"
)

type startRequest struct {
	SessionKey string  `json:"session_key"`
	Page       *string `json:"page"`
}

type messageRequest struct {
	SessionKey string `json:"session_key"`
	Text       string `json:"text"`
}

// registerRoutes sets up the four webchat endpoints.
func (s *Server) registerRoutes(engine *gin.Engine) {
	engine.POST("/api/webchat/start", s.handleStart)
	engine.GET("/api/webchat/messages", s.handleMessages)
	engine.POST("/api/webchat/message", s.handleMessage)
	engine.GET("/api/faq", s.handleFaqList)
	engine.GET("/api/faq/:id", s.handleFaqItem)
}

// handleStart creates or resumes a session for the given session key.
func (s *Server) handleStart(c *gin.Context) {
	var req startRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.SessionKey == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session_key is required"})
		return
	}

	s.mu.Lock()
	sess, ok := s.sessions[req.SessionKey]
	if !ok {
		s.nextID++
		sess = &sessionState{
			ID:     s.nextID,
			Status: models.StatusOpen,
			Messages: []models.Message{{
				Sender:    models.SenderSystem,
				Text:      "Здравствуйте! Чем можем помочь?",
				CreatedAt: time.Now(),
			}},
		}
		s.sessions[req.SessionKey] = sess
	}
	resp := gin.H{"session_id": sess.ID, "status": sess.Status}
	s.mu.Unlock()

	c.JSON(http.StatusOK, resp)
}

// handleMessages returns the full history for a session, newest last.
func (s *Server) handleMessages(c *gin.Context) {
	key := c.Query("session_key")
	if key == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session_key is required"})
		return
	}
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			limit = v
		}
	}

	s.mu.Lock()
	sess, ok := s.sessions[key]
	if !ok {
		s.mu.Unlock()
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown session"})
		return
	}
	msgs := sess.Messages
	if len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	out := make([]models.Message, len(msgs))
	copy(out, msgs)
	status := sess.Status
	s.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{"status": status, "messages": out})
}

// handleMessage appends a user message and optionally schedules the
// simulated manager reply.
func (s *Server) handleMessage(c *gin.Context) {
	var req messageRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.SessionKey == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session_key is required"})
		return
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text is required"})
		return
	}

	s.mu.Lock()
	sess, ok := s.sessions[req.SessionKey]
	if !ok {
		s.mu.Unlock()
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown session"})
		return
	}
	if sess.Status == models.StatusClosed {
		s.mu.Unlock()
		c.JSON(http.StatusConflict, gin.H{"error": "session is closed"})
		return
	}
	sess.Messages = append(sess.Messages, models.Message{
		Sender:    models.SenderUser,
		Text:      text,
		CreatedAt: time.Now(),
	})
	s.mu.Unlock()

	if s.autoReply {
		key := req.SessionKey
		time.AfterFunc(s.autoReplyDelay, func() { s.appendManagerReply(key) })
	}

	c.JSON(http.StatusOK, gin.H{})
}

// appendManagerReply adds the canned manager response, unless the session
// was closed in the meantime.
func (s *Server) appendManagerReply(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[key]
	if !ok || sess.Status == models.StatusClosed {
		return
	}
	sess.Messages = append(sess.Messages, models.Message{
		Sender:    models.SenderManager,
		Text:      "Спасибо за сообщение! Оператор скоро ответит.",
		CreatedAt: time.Now(),
	})
}

// handleFaqList returns the FAQ tree root, or one category when the
// category query parameter is present. Answers are omitted from listings.
func (s *Server) handleFaqList(c *gin.Context) {
	category := c.Query("category")

	s.mu.Lock()
	var out []models.FaqItem
	for _, it := range s.faq {
		if category != "" && it.Category != category {
			continue
		}
		it.Answer = ""
		out = append(out, it)
	}
	s.mu.Unlock()

	if out == nil {
		out = []models.FaqItem{}
	}
	c.JSON(http.StatusOK, out)
}

// handleFaqItem returns a single FAQ entry with its answer.
func (s *Server) handleFaqItem(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, it := range s.faq {
		if it.ID == id {
			c.JSON(http.StatusOK, it)
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
}
