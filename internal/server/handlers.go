package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/parleyhq/parley/internal/errors"
	"github.com/parleyhq/parley/internal/negotiation"
	"github.com/parleyhq/parley/internal/wishes"
)

type createRequest struct {
	SessionID   string   `json:"session_id" binding:"required"`
	WishesText  string   `json:"wishes_text"`
	AITravelers []string `json:"ai_travelers"`
}

type inputRequest struct {
	SessionID string `json:"session_id" binding:"required"`
	Who       string `json:"who" binding:"required"`
	Text      string `json:"text" binding:"required"`
}

type typingRequest struct {
	SessionID string `json:"session_id" binding:"required"`
	Who       string `json:"who" binding:"required"`
	Active    bool   `json:"active"`
}

type stopRequest struct {
	SessionID string `json:"session_id" binding:"required"`
}

// handleCreate registers and starts a session. Creating an existing id
// reports the session as already started instead of failing, so a
// reconnecting frontend can re-post safely.
func (s *Server) handleCreate(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session_id required"})
		return
	}

	if _, err := s.registry.Get(req.SessionID); err == nil {
		c.JSON(http.StatusOK, gin.H{"ok": true, "started": true})
		return
	}

	sess, err := s.buildSession(req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.registry.Add(sess); err != nil {
		c.JSON(http.StatusOK, gin.H{"ok": true, "started": true})
		return
	}
	if err := sess.Start(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	s.logger.Info("session created", "session", req.SessionID)
	c.JSON(http.StatusOK, gin.H{"ok": true, "started": true})
}

func (s *Server) buildSession(req createRequest) (*negotiation.Session, error) {
	neg := s.cfg.Negotiation

	wishText := req.WishesText
	if wishText == "" {
		wishText = wishes.DefaultText
	}
	set := wishes.ParseText(wishText)

	aiTravelers := req.AITravelers
	if aiTravelers == nil {
		aiTravelers = neg.AITravelers
	}

	specs := wishes.RosterSpecs(set, aiTravelers,
		neg.AgreementMarker, neg.FinalPlanMarker, neg.AffirmPhrases,
		s.cfg.Completion.ModeratorModel, s.cfg.Completion.AgentModel)

	roster, err := negotiation.BuildRoster(specs, wishes.TaskPrompt(),
		s.cfg.Completion.AgentModel, s.client, neg.InputQueueDepth)
	if err != nil {
		return nil, err
	}

	return negotiation.NewSession(req.SessionID, roster, negotiation.Config{
		MessageBudget:   neg.MessageBudget,
		RetryBound:      neg.RetryBound,
		InputQueueDepth: neg.InputQueueDepth,
		Validator: &negotiation.Validator{
			AgreementMarker: neg.AgreementMarker,
			FinalPlanMarker: neg.FinalPlanMarker,
			AffirmPhrases:   neg.AffirmPhrases,
		},
	}, s.logger), nil
}

func (s *Server) handleInput(c *gin.Context) {
	var req inputRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session_id, who and text required"})
		return
	}

	sess, err := s.registry.Get(req.SessionID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no session"})
		return
	}

	switch err := sess.Feed(req.Who, req.Text); {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"ok": true})
	case errors.Is(err, errors.ErrNoSuchParticipant),
		errors.Is(err, errors.ErrNotManualParticipant),
		errors.Is(err, errors.ErrInputBacklog):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	}
}

func (s *Server) handleTyping(c *gin.Context) {
	var req typingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session_id and who required"})
		return
	}

	sess, err := s.registry.Get(req.SessionID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no session"})
		return
	}
	if err := sess.SetTyping(req.Who, req.Active); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad who"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// handleStop is idempotent: stopping an unknown or finished session
// still reports success.
func (s *Server) handleStop(c *gin.Context) {
	var req stopRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session_id required"})
		return
	}
	s.registry.Stop(req.SessionID)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *Server) handleHistory(c *gin.Context) {
	sess, ok := s.sessionFromQuery(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"session_id": sess.ID(),
		"state":      sess.State(),
		"attempts":   sess.Attempts(),
		"messages":   sess.History(),
	})
}

func (s *Server) handleLog(c *gin.Context) {
	sess, ok := s.sessionFromQuery(c)
	if !ok {
		return
	}
	c.String(http.StatusOK, sess.LogMarkdown())
}

func (s *Server) handleList(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"sessions": s.registry.List()})
}

func (s *Server) sessionFromQuery(c *gin.Context) (*negotiation.Session, bool) {
	id := c.Query("session_id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session_id required"})
		return nil, false
	}
	sess, err := s.registry.Get(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no session"})
		return nil, false
	}
	return sess, true
}
