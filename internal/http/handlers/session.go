package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/orgsync-backend/internal/http/response"
	"github.com/yungbote/orgsync-backend/internal/services"
)

type SessionHandler struct {
	sessions services.SessionStore
}

func NewSessionHandler(sessions services.SessionStore) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// POST /api/sessions
func (h *SessionHandler) Create(c *gin.Context) {
	sess := h.sessions.Create()
	info, ok := h.sessions.Info(sess.ID)
	if !ok {
		response.RespondServiceError(c, services.ErrSessionNotFound)
		return
	}
	response.RespondOK(c, info)
}

// GET /api/sessions/:id
func (h *SessionHandler) Get(c *gin.Context) {
	info, ok := h.sessions.Info(c.Param("id"))
	if !ok {
		response.RespondServiceError(c, services.ErrSessionNotFound)
		return
	}
	response.RespondOK(c, info)
}

// DELETE /api/sessions/:id
func (h *SessionHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if !h.sessions.Delete(id) {
		response.RespondServiceError(c, services.ErrSessionNotFound)
		return
	}
	response.RespondOK(c, gin.H{"status": "ok", "session_id": id})
}
