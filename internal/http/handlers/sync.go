package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/orgsync-backend/internal/hierarchy"
	"github.com/yungbote/orgsync-backend/internal/http/response"
	"github.com/yungbote/orgsync-backend/internal/ingestion"
	"github.com/yungbote/orgsync-backend/internal/platform/logger"
	"github.com/yungbote/orgsync-backend/internal/services"
)

type SyncHandler struct {
	log      *logger.Logger
	sync     services.SyncService
	sessions services.SessionStore
}

func NewSyncHandler(log *logger.Logger, sync services.SyncService, sessions services.SessionStore) *SyncHandler {
	return &SyncHandler{
		log:      log.With("handler", "SyncHandler"),
		sync:     sync,
		sessions: sessions,
	}
}

type syncRequest struct {
	CSVPath        string `json:"csv_path"`
	SessionID      string `json:"session_id"`
	Simulation     bool   `json:"simulation"`
	PrintStructure bool   `json:"print_structure"`
}

// acquire resolves the target session, creating one when id is blank, and
// marks it busy until the returned release runs.
func (h *SyncHandler) acquire(id string) (*services.Session, func(), error) {
	id = strings.TrimSpace(id)
	if id == "" {
		id = h.sessions.Create().ID
	}
	sess, err := h.sessions.Acquire(id)
	if err != nil {
		return nil, nil, err
	}
	return sess, func() { h.sessions.Release(sess.ID) }, nil
}

// POST /api/sync/load
func (h *SyncHandler) Load(c *gin.Context) {
	var req syncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if strings.TrimSpace(req.CSVPath) == "" {
		response.RespondError(c, http.StatusBadRequest, "missing_csv_path", errors.New("csv_path is required"))
		return
	}

	sess, release, err := h.acquire(req.SessionID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	defer release()

	rows, err := ingestion.ReadRows(strings.TrimSpace(req.CSVPath))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}

	// The session adopts the rebuilt graph only after the pass succeeds; a
	// failed pass leaves whatever the session held before.
	g := hierarchy.NewGraph()
	out, err := h.sync.Load(c.Request.Context(), g, rows, services.RunOptions{
		Simulation:     req.Simulation,
		PrintStructure: req.PrintStructure,
	})
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	sess.Graph = g
	out.Status = "ok"
	out.SessionID = sess.ID
	response.RespondOK(c, out)
}

// POST /api/sync/order
func (h *SyncHandler) Order(c *gin.Context) {
	var req syncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if strings.TrimSpace(req.SessionID) == "" {
		response.RespondError(c, http.StatusBadRequest, "missing_session_id", errors.New("session_id is required"))
		return
	}

	sess, release, err := h.acquire(req.SessionID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	defer release()

	if sess.Graph == nil || sess.Graph.Len() == 0 {
		response.RespondError(c, http.StatusBadRequest, "empty_session", errors.New("session has no hierarchy loaded"))
		return
	}

	out, err := h.sync.Order(c.Request.Context(), sess.Graph, services.RunOptions{
		Simulation:     req.Simulation,
		PrintStructure: req.PrintStructure,
	})
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	out.Status = "ok"
	out.SessionID = sess.ID
	response.RespondOK(c, out)
}

// POST /api/sync/run
func (h *SyncHandler) Run(c *gin.Context) {
	var req syncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if strings.TrimSpace(req.CSVPath) == "" {
		response.RespondError(c, http.StatusBadRequest, "missing_csv_path", errors.New("csv_path is required"))
		return
	}

	sess, release, err := h.acquire(req.SessionID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	defer release()

	rows, err := ingestion.ReadRows(strings.TrimSpace(req.CSVPath))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	h.runAndRespond(c, sess, rows, services.RunOptions{
		Simulation:     req.Simulation,
		PrintStructure: req.PrintStructure,
	})
}

// POST /api/sync/upload
func (h *SyncHandler) Upload(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "missing_file", err)
		return
	}
	h.log.Info("Hierarchy upload received", "filename", fh.Filename, "size", fh.Size)

	sess, release, err := h.acquire(c.PostForm("session_id"))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	defer release()

	f, err := fh.Open()
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "unreadable_file", err)
		return
	}
	defer func() { _ = f.Close() }()

	rows, err := ingestion.Decode(fh.Filename, f)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	h.runAndRespond(c, sess, rows, services.RunOptions{
		Simulation:     parseFormBool(c.PostForm("simulation")),
		PrintStructure: parseFormBool(c.PostForm("print_structure")),
	})
}

func (h *SyncHandler) runAndRespond(c *gin.Context, sess *services.Session, rows []hierarchy.Row, opts services.RunOptions) {
	g := hierarchy.NewGraph()
	out, err := h.sync.Run(c.Request.Context(), g, rows, opts)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	sess.Graph = g
	out.Status = "ok"
	out.SessionID = sess.ID
	response.RespondOK(c, out)
}

func parseFormBool(raw string) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	return v
}
