package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/ametelkin/onair-server/internal/auth"
	"github.com/ametelkin/onair-server/internal/core"
	"github.com/ametelkin/onair-server/internal/store"
)

const (
	defaultCallsLimit = 50
	maxCallsLimit     = 200
)

// APIHandlers provides HTTP handlers for REST API endpoints.
type APIHandlers struct {
	authService *auth.Service
	coord       *core.Coordinator
	journal     store.Journal
	log         *zerolog.Logger
}

// NewAPIHandlers creates a new API handlers instance.
func NewAPIHandlers(authService *auth.Service, coord *core.Coordinator, journal store.Journal, logger *zerolog.Logger) *APIHandlers {
	return &APIHandlers{
		authService: authService,
		coord:       coord,
		journal:     journal,
		log:         logger,
	}
}

// HostLoginRequest represents the host login request body.
type HostLoginRequest struct {
	Secret string `json:"secret" binding:"required"`
}

// AuthResponse represents the authentication response body.
type AuthResponse struct {
	Token string `json:"token"`
}

// ErrorResponse represents an error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// CallResponse represents a journaled call in API responses.
type CallResponse struct {
	ID          int64  `json:"id"`
	BroadcastID int64  `json:"broadcast_id"`
	ClientName  string `json:"client_name"`
	DialedAt    string `json:"dialed_at"`
	EndedAt     string `json:"ended_at,omitempty"`
	Outcome     string `json:"outcome,omitempty"`
}

// HostLogin exchanges the host secret for a token.
// POST /api/host/login
func (h *APIHandlers) HostLogin(c *gin.Context) {
	var req HostLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid host login request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	token, err := h.authService.Login(req.Secret)
	if err != nil {
		if errors.Is(err, auth.ErrDisabled) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "host auth disabled"})
			return
		}
		if errors.Is(err, auth.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid credentials"})
			return
		}
		h.log.Error().Err(err).Msg("failed to issue host token")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	h.log.Info().Msg("host token issued")
	c.JSON(http.StatusOK, AuthResponse{Token: token})
}

// GetSession returns the current session snapshot, the same document every
// connection receives as state-update.
// GET /api/session
func (h *APIHandlers) GetSession(c *gin.Context) {
	c.JSON(http.StatusOK, h.coord.Snapshot())
}

// ListCalls returns recent journaled calls, newest first.
// GET /api/calls?limit=N
func (h *APIHandlers) ListCalls(c *gin.Context) {
	limit := defaultCallsLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
			return
		}
		limit = min(n, maxCallsLimit)
	}

	calls, err := h.journal.ListRecentCalls(c.Request.Context(), limit)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list calls")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	response := make([]CallResponse, 0, len(calls))
	for _, call := range calls {
		entry := CallResponse{
			ID:          call.ID,
			BroadcastID: call.BroadcastID,
			ClientName:  call.ClientName,
			DialedAt:    call.DialedAt.Format(time.RFC3339),
		}
		if call.EndedAt != nil {
			entry.EndedAt = call.EndedAt.Format(time.RFC3339)
		}
		if call.Outcome != nil {
			entry.Outcome = string(*call.Outcome)
		}
		response = append(response, entry)
	}

	c.JSON(http.StatusOK, response)
}
