package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/creatorsync-labs/creatorsync-core/internal/core/domain"
	"github.com/creatorsync-labs/creatorsync-core/internal/core/ports/driven"
	"github.com/creatorsync-labs/creatorsync-core/internal/core/ports/driving"
)

// ErrorResponse represents an API error response
// @Description API error response
type ErrorResponse struct {
	Error string `json:"error" example:"invalid request body"`
}

// StatusResponse represents a simple status response
// @Description Simple status response
type StatusResponse struct {
	Status string `json:"status" example:"ok"`
}

// Health endpoints

// handleHealth godoc
// @Summary      Health check
// @Description  Returns the health status of the API
// @Tags         Health
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Router       /health [get]
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady godoc
// @Summary      Readiness check
// @Description  Returns the readiness status of the API (checks database and queue connections)
// @Tags         Health
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Failure      503  {object}  ErrorResponse  "A backend is unreachable"
// @Router       /ready [get]
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if s.db != nil {
		if err := s.db.Ping(ctx); err != nil {
			writeError(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
	}
	if s.redisClient != nil {
		if err := s.redisClient.Ping(ctx); err != nil {
			writeError(w, http.StatusServiceUnavailable, "redis unavailable")
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// handleVersion godoc
// @Summary      Get API version
// @Description  Returns the current API version
// @Tags         Health
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /version [get]
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": s.version})
}

// Auth endpoints

// handleLogin godoc
// @Summary      User login
// @Description  Authenticate with email and password to receive a JWT token
// @Tags         Authentication
// @Accept       json
// @Produce      json
// @Param        request  body      domain.LoginRequest  true  "Login credentials"
// @Success      200      {object}  domain.LoginResponse
// @Failure      400      {object}  ErrorResponse  "Invalid request body"
// @Failure      401      {object}  ErrorResponse  "Invalid credentials or account disabled"
// @Failure      500      {object}  ErrorResponse  "Internal server error"
// @Router       /auth/login [post]
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := s.authService.Authenticate(r.Context(), req)
	if err != nil {
		switch err {
		case domain.ErrInvalidCredentials:
			writeError(w, http.StatusUnauthorized, "invalid credentials")
		case domain.ErrUnauthorized:
			writeError(w, http.StatusUnauthorized, "account disabled")
		default:
			writeError(w, http.StatusInternalServerError, "authentication failed")
		}
		return
	}

	// Also set the session cookie so browser navigation (the connect
	// flow) can carry identity without an Authorization header.
	http.SetCookie(w, buildSessionCookie(resp.Token, resp.ExpiresAt))

	writeJSON(w, http.StatusOK, resp)
}

// handleRefresh godoc
// @Summary      Refresh token
// @Description  Exchange a refresh token for a new JWT token
// @Tags         Authentication
// @Accept       json
// @Produce      json
// @Param        request  body      domain.RefreshRequest  true  "Refresh token"
// @Success      200      {object}  domain.LoginResponse
// @Failure      400      {object}  ErrorResponse  "Invalid request body"
// @Failure      401      {object}  ErrorResponse  "Invalid refresh token"
// @Router       /auth/refresh [post]
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req domain.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := s.authService.RefreshToken(r.Context(), req)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid refresh token")
		return
	}

	http.SetCookie(w, buildSessionCookie(resp.Token, resp.ExpiresAt))

	writeJSON(w, http.StatusOK, resp)
}

// handleLogout godoc
// @Summary      Logout user
// @Description  Invalidate the current session token
// @Tags         Authentication
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  StatusResponse
// @Router       /auth/logout [post]
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	token := extractBearerToken(r)
	if token != "" {
		_ = s.authService.Logout(r.Context(), token)
	}

	http.SetCookie(w, buildSessionDeletionCookie())
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleGetMe godoc
// @Summary      Get current user
// @Description  Get the currently authenticated user's identity
// @Tags         Users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.AuthContext
// @Failure      401  {object}  ErrorResponse  "Unauthorized"
// @Router       /me [get]
func (s *Server) handleGetMe(w http.ResponseWriter, r *http.Request) {
	authCtx := GetAuthContext(r.Context())
	if authCtx == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	writeJSON(w, http.StatusOK, authCtx)
}

// Connection endpoints

// handleListConnections godoc
// @Summary      List platform connections
// @Description  List the caller's platform connections (no token values)
// @Tags         Connections
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.ConnectionSummary
// @Failure      401  {object}  ErrorResponse  "Unauthorized"
// @Router       /connections [get]
func (s *Server) handleListConnections(w http.ResponseWriter, r *http.Request) {
	authCtx := GetAuthContext(r.Context())
	if authCtx == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	connections, err := s.connectionService.List(r.Context(), authCtx.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list connections")
		return
	}

	if connections == nil {
		connections = []*domain.ConnectionSummary{}
	}
	writeJSON(w, http.StatusOK, connections)
}

// handleGetConnection godoc
// @Summary      Get one platform connection
// @Description  Get the caller's connection for a platform
// @Tags         Connections
// @Produce      json
// @Security     BearerAuth
// @Param        platform  path      string  true  "Platform (tiktok, instagram, x)"
// @Success      200       {object}  domain.ConnectionSummary
// @Failure      404       {object}  ErrorResponse  "Not connected"
// @Router       /connections/{platform} [get]
func (s *Server) handleGetConnection(w http.ResponseWriter, r *http.Request) {
	authCtx := GetAuthContext(r.Context())
	if authCtx == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	platform := domain.PlatformType(r.PathValue("platform"))
	summary, err := s.connectionService.Get(r.Context(), authCtx.UserID, platform)
	if err != nil {
		switch err {
		case domain.ErrNotConnected:
			writeError(w, http.StatusNotFound, "platform not connected")
		case domain.ErrUnsupportedPlatform:
			writeError(w, http.StatusBadRequest, "unsupported platform")
		default:
			writeError(w, http.StatusInternalServerError, "failed to get connection")
		}
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// handleDisconnect godoc
// @Summary      Disconnect a platform
// @Description  Delete the caller's connection for a platform, discarding its tokens
// @Tags         Connections
// @Produce      json
// @Security     BearerAuth
// @Param        platform  path      string  true  "Platform"
// @Success      200       {object}  StatusResponse
// @Failure      404       {object}  ErrorResponse  "Not connected"
// @Router       /connections/{platform} [delete]
func (s *Server) handleDisconnect(w http.ResponseWriter, r *http.Request) {
	authCtx := GetAuthContext(r.Context())
	if authCtx == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	platform := domain.PlatformType(r.PathValue("platform"))
	if err := s.connectionService.Disconnect(r.Context(), authCtx.UserID, platform); err != nil {
		switch err {
		case domain.ErrNotConnected:
			writeError(w, http.StatusNotFound, "platform not connected")
		case domain.ErrUnsupportedPlatform:
			writeError(w, http.StatusBadRequest, "unsupported platform")
		default:
			writeError(w, http.StatusInternalServerError, "failed to disconnect")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleRefreshConnection godoc
// @Summary      Refresh platform tokens
// @Description  Rotate the access token for a connected platform using its refresh token
// @Tags         Connections
// @Produce      json
// @Security     BearerAuth
// @Param        platform  path      string  true  "Platform"
// @Success      200       {object}  domain.ConnectionSummary
// @Failure      404       {object}  ErrorResponse  "Not connected"
// @Failure      409       {object}  ErrorResponse  "No refresh token available"
// @Router       /connections/{platform}/refresh [post]
func (s *Server) handleRefreshConnection(w http.ResponseWriter, r *http.Request) {
	authCtx := GetAuthContext(r.Context())
	if authCtx == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	platform := domain.PlatformType(r.PathValue("platform"))
	summary, err := s.connectionService.Refresh(r.Context(), authCtx.UserID, platform)
	if err != nil {
		switch err {
		case domain.ErrNotConnected:
			writeError(w, http.StatusNotFound, "platform not connected")
		case domain.ErrTokenInvalid:
			writeError(w, http.StatusConflict, "connection has no refresh token")
		case domain.ErrUnsupportedPlatform:
			writeError(w, http.StatusBadRequest, "unsupported platform")
		default:
			writeError(w, http.StatusInternalServerError, "failed to refresh connection")
		}
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// Content endpoints

// scheduleRequest is the body for scheduling a content item
type scheduleRequest struct {
	At time.Time `json:"at"`
}

// handleCreateContent godoc
// @Summary      Create content item
// @Description  Create a draft content item for the caller
// @Tags         Content
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      driving.CreateContentRequest  true  "Content fields"
// @Success      201      {object}  domain.ContentItem
// @Failure      400      {object}  ErrorResponse  "Invalid input"
// @Router       /content [post]
func (s *Server) handleCreateContent(w http.ResponseWriter, r *http.Request) {
	authCtx := GetAuthContext(r.Context())
	if authCtx == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req driving.CreateContentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	item, err := s.contentService.Create(r.Context(), authCtx.UserID, req)
	if err != nil {
		switch err {
		case domain.ErrInvalidInput:
			writeError(w, http.StatusBadRequest, "platform and title are required")
		case domain.ErrUnsupportedPlatform:
			writeError(w, http.StatusBadRequest, "unsupported platform")
		default:
			writeError(w, http.StatusInternalServerError, "failed to create content")
		}
		return
	}

	writeJSON(w, http.StatusCreated, item)
}

// handleListContent godoc
// @Summary      List content items
// @Description  List the caller's content items, optionally filtered by status and platform
// @Tags         Content
// @Produce      json
// @Security     BearerAuth
// @Param        status    query     string  false  "Filter by status"
// @Param        platform  query     string  false  "Filter by platform"
// @Success      200       {array}   domain.ContentItem
// @Router       /content [get]
func (s *Server) handleListContent(w http.ResponseWriter, r *http.Request) {
	authCtx := GetAuthContext(r.Context())
	if authCtx == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	filter := driven.ContentFilter{
		Status:   domain.ContentStatus(r.URL.Query().Get("status")),
		Platform: domain.PlatformType(r.URL.Query().Get("platform")),
	}

	items, err := s.contentService.List(r.Context(), authCtx.UserID, filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list content")
		return
	}

	if items == nil {
		items = []*domain.ContentItem{}
	}
	writeJSON(w, http.StatusOK, items)
}

// handleGetContent godoc
// @Summary      Get a content item
// @Tags         Content
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Content item ID"
// @Success      200  {object}  domain.ContentItem
// @Failure      404  {object}  ErrorResponse  "Not found"
// @Router       /content/{id} [get]
func (s *Server) handleGetContent(w http.ResponseWriter, r *http.Request) {
	authCtx := GetAuthContext(r.Context())
	if authCtx == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	item, err := s.contentService.Get(r.Context(), authCtx.UserID, r.PathValue("id"))
	if err != nil {
		writeContentError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, item)
}

// handleScheduleContent godoc
// @Summary      Schedule a content item
// @Description  Mark a draft item for publishing at the given time. The target platform must be connected.
// @Tags         Content
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string           true  "Content item ID"
// @Param        request  body      scheduleRequest  true  "Publish time"
// @Success      200      {object}  domain.ContentItem
// @Failure      400      {object}  ErrorResponse  "Invalid input"
// @Failure      404      {object}  ErrorResponse  "Not found"
// @Failure      409      {object}  ErrorResponse  "Platform not connected"
// @Router       /content/{id}/schedule [post]
func (s *Server) handleScheduleContent(w http.ResponseWriter, r *http.Request) {
	authCtx := GetAuthContext(r.Context())
	if authCtx == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req scheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	item, err := s.contentService.Schedule(r.Context(), authCtx.UserID, r.PathValue("id"), req.At)
	if err != nil {
		switch err {
		case domain.ErrNotConnected:
			writeError(w, http.StatusConflict, "platform not connected")
		case domain.ErrInvalidInput:
			writeError(w, http.StatusBadRequest, "item cannot be scheduled")
		default:
			writeContentError(w, err)
		}
		return
	}

	writeJSON(w, http.StatusOK, item)
}

// handleDeleteContent godoc
// @Summary      Delete a content item
// @Tags         Content
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Content item ID"
// @Success      200  {object}  StatusResponse
// @Failure      404  {object}  ErrorResponse  "Not found"
// @Router       /content/{id} [delete]
func (s *Server) handleDeleteContent(w http.ResponseWriter, r *http.Request) {
	authCtx := GetAuthContext(r.Context())
	if authCtx == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := s.contentService.Delete(r.Context(), authCtx.UserID, r.PathValue("id")); err != nil {
		writeContentError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeContentError maps content service errors onto HTTP statuses
func writeContentError(w http.ResponseWriter, err error) {
	switch err {
	case domain.ErrNotFound:
		writeError(w, http.StatusNotFound, "content item not found")
	case domain.ErrForbidden:
		writeError(w, http.StatusNotFound, "content item not found")
	default:
		writeError(w, http.StatusInternalServerError, "content operation failed")
	}
}

// Helper functions

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
