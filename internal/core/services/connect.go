package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/creatorsync-labs/creatorsync-core/internal/core/domain"
	"github.com/creatorsync-labs/creatorsync-core/internal/core/ports/driven"
	"github.com/creatorsync-labs/creatorsync-core/internal/core/ports/driving"
)

// Ensure connectService implements ConnectService
var _ driving.ConnectService = (*connectService)(nil)

// callbackState enumerates the stages of the callback pipeline.
// Stages run strictly in order; each either advances or aborts the
// flow with a reason code.
type callbackState int

const (
	stateValidateInput callbackState = iota
	stateVerifyState
	stateExchangeToken
	stateFetchProfile
	stateResolveIdentity
	statePersist
	stateDone
)

func (s callbackState) String() string {
	switch s {
	case stateValidateInput:
		return "validate_input"
	case stateVerifyState:
		return "verify_state"
	case stateExchangeToken:
		return "exchange_token"
	case stateFetchProfile:
		return "fetch_profile"
	case stateResolveIdentity:
		return "resolve_identity"
	case statePersist:
		return "persist"
	case stateDone:
		return "done"
	default:
		return "unknown"
	}
}

// ConnectServiceConfig holds configuration for the connect service.
type ConnectServiceConfig struct {
	// Platforms resolves per-platform OAuth clients.
	Platforms driven.PlatformClientFactory

	// Connections persists platform connections.
	Connections driven.ConnectionStore

	// Auth validates the caller credential during identity resolution.
	Auth driving.AuthService

	// Logger receives flow-level structured logs.
	Logger *slog.Logger
}

// connectService implements the ConnectService interface.
type connectService struct {
	platforms   driven.PlatformClientFactory
	connections driven.ConnectionStore
	auth        driving.AuthService
	logger      *slog.Logger
}

// NewConnectService creates a new ConnectService.
func NewConnectService(cfg ConnectServiceConfig) driving.ConnectService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &connectService{
		platforms:   cfg.Platforms,
		connections: cfg.Connections,
		auth:        cfg.Auth,
		logger:      logger,
	}
}

// Authorize starts an OAuth flow for the given platform.
func (s *connectService) Authorize(ctx context.Context, req driving.AuthorizeRequest) (*driving.AuthorizeResponse, error) {
	client, err := s.platforms.ClientFor(req.Platform)
	if err != nil {
		return nil, driving.NewConnectError(driving.ReasonUnsupportedPlatform, req.Platform, err)
	}

	// Generate state (CSRF protection)
	state, err := generateRandomString(32)
	if err != nil {
		return nil, fmt.Errorf("generate state: %w", err)
	}

	return &driving.AuthorizeResponse{
		AuthorizationURL: client.AuthorizeURL(state),
		State:            state,
	}, nil
}

// callbackFlow carries the values accumulated across callback stages.
type callbackFlow struct {
	req     driving.CallbackRequest
	client  driven.PlatformClient
	grant   *driven.TokenGrant
	profile *domain.PlatformProfile
	userID  string
	conn    *domain.Connection
}

// Callback processes the provider redirect through the staged pipeline.
func (s *connectService) Callback(ctx context.Context, req driving.CallbackRequest) (*driving.CallbackResponse, error) {
	flow := &callbackFlow{req: req}

	for state := stateValidateInput; state != stateDone; {
		next, err := s.runStage(ctx, state, flow)
		if err != nil {
			s.logger.Warn("connect callback aborted",
				"platform", req.Platform,
				"stage", state.String(),
				"error", err)
			return nil, err
		}
		state = next
	}

	s.logger.Info("platform connected",
		"platform", req.Platform,
		"user_id", flow.userID,
		"external_id", flow.profile.ID,
		"placeholder_profile", flow.profile.Placeholder)

	return &driving.CallbackResponse{
		Connection: flow.conn.ToSummary(),
		Message:    fmt.Sprintf("Successfully connected %s as %s", domain.PlatformDisplayName(req.Platform), flow.profile.Username),
	}, nil
}

// runStage executes one pipeline stage and returns the next state.
func (s *connectService) runStage(ctx context.Context, state callbackState, flow *callbackFlow) (callbackState, error) {
	switch state {
	case stateValidateInput:
		return s.validateInput(flow)
	case stateVerifyState:
		return s.verifyState(flow)
	case stateExchangeToken:
		return s.exchangeToken(ctx, flow)
	case stateFetchProfile:
		return s.fetchProfile(ctx, flow)
	case stateResolveIdentity:
		return s.resolveIdentity(ctx, flow)
	case statePersist:
		return s.persist(ctx, flow)
	default:
		return stateDone, driving.NewConnectError(driving.ReasonConnectionFailed, flow.req.Platform,
			fmt.Errorf("unexpected stage %d", state))
	}
}

func (s *connectService) validateInput(flow *callbackFlow) (callbackState, error) {
	req := flow.req

	client, err := s.platforms.ClientFor(req.Platform)
	if err != nil {
		return stateDone, driving.NewConnectError(driving.ReasonUnsupportedPlatform, req.Platform, err)
	}
	flow.client = client

	if req.Code == "" {
		return stateDone, driving.NewConnectError(driving.ReasonMissingCode, req.Platform, nil)
	}
	if req.State == "" {
		return stateDone, driving.NewConnectError(driving.ReasonMissingState, req.Platform, nil)
	}

	return stateVerifyState, nil
}

func (s *connectService) verifyState(flow *callbackFlow) (callbackState, error) {
	req := flow.req

	// The stored value was already cleared client-side; a mismatch or
	// a replayed state both land here.
	if req.StoredState == "" || req.StoredState != req.State {
		return stateDone, driving.NewConnectError(driving.ReasonInvalidState, req.Platform, nil)
	}

	return stateExchangeToken, nil
}

func (s *connectService) exchangeToken(ctx context.Context, flow *callbackFlow) (callbackState, error) {
	grant, err := flow.client.ExchangeCode(ctx, flow.req.Code)
	if err != nil {
		return stateDone, driving.NewConnectError(driving.ReasonTokenExchangeFailed, flow.req.Platform, err)
	}
	flow.grant = grant

	return stateFetchProfile, nil
}

// fetchProfile is non-fatal: a failed profile lookup synthesizes a
// placeholder identity so the connection still lands with valid tokens.
func (s *connectService) fetchProfile(ctx context.Context, flow *callbackFlow) (callbackState, error) {
	profile, err := flow.client.FetchProfile(ctx, flow.grant.AccessToken)
	if err != nil {
		s.logger.Warn("profile fetch failed, using placeholder",
			"platform", flow.req.Platform,
			"error", err)
		profile = placeholderProfile(flow.req.Platform, flow.grant)
	}
	if profile.ID == "" && flow.grant.OpenID != "" {
		profile.ID = flow.grant.OpenID
	}
	flow.profile = profile

	return stateResolveIdentity, nil
}

func (s *connectService) resolveIdentity(ctx context.Context, flow *callbackFlow) (callbackState, error) {
	req := flow.req

	if req.AuthToken == "" {
		return stateDone, driving.NewConnectError(driving.ReasonAuthRequired, req.Platform, nil)
	}

	authCtx, err := s.auth.ValidateToken(ctx, req.AuthToken)
	if err != nil {
		return stateDone, driving.NewConnectError(driving.ReasonInvalidToken, req.Platform, err)
	}
	flow.userID = authCtx.UserID

	return statePersist, nil
}

func (s *connectService) persist(ctx context.Context, flow *callbackFlow) (callbackState, error) {
	now := time.Now()

	var expiresAt *time.Time
	if flow.grant.ExpiresIn > 0 {
		t := now.Add(time.Duration(flow.grant.ExpiresIn) * time.Second)
		expiresAt = &t
	}

	conn := &domain.Connection{
		ID:       domain.GenerateID(),
		UserID:   flow.userID,
		Platform: flow.req.Platform,
		Secrets: &domain.ConnectionSecrets{
			AccessToken:  flow.grant.AccessToken,
			RefreshToken: flow.grant.RefreshToken,
		},
		ExpiresAt:   expiresAt,
		Scopes:      splitScopes(flow.grant.Scope),
		Profile:     *flow.profile,
		Status:      domain.ConnectionStatusActive,
		ConnectedAt: now,
		UpdatedAt:   now,
	}

	if err := s.connections.Upsert(ctx, conn); err != nil {
		return stateDone, driving.NewConnectError(driving.ReasonStorageFailed, flow.req.Platform, err)
	}
	flow.conn = conn

	return stateDone, nil
}

// placeholderProfile synthesizes an identity when the profile endpoint
// is unavailable at connect time. Not every grant carries an open_id,
// so the ID falls back to a generated one, and the username gets a
// random suffix so two degraded connections never share a handle.
func placeholderProfile(platform domain.PlatformType, grant *driven.TokenGrant) *domain.PlatformProfile {
	id := grant.OpenID
	if id == "" {
		id = domain.GenerateID()
	}

	username := fmt.Sprintf("%s_user", platform)
	if suffix, err := generateRandomString(6); err == nil {
		username += "_" + suffix
	}

	return &domain.PlatformProfile{
		ID:          id,
		Username:    username,
		DisplayName: domain.PlatformDisplayName(platform) + " User",
		Placeholder: true,
	}
}

// splitScopes splits a space- or comma-separated scope string.
func splitScopes(scope string) []string {
	scopes := strings.FieldsFunc(scope, func(r rune) bool {
		return r == ' ' || r == ','
	})
	if len(scopes) == 0 {
		return nil
	}
	return scopes
}

// generateRandomString generates a cryptographically secure random string.
func generateRandomString(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes)[:length], nil
}
