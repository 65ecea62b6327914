package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/creatorsync-labs/creatorsync-core/internal/core/domain"
	"github.com/creatorsync-labs/creatorsync-core/internal/core/ports/driven"
	"github.com/creatorsync-labs/creatorsync-core/internal/core/ports/driving"
)

// Ensure connectionService implements ConnectionService
var _ driving.ConnectionService = (*connectionService)(nil)

// connectionService implements the ConnectionService interface
type connectionService struct {
	connections driven.ConnectionStore
	platforms   driven.PlatformClientFactory
	logger      *slog.Logger
}

// NewConnectionService creates a new ConnectionService
func NewConnectionService(
	connections driven.ConnectionStore,
	platforms driven.PlatformClientFactory,
	logger *slog.Logger,
) driving.ConnectionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &connectionService{
		connections: connections,
		platforms:   platforms,
		logger:      logger,
	}
}

// List returns the user's connections without secrets
func (s *connectionService) List(ctx context.Context, userID string) ([]*domain.ConnectionSummary, error) {
	if userID == "" {
		return nil, domain.ErrInvalidInput
	}

	conns, err := s.connections.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list connections: %w", err)
	}

	summaries := make([]*domain.ConnectionSummary, 0, len(conns))
	for _, c := range conns {
		summaries = append(summaries, c.ToSummary())
	}
	return summaries, nil
}

// Get returns one connection summary
func (s *connectionService) Get(ctx context.Context, userID string, platform domain.PlatformType) (*domain.ConnectionSummary, error) {
	conn, err := s.getConnection(ctx, userID, platform)
	if err != nil {
		return nil, err
	}
	return conn.ToSummary(), nil
}

// Disconnect removes the user's connection for a platform
func (s *connectionService) Disconnect(ctx context.Context, userID string, platform domain.PlatformType) error {
	if _, err := s.getConnection(ctx, userID, platform); err != nil {
		return err
	}

	if err := s.connections.DeleteByUserAndPlatform(ctx, userID, platform); err != nil {
		return fmt.Errorf("delete connection: %w", err)
	}

	s.logger.Info("platform disconnected", "platform", platform, "user_id", userID)
	return nil
}

// Refresh rotates the access token for a connected platform
func (s *connectionService) Refresh(ctx context.Context, userID string, platform domain.PlatformType) (*domain.ConnectionSummary, error) {
	conn, err := s.getConnection(ctx, userID, platform)
	if err != nil {
		return nil, err
	}
	if !conn.HasSecrets() || conn.Secrets.RefreshToken == "" {
		return nil, domain.ErrTokenInvalid
	}

	client, err := s.platforms.ClientFor(platform)
	if err != nil {
		return nil, err
	}

	grant, err := client.RefreshAccessToken(ctx, conn.Secrets.RefreshToken)
	if err != nil {
		return nil, fmt.Errorf("refresh token: %w", err)
	}

	now := time.Now()
	conn.Secrets.AccessToken = grant.AccessToken
	if grant.RefreshToken != "" {
		conn.Secrets.RefreshToken = grant.RefreshToken
	}
	conn.ExpiresAt = nil
	if grant.ExpiresIn > 0 {
		t := now.Add(time.Duration(grant.ExpiresIn) * time.Second)
		conn.ExpiresAt = &t
	}
	conn.UpdatedAt = now

	if err := s.connections.Upsert(ctx, conn); err != nil {
		return nil, fmt.Errorf("save refreshed connection: %w", err)
	}

	s.logger.Info("connection token refreshed", "platform", platform, "user_id", userID)
	return conn.ToSummary(), nil
}

func (s *connectionService) getConnection(ctx context.Context, userID string, platform domain.PlatformType) (*domain.Connection, error) {
	if userID == "" {
		return nil, domain.ErrInvalidInput
	}
	if !domain.IsCorePlatform(platform) {
		return nil, domain.ErrUnsupportedPlatform
	}

	conn, err := s.connections.GetByUserAndPlatform(ctx, userID, platform)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotConnected
		}
		return nil, fmt.Errorf("get connection: %w", err)
	}
	return conn, nil
}
