package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/creatorsync-labs/creatorsync-core/internal/core/domain"
	"github.com/creatorsync-labs/creatorsync-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.ConnectionStore = (*ConnectionStore)(nil)

// ConnectionStore implements driven.ConnectionStore using PostgreSQL.
// Token values never touch the database in plaintext: they are sealed
// with the SecretEncryptor on write and opened on read.
type ConnectionStore struct {
	db        *DB
	encryptor *SecretEncryptor
}

// NewConnectionStore creates a new ConnectionStore
func NewConnectionStore(db *DB, encryptor *SecretEncryptor) *ConnectionStore {
	return &ConnectionStore{db: db, encryptor: encryptor}
}

const connectionColumns = `id, user_id, platform, secrets, expires_at, scopes,
	profile_id, profile_username, profile_display_name, profile_avatar_url, profile_placeholder,
	status, connected_at, updated_at`

// Upsert creates or replaces the connection for (UserID, Platform).
// A reconnect keeps the original row ID and connected_at, rotating
// everything else.
func (s *ConnectionStore) Upsert(ctx context.Context, conn *domain.Connection) error {
	if conn.Secrets == nil {
		return fmt.Errorf("connection has no secrets to store")
	}

	blob, err := s.encryptor.Encrypt(conn.Secrets)
	if err != nil {
		return fmt.Errorf("encrypt connection secrets: %w", err)
	}

	query := `
		INSERT INTO connections (id, user_id, platform, secrets, expires_at, scopes,
			profile_id, profile_username, profile_display_name, profile_avatar_url, profile_placeholder,
			status, connected_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (user_id, platform) DO UPDATE SET
			secrets = EXCLUDED.secrets,
			expires_at = EXCLUDED.expires_at,
			scopes = EXCLUDED.scopes,
			profile_id = EXCLUDED.profile_id,
			profile_username = EXCLUDED.profile_username,
			profile_display_name = EXCLUDED.profile_display_name,
			profile_avatar_url = EXCLUDED.profile_avatar_url,
			profile_placeholder = EXCLUDED.profile_placeholder,
			status = EXCLUDED.status,
			updated_at = EXCLUDED.updated_at
	`

	_, err = s.db.ExecContext(ctx, query,
		conn.ID,
		conn.UserID,
		string(conn.Platform),
		blob,
		NullTime(conn.ExpiresAt),
		strings.Join(conn.Scopes, " "),
		conn.Profile.ID,
		conn.Profile.Username,
		conn.Profile.DisplayName,
		conn.Profile.AvatarURL,
		conn.Profile.Placeholder,
		string(conn.Status),
		conn.ConnectedAt,
		conn.UpdatedAt,
	)
	return err
}

// Get retrieves a connection by ID, with secrets decrypted
func (s *ConnectionStore) Get(ctx context.Context, id string) (*domain.Connection, error) {
	query := `SELECT ` + connectionColumns + ` FROM connections WHERE id = $1`
	return s.scanConnection(s.db.QueryRowContext(ctx, query, id), true)
}

// GetByUserAndPlatform retrieves a user's connection for one platform,
// with secrets decrypted
func (s *ConnectionStore) GetByUserAndPlatform(ctx context.Context, userID string, platform domain.PlatformType) (*domain.Connection, error) {
	query := `SELECT ` + connectionColumns + ` FROM connections WHERE user_id = $1 AND platform = $2`
	return s.scanConnection(s.db.QueryRowContext(ctx, query, userID, string(platform)), true)
}

// ListByUser lists a user's connections without secrets
func (s *ConnectionStore) ListByUser(ctx context.Context, userID string) ([]*domain.Connection, error) {
	query := `SELECT ` + connectionColumns + ` FROM connections WHERE user_id = $1 ORDER BY connected_at ASC`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return s.scanConnections(rows, false)
}

// Delete removes a connection
func (s *ConnectionStore) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM connections WHERE id = $1`
	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return domain.ErrNotFound
	}

	return nil
}

// DeleteByUserAndPlatform removes a user's connection for one platform
func (s *ConnectionStore) DeleteByUserAndPlatform(ctx context.Context, userID string, platform domain.PlatformType) error {
	query := `DELETE FROM connections WHERE user_id = $1 AND platform = $2`
	result, err := s.db.ExecContext(ctx, query, userID, string(platform))
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return domain.ErrNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *ConnectionStore) scanConnection(row rowScanner, withSecrets bool) (*domain.Connection, error) {
	var conn domain.Connection
	var blob []byte
	var expiresAt sql.NullTime
	var scopes string

	err := row.Scan(
		&conn.ID,
		&conn.UserID,
		&conn.Platform,
		&blob,
		&expiresAt,
		&scopes,
		&conn.Profile.ID,
		&conn.Profile.Username,
		&conn.Profile.DisplayName,
		&conn.Profile.AvatarURL,
		&conn.Profile.Placeholder,
		&conn.Status,
		&conn.ConnectedAt,
		&conn.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	conn.ExpiresAt = TimePtr(expiresAt)
	if scopes != "" {
		conn.Scopes = strings.Split(scopes, " ")
	}

	if withSecrets {
		var secrets domain.ConnectionSecrets
		if err := s.encryptor.Decrypt(blob, &secrets); err != nil {
			return nil, fmt.Errorf("decrypt connection secrets: %w", err)
		}
		conn.Secrets = &secrets
	}

	return &conn, nil
}

func (s *ConnectionStore) scanConnections(rows *sql.Rows, withSecrets bool) ([]*domain.Connection, error) {
	var conns []*domain.Connection
	for rows.Next() {
		conn, err := s.scanConnection(rows, withSecrets)
		if err != nil {
			return nil, err
		}
		conns = append(conns, conn)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return conns, nil
}
