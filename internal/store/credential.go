package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/roach88/authflow/internal/data"
	"github.com/roach88/authflow/internal/environment"
)

var _ environment.CredentialStore = (*Store)(nil)

// Load returns the stored credential, or false if none is stored.
func (s *Store) Load(ctx context.Context) (data.SignedInData, bool, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM credentials WHERE id = 1`).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return data.SignedInData{}, false, nil
	}
	if err != nil {
		return data.SignedInData{}, false, fmt.Errorf("load credential: %w", err)
	}

	var cred data.SignedInData
	if err := json.Unmarshal([]byte(raw), &cred); err != nil {
		return data.SignedInData{}, false, fmt.Errorf("load credential: decode: %w", err)
	}
	return cred, true, nil
}

// Save replaces the stored credential.
func (s *Store) Save(ctx context.Context, cred data.SignedInData) error {
	raw, err := json.Marshal(cred)
	if err != nil {
		return fmt.Errorf("save credential: encode: %w", err)
	}

	var expiresAt int64
	if !cred.Tokens.ExpiresAt.IsZero() {
		expiresAt = cred.Tokens.ExpiresAt.Unix()
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO credentials (id, username, method, data, expires_at, updated_at)
		VALUES (1, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			username = excluded.username,
			method = excluded.method,
			data = excluded.data,
			expires_at = excluded.expires_at,
			updated_at = excluded.updated_at
	`,
		cred.Username,
		string(cred.Method),
		string(raw),
		expiresAt,
		s.now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("save credential: %w", err)
	}
	return nil
}

// Clear removes the stored credential. Clearing an empty store succeeds.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM credentials`); err != nil {
		return fmt.Errorf("clear credential: %w", err)
	}
	return nil
}
