package credentials

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"example.com/dictation/internal/migrate"
)

// SQLiteStore keeps one row per profile in a local database file.
type SQLiteStore struct {
	db      *sql.DB
	profile string
}

func OpenSQLite(path, profile string, log *slog.Logger) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("credentials: sqlite path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("credentials: open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("credentials: ping sqlite: %w", err)
	}
	if err := migrate.Up(db, log); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db, profile: profile}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Load(ctx context.Context) (Credentials, error) {
	var token, userJSON string
	err := s.db.QueryRowContext(ctx,
		`SELECT token, user_json FROM credentials WHERE profile = ?`,
		s.profile,
	).Scan(&token, &userJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return Credentials{}, ErrNotFound
	}
	if err != nil {
		return Credentials{}, fmt.Errorf("credentials: load: %w", err)
	}

	c := Credentials{Token: token}
	if err := json.Unmarshal([]byte(userJSON), &c.User); err != nil {
		return Credentials{}, fmt.Errorf("credentials: decode user: %w", err)
	}
	return c, nil
}

func (s *SQLiteStore) Save(ctx context.Context, c Credentials) error {
	b, err := json.Marshal(c.User)
	if err != nil {
		return fmt.Errorf("credentials: encode user: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO credentials (profile, token, user_json, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(profile) DO UPDATE SET
		   token = excluded.token,
		   user_json = excluded.user_json,
		   updated_at = excluded.updated_at`,
		s.profile, c.Token, string(b), time.Now().UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("credentials: save: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM credentials WHERE profile = ?`, s.profile); err != nil {
		return fmt.Errorf("credentials: clear: %w", err)
	}
	return nil
}
