package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jdelaney/capstone-planner/internal/domain"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Repository using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite creates a new SQLite-backed repository.
func NewSQLite(dbPath string) (Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// Open database with WAL mode for better concurrency.
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS planning_sessions (
		user_id TEXT PRIMARY KEY,
		student_name TEXT NOT NULL DEFAULT '',
		cte_pathway TEXT NOT NULL DEFAULT '',
		phase TEXT NOT NULL,
		turn_count INTEGER NOT NULL DEFAULT 0,
		transcript_json TEXT NOT NULL DEFAULT '[]',
		plan_json TEXT,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_planning_sessions_updated ON planning_sessions(updated_at);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// GetSession retrieves the planning session for a user.
func (s *SQLiteStore) GetSession(ctx context.Context, userID string) (*domain.PlanningSession, error) {
	query := `
		SELECT user_id, student_name, cte_pathway, phase, turn_count,
		       transcript_json, plan_json, created_at, updated_at
		FROM planning_sessions WHERE user_id = ?`

	row := s.db.QueryRowContext(ctx, query, userID)

	var (
		sess       domain.PlanningSession
		phase      string
		transcript string
		planJSON   sql.NullString
		createdAt  int64
		updatedAt  int64
	)

	err := row.Scan(
		&sess.UserID, &sess.StudentName, &sess.CTEPathway, &phase,
		&sess.State.TurnCount, &transcript, &planJSON, &createdAt, &updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan session row: %w", err)
	}

	sess.State.Phase = domain.ConversationPhase(phase)
	if err := json.Unmarshal([]byte(transcript), &sess.Transcript); err != nil {
		return nil, fmt.Errorf("decode transcript: %w", err)
	}
	if planJSON.Valid && planJSON.String != "" {
		var plan domain.CapstonePlanData
		if err := json.Unmarshal([]byte(planJSON.String), &plan); err != nil {
			return nil, fmt.Errorf("decode plan: %w", err)
		}
		sess.Plan = &plan
	}
	sess.CreatedAt = time.Unix(createdAt, 0)
	sess.UpdatedAt = time.Unix(updatedAt, 0)

	return &sess, nil
}

// UpsertSession creates or updates a planning session.
func (s *SQLiteStore) UpsertSession(ctx context.Context, session *domain.PlanningSession) error {
	transcript, err := json.Marshal(session.Transcript)
	if err != nil {
		return fmt.Errorf("encode transcript: %w", err)
	}
	if session.Transcript == nil {
		transcript = []byte("[]")
	}

	var planJSON sql.NullString
	if session.Plan != nil {
		data, err := json.Marshal(session.Plan)
		if err != nil {
			return fmt.Errorf("encode plan: %w", err)
		}
		planJSON = sql.NullString{String: string(data), Valid: true}
	}

	query := `
	INSERT INTO planning_sessions (user_id, student_name, cte_pathway, phase, turn_count, transcript_json, plan_json, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(user_id) DO UPDATE SET
		student_name = excluded.student_name,
		cte_pathway = excluded.cte_pathway,
		phase = excluded.phase,
		turn_count = excluded.turn_count,
		transcript_json = excluded.transcript_json,
		plan_json = excluded.plan_json,
		updated_at = excluded.updated_at`

	_, err = s.db.ExecContext(ctx, query,
		session.UserID, session.StudentName, session.CTEPathway,
		string(session.State.Phase), session.State.TurnCount,
		string(transcript), planJSON,
		session.CreatedAt.Unix(), session.UpdatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}
	return nil
}

// DeleteSession removes a planning session.
func (s *SQLiteStore) DeleteSession(ctx context.Context, userID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM planning_sessions WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// CleanupExpiredSessions removes sessions idle longer than ttl.
func (s *SQLiteStore) CleanupExpiredSessions(ctx context.Context, ttl time.Duration) (int64, error) {
	cutoff := time.Now().Add(-ttl).Unix()
	res, err := s.db.ExecContext(ctx, `DELETE FROM planning_sessions WHERE updated_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("cleanup expired sessions: %w", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return deleted, nil
}
