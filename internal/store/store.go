// Package store persists screening reports in PostgreSQL. Persistence is
// optional: the pipeline never depends on it, callers wire it in when a
// database URL is configured.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/joysa21/auticareai/internal/report"
)

// ErrNotFound is returned when no screening exists for the requested ID
var ErrNotFound = errors.New("screening not found")

// Store manages the PostgreSQL connection for screening reports
type Store struct {
	conn *pgx.Conn
}

// Summary is a stored screening without the full report body
type Summary struct {
	ID         string    `json:"id"`
	Source     string    `json:"source"`
	RiskLevel  string    `json:"risk_level"`
	Confidence float64   `json:"confidence"`
	CreatedAt  time.Time `json:"created_at"`
}

// New establishes a connection to the database and ensures the schema is initialized.
func New(ctx context.Context, connString string) (*Store, error) {
	conn, err := pgx.Connect(ctx, connString)
	if err != nil {
		return nil, err
	}

	if err := initSchema(ctx, conn); err != nil {
		conn.Close(ctx)
		return nil, fmt.Errorf("failed to initialize database schema: %w", err)
	}

	return &Store{conn: conn}, nil
}

// initSchema creates the screenings table if it doesn't exist (Auto-Migration).
func initSchema(ctx context.Context, conn *pgx.Conn) error {
	query := `
		CREATE TABLE IF NOT EXISTS screenings (
			id UUID PRIMARY KEY,
			source TEXT NOT NULL,
			risk_level TEXT NOT NULL,
			confidence DOUBLE PRECISION NOT NULL,
			report JSONB NOT NULL,
			created_at TIMESTAMPTZ DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS screenings_source_idx ON screenings (source);
	`
	_, err := conn.Exec(ctx, query)
	return err
}

// Close terminates the database connection.
func (s *Store) Close(ctx context.Context) {
	s.conn.Close(ctx)
}

// Save persists a fully assembled report
func (s *Store) Save(ctx context.Context, rep *report.Report) error {
	body, err := json.Marshal(rep)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	_, err = s.conn.Exec(ctx, `
		INSERT INTO screenings (id, source, risk_level, confidence, report, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, rep.ID, rep.Source, rep.RiskAssessment.Level, rep.RiskAssessment.Confidence, body, rep.GeneratedAt)
	return err
}

// Get loads a stored report by ID
func (s *Store) Get(ctx context.Context, id string) (*report.Report, error) {
	var body []byte
	err := s.conn.QueryRow(ctx, `SELECT report FROM screenings WHERE id = $1`, id).Scan(&body)
	if err == pgx.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var rep report.Report
	if err := json.Unmarshal(body, &rep); err != nil {
		return nil, fmt.Errorf("failed to unmarshal stored report: %w", err)
	}
	return &rep, nil
}

// ListBySource returns summaries of all screenings for a source path, newest first
func (s *Store) ListBySource(ctx context.Context, source string) ([]Summary, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT id, source, risk_level, confidence, created_at
		FROM screenings
		WHERE source = $1
		ORDER BY created_at DESC
	`, source)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []Summary
	for rows.Next() {
		var sum Summary
		if err := rows.Scan(&sum.ID, &sum.Source, &sum.RiskLevel, &sum.Confidence, &sum.CreatedAt); err != nil {
			return nil, err
		}
		summaries = append(summaries, sum)
	}
	return summaries, rows.Err()
}
