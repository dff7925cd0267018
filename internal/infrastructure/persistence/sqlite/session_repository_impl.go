// Package sqlite stores review session history in SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/YoshitsuguKoike/repostflow/internal/application/port/output"
	"github.com/YoshitsuguKoike/repostflow/internal/domain/review"
	"github.com/YoshitsuguKoike/repostflow/internal/infrastructure/transaction"
)

// dbExecutor is implemented by both *sql.DB and *sql.Tx
type dbExecutor interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// SessionRepositoryImpl implements output.SessionRecorder with SQLite
type SessionRepositoryImpl struct {
	db *sql.DB
	tm output.TransactionManager
}

var _ output.SessionRecorder = (*SessionRepositoryImpl)(nil)

// NewSessionRepository creates a SQLite-backed session recorder.
// The schema must already be migrated.
func NewSessionRepository(db *sql.DB) *SessionRepositoryImpl {
	return &SessionRepositoryImpl{
		db: db,
		tm: transaction.NewSQLiteTransactionManager(db),
	}
}

func (r *SessionRepositoryImpl) getDB(ctx context.Context) dbExecutor {
	if tx, ok := transaction.GetTxFromContext(ctx); ok {
		return tx
	}
	return r.db
}

// SaveSession upserts the session row and replaces its drafts
func (r *SessionRepositoryImpl) SaveSession(ctx context.Context, s *review.Session) error {
	profiles, err := json.Marshal(s.Profiles)
	if err != nil {
		return fmt.Errorf("marshal profiles: %w", err)
	}

	var outcomeKind, outcomePayload sql.NullString
	if s.Outcome != nil {
		outcomeKind = sql.NullString{String: string(s.Outcome.Kind), Valid: true}
		outcomePayload = sql.NullString{String: s.Outcome.Payload, Valid: true}
	}

	return r.tm.InTransaction(ctx, func(txCtx context.Context) error {
		db := r.getDB(txCtx)

		_, err := db.ExecContext(txCtx, `
			INSERT INTO sessions (
				id, state, attempts, max_attempts, profiles, research_brief, current_draft,
				outcome_kind, outcome_payload, started_at, updated_at, completed_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				state = excluded.state,
				attempts = excluded.attempts,
				max_attempts = excluded.max_attempts,
				profiles = excluded.profiles,
				research_brief = excluded.research_brief,
				current_draft = excluded.current_draft,
				outcome_kind = excluded.outcome_kind,
				outcome_payload = excluded.outcome_payload,
				updated_at = excluded.updated_at,
				completed_at = excluded.completed_at`,
			s.ID.String(), string(s.State), s.Attempts, s.MaxAttempts, string(profiles),
			s.ResearchBrief, s.CurrentDraft, outcomeKind, outcomePayload,
			formatTime(s.StartedAt), formatTime(s.UpdatedAt), formatTimePtr(s.CompletedAt),
		)
		if err != nil {
			return fmt.Errorf("upsert session: %w", err)
		}

		if _, err := db.ExecContext(txCtx, `DELETE FROM drafts WHERE session_id = ?`, s.ID.String()); err != nil {
			return fmt.Errorf("clear drafts: %w", err)
		}

		for _, d := range s.Drafts {
			var verdictKind sql.NullString
			var verdictFeedback string
			if d.Verdict != nil {
				verdictKind = sql.NullString{String: string(d.Verdict.Kind), Valid: true}
				verdictFeedback = d.Verdict.Feedback
			}
			_, err := db.ExecContext(txCtx, `
				INSERT INTO drafts (session_id, attempt, id, text, feedback, verdict_kind, verdict_feedback, created_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				s.ID.String(), d.Attempt, d.ID, d.Text, d.Feedback, verdictKind, verdictFeedback, formatTime(d.CreatedAt),
			)
			if err != nil {
				return fmt.Errorf("insert draft %d: %w", d.Attempt, err)
			}
		}
		return nil
	})
}

// FindSession loads a session with its drafts
func (r *SessionRepositoryImpl) FindSession(ctx context.Context, id review.SessionID) (*review.Session, error) {
	row := r.getDB(ctx).QueryRowContext(ctx, selectSession+` WHERE id = ?`, id.String())
	s, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", output.ErrSessionNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	if err := r.loadDrafts(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

// ListSessions returns up to limit sessions, newest first. A non-positive
// limit returns all sessions.
func (r *SessionRepositoryImpl) ListSessions(ctx context.Context, limit int) ([]*review.Session, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := r.getDB(ctx).QueryContext(ctx, selectSession+` ORDER BY started_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	sessions := []*review.Session{}
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}

	for _, s := range sessions {
		if err := r.loadDrafts(ctx, s); err != nil {
			return nil, err
		}
	}
	return sessions, nil
}

// Close is a no-op; the database handle belongs to the caller
func (r *SessionRepositoryImpl) Close() error {
	return nil
}

func (r *SessionRepositoryImpl) loadDrafts(ctx context.Context, s *review.Session) error {
	rows, err := r.getDB(ctx).QueryContext(ctx, `
		SELECT attempt, id, text, feedback, verdict_kind, verdict_feedback, created_at
		FROM drafts WHERE session_id = ? ORDER BY attempt`, s.ID.String())
	if err != nil {
		return fmt.Errorf("query drafts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var d review.DraftRecord
		var verdictKind sql.NullString
		var verdictFeedback, createdAt string
		if err := rows.Scan(&d.Attempt, &d.ID, &d.Text, &d.Feedback, &verdictKind, &verdictFeedback, &createdAt); err != nil {
			return fmt.Errorf("scan draft: %w", err)
		}
		if verdictKind.Valid {
			d.Verdict = &review.Verdict{Kind: review.VerdictKind(verdictKind.String), Feedback: verdictFeedback}
		}
		d.CreatedAt = parseTime(createdAt)
		s.Drafts = append(s.Drafts, d)
	}
	return rows.Err()
}

const selectSession = `
	SELECT id, state, attempts, max_attempts, profiles, research_brief, current_draft,
		outcome_kind, outcome_payload, started_at, updated_at, completed_at
	FROM sessions`

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanSession(row scanner) (*review.Session, error) {
	var (
		s                           review.Session
		id, state, profiles         string
		outcomeKind, outcomePayload sql.NullString
		startedAt, updatedAt        string
		completedAt                 sql.NullString
	)
	err := row.Scan(&id, &state, &s.Attempts, &s.MaxAttempts, &profiles, &s.ResearchBrief, &s.CurrentDraft,
		&outcomeKind, &outcomePayload, &startedAt, &updatedAt, &completedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan session: %w", err)
	}

	s.ID = review.SessionID(id)
	s.State = review.State(state)
	if err := json.Unmarshal([]byte(profiles), &s.Profiles); err != nil {
		return nil, fmt.Errorf("unmarshal profiles: %w", err)
	}
	if outcomeKind.Valid {
		s.Outcome = &review.Outcome{
			Kind:      review.OutcomeKind(outcomeKind.String),
			Payload:   outcomePayload.String,
			Attempts:  s.Attempts,
			SessionID: s.ID,
		}
	}
	s.StartedAt = parseTime(startedAt)
	s.UpdatedAt = parseTime(updatedAt)
	if completedAt.Valid {
		t := parseTime(completedAt.String)
		s.CompletedAt = &t
	}
	return &s, nil
}

// timeLayout is fixed width so that stored timestamps sort lexically
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func formatTimePtr(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
