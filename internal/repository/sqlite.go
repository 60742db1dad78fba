package repository

import (
	"context"
	"database/sql"
	stderrors "errors"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/votely/votely/internal/errors"
	"github.com/votely/votely/internal/models"
)

// Repository provides data access methods
type Repository struct {
	db *sql.DB
}

// New creates a new Repository
func New(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// Enable foreign key constraints
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, err
	}

	// Set connection pool settings
	db.SetMaxOpenConns(1) // SQLite works best with single connection
	db.SetMaxIdleConns(1)

	repo := &Repository{db: db}

	// Run migrations
	if err := repo.migrate(); err != nil {
		return nil, err
	}

	return repo, nil
}

// DB returns the underlying database connection (for transactions)
func (r *Repository) DB() *sql.DB {
	return r.db
}

// Close closes the database connection
func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks if the database connection is alive
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// migrate runs database migrations
func (r *Repository) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS polls (
			id TEXT PRIMARY KEY,
			question TEXT NOT NULL,
			choice_rule TEXT NOT NULL DEFAULT 'single',
			max_selections INTEGER NOT NULL DEFAULT 1,
			starts_at DATETIME,
			ends_at DATETIME,
			result_visibility TEXT NOT NULL DEFAULT 'immediate',
			visible_at DATETIME,
			trend_bucket_seconds INTEGER NOT NULL DEFAULT 60,
			shuffle_options BOOLEAN NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS options (
			id TEXT PRIMARY KEY,
			poll_id TEXT NOT NULL,
			label TEXT NOT NULL,
			position INTEGER NOT NULL,
			FOREIGN KEY (poll_id) REFERENCES polls(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS ballots (
			id TEXT PRIMARY KEY,
			poll_id TEXT NOT NULL,
			voter_id TEXT NOT NULL,
			accepted_at DATETIME NOT NULL,
			FOREIGN KEY (poll_id) REFERENCES polls(id),
			UNIQUE(poll_id, voter_id)
		)`,
		`CREATE TABLE IF NOT EXISTS ballot_selections (
			ballot_id TEXT NOT NULL,
			option_id TEXT NOT NULL,
			PRIMARY KEY (ballot_id, option_id),
			FOREIGN KEY (ballot_id) REFERENCES ballots(id) ON DELETE CASCADE,
			FOREIGN KEY (option_id) REFERENCES options(id)
		)`,
		`CREATE TABLE IF NOT EXISTS tallies (
			poll_id TEXT NOT NULL,
			option_id TEXT NOT NULL,
			count INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (poll_id, option_id)
		)`,
		`CREATE TABLE IF NOT EXISTS trend_buckets (
			poll_id TEXT NOT NULL,
			bucket_start DATETIME NOT NULL,
			count INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (poll_id, bucket_start)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_options_poll ON options(poll_id)`,
		`CREATE INDEX IF NOT EXISTS idx_ballots_poll ON ballots(poll_id)`,
		`CREATE INDEX IF NOT EXISTS idx_selections_option ON ballot_selections(option_id)`,
	}

	for _, migration := range migrations {
		if _, err := r.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}

// IsTransient reports whether err is a retryable storage error (lock
// contention or a busy database). Retrying a ballot submission is safe
// because duplicates are rejected by the uniqueness constraint.
func IsTransient(err error) bool {
	var sqliteErr sqlite3.Error
	if stderrors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked
	}
	return false
}

// isUniqueViolation reports whether err is a UNIQUE or PRIMARY KEY constraint failure
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if stderrors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

// ==================== Poll Methods ====================

// CreatePoll inserts a poll with its options in a single transaction
func (r *Repository) CreatePoll(ctx context.Context, poll *models.Poll) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO polls (id, question, choice_rule, max_selections, starts_at, ends_at,
		                   result_visibility, visible_at, trend_bucket_seconds, shuffle_options)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, poll.ID, poll.Question, string(poll.ChoiceRule), poll.MaxSelections,
		nullableTime(poll.StartsAt), nullableTime(poll.EndsAt),
		string(poll.ResultVisibility), nullableTime(poll.VisibleAt),
		poll.TrendBucketSeconds, poll.ShuffleOptions)
	if err != nil {
		if isUniqueViolation(err) {
			return errors.Conflict("poll already exists")
		}
		return err
	}

	for _, opt := range poll.Options {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO options (id, poll_id, label, position) VALUES (?, ?, ?, ?)`,
			opt.ID, poll.ID, opt.Label, opt.Position)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetPoll retrieves a poll with its options, ordered by stable position
func (r *Repository) GetPoll(ctx context.Context, pollID string) (*models.Poll, error) {
	var poll models.Poll
	var choiceRule, visibility string
	var startsAt, endsAt, visibleAt sql.NullTime
	err := r.db.QueryRowContext(ctx, `
		SELECT id, question, choice_rule, max_selections, starts_at, ends_at,
		       result_visibility, visible_at, trend_bucket_seconds, shuffle_options, created_at
		FROM polls WHERE id = ?
	`, pollID).Scan(&poll.ID, &poll.Question, &choiceRule, &poll.MaxSelections,
		&startsAt, &endsAt, &visibility, &visibleAt,
		&poll.TrendBucketSeconds, &poll.ShuffleOptions, &poll.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	poll.ChoiceRule = models.ChoiceRule(choiceRule)
	poll.ResultVisibility = models.ResultVisibility(visibility)
	if startsAt.Valid {
		t := startsAt.Time
		poll.StartsAt = &t
	}
	if endsAt.Valid {
		t := endsAt.Time
		poll.EndsAt = &t
	}
	if visibleAt.Valid {
		t := visibleAt.Time
		poll.VisibleAt = &t
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, label, position FROM options WHERE poll_id = ? ORDER BY position`, pollID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var opt models.Option
		if err := rows.Scan(&opt.ID, &opt.Label, &opt.Position); err != nil {
			return nil, err
		}
		poll.Options = append(poll.Options, opt)
	}
	return &poll, rows.Err()
}

// PollSummary is a poll row with its current ballot count
type PollSummary struct {
	ID         string    `json:"id"`
	Question   string    `json:"question"`
	ChoiceRule string    `json:"choice_rule"`
	TotalVotes int       `json:"total_votes"`
	CreatedAt  time.Time `json:"created_at"`
}

// ListPolls returns all polls with their ballot counts, newest first
func (r *Repository) ListPolls(ctx context.Context) ([]PollSummary, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT p.id, p.question, p.choice_rule, COUNT(b.id), p.created_at
		FROM polls p
		LEFT JOIN ballots b ON b.poll_id = p.id
		GROUP BY p.id
		ORDER BY p.created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var polls []PollSummary
	for rows.Next() {
		var s PollSummary
		if err := rows.Scan(&s.ID, &s.Question, &s.ChoiceRule, &s.TotalVotes, &s.CreatedAt); err != nil {
			return nil, err
		}
		polls = append(polls, s)
	}
	return polls, rows.Err()
}

// ==================== Ballot Methods ====================

// GetBallot retrieves the accepted ballot for a (poll, voter) pair
func (r *Repository) GetBallot(ctx context.Context, pollID, voterID string) (*models.Ballot, error) {
	var ballot models.Ballot
	err := r.db.QueryRowContext(ctx, `
		SELECT id, poll_id, voter_id, accepted_at FROM ballots
		WHERE poll_id = ? AND voter_id = ?
	`, pollID, voterID).Scan(&ballot.ID, &ballot.PollID, &ballot.VoterID, &ballot.AcceptedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT bs.option_id FROM ballot_selections bs
		JOIN options o ON o.id = bs.option_id
		WHERE bs.ballot_id = ?
		ORDER BY o.position
	`, ballot.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var optionID string
		if err := rows.Scan(&optionID); err != nil {
			return nil, err
		}
		ballot.Selections = append(ballot.Selections, optionID)
	}
	return &ballot, rows.Err()
}

// RecordBallot atomically inserts a ballot, its selections, the per-option
// counter increments and the trend bucket increment, then returns the
// post-update tally read inside the same transaction.
//
// The (poll_id, voter_id) uniqueness constraint decides duplicates at commit
// level: two concurrent submissions from the same voter resolve to exactly
// one accepted ballot and one ErrDuplicateBallot, regardless of interleaving.
func (r *Repository) RecordBallot(ctx context.Context, ballot *models.Ballot, bucketStart time.Time) (*models.Tally, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO ballots (id, poll_id, voter_id, accepted_at) VALUES (?, ?, ?, ?)`,
		ballot.ID, ballot.PollID, ballot.VoterID, ballot.AcceptedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateBallot
		}
		return nil, err
	}

	for _, optionID := range ballot.Selections {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO ballot_selections (ballot_id, option_id) VALUES (?, ?)`,
			ballot.ID, optionID)
		if err != nil {
			return nil, err
		}

		// Commutative increment, never a read-modify-write from the caller
		_, err = tx.ExecContext(ctx, `
			INSERT INTO tallies (poll_id, option_id, count) VALUES (?, ?, 1)
			ON CONFLICT(poll_id, option_id) DO UPDATE SET count = count + 1
		`, ballot.PollID, optionID)
		if err != nil {
			return nil, err
		}
	}

	// One trend increment per ballot, keyed by the accepted-at bucket
	_, err = tx.ExecContext(ctx, `
		INSERT INTO trend_buckets (poll_id, bucket_start, count) VALUES (?, ?, 1)
		ON CONFLICT(poll_id, bucket_start) DO UPDATE SET count = count + 1
	`, ballot.PollID, bucketStart)
	if err != nil {
		return nil, err
	}

	tally, err := readTally(ctx, tx, ballot.PollID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return tally, nil
}

// ==================== Tally Methods ====================

// querier abstracts *sql.DB and *sql.Tx for tally reads
type querier interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// GetTally returns the current counts, total and trend for a poll
func (r *Repository) GetTally(ctx context.Context, pollID string) (*models.Tally, error) {
	return readTally(ctx, r.db, pollID)
}

// readTally builds a tally snapshot. Every option appears in the counts map,
// including options that have not received a vote yet.
func readTally(ctx context.Context, q querier, pollID string) (*models.Tally, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT o.id, COALESCE(t.count, 0)
		FROM options o
		LEFT JOIN tallies t ON t.poll_id = o.poll_id AND t.option_id = o.id
		WHERE o.poll_id = ?
	`, pollID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tally := &models.Tally{PollID: pollID, Counts: make(map[string]int)}
	for rows.Next() {
		var optionID string
		var count int
		if err := rows.Scan(&optionID, &count); err != nil {
			return nil, err
		}
		tally.Counts[optionID] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(tally.Counts) == 0 {
		return nil, ErrNotFound
	}

	// TotalVotes counts ballots; the ballot set stays the source of truth
	err = q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM ballots WHERE poll_id = ?`, pollID).Scan(&tally.TotalVotes)
	if err != nil {
		return nil, err
	}

	trendRows, err := q.QueryContext(ctx, `
		SELECT bucket_start, count FROM trend_buckets
		WHERE poll_id = ?
		ORDER BY bucket_start
	`, pollID)
	if err != nil {
		return nil, err
	}
	defer trendRows.Close()

	for trendRows.Next() {
		var point models.TrendPoint
		if err := trendRows.Scan(&point.BucketStart, &point.Count); err != nil {
			return nil, err
		}
		tally.Trend = append(tally.Trend, point)
	}
	return tally, trendRows.Err()
}

// ==================== Stats Methods ====================

// PollStats holds submission statistics for a poll
type PollStats struct {
	TotalBallots    int        `json:"total_ballots"`
	TotalSelections int        `json:"total_selections"`
	FirstAcceptedAt *time.Time `json:"first_accepted_at,omitempty"`
	LastAcceptedAt  *time.Time `json:"last_accepted_at,omitempty"`
}

// GetPollStats returns submission statistics for a poll
func (r *Repository) GetPollStats(ctx context.Context, pollID string) (*PollStats, error) {
	stats := &PollStats{}

	var first, last sql.NullTime
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*), MIN(accepted_at), MAX(accepted_at)
		FROM ballots WHERE poll_id = ?
	`, pollID).Scan(&stats.TotalBallots, &first, &last)
	if err != nil {
		return nil, err
	}
	if first.Valid {
		t := first.Time
		stats.FirstAcceptedAt = &t
	}
	if last.Valid {
		t := last.Time
		stats.LastAcceptedAt = &t
	}

	err = r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM ballot_selections bs
		JOIN ballots b ON b.id = bs.ballot_id
		WHERE b.poll_id = ?
	`, pollID).Scan(&stats.TotalSelections)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// nullableTime converts *time.Time to a driver-friendly value
func nullableTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return *t
}
