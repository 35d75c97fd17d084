package infra

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// SQLExecutor defines the contract required by repositories for executing SQL queries.
type SQLExecutor interface {
	Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, query string, args ...any) pgx.Row
	Query(ctx context.Context, query string, args ...any) (pgx.Rows, error)
}

// ErrMissingMarker is returned for queries without a valid first-line marker.
var ErrMissingMarker = errors.New("sql marker missing or invalid")

var markerRegexp = regexp.MustCompile(`^--sql [0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

// SQLRunner executes marked inline SQL against a pool or a transaction, logging
// every statement by marker and bounding it with Timeout.
type SQLRunner struct {
	Pool    *pgxpool.Pool
	Logger  zerolog.Logger
	Timeout time.Duration
	conn    SQLExecutor
}

func NewSQLRunner(pool *pgxpool.Pool, logger zerolog.Logger, timeout time.Duration) *SQLRunner {
	return &SQLRunner{Pool: pool, Logger: logger, Timeout: timeout}
}

// WithTx returns a runner bound to tx with the same logger and timeout.
func (r *SQLRunner) WithTx(tx pgx.Tx) *SQLRunner {
	return &SQLRunner{Pool: r.Pool, Logger: r.Logger, Timeout: r.Timeout, conn: tx}
}

func (r *SQLRunner) target() (SQLExecutor, error) {
	if r.conn != nil {
		return r.conn, nil
	}
	if r.Pool == nil {
		return nil, errors.New("sql runner has no connection")
	}
	return r.Pool, nil
}

func (r *SQLRunner) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.Timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.Timeout)
}

func (r *SQLRunner) Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	marker, trimmed, err := extractMarker(query)
	if err != nil {
		return pgconn.CommandTag{}, err
	}
	conn, err := r.target()
	if err != nil {
		return pgconn.CommandTag{}, err
	}
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	r.Logger.Debug().Msgf("sql[%s] exec", marker)
	tag, err := conn.Exec(ctx, trimmed, args...)
	if err != nil {
		r.Logger.Error().Err(err).Msgf("sql[%s] error", marker)
		return tag, err
	}
	r.Logger.Debug().Int64("rows", tag.RowsAffected()).Msgf("sql[%s] ok", marker)
	return tag, nil
}

func (r *SQLRunner) QueryRow(ctx context.Context, query string, args ...any) pgx.Row {
	marker, trimmed, err := extractMarker(query)
	if err != nil {
		return errorRow{err: err}
	}
	conn, err := r.target()
	if err != nil {
		return errorRow{err: err}
	}
	ctx, cancel := r.withTimeout(ctx)

	r.Logger.Debug().Msgf("sql[%s] query_row", marker)
	row := conn.QueryRow(ctx, trimmed, args...)
	return loggingRow{row: row, logger: r.Logger, marker: marker, cancel: cancel}
}

func (r *SQLRunner) Query(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
	marker, trimmed, err := extractMarker(query)
	if err != nil {
		return nil, err
	}
	conn, err := r.target()
	if err != nil {
		return nil, err
	}
	ctx, cancel := r.withTimeout(ctx)

	r.Logger.Debug().Msgf("sql[%s] query", marker)
	rows, err := conn.Query(ctx, trimmed, args...)
	if err != nil {
		cancel()
		r.Logger.Error().Err(err).Msgf("sql[%s] error", marker)
		return nil, err
	}
	return loggingRows{Rows: rows, logger: r.Logger, marker: marker, cancel: cancel}, nil
}

type loggingRow struct {
	row    pgx.Row
	logger zerolog.Logger
	marker string
	cancel context.CancelFunc
}

func (l loggingRow) Scan(dest ...any) error {
	defer l.cancel()
	err := l.row.Scan(dest...)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		l.logger.Error().Err(err).Msgf("sql[%s] scan error", l.marker)
	}
	return err
}

type loggingRows struct {
	pgx.Rows
	logger zerolog.Logger
	marker string
	cancel context.CancelFunc
}

func (l loggingRows) Close() {
	l.logger.Debug().Msgf("sql[%s] rows close", l.marker)
	l.Rows.Close()
	l.cancel()
}

type errorRow struct {
	err error
}

func (e errorRow) Scan(dest ...any) error {
	return e.err
}

func extractMarker(query string) (string, string, error) {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return "", "", errors.New("empty query")
	}
	lines := strings.Split(trimmed, "\n")
	markerLine := strings.TrimSpace(lines[0])
	if !markerRegexp.MatchString(markerLine) {
		return "", "", ErrMissingMarker
	}
	return strings.TrimSpace(strings.TrimPrefix(markerLine, "--sql ")), strings.Join(lines[1:], "\n"), nil
}

// MarkerOf returns the marker of query, or an error when it has none.
func MarkerOf(query string) (string, error) {
	marker, _, err := extractMarker(query)
	return marker, err
}

var _ SQLExecutor = (*SQLRunner)(nil)
