package repo

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"marketplace/internal/domain"
	"marketplace/internal/infra"
)

// numericOutOfRange is raised when a bigint balance would overflow.
const numericOutOfRange = "22003"

var domainErrors = []error{
	domain.ErrNotFound,
	domain.ErrStoreUnavailable,
	domain.ErrInsufficientCredits,
	domain.ErrInvalidTransition,
	domain.ErrInvalidProgress,
	domain.ErrAppNotFound,
	domain.ErrInvalidAmount,
	domain.ErrInvalidIdentity,
	domain.ErrUnauthorized,
}

// classify maps driver errors onto domain sentinels. Anything that is neither a
// missing row nor a server-side statement error is treated as the store being
// unreachable.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	for _, known := range domainErrors {
		if errors.Is(err, known) {
			return err
		}
	}
	if errors.Is(err, infra.ErrMissingMarker) {
		return err
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if isConnectionFailure(pgErr.Code) {
			return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
		}
		if pgErr.Code == numericOutOfRange {
			return fmt.Errorf("%w: %w", domain.ErrInvalidAmount, err)
		}
		return fmt.Errorf("db error: %w", err)
	}
	return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
}

// isConnectionFailure reports SQLSTATE class 08 and the shutdown codes.
func isConnectionFailure(code string) bool {
	return strings.HasPrefix(code, "08") || code == "57P01" || code == "57P02" || code == "57P03"
}
