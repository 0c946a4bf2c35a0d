package bearer

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// postgresLookup binds TokenValidationQuery with the presented token and
// scans the single resulting string column as the role, grounded on the
// teacher's internal/repository/postgres query-and-scan shape.
type postgresLookup struct {
	pool  *pgxpool.Pool
	query string
}

func (l *postgresLookup) Lookup(ctx context.Context, token string) (string, error) {
	var role string
	err := l.pool.QueryRow(ctx, l.query, token).Scan(&role)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return role, nil
}

type mysqlLookup struct {
	db    *sql.DB
	query string
}

func (l *mysqlLookup) Lookup(ctx context.Context, token string) (string, error) {
	var role string
	err := l.db.QueryRowContext(ctx, l.query, token).Scan(&role)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return role, nil
}
