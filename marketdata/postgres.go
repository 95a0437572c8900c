// Package marketdata loads curve quotes from a Postgres instance.
package marketdata

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

// ZeroQuote is one zero-rate pillar of a curve snapshot.
type ZeroQuote struct {
	TenorYears float64
	Rate       float64
}

// Store reads curve snapshots from Postgres.
type Store struct {
	db *sql.DB
}

// Open connects to Postgres with the given DSN.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("Open: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("Open: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// ZeroQuotes returns the zero-rate pillars for one curve on one date,
// ordered by tenor.
func (s *Store) ZeroQuotes(curveID, curveDate string) ([]ZeroQuote, error) {
	rows, err := s.db.Query(`
		SELECT tenor_years, zero_rate
		FROM curve_quotes
		WHERE curve_id = $1 AND curve_date = $2
		ORDER BY tenor_years`,
		curveID, curveDate)
	if err != nil {
		return nil, fmt.Errorf("ZeroQuotes: %w", err)
	}
	defer rows.Close()

	var quotes []ZeroQuote
	for rows.Next() {
		var q ZeroQuote
		if err := rows.Scan(&q.TenorYears, &q.Rate); err != nil {
			return nil, fmt.Errorf("ZeroQuotes: %w", err)
		}
		quotes = append(quotes, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ZeroQuotes: %w", err)
	}
	if len(quotes) == 0 {
		return nil, fmt.Errorf("ZeroQuotes: no quotes for curve %q on %s", curveID, curveDate)
	}
	return quotes, nil
}
