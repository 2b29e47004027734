package metrics

import (
	"context"
	"database/sql"
	"time"
)

// SearchMetric records metadata for a single search resolution.
type SearchMetric struct {
	Query     string
	Strategy  string
	Results   int
	Failures  int
	LatencyMS int64
	Timestamp time.Time
}

// Store handles persistence of search metrics to SQLite.
type Store struct {
	db *sql.DB
}

// NewStore initializes the Store with an existing database connection.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Record saves a metric to the database.
func (s *Store) Record(ctx context.Context, m SearchMetric) error {
	ts := m.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO search_metrics (query, strategy, results, failures, latency_ms, timestamp)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		m.Query, m.Strategy, m.Results, m.Failures, m.LatencyMS, ts.UTC().Format(time.RFC3339),
	)
	return err
}

// DailyUsage represents search totals for a single day.
type DailyUsage struct {
	Date         string
	Searches     int
	Empty        int
	AvgLatencyMS int64
}

// GetDailyUsage retrieves usage for the last N days, most recent first.
func (s *Store) GetDailyUsage(ctx context.Context, days int) ([]DailyUsage, error) {
	since := time.Now().UTC().AddDate(0, 0, -days).Format(time.RFC3339)
	rows, err := s.db.QueryContext(ctx,
		`SELECT substr(timestamp, 1, 10) AS day,
		        COUNT(*),
		        SUM(CASE WHEN results = 0 THEN 1 ELSE 0 END),
		        CAST(AVG(latency_ms) AS INTEGER)
		   FROM search_metrics
		  WHERE timestamp >= ?
		  GROUP BY day
		  ORDER BY day DESC`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []DailyUsage
	for rows.Next() {
		var u DailyUsage
		if err := rows.Scan(&u.Date, &u.Searches, &u.Empty, &u.AvgLatencyMS); err != nil {
			return nil, err
		}
		results = append(results, u)
	}
	return results, rows.Err()
}

// Cleanup removes records older than the specified number of days.
func (s *Store) Cleanup(ctx context.Context, olderThanDays int) (int64, error) {
	threshold := time.Now().UTC().AddDate(0, 0, -olderThanDays).Format(time.RFC3339)
	res, err := s.db.ExecContext(ctx, `DELETE FROM search_metrics WHERE timestamp < ?`, threshold)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
