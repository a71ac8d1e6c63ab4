package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"aujobs-engine/internal/domain"
)

// KnownURLs returns every source URL ever stored. The caller turns this into
// the skip set handed to the scrape orchestrators.
func (d *DB) KnownURLs(ctx context.Context) ([]string, error) {
	rows, err := d.Pool.QueryContext(ctx, `SELECT url FROM posting_urls;`)
	if err != nil {
		return nil, fmt.Errorf("known urls: %w", err)
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, err
		}
		urls = append(urls, u)
	}
	return urls, rows.Err()
}

// UpsertPosting inserts a posting or merges it into the existing row with the
// same fingerprint. Merging unions source URLs and platforms, keeps the
// earliest posted date, and fills salary/closing date only when the stored
// row lacks them. added reports whether the fingerprint was new.
func (d *DB) UpsertPosting(ctx context.Context, job domain.JobPosting) (added bool, err error) {
	if job.Fingerprint == "" {
		return false, fmt.Errorf("upsert: posting has no fingerprint")
	}

	tx, err := d.Pool.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC().Format(time.RFC3339)
	locations, _ := json.Marshal(job.Locations)

	var existingPosted string
	err = tx.QueryRowContext(ctx,
		`SELECT posted_at FROM postings WHERE fingerprint = ?;`, job.Fingerprint,
	).Scan(&existingPosted)

	switch {
	case err == sql.ErrNoRows:
		added = true
		_, err = tx.ExecContext(ctx, `
INSERT INTO postings (fingerprint, title, company, description, locations,
                      salary_min, salary_max, posted_at, closing_date,
                      first_seen_at, last_seen_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`,
			job.Fingerprint, job.Title, job.Company, job.Description, string(locations),
			salaryBound(job.Salary, false), salaryBound(job.Salary, true),
			job.PostedAt, job.ClosingDate, now, now)
		if err != nil {
			return false, fmt.Errorf("insert posting: %w", err)
		}
	case err != nil:
		return false, err
	default:
		postedAt := earliestDate(existingPosted, job.PostedAt)
		_, err = tx.ExecContext(ctx, `
UPDATE postings SET
  posted_at = ?,
  salary_min = COALESCE(salary_min, ?),
  salary_max = COALESCE(salary_max, ?),
  closing_date = CASE WHEN closing_date = '' THEN ? ELSE closing_date END,
  last_seen_at = ?
WHERE fingerprint = ?;`,
			postedAt,
			salaryBound(job.Salary, false), salaryBound(job.Salary, true),
			job.ClosingDate, now, job.Fingerprint)
		if err != nil {
			return false, fmt.Errorf("merge posting: %w", err)
		}
	}

	for i, u := range job.SourceURLs {
		platform := ""
		if i < len(job.Platforms) {
			platform = job.Platforms[i]
		} else if len(job.Platforms) > 0 {
			platform = job.Platforms[0]
		}
		if _, err := tx.ExecContext(ctx, `
INSERT OR IGNORE INTO posting_urls (url, fingerprint, platform)
VALUES (?, ?, ?);`, u, job.Fingerprint, platform); err != nil {
			return false, fmt.Errorf("insert posting url: %w", err)
		}
	}

	return added, tx.Commit()
}

// CountPostings is used for run summaries.
func (d *DB) CountPostings(ctx context.Context) (int, error) {
	var n int
	err := d.Pool.QueryRowContext(ctx, `SELECT COUNT(*) FROM postings;`).Scan(&n)
	return n, err
}

func salaryBound(s *domain.Salary, max bool) any {
	if s == nil {
		return nil
	}
	if max {
		return s.AnnualMax
	}
	return s.AnnualMin
}

// earliestDate compares YYYY-MM-DD strings; empty loses to anything.
func earliestDate(a, b string) string {
	if a == "" {
		return b
	}
	if b == "" {
		return a
	}
	if b < a {
		return b
	}
	return a
}
