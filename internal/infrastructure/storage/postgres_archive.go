package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"NatureDaily/internal/domain"
	"NatureDaily/internal/ports"
)

const archiveTable = "reported_articles"

const schemaDDL = `CREATE TABLE IF NOT EXISTS reported_articles (
    url            TEXT PRIMARY KEY,
    journal        TEXT NOT NULL,
    title          TEXT NOT NULL,
    doi            TEXT NOT NULL DEFAULT '',
    publish_date   DATE,
    report_date    DATE NOT NULL,
    summary        TEXT NOT NULL DEFAULT '',
    key_points     TEXT[] NOT NULL DEFAULT '{}',
    research_field TEXT NOT NULL DEFAULT 'Other',
    status         TEXT NOT NULL,
    created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// PostgresArchive persists reported articles into Postgres.
type PostgresArchive struct {
	db *sql.DB
}

var _ ports.Archive = (*PostgresArchive)(nil)

// NewPostgresArchive wires a sql.DB implementation.
func NewPostgresArchive(db *sql.DB) *PostgresArchive {
	return &PostgresArchive{db: db}
}

// OpenPostgres opens and pings a lib/pq connection.
func OpenPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// EnsureSchema creates the archive table when missing.
func (r *PostgresArchive) EnsureSchema(ctx context.Context) error {
	if r.db == nil {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, schemaDDL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// AlreadyReported returns the archived rows for the given URLs, keyed by URL.
func (r *PostgresArchive) AlreadyReported(ctx context.Context, urls []string) (map[string]domain.ArchivedArticle, error) {
	if r.db == nil || len(urls) == 0 {
		return map[string]domain.ArchivedArticle{}, nil
	}

	query, args, err := selectReportedQuery(urls)
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query reported: %w", err)
	}
	defer rows.Close()

	result := make(map[string]domain.ArchivedArticle)
	for rows.Next() {
		var (
			row        domain.ArchivedArticle
			keyPoints  pq.StringArray
			field      string
			status     string
			reportDate time.Time
		)
		if err := rows.Scan(
			&row.Article.URL,
			&row.Article.Journal,
			&row.Article.Title,
			&row.Article.Summary,
			&keyPoints,
			&field,
			&status,
			&reportDate,
		); err != nil {
			return nil, fmt.Errorf("scan reported: %w", err)
		}
		row.Article.KeyPoints = []string(keyPoints)
		_ = row.Article.Field.UnmarshalText([]byte(field))
		row.Status = domain.ProcessingStatus(status)
		row.ReportDate = reportDate
		result[row.Article.URL] = row
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return result, nil
}

// SaveReported upserts the article snapshot.
func (r *PostgresArchive) SaveReported(ctx context.Context, article domain.ArchivedArticle) error {
	if r.db == nil {
		return nil
	}

	query, args, err := upsertReportedQuery(article)
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert reported: %w", err)
	}
	return nil
}

func selectReportedQuery(urls []string) (string, []interface{}, error) {
	return psql.
		Select("url", "journal", "title", "summary", "key_points", "research_field", "status", "report_date").
		From(archiveTable).
		Where(sq.Eq{"url": urls}).
		ToSql()
}

func upsertReportedQuery(a domain.ArchivedArticle) (string, []interface{}, error) {
	var publishDate interface{}
	if !a.Article.PublishDate.IsZero() {
		publishDate = a.Article.PublishDate.Format("2006-01-02")
	}

	return psql.
		Insert(archiveTable).
		Columns("url", "journal", "title", "doi", "publish_date", "report_date", "summary", "key_points", "research_field", "status").
		Values(
			a.Article.URL,
			a.Article.Journal,
			a.Article.Title,
			a.Article.DOI,
			publishDate,
			a.ReportDate.Format("2006-01-02"),
			a.Article.Summary,
			pq.StringArray(a.Article.KeyPoints),
			a.Article.Field.String(),
			string(a.Status),
		).
		Suffix(`ON CONFLICT (url) DO UPDATE
SET summary = EXCLUDED.summary,
    key_points = EXCLUDED.key_points,
    research_field = EXCLUDED.research_field,
    status = EXCLUDED.status,
    report_date = EXCLUDED.report_date,
    updated_at = NOW()`).
		ToSql()
}
