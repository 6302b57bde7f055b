package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"ContentCurator/internal/domain"
	"ContentCurator/internal/ports"
)

// Supported SQL drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

var articleColumns = []string{
	"id", "query", "title", "short_summary", "url", "content",
	"sentiment", "summary", "similarity", "popularity",
	"feedback", "sponsored", "created_at",
}

var schema = map[string][]string{
	DriverSQLite: {
		`CREATE TABLE IF NOT EXISTS articles (
			seq           INTEGER PRIMARY KEY AUTOINCREMENT,
			id            TEXT NOT NULL UNIQUE,
			query         TEXT NOT NULL,
			title         TEXT NOT NULL,
			short_summary TEXT NOT NULL,
			url           TEXT NOT NULL,
			content       TEXT NOT NULL,
			sentiment     REAL NOT NULL,
			summary       TEXT NOT NULL,
			similarity    REAL NOT NULL,
			popularity    INTEGER NOT NULL,
			feedback      TEXT NOT NULL DEFAULT '',
			sponsored     INTEGER NOT NULL DEFAULT 0,
			created_at    INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_articles_url ON articles(url)`,
		`CREATE TABLE IF NOT EXISTS queries (
			seq  INTEGER PRIMARY KEY AUTOINCREMENT,
			text TEXT NOT NULL UNIQUE
		)`,
	},
	DriverPostgres: {
		`CREATE TABLE IF NOT EXISTS articles (
			seq           BIGSERIAL PRIMARY KEY,
			id            TEXT NOT NULL UNIQUE,
			query         TEXT NOT NULL,
			title         TEXT NOT NULL,
			short_summary TEXT NOT NULL,
			url           TEXT NOT NULL,
			content       TEXT NOT NULL,
			sentiment     DOUBLE PRECISION NOT NULL,
			summary       TEXT NOT NULL,
			similarity    DOUBLE PRECISION NOT NULL,
			popularity    INTEGER NOT NULL,
			feedback      TEXT NOT NULL DEFAULT '',
			sponsored     SMALLINT NOT NULL DEFAULT 0,
			created_at    BIGINT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_articles_url ON articles(url)`,
		`CREATE TABLE IF NOT EXISTS queries (
			seq  BIGSERIAL PRIMARY KEY,
			text TEXT NOT NULL UNIQUE
		)`,
	},
}

// SQLStore persists articles and queries in SQLite or Postgres.
// Rows are read back ordered by an auto-increment sequence, so insertion order survives restarts.
type SQLStore struct {
	db     *sql.DB
	driver string
	sb     sq.StatementBuilderType
	mu     sync.Mutex
}

var (
	_ ports.ArticleStore = (*SQLStore)(nil)
	_ ports.QueryStore   = (*SQLStore)(nil)
)

// OpenSQL connects to the database and creates missing tables.
func OpenSQL(ctx context.Context, driver, dsn string) (*SQLStore, error) {
	driver = strings.ToLower(strings.TrimSpace(driver))
	if _, ok := schema[driver]; !ok {
		return nil, fmt.Errorf("unsupported storage driver %q", driver)
	}
	if dsn == "" {
		return nil, errors.New("storage dsn is empty")
	}

	var placeholder sq.PlaceholderFormat = sq.Question
	if driver == DriverSQLite {
		if dir := sqliteDir(dsn); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create database dir: %w", err)
			}
		}
	} else {
		placeholder = sq.Dollar
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		db.SetMaxOpenConns(1)
	}

	s := &SQLStore{
		db:     db,
		driver: driver,
		sb:     sq.StatementBuilder.PlaceholderFormat(placeholder),
	}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func sqliteDir(dsn string) string {
	if dsn == ":memory:" || strings.HasPrefix(dsn, "file:") {
		return ""
	}
	path, _, _ := strings.Cut(dsn, "?")
	dir := filepath.Dir(path)
	if dir == "." {
		return ""
	}
	return dir
}

func (s *SQLStore) migrate(ctx context.Context) error {
	for _, stmt := range schema[s.driver] {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("initialize schema: %w", err)
		}
	}
	return nil
}

// Close releases the connection pool.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// Append inserts articles in one transaction, in order.
func (s *SQLStore) Append(ctx context.Context, articles ...domain.Article) error {
	if len(articles) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin append: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, a := range articles {
		query, args, err := s.sb.Insert("articles").
			Columns(articleColumns...).
			Values(
				a.ID, a.Query, a.Title, a.ShortSummary, a.URL, a.Content,
				a.SentimentScore, a.GeneratedSummary, a.SimilarityScore, a.Popularity,
				string(a.Feedback), boolToInt(a.Sponsored), a.CreatedAt.UnixMilli(),
			).
			ToSql()
		if err != nil {
			return fmt.Errorf("build insert: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert article %s: %w", a.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit append: %w", err)
	}
	return nil
}

// All returns every article in insertion order.
func (s *SQLStore) All(ctx context.Context) ([]domain.Article, error) {
	query, args, err := s.sb.Select(articleColumns...).From("articles").OrderBy("seq").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query articles: %w", err)
	}

	var articles []domain.Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			_ = rows.Close()
			return nil, err
		}
		articles = append(articles, a)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("rows iteration: %w", rowsErr)
	}

	if closeErr := rows.Close(); closeErr != nil {
		return nil, fmt.Errorf("close rows: %w", closeErr)
	}

	return articles, nil
}

// Get looks an article up by ID.
func (s *SQLStore) Get(ctx context.Context, id string) (domain.Article, error) {
	query, args, err := s.sb.Select(articleColumns...).From("articles").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return domain.Article{}, fmt.Errorf("build select: %w", err)
	}

	a, err := scanArticle(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Article{}, fmt.Errorf("article %s: %w", id, domain.ErrNotFound)
	}
	return a, err
}

// AlreadyStored returns a map with the URLs that already exist in storage.
func (s *SQLStore) AlreadyStored(ctx context.Context, urls []string) (map[string]bool, error) {
	result := make(map[string]bool)
	if len(urls) == 0 {
		return result, nil
	}

	query, args, err := s.sb.Select("DISTINCT url").From("articles").Where(sq.Eq{"url": urls}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query stored urls: %w", err)
	}

	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan url: %w", err)
		}
		result[url] = true
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("rows iteration: %w", rowsErr)
	}

	if closeErr := rows.Close(); closeErr != nil {
		return nil, fmt.Errorf("close rows: %w", closeErr)
	}

	return result, nil
}

// SetFeedback records the user signal for one article.
func (s *SQLStore) SetFeedback(ctx context.Context, id string, feedback domain.Feedback) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query, args, err := s.sb.Update("articles").Set("feedback", string(feedback)).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}
	return execOne(ctx, s.db, id, query, args)
}

// MarkSponsored flags articles as sponsored. Unknown IDs roll the whole batch back.
func (s *SQLStore) MarkSponsored(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin mark sponsored: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, id := range ids {
		query, args, err := s.sb.Update("articles").Set("sponsored", 1).Where(sq.Eq{"id": id}).ToSql()
		if err != nil {
			return fmt.Errorf("build update: %w", err)
		}
		if err := execOne(ctx, tx, id, query, args); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit mark sponsored: %w", err)
	}
	return nil
}

// AddQuery stores a trimmed query unless it is already present.
func (s *SQLStore) AddQuery(ctx context.Context, q string) error {
	q = strings.TrimSpace(q)
	if q == "" {
		return ErrEmptyQuery
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	query, args, err := s.sb.Insert("queries").Columns("text").Values(q).
		Suffix("ON CONFLICT (text) DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert query: %w", err)
	}
	return nil
}

// Queries returns stored queries in insertion order.
func (s *SQLStore) Queries(ctx context.Context) ([]string, error) {
	query, args, err := s.sb.Select("text").From("queries").OrderBy("seq").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query queries: %w", err)
	}

	var queries []string
	for rows.Next() {
		var q string
		if err := rows.Scan(&q); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan query: %w", err)
		}
		queries = append(queries, q)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("rows iteration: %w", rowsErr)
	}

	if closeErr := rows.Close(); closeErr != nil {
		return nil, fmt.Errorf("close rows: %w", closeErr)
	}

	return queries, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func execOne(ctx context.Context, db execer, id, query string, args []any) error {
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update article %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("article %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanArticle(row rowScanner) (domain.Article, error) {
	var (
		a         domain.Article
		feedback  string
		sponsored int64
		createdAt int64
	)
	err := row.Scan(
		&a.ID, &a.Query, &a.Title, &a.ShortSummary, &a.URL, &a.Content,
		&a.SentimentScore, &a.GeneratedSummary, &a.SimilarityScore, &a.Popularity,
		&feedback, &sponsored, &createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Article{}, err
	}
	if err != nil {
		return domain.Article{}, fmt.Errorf("scan article: %w", err)
	}

	a.Feedback = domain.Feedback(feedback)
	a.Sponsored = sponsored != 0
	a.CreatedAt = time.UnixMilli(createdAt).UTC()
	return a, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
