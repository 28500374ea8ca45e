package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/DanielAquino2003/TrendWriter/pkg/source"
)

// ErrNotFound is returned when an update or lookup targets a missing record.
var ErrNotFound = errors.New("store: not found")

// Status is the explicit processing state of a trend. It replaces
// presence-of-field checks so the state machine is exhaustively matchable.
type Status string

const (
	StatusPending   Status = "pending"
	StatusProcessed Status = "processed"
	StatusError     Status = "error"
)

// Trend is a persisted, scored candidate awaiting article generation.
type Trend struct {
	ID              int64      `db:"id" json:"id"`
	Title           string     `db:"title" json:"title"`
	Category        string     `db:"category" json:"category"`
	Source          string     `db:"source" json:"source"`
	URL             string     `db:"url" json:"url"`
	Description     string     `db:"description" json:"description"`
	NormalizedScore int        `db:"normalized_score" json:"normalized_score"`
	ViralScore      int        `db:"viral_score" json:"viral_score"`
	QualityTier     string     `db:"quality_tier" json:"quality_tier"`
	KeywordsJSON    string     `db:"keywords" json:"-"`
	Keywords        []string   `db:"-" json:"keywords"`
	Views           int        `db:"views" json:"views"`
	Shares          int        `db:"shares" json:"shares"`
	Comments        int        `db:"comments" json:"comments"`
	Status          Status     `db:"status" json:"status"`
	ProcessedAt     *time.Time `db:"processed_at" json:"processed_at,omitempty"`
	ArticleID       *int64     `db:"article_id" json:"article_id,omitempty"`
	ProcessingError string     `db:"processing_error" json:"processing_error,omitempty"`
	LastErrorAt     *time.Time `db:"last_error_at" json:"last_error_at,omitempty"`
	ErrorCount      int        `db:"error_count" json:"error_count"`
	PublishedAt     time.Time  `db:"published_at" json:"published_at"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}

// Article is a generated article linked back to the trend that produced it.
type Article struct {
	ID              int64     `db:"id" json:"id"`
	TrendID         int64     `db:"trend_id" json:"trend_id"`
	Title           string    `db:"title" json:"title"`
	Slug            string    `db:"slug" json:"slug"`
	MetaDescription string    `db:"meta_description" json:"meta_description"`
	KeywordsJSON    string    `db:"keywords" json:"-"`
	Keywords        []string  `db:"-" json:"keywords"`
	Content         string    `db:"content" json:"content"`
	SEOScore        int       `db:"seo_score" json:"seo_score"`
	Status          string    `db:"status" json:"status"`
	PublishedAt     time.Time `db:"published_at" json:"published_at"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

// QueryOpts controls filtered trend listing. Zero values mean "no filter".
type QueryOpts struct {
	Status       Status
	Tier         string
	Source       source.SourceType
	MinViral     int
	MaxErrors    int // error_count < MaxErrors
	Since        time.Time
	Unprocessed  bool // status != processed
	OrderByViral bool // viral_score DESC, normalized_score DESC, created_at DESC
	Limit        int  // 0 defaults to 100; negative means no limit
}

// Store is the persistence collaborator consumed by the scoring core.
type Store interface {
	InsertTrend(ctx context.Context, t *Trend) error
	GetTrend(ctx context.Context, id int64) (*Trend, error)
	ListTrends(ctx context.Context, opts QueryOpts) ([]Trend, error)
	RecentTrends(ctx context.Context, since time.Time, limit int) ([]Trend, error)
	MarkProcessed(ctx context.Context, id, articleID int64) error
	MarkErrored(ctx context.Context, id int64, msg string) error
	DeleteProcessedBefore(ctx context.Context, cutoff time.Time, tiers []string) (int64, error)

	InsertArticle(ctx context.Context, a *Article) error
	GetArticleByTrend(ctx context.Context, trendID int64) (*Article, error)
	ListArticles(ctx context.Context, limit int) ([]Article, error)

	Close() error
}

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sqlx.DB
}

// New opens a SQLite database and runs migrations.
func New(path string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) InsertTrend(ctx context.Context, t *Trend) error {
	now := time.Now().UTC()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now
	if t.Status == "" {
		t.Status = StatusPending
	}
	if t.PublishedAt.IsZero() {
		t.PublishedAt = now
	}
	keywordsJSON, _ := json.Marshal(t.Keywords)
	t.KeywordsJSON = string(keywordsJSON)

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO trends (title, category, source, url, description,
			normalized_score, viral_score, quality_tier, keywords,
			views, shares, comments, status, processing_error, error_count,
			published_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, '', 0, ?, ?, ?)
	`, t.Title, t.Category, t.Source, t.URL, t.Description,
		t.NormalizedScore, t.ViralScore, t.QualityTier, t.KeywordsJSON,
		t.Views, t.Shares, t.Comments, t.Status,
		t.PublishedAt, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert trend %q: %w", t.Title, err)
	}

	t.ID, _ = res.LastInsertId()
	return nil
}

func (s *SQLiteStore) GetTrend(ctx context.Context, id int64) (*Trend, error) {
	var t Trend
	err := s.db.GetContext(ctx, &t, "SELECT * FROM trends WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get trend %d: %w", id, err)
	}
	decodeTrend(&t)
	return &t, nil
}

func (s *SQLiteStore) ListTrends(ctx context.Context, opts QueryOpts) ([]Trend, error) {
	q := sq.Select("*").From("trends")

	if opts.Status != "" {
		q = q.Where(sq.Eq{"status": opts.Status})
	}
	if opts.Unprocessed {
		q = q.Where(sq.NotEq{"status": StatusProcessed})
	}
	if opts.Tier != "" {
		q = q.Where(sq.Eq{"quality_tier": opts.Tier})
	}
	if opts.Source != "" {
		q = q.Where(sq.Eq{"source": opts.Source})
	}
	if opts.MinViral > 0 {
		q = q.Where(sq.Gt{"viral_score": opts.MinViral})
	}
	if opts.MaxErrors > 0 {
		q = q.Where(sq.Lt{"error_count": opts.MaxErrors})
	}
	if !opts.Since.IsZero() {
		q = q.Where(sq.GtOrEq{"created_at": opts.Since})
	}

	if opts.OrderByViral {
		q = q.OrderBy("viral_score DESC", "normalized_score DESC", "created_at DESC")
	} else {
		q = q.OrderBy("created_at DESC")
	}

	limit := opts.Limit
	if limit == 0 {
		limit = 100
	}
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build trend query: %w", err)
	}

	var trends []Trend
	if err := s.db.SelectContext(ctx, &trends, query, args...); err != nil {
		return nil, fmt.Errorf("list trends: %w", err)
	}
	for i := range trends {
		decodeTrend(&trends[i])
	}
	return trends, nil
}

// RecentTrends returns the newest trends created at or after since, newest
// first, bounded for dedup cost control. It is read once per scan cycle so
// deduplication sees a consistent snapshot.
func (s *SQLiteStore) RecentTrends(ctx context.Context, since time.Time, limit int) ([]Trend, error) {
	return s.ListTrends(ctx, QueryOpts{Since: since, Limit: limit})
}

// MarkProcessed flips a trend to the processed state and clears any error
// history. Calling it again for an already-processed trend is a no-op update
// with the same result.
func (s *SQLiteStore) MarkProcessed(ctx context.Context, id, articleID int64) error {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		UPDATE trends SET status = ?, processed_at = ?, article_id = ?,
			processing_error = '', last_error_at = NULL, error_count = 0,
			updated_at = ?
		WHERE id = ?
	`, StatusProcessed, now, articleID, now, id)
	if err != nil {
		return fmt.Errorf("mark processed %d: %w", id, err)
	}
	return checkFound(res, id)
}

// MarkErrored records a generation failure and bumps the error counter.
func (s *SQLiteStore) MarkErrored(ctx context.Context, id int64, msg string) error {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		UPDATE trends SET status = ?, processing_error = ?, last_error_at = ?,
			error_count = error_count + 1, updated_at = ?
		WHERE id = ?
	`, StatusError, msg, now, now, id)
	if err != nil {
		return fmt.Errorf("mark errored %d: %w", id, err)
	}
	return checkFound(res, id)
}

// DeleteProcessedBefore is the retention sweep: it removes processed trends
// in the given quality tiers created before the cutoff.
func (s *SQLiteStore) DeleteProcessedBefore(ctx context.Context, cutoff time.Time, tiers []string) (int64, error) {
	query, args, err := sq.Delete("trends").
		Where(sq.Eq{"status": StatusProcessed}).
		Where(sq.Eq{"quality_tier": tiers}).
		Where(sq.Lt{"created_at": cutoff}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build sweep query: %w", err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("retention sweep: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func (s *SQLiteStore) InsertArticle(ctx context.Context, a *Article) error {
	now := time.Now().UTC()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	if a.PublishedAt.IsZero() {
		a.PublishedAt = now
	}
	if a.Status == "" {
		a.Status = "published"
	}
	keywordsJSON, _ := json.Marshal(a.Keywords)
	a.KeywordsJSON = string(keywordsJSON)

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO articles (trend_id, title, slug, meta_description, keywords,
			content, seo_score, status, published_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, a.TrendID, a.Title, a.Slug, a.MetaDescription, a.KeywordsJSON,
		a.Content, a.SEOScore, a.Status, a.PublishedAt, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert article %q: %w", a.Title, err)
	}

	a.ID, _ = res.LastInsertId()
	return nil
}

func (s *SQLiteStore) GetArticleByTrend(ctx context.Context, trendID int64) (*Article, error) {
	var a Article
	err := s.db.GetContext(ctx, &a,
		"SELECT * FROM articles WHERE trend_id = ? ORDER BY created_at LIMIT 1", trendID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get article for trend %d: %w", trendID, err)
	}
	json.Unmarshal([]byte(a.KeywordsJSON), &a.Keywords)
	return &a, nil
}

func (s *SQLiteStore) ListArticles(ctx context.Context, limit int) ([]Article, error) {
	if limit <= 0 {
		limit = 50
	}
	var articles []Article
	err := s.db.SelectContext(ctx, &articles,
		"SELECT * FROM articles ORDER BY published_at DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	for i := range articles {
		json.Unmarshal([]byte(articles[i].KeywordsJSON), &articles[i].Keywords)
	}
	return articles, nil
}

func decodeTrend(t *Trend) {
	json.Unmarshal([]byte(t.KeywordsJSON), &t.Keywords)
}

func checkFound(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("trend %d: %w", id, ErrNotFound)
	}
	return nil
}
