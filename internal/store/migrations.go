package store

const schema = `
CREATE TABLE IF NOT EXISTS trends (
    id               INTEGER PRIMARY KEY AUTOINCREMENT,
    title            TEXT NOT NULL,
    category         TEXT NOT NULL DEFAULT 'tech',
    source           TEXT NOT NULL,
    url              TEXT NOT NULL DEFAULT '',
    description      TEXT NOT NULL DEFAULT '',
    normalized_score INTEGER NOT NULL DEFAULT 0,
    viral_score      INTEGER NOT NULL DEFAULT 0,
    quality_tier     TEXT NOT NULL DEFAULT 'low',
    keywords         TEXT NOT NULL DEFAULT '[]',
    views            INTEGER NOT NULL DEFAULT 0,
    shares           INTEGER NOT NULL DEFAULT 0,
    comments         INTEGER NOT NULL DEFAULT 0,
    status           TEXT NOT NULL DEFAULT 'pending',
    processed_at     DATETIME,
    article_id       INTEGER,
    processing_error TEXT NOT NULL DEFAULT '',
    last_error_at    DATETIME,
    error_count      INTEGER NOT NULL DEFAULT 0,
    published_at     DATETIME NOT NULL,
    created_at       DATETIME NOT NULL,
    updated_at       DATETIME NOT NULL,
    UNIQUE(title, source)
);

CREATE INDEX IF NOT EXISTS idx_trends_status_viral ON trends(status, viral_score);
CREATE INDEX IF NOT EXISTS idx_trends_created_at ON trends(created_at);
CREATE INDEX IF NOT EXISTS idx_trends_source ON trends(source, created_at);
CREATE INDEX IF NOT EXISTS idx_trends_tier ON trends(quality_tier);

CREATE TABLE IF NOT EXISTS articles (
    id               INTEGER PRIMARY KEY AUTOINCREMENT,
    trend_id         INTEGER NOT NULL REFERENCES trends(id),
    title            TEXT NOT NULL,
    slug             TEXT NOT NULL,
    meta_description TEXT NOT NULL DEFAULT '',
    keywords         TEXT NOT NULL DEFAULT '[]',
    content          TEXT NOT NULL,
    seo_score        INTEGER NOT NULL DEFAULT 0,
    status           TEXT NOT NULL DEFAULT 'published',
    published_at     DATETIME NOT NULL,
    created_at       DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_articles_trend ON articles(trend_id);
CREATE INDEX IF NOT EXISTS idx_articles_published ON articles(published_at);
`
