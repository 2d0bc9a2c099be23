package store

// Timestamps are stored as UTC RFC 3339 text. Tags and queue columns hold
// JSON arrays; card content holds the type-specific JSON payload.
//
// The unique index on review_logs(card_id, token) is what makes
// CommitReview idempotent. Tokenless submissions store NULL, which SQLite
// treats as distinct, so they never collide.
const schema = `
CREATE TABLE IF NOT EXISTS cards (
	id               TEXT PRIMARY KEY,
	owner_id         INTEGER NOT NULL,
	type             TEXT NOT NULL,
	title            TEXT NOT NULL DEFAULT '',
	tags             TEXT NOT NULL DEFAULT '[]',
	content          TEXT NOT NULL,
	ease_factor      REAL NOT NULL,
	interval_days    INTEGER NOT NULL DEFAULT 0,
	repetitions      INTEGER NOT NULL DEFAULT 0,
	lapses           INTEGER NOT NULL DEFAULT 0,
	due_at           TEXT NOT NULL,
	last_reviewed_at TEXT,
	times_correct    INTEGER NOT NULL DEFAULT 0,
	times_incorrect  INTEGER NOT NULL DEFAULT 0,
	created_at       TEXT NOT NULL,
	updated_at       TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_cards_owner_due ON cards(owner_id, due_at);

CREATE TABLE IF NOT EXISTS sessions (
	owner_id        INTEGER PRIMARY KEY,
	mode            TEXT NOT NULL,
	prior_mode      TEXT NOT NULL DEFAULT '',
	active_card_id  TEXT NOT NULL DEFAULT '',
	editing_card_id TEXT NOT NULL DEFAULT '',
	queue           TEXT NOT NULL DEFAULT '[]',
	started_at      TEXT NOT NULL,
	stats_again     INTEGER NOT NULL DEFAULT 0,
	stats_hard      INTEGER NOT NULL DEFAULT 0,
	stats_good      INTEGER NOT NULL DEFAULT 0,
	stats_easy      INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS review_logs (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	card_id     TEXT NOT NULL REFERENCES cards(id),
	owner_id    INTEGER NOT NULL,
	grade       TEXT NOT NULL,
	token       TEXT,
	reviewed_at TEXT NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_review_logs_card_token ON review_logs(card_id, token);
CREATE INDEX IF NOT EXISTS idx_review_logs_owner_time ON review_logs(owner_id, reviewed_at);
`
