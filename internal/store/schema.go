package store

// Amounts are stored as integer cents; dates as local YYYY-MM-DD keys.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS settings (
    id                   INTEGER PRIMARY KEY CHECK (id = 1),
    total_cents          INTEGER NOT NULL,
    target_date          TEXT NOT NULL,
    monthly_expense_cents INTEGER NOT NULL,
    daily_income_cents   INTEGER NOT NULL,
    updated_at           TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS daily_income (
    date                 TEXT PRIMARY KEY,
    amount_cents         INTEGER NOT NULL,
    recorded_at          TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS entries (
    id                   TEXT PRIMARY KEY,
    date                 TEXT NOT NULL,
    kind                 TEXT NOT NULL CHECK (kind IN ('income', 'expense')),
    amount_cents         INTEGER NOT NULL CHECK (amount_cents > 0),
    description          TEXT NOT NULL,
    timestamp_ms         INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS meta (
    key                  TEXT PRIMARY KEY,
    value                TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_entries_date ON entries(date);
`
