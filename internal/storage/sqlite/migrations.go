package sqlite

// Schema defines the SQLite database schema
const Schema = `
-- Campaigns: root of ownership
CREATE TABLE IF NOT EXISTS campaigns (
	campaign_id TEXT PRIMARY KEY,
	campaign_name TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_campaigns_created_at ON campaigns(created_at DESC);

-- One row per ingested file
CREATE TABLE IF NOT EXISTS campaign_uploads (
	upload_id TEXT PRIMARY KEY,
	campaign_id TEXT NOT NULL,
	file_name TEXT NOT NULL,
	stored_path TEXT NOT NULL,
	uploaded_at TIMESTAMP NOT NULL,
	FOREIGN KEY (campaign_id) REFERENCES campaigns(campaign_id)
);

CREATE INDEX IF NOT EXISTS idx_uploads_campaign_id ON campaign_uploads(campaign_id);

-- Raw delivery fact table; one row per source record
CREATE TABLE IF NOT EXISTS campaign_content_raw (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	campaign_id TEXT NOT NULL,
	campaign_name_src TEXT,
	content_title TEXT,
	content_network_name TEXT NOT NULL DEFAULT '',
	impression INTEGER NOT NULL DEFAULT 0,
	quartile100 INTEGER NOT NULL DEFAULT 0,
	FOREIGN KEY (campaign_id) REFERENCES campaigns(campaign_id)
);

CREATE INDEX IF NOT EXISTS idx_content_campaign_id ON campaign_content_raw(campaign_id);

-- Campaign-agnostic reference tables
CREATE TABLE IF NOT EXISTS content_aliases (
	content_title_canon TEXT PRIMARY KEY,
	content_key TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS genre_map (
	raw_genre TEXT PRIMARY KEY,
	genre_canon TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS bundle_map (
	raw TEXT PRIMARY KEY,
	app_bundle TEXT NOT NULL,
	app_name TEXT NOT NULL,
	publisher TEXT NOT NULL,
	mask_reason TEXT
);
`
