// Package store implements the Findings Store: an embedded relational
// database holding deduplicated findings, scan history, and loop run
// history, with status transitions, allow-listed ordering, and aggregate
// statistics.
package store

const schema = `
CREATE TABLE IF NOT EXISTS findings (
	id TEXT PRIMARY KEY,
	loop TEXT NOT NULL,
	file TEXT NOT NULL,
	line INTEGER DEFAULT 0,
	category TEXT NOT NULL,
	severity TEXT NOT NULL,
	description TEXT NOT NULL,
	suggestion TEXT DEFAULT '',
	tool TEXT DEFAULT '',
	raw_output TEXT DEFAULT '{}',
	detected_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	last_seen_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	status TEXT DEFAULT 'open',
	acknowledged_at TIMESTAMP,
	fixed_at TIMESTAMP,
	git_commit TEXT,
	UNIQUE(file, line, category, description)
);

CREATE TABLE IF NOT EXISTS scan_history (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	scan_type TEXT,
	loops_run TEXT,
	files_scanned INTEGER DEFAULT 0,
	findings_count INTEGER DEFAULT 0,
	duration_ms INTEGER DEFAULT 0,
	started_at TIMESTAMP,
	completed_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS loop_history (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	loop_name TEXT NOT NULL,
	status TEXT NOT NULL,
	iterations INTEGER DEFAULT 0,
	findings_count INTEGER DEFAULT 0,
	duration_ms INTEGER DEFAULT 0,
	error TEXT,
	completed_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
`

var indexStatements = []string{
	"CREATE INDEX IF NOT EXISTS idx_findings_loop ON findings(loop)",
	"CREATE INDEX IF NOT EXISTS idx_findings_file ON findings(file)",
	"CREATE INDEX IF NOT EXISTS idx_findings_category ON findings(category)",
	"CREATE INDEX IF NOT EXISTS idx_findings_severity ON findings(severity)",
	"CREATE INDEX IF NOT EXISTS idx_findings_status ON findings(status)",
	"CREATE INDEX IF NOT EXISTS idx_findings_detected_at ON findings(detected_at)",
	"CREATE INDEX IF NOT EXISTS idx_findings_last_seen_at ON findings(last_seen_at)",
	"CREATE INDEX IF NOT EXISTS idx_loop_history_loop_name ON loop_history(loop_name)",
	"CREATE INDEX IF NOT EXISTS idx_loop_history_completed_at ON loop_history(completed_at)",
}
