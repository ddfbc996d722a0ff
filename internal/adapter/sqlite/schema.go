package sqlite

const createReports = `
CREATE TABLE IF NOT EXISTS reports (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	timestamp TEXT NOT NULL,
	title TEXT,
	raw_text TEXT NOT NULL,
	event_type TEXT,
	location_text TEXT,
	location_coords TEXT,
	latitude REAL,
	longitude REAL,
	location_metadata TEXT,
	source_name TEXT,
	content_type TEXT,
	severity INTEGER,
	report_url TEXT,
	created_date TEXT
)`

// additiveColumns are added to databases created by older versions of the
// schema. Order is the order they are attempted.
var additiveColumns = []struct{ name, typ string }{
	{"title", "TEXT"},
	{"location_coords", "TEXT"},
	{"latitude", "REAL"},
	{"longitude", "REAL"},
	{"location_metadata", "TEXT"},
	{"source_name", "TEXT"},
	{"content_type", "TEXT"},
	{"severity", "INTEGER"},
	{"report_url", "TEXT"},
	{"created_date", "TEXT"},
}

const createReportURLIndex = `CREATE INDEX IF NOT EXISTS idx_reports_report_url ON reports(report_url)`

const createLocationHierarchy = `
CREATE TABLE IF NOT EXISTS location_hierarchy (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	location_name TEXT UNIQUE NOT NULL,
	location_type TEXT NOT NULL,
	parent_location TEXT,
	department TEXT,
	latitude REAL,
	longitude REAL,
	risk_level TEXT,
	population_estimate INTEGER,
	notes TEXT
)`

const upsertLocation = `
INSERT OR REPLACE INTO location_hierarchy
	(location_name, location_type, parent_location, department, latitude, longitude, risk_level, population_estimate, notes)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

// Views are dropped and recreated so older definitions never linger.
var viewStatements = []string{
	`DROP VIEW IF EXISTS location_analytics`,
	`CREATE VIEW location_analytics AS
	SELECT
		r.location_text,
		lh.location_type,
		lh.department,
		lh.risk_level,
		COUNT(*) AS total_reports,
		COUNT(CASE WHEN r.event_type = 'violence' THEN 1 END) AS violence_reports,
		COUNT(CASE WHEN r.event_type = 'kidnapping' THEN 1 END) AS kidnapping_reports,
		COUNT(CASE WHEN r.event_type = 'displacement' THEN 1 END) AS displacement_reports,
		COUNT(CASE WHEN r.event_type = 'aid_needed' THEN 1 END) AS aid_requests,
		AVG(r.severity) AS avg_severity,
		MAX(r.timestamp) AS latest_incident,
		COALESCE(lh.latitude, MAX(r.latitude)) AS latitude,
		COALESCE(lh.longitude, MAX(r.longitude)) AS longitude
	FROM reports r
	LEFT JOIN location_hierarchy lh ON r.location_text = lh.location_name
	WHERE r.location_text IS NOT NULL AND r.location_text != ''
	GROUP BY r.location_text, lh.location_type, lh.department, lh.risk_level, lh.latitude, lh.longitude`,
	`DROP VIEW IF EXISTS time_analytics`,
	`CREATE VIEW time_analytics AS
	SELECT
		DATE(timestamp) AS report_date,
		event_type,
		location_text,
		COUNT(*) AS daily_count
	FROM reports
	WHERE location_text IS NOT NULL AND location_text != ''
	GROUP BY DATE(timestamp), event_type, location_text
	ORDER BY report_date DESC`,
}
