// ABOUTME: SQLite schema definition and initialization.
// ABOUTME: Defines tables for cycles, cycle days, settings, and the pregnancy log.
package storage

// initSchema creates or updates the database schema.
func (d *DB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS snapshot_meta (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		version TEXT NOT NULL,
		mode TEXT NOT NULL,
		updated_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS cycle_settings (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		average_cycle_length INTEGER NOT NULL,
		average_period_length INTEGER NOT NULL,
		temperature_unit TEXT NOT NULL,
		track_temperature INTEGER NOT NULL DEFAULT 0,
		track_cervical_mucus INTEGER NOT NULL DEFAULT 0,
		period_reminder INTEGER NOT NULL DEFAULT 0,
		ovulation_reminder INTEGER NOT NULL DEFAULT 0,
		symptom_reminder INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS cycles (
		start_date TEXT PRIMARY KEY,
		end_date TEXT
	);

	CREATE TABLE IF NOT EXISTS cycle_days (
		cycle_start TEXT NOT NULL,
		date TEXT NOT NULL,
		bleeding TEXT,
		symptoms TEXT,
		custom_symptoms TEXT,
		mood TEXT,
		custom_moods TEXT,
		temperature REAL,
		temperature_unit TEXT,
		notes TEXT,
		cervical_mucus TEXT,
		PRIMARY KEY (cycle_start, date),
		FOREIGN KEY (cycle_start) REFERENCES cycles(start_date) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS pregnancy (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		is_pregnant INTEGER NOT NULL DEFAULT 0,
		is_postpartum INTEGER NOT NULL DEFAULT 0,
		last_period_date TEXT,
		due_date TEXT,
		birth_date TEXT,
		recovery_start TEXT,
		first_period_return TEXT,
		weight_unit TEXT NOT NULL,
		notify_appointments INTEGER NOT NULL DEFAULT 0,
		notify_weekly_updates INTEGER NOT NULL DEFAULT 0,
		notify_measurements INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS pregnancy_symptoms (
		id TEXT PRIMARY KEY,
		phase TEXT NOT NULL,
		date TEXT NOT NULL,
		symptom_type TEXT NOT NULL,
		severity TEXT NOT NULL,
		notes TEXT,
		position INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS measurements (
		id TEXT PRIMARY KEY,
		date TEXT NOT NULL,
		weight REAL,
		systolic INTEGER,
		diastolic INTEGER,
		notes TEXT,
		position INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS appointments (
		id TEXT PRIMARY KEY,
		date TEXT NOT NULL,
		title TEXT NOT NULL,
		notes TEXT,
		completed INTEGER NOT NULL DEFAULT 0,
		position INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS milestones (
		id TEXT PRIMARY KEY,
		date TEXT NOT NULL,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		completed INTEGER NOT NULL DEFAULT 0,
		position INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS postpartum_notes (
		position INTEGER PRIMARY KEY,
		date TEXT NOT NULL,
		content TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_cycle_days_cycle ON cycle_days(cycle_start);
	CREATE INDEX IF NOT EXISTS idx_pregnancy_symptoms_phase ON pregnancy_symptoms(phase, position);
	`

	_, err := d.db.Exec(schema)
	return err
}
