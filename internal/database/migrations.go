package database

import "database/sql"

// Migration represents a single schema migration step.
type Migration struct {
	Version     int
	Description string
	Up          func(tx *sql.Tx) error
}

// migrations is the ordered list of all schema migrations.
// Append new migrations to the end with incrementing Version numbers.
//
// Date columns carry the source export format "M/D/YYYY h:mm:ss AM"; they
// are normalized by the timeline assembler, not here.
var migrations = []Migration{
	{
		Version:     1,
		Description: "initial record tables",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS daily_reports (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    job TEXT NOT NULL,
    report_date TEXT NOT NULL,
    md_depth REAL,
    tvd_depth REAL,
    present_activity TEXT,
    engineer TEXT,
    remarks TEXT
);
CREATE INDEX IF NOT EXISTS idx_daily_reports_job ON daily_reports(job);

CREATE TABLE IF NOT EXISTS equipment_status (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    job TEXT NOT NULL,
    report_date TEXT NOT NULL,
    shaker1_name TEXT, shaker1_hours REAL,
    shaker1_mesh1 REAL, shaker1_mesh2 REAL, shaker1_mesh3 REAL, shaker1_mesh4 REAL,
    shaker2_name TEXT, shaker2_hours REAL,
    shaker2_mesh1 REAL, shaker2_mesh2 REAL, shaker2_mesh3 REAL, shaker2_mesh4 REAL,
    shaker3_name TEXT, shaker3_hours REAL,
    shaker3_mesh1 REAL, shaker3_mesh2 REAL, shaker3_mesh3 REAL, shaker3_mesh4 REAL,
    centrifuge1_name TEXT, centrifuge1_hours REAL, centrifuge1_feed_rate REAL, centrifuge1_type TEXT,
    centrifuge2_name TEXT, centrifuge2_hours REAL, centrifuge2_feed_rate REAL, centrifuge2_type TEXT,
    centrifuge3_name TEXT, centrifuge3_hours REAL, centrifuge3_feed_rate REAL, centrifuge3_type TEXT,
    desander_hours REAL, desander_size REAL, desander_cones INTEGER,
    desilter_hours REAL, desilter_size REAL, desilter_cones INTEGER,
    mud_cleaner_hours REAL, mud_cleaner_size REAL, mud_cleaner_cones INTEGER
);
CREATE INDEX IF NOT EXISTS idx_equipment_status_job ON equipment_status(job);

CREATE TABLE IF NOT EXISTS mud_samples (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    job TEXT NOT NULL,
    report_date TEXT NOT NULL,
    sample_time TEXT,
    mud_weight REAL,
    plastic_viscosity REAL,
    yield_point REAL,
    gel_10s REAL,
    gel_10m REAL,
    gel_30m REAL,
    solids_content REAL,
    sand_content TEXT,
    lgs_pct REAL,
    hgs_pct REAL,
    drill_solids_pct REAL,
    ph REAL,
    chloride REAL,
    filtrate_api REAL,
    oil_ratio REAL,
    electrical_stability REAL
);
CREATE INDEX IF NOT EXISTS idx_mud_samples_job ON mud_samples(job);

CREATE TABLE IF NOT EXISTS chemical_txns (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    job TEXT NOT NULL,
    report_date TEXT NOT NULL,
    item_name TEXT,
    add_loss TEXT,
    quantity REAL,
    rep_units TEXT
);
CREATE INDEX IF NOT EXISTS idx_chemical_txns_job ON chemical_txns(job);

CREATE TABLE IF NOT EXISTS circulation (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    job TEXT NOT NULL,
    report_date TEXT NOT NULL,
    total_circ REAL,
    pit_volume REAL,
    in_storage REAL,
    mud_type TEXT
);
CREATE INDEX IF NOT EXISTS idx_circulation_job ON circulation(job);
`)
			return err
		},
	},
}

func latestVersion() int {
	return migrations[len(migrations)-1].Version
}
