package database

import "database/sql"

// JobListing is one row of the job catalog.
type JobListing struct {
	Job             string
	ReportCount     int
	SampleCount     int
	ChemicalTxns    int
	FirstDateRaw    *string
	LastDateRaw     *string
}

// ListJobs returns all jobs with at least minReports daily reports, with
// raw first/last report dates and per-table counts. Dates stay in the
// source format; the caller normalizes them.
func (db *DB) ListJobs(minReports int) ([]JobListing, error) {
	rows, err := db.conn.Query(
		`SELECT r.job, COUNT(r.id),
			MIN(r.report_date), MAX(r.report_date),
			COALESCE(s.cnt, 0), COALESCE(c.cnt, 0)
		FROM daily_reports r
		LEFT JOIN (SELECT job, COUNT(id) AS cnt FROM mud_samples GROUP BY job) s ON r.job = s.job
		LEFT JOIN (SELECT job, COUNT(id) AS cnt FROM chemical_txns GROUP BY job) c ON r.job = c.job
		GROUP BY r.job
		HAVING COUNT(r.id) >= ?
		ORDER BY r.job`, minReports,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []JobListing
	for rows.Next() {
		var j JobListing
		var first, last sql.NullString
		if err := rows.Scan(&j.Job, &j.ReportCount, &first, &last,
			&j.SampleCount, &j.ChemicalTxns); err != nil {
			return nil, err
		}
		j.FirstDateRaw = scanNullable(first)
		j.LastDateRaw = scanNullable(last)
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

// GetJobStats returns aggregate stats for one job, or nil if the job has
// no daily reports.
func (db *DB) GetJobStats(job string) (*JobStats, error) {
	stats := &JobStats{Job: job}

	var maxMD, maxTVD sql.NullFloat64
	err := db.conn.QueryRow(
		`SELECT COUNT(id), MAX(md_depth), MAX(tvd_depth)
		FROM daily_reports WHERE job = ?`, job,
	).Scan(&stats.ReportCount, &maxMD, &maxTVD)
	if err != nil {
		return nil, err
	}
	if stats.ReportCount == 0 {
		return nil, nil
	}
	if maxMD.Valid {
		stats.MaxDepthMD = &maxMD.Float64
	}
	if maxTVD.Valid {
		stats.MaxDepthTVD = &maxTVD.Float64
	}

	if err := db.conn.QueryRow(
		"SELECT COUNT(id) FROM mud_samples WHERE job = ?", job,
	).Scan(&stats.SampleCount); err != nil {
		return nil, err
	}
	if err := db.conn.QueryRow(
		"SELECT COUNT(id) FROM equipment_status WHERE job = ?", job,
	).Scan(&stats.EquipmentDays); err != nil {
		return nil, err
	}
	if err := db.conn.QueryRow(
		`SELECT COUNT(id), COUNT(DISTINCT item_name)
		FROM chemical_txns WHERE job = ?`, job,
	).Scan(&stats.ChemicalTxns, &stats.UniqueChemicals); err != nil {
		return nil, err
	}

	var mudType sql.NullString
	err = db.conn.QueryRow(
		`SELECT mud_type FROM circulation
		WHERE job = ? AND mud_type IS NOT NULL ORDER BY id LIMIT 1`, job,
	).Scan(&mudType)
	if err != nil && err != sql.ErrNoRows {
		return nil, err
	}
	stats.MudType = scanNullable(mudType)

	rows, err := db.conn.Query(
		`SELECT DISTINCT engineer FROM daily_reports
		WHERE job = ? AND engineer IS NOT NULL AND engineer != ''
		ORDER BY engineer`, job,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var e string
		if err := rows.Scan(&e); err != nil {
			return nil, err
		}
		stats.Engineers = append(stats.Engineers, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var first, last sql.NullString
	err = db.conn.QueryRow(
		`SELECT MIN(report_date), MAX(report_date) FROM daily_reports WHERE job = ?`, job,
	).Scan(&first, &last)
	if err != nil {
		return nil, err
	}
	stats.FirstDateRaw = scanNullable(first)
	stats.LastDateRaw = scanNullable(last)

	return stats, nil
}
