package database

import "database/sql"

// Record queries return rows in insertion (rowid) order so that callers can
// apply an explicit first/last precedence when a (job, date) pair appears
// more than once.

const equipmentColumns = `id, job, report_date,
	shaker1_name, shaker1_hours, shaker1_mesh1, shaker1_mesh2, shaker1_mesh3, shaker1_mesh4,
	shaker2_name, shaker2_hours, shaker2_mesh1, shaker2_mesh2, shaker2_mesh3, shaker2_mesh4,
	shaker3_name, shaker3_hours, shaker3_mesh1, shaker3_mesh2, shaker3_mesh3, shaker3_mesh4,
	centrifuge1_name, centrifuge1_hours, centrifuge1_feed_rate, centrifuge1_type,
	centrifuge2_name, centrifuge2_hours, centrifuge2_feed_rate, centrifuge2_type,
	centrifuge3_name, centrifuge3_hours, centrifuge3_feed_rate, centrifuge3_type,
	desander_hours, desander_size, desander_cones,
	desilter_hours, desilter_size, desilter_cones,
	mud_cleaner_hours, mud_cleaner_size, mud_cleaner_cones`

// GetEquipmentForJob returns all equipment status rows for a job.
func (db *DB) GetEquipmentForJob(job string) ([]EquipmentStatus, error) {
	rows, err := db.conn.Query(
		`SELECT `+equipmentColumns+` FROM equipment_status WHERE job = ? ORDER BY id`, job,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []EquipmentStatus
	for rows.Next() {
		var e EquipmentStatus
		dest := []any{&e.ID, &e.Job, &e.ReportDate}
		for i := range e.Shakers {
			s := &e.Shakers[i]
			dest = append(dest, &s.Name, &s.Hours, &s.Mesh[0], &s.Mesh[1], &s.Mesh[2], &s.Mesh[3])
		}
		for i := range e.Centrifuges {
			c := &e.Centrifuges[i]
			dest = append(dest, &c.Name, &c.Hours, &c.FeedRate, &c.Type)
		}
		for _, h := range []*HydrocycloneSlot{&e.Desander, &e.Desilter, &e.MudCleaner} {
			dest = append(dest, &h.Hours, &h.Size, &h.Cones)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		records = append(records, e)
	}
	return records, rows.Err()
}

// GetSamplesForJob returns all mud samples for a job.
func (db *DB) GetSamplesForJob(job string) ([]MudSample, error) {
	rows, err := db.conn.Query(
		`SELECT id, job, report_date, sample_time, mud_weight, plastic_viscosity,
			yield_point, gel_10s, gel_10m, gel_30m, solids_content, sand_content,
			lgs_pct, hgs_pct, drill_solids_pct, ph, chloride, filtrate_api,
			oil_ratio, electrical_stability
		FROM mud_samples WHERE job = ? ORDER BY id`, job,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []MudSample
	for rows.Next() {
		var s MudSample
		if err := rows.Scan(&s.ID, &s.Job, &s.ReportDate, &s.SampleTime,
			&s.MudWeight, &s.PlasticViscosity, &s.YieldPoint,
			&s.Gel10s, &s.Gel10m, &s.Gel30m, &s.SolidsContent, &s.SandContent,
			&s.LGSPct, &s.HGSPct, &s.DrillSolidsPct, &s.PH, &s.Chloride,
			&s.FiltrateAPI, &s.OilRatio, &s.ElectricalStability); err != nil {
			return nil, err
		}
		records = append(records, s)
	}
	return records, rows.Err()
}

// GetChemicalsForJob returns all chemical transactions for a job.
func (db *DB) GetChemicalsForJob(job string) ([]ChemicalTxn, error) {
	rows, err := db.conn.Query(
		`SELECT id, job, report_date, item_name, add_loss, quantity, rep_units
		FROM chemical_txns WHERE job = ? ORDER BY id`, job,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []ChemicalTxn
	for rows.Next() {
		var c ChemicalTxn
		if err := rows.Scan(&c.ID, &c.Job, &c.ReportDate, &c.ItemName,
			&c.AddLoss, &c.Quantity, &c.RepUnits); err != nil {
			return nil, err
		}
		records = append(records, c)
	}
	return records, rows.Err()
}

// GetReportsForJob returns all daily reports for a job.
func (db *DB) GetReportsForJob(job string) ([]DailyReport, error) {
	rows, err := db.conn.Query(
		`SELECT id, job, report_date, md_depth, tvd_depth, present_activity, engineer, remarks
		FROM daily_reports WHERE job = ? ORDER BY id`, job,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []DailyReport
	for rows.Next() {
		var r DailyReport
		if err := rows.Scan(&r.ID, &r.Job, &r.ReportDate, &r.MDDepth, &r.TVDDepth,
			&r.PresentActivity, &r.Engineer, &r.Remarks); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// GetCirculationForJob returns all circulation volume rows for a job.
func (db *DB) GetCirculationForJob(job string) ([]Circulation, error) {
	rows, err := db.conn.Query(
		`SELECT id, job, report_date, total_circ, pit_volume, in_storage, mud_type
		FROM circulation WHERE job = ? ORDER BY id`, job,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Circulation
	for rows.Next() {
		var c Circulation
		if err := rows.Scan(&c.ID, &c.Job, &c.ReportDate, &c.TotalCirc,
			&c.PitVolume, &c.InStorage, &c.MudType); err != nil {
			return nil, err
		}
		records = append(records, c)
	}
	return records, rows.Err()
}

// InsertReport inserts a daily report row.
func (db *DB) InsertReport(r DailyReport) (int64, error) {
	result, err := db.conn.Exec(
		`INSERT INTO daily_reports (job, report_date, md_depth, tvd_depth, present_activity, engineer, remarks)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.Job, r.ReportDate, r.MDDepth, r.TVDDepth, r.PresentActivity, r.Engineer, r.Remarks,
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// InsertEquipment inserts an equipment status row.
func (db *DB) InsertEquipment(e EquipmentStatus) (int64, error) {
	args := []any{e.Job, e.ReportDate}
	for _, s := range e.Shakers {
		args = append(args, s.Name, s.Hours, s.Mesh[0], s.Mesh[1], s.Mesh[2], s.Mesh[3])
	}
	for _, c := range e.Centrifuges {
		args = append(args, c.Name, c.Hours, c.FeedRate, c.Type)
	}
	for _, h := range []HydrocycloneSlot{e.Desander, e.Desilter, e.MudCleaner} {
		args = append(args, h.Hours, h.Size, h.Cones)
	}
	result, err := db.conn.Exec(
		`INSERT INTO equipment_status (job, report_date,
			shaker1_name, shaker1_hours, shaker1_mesh1, shaker1_mesh2, shaker1_mesh3, shaker1_mesh4,
			shaker2_name, shaker2_hours, shaker2_mesh1, shaker2_mesh2, shaker2_mesh3, shaker2_mesh4,
			shaker3_name, shaker3_hours, shaker3_mesh1, shaker3_mesh2, shaker3_mesh3, shaker3_mesh4,
			centrifuge1_name, centrifuge1_hours, centrifuge1_feed_rate, centrifuge1_type,
			centrifuge2_name, centrifuge2_hours, centrifuge2_feed_rate, centrifuge2_type,
			centrifuge3_name, centrifuge3_hours, centrifuge3_feed_rate, centrifuge3_type,
			desander_hours, desander_size, desander_cones,
			desilter_hours, desilter_size, desilter_cones,
			mud_cleaner_hours, mud_cleaner_size, mud_cleaner_cones)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?,
			?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		args...,
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// InsertSample inserts a mud sample row.
func (db *DB) InsertSample(s MudSample) (int64, error) {
	result, err := db.conn.Exec(
		`INSERT INTO mud_samples (job, report_date, sample_time, mud_weight,
			plastic_viscosity, yield_point, gel_10s, gel_10m, gel_30m,
			solids_content, sand_content, lgs_pct, hgs_pct, drill_solids_pct,
			ph, chloride, filtrate_api, oil_ratio, electrical_stability)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.Job, s.ReportDate, s.SampleTime, s.MudWeight, s.PlasticViscosity,
		s.YieldPoint, s.Gel10s, s.Gel10m, s.Gel30m, s.SolidsContent,
		s.SandContent, s.LGSPct, s.HGSPct, s.DrillSolidsPct, s.PH,
		s.Chloride, s.FiltrateAPI, s.OilRatio, s.ElectricalStability,
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// InsertChemical inserts a chemical transaction row.
func (db *DB) InsertChemical(c ChemicalTxn) (int64, error) {
	result, err := db.conn.Exec(
		`INSERT INTO chemical_txns (job, report_date, item_name, add_loss, quantity, rep_units)
		VALUES (?, ?, ?, ?, ?, ?)`,
		c.Job, c.ReportDate, c.ItemName, c.AddLoss, c.Quantity, c.RepUnits,
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// InsertCirculation inserts a circulation volume row.
func (db *DB) InsertCirculation(c Circulation) (int64, error) {
	result, err := db.conn.Exec(
		`INSERT INTO circulation (job, report_date, total_circ, pit_volume, in_storage, mud_type)
		VALUES (?, ?, ?, ?, ?, ?)`,
		c.Job, c.ReportDate, c.TotalCirc, c.PitVolume, c.InStorage, c.MudType,
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// scanNullable is a helper used by the jobs queries for optional aggregates.
func scanNullable(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}
