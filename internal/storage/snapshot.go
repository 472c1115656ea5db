// ABOUTME: Snapshot load and save for SQLite storage.
// ABOUTME: Save rewrites every table inside one transaction so readers never see a partial state.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/cycles/internal/logger"
	"github.com/harperreed/cycles/internal/models"
)

const (
	phasePregnancy  = "pregnancy"
	phasePostpartum = "postpartum"
)

// Load reads the whole snapshot.
func (d *DB) Load(ctx context.Context) (*models.Snapshot, error) {
	snap := models.NewSnapshot()

	var mode, updatedAt string
	err := d.db.QueryRowContext(ctx,
		`SELECT version, mode, updated_at FROM snapshot_meta WHERE id = 1`,
	).Scan(&snap.Version, &mode, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot meta: %w", err)
	}
	snap.Mode = models.Mode(mode)
	snap.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt)
	if err != nil {
		return nil, fmt.Errorf("parse snapshot updated_at: %w", err)
	}

	if err := d.loadSettings(ctx, &snap.Settings); err != nil {
		return nil, err
	}
	cycles, err := d.loadCycles(ctx)
	if err != nil {
		return nil, err
	}
	snap.Cycles = cycles
	if err := d.loadPregnancy(ctx, &snap.Pregnancy); err != nil {
		return nil, err
	}

	snap.Normalize()
	logger.Log.WithField("cycles", len(snap.Cycles)).Debug("loaded snapshot from sqlite")
	return &snap, nil
}

func (d *DB) loadSettings(ctx context.Context, s *models.CycleSettings) error {
	var unit string
	err := d.db.QueryRowContext(ctx, `
		SELECT average_cycle_length, average_period_length, temperature_unit,
			track_temperature, track_cervical_mucus,
			period_reminder, ovulation_reminder, symptom_reminder
		FROM cycle_settings WHERE id = 1
	`).Scan(
		&s.AverageCycleLength, &s.AveragePeriodLength, &unit,
		&s.TrackTemperature, &s.TrackCervicalMucus,
		&s.Notifications.PeriodReminder, &s.Notifications.OvulationReminder, &s.Notifications.SymptomReminder,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	s.TemperatureUnit = models.TemperatureUnit(unit)
	return nil
}

func (d *DB) loadCycles(ctx context.Context) ([]models.Cycle, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT start_date, end_date FROM cycles ORDER BY start_date`)
	if err != nil {
		return nil, fmt.Errorf("list cycles: %w", err)
	}
	defer rows.Close()

	cycles := []models.Cycle{}
	index := make(map[string]int)
	for rows.Next() {
		var start string
		var end sql.NullString
		if err := rows.Scan(&start, &end); err != nil {
			return nil, fmt.Errorf("scan cycle: %w", err)
		}
		startDate, err := models.ParseDate(start)
		if err != nil {
			return nil, fmt.Errorf("scan cycle: %w", err)
		}
		c := models.NewCycle(startDate)
		if c.EndDate, err = parseNullDate(end); err != nil {
			return nil, fmt.Errorf("scan cycle %s: %w", start, err)
		}
		index[start] = len(cycles)
		cycles = append(cycles, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	dayRows, err := d.db.QueryContext(ctx, `
		SELECT cycle_start, date, bleeding, symptoms, custom_symptoms, mood, custom_moods,
			temperature, temperature_unit, notes, cervical_mucus
		FROM cycle_days
		ORDER BY date
	`)
	if err != nil {
		return nil, fmt.Errorf("list cycle days: %w", err)
	}
	defer dayRows.Close()

	for dayRows.Next() {
		cycleStart, day, err := scanCycleDay(dayRows)
		if err != nil {
			return nil, err
		}
		i, ok := index[cycleStart]
		if !ok {
			continue
		}
		cycles[i].Days = append(cycles[i].Days, day)
	}
	return cycles, dayRows.Err()
}

func scanCycleDay(rows *sql.Rows) (string, models.CycleDay, error) {
	var cycleStart, date string
	var bleeding, symptoms, customSymptoms, mood, customMoods sql.NullString
	var tempUnit, notes, mucus sql.NullString
	var temp sql.NullFloat64
	if err := rows.Scan(&cycleStart, &date, &bleeding, &symptoms, &customSymptoms, &mood, &customMoods,
		&temp, &tempUnit, &notes, &mucus); err != nil {
		return "", models.CycleDay{}, fmt.Errorf("scan cycle day: %w", err)
	}

	parsed, err := models.ParseDate(date)
	if err != nil {
		return "", models.CycleDay{}, fmt.Errorf("scan cycle day: %w", err)
	}
	day := models.CycleDay{Date: parsed}
	if bleeding.Valid {
		b := models.Bleeding(bleeding.String)
		day.Bleeding = &b
	}
	if mucus.Valid {
		c := models.CervicalMucus(mucus.String)
		day.CervicalMucus = &c
	}
	if notes.Valid {
		n := notes.String
		day.Notes = &n
	}
	if temp.Valid {
		day.Temperature = &models.Temperature{Value: temp.Float64, Unit: models.TemperatureUnit(tempUnit.String)}
	}

	var symptomTags, moodTags []string
	if err := decodeList(symptoms, &symptomTags); err != nil {
		return "", day, err
	}
	if err := decodeList(mood, &moodTags); err != nil {
		return "", day, err
	}
	for _, s := range symptomTags {
		day.Symptoms = append(day.Symptoms, models.Symptom(s))
	}
	for _, m := range moodTags {
		day.Mood = append(day.Mood, models.Mood(m))
	}
	if err := decodeList(customSymptoms, &day.CustomSymptoms); err != nil {
		return "", day, err
	}
	if err := decodeList(customMoods, &day.CustomMoods); err != nil {
		return "", day, err
	}
	return cycleStart, day, nil
}

func (d *DB) loadPregnancy(ctx context.Context, rec *models.PregnancyRecord) error {
	var lmp, due, birth, recovery, firstPeriod sql.NullString
	var weightUnit string
	err := d.db.QueryRowContext(ctx, `
		SELECT is_pregnant, is_postpartum, last_period_date, due_date, birth_date,
			recovery_start, first_period_return, weight_unit,
			notify_appointments, notify_weekly_updates, notify_measurements
		FROM pregnancy WHERE id = 1
	`).Scan(
		&rec.IsPregnant, &rec.IsPostpartum, &lmp, &due, &birth,
		&recovery, &firstPeriod, &weightUnit,
		&rec.Settings.Notifications.Appointments, &rec.Settings.Notifications.WeeklyUpdates,
		&rec.Settings.Notifications.Measurements,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load pregnancy: %w", err)
	}
	rec.Settings.WeightUnit = models.WeightUnit(weightUnit)

	for _, f := range []struct {
		src sql.NullString
		dst **models.Date
	}{
		{lmp, &rec.LastPeriodDate},
		{due, &rec.DueDate},
		{birth, &rec.BirthDate},
		{recovery, &rec.Postpartum.RecoveryStart},
		{firstPeriod, &rec.Postpartum.FirstPeriodReturn},
	} {
		if *f.dst, err = parseNullDate(f.src); err != nil {
			return fmt.Errorf("load pregnancy: %w", err)
		}
	}

	if rec.Symptoms, err = d.loadPregnancySymptoms(ctx, phasePregnancy); err != nil {
		return err
	}
	if rec.Postpartum.Symptoms, err = d.loadPregnancySymptoms(ctx, phasePostpartum); err != nil {
		return err
	}
	if rec.Measurements, err = d.loadMeasurements(ctx); err != nil {
		return err
	}
	if rec.Appointments, err = d.loadAppointments(ctx); err != nil {
		return err
	}
	if rec.Milestones, err = d.loadMilestones(ctx); err != nil {
		return err
	}
	rec.Postpartum.Notes, err = d.loadPostpartumNotes(ctx)
	return err
}

func (d *DB) loadPregnancySymptoms(ctx context.Context, phase string) ([]models.PregnancySymptom, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, date, symptom_type, severity, notes
		FROM pregnancy_symptoms WHERE phase = ? ORDER BY position
	`, phase)
	if err != nil {
		return nil, fmt.Errorf("list %s symptoms: %w", phase, err)
	}
	defer rows.Close()

	out := []models.PregnancySymptom{}
	for rows.Next() {
		var id, date, severity string
		var notes sql.NullString
		var s models.PregnancySymptom
		if err := rows.Scan(&id, &date, &s.Type, &severity, &notes); err != nil {
			return nil, fmt.Errorf("scan symptom: %w", err)
		}
		if s.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parse symptom ID: %w", err)
		}
		if s.Date, err = models.ParseDate(date); err != nil {
			return nil, fmt.Errorf("scan symptom: %w", err)
		}
		s.Severity = models.Severity(severity)
		s.Notes = nullStringPtr(notes)
		out = append(out, s)
	}
	return out, rows.Err()
}

func (d *DB) loadMeasurements(ctx context.Context) ([]models.Measurement, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, date, weight, systolic, diastolic, notes
		FROM measurements ORDER BY position
	`)
	if err != nil {
		return nil, fmt.Errorf("list measurements: %w", err)
	}
	defer rows.Close()

	out := []models.Measurement{}
	for rows.Next() {
		var id, date string
		var weight sql.NullFloat64
		var systolic, diastolic sql.NullInt64
		var notes sql.NullString
		if err := rows.Scan(&id, &date, &weight, &systolic, &diastolic, &notes); err != nil {
			return nil, fmt.Errorf("scan measurement: %w", err)
		}
		var m models.Measurement
		if m.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parse measurement ID: %w", err)
		}
		if m.Date, err = models.ParseDate(date); err != nil {
			return nil, fmt.Errorf("scan measurement: %w", err)
		}
		if weight.Valid {
			w := weight.Float64
			m.Weight = &w
		}
		if systolic.Valid && diastolic.Valid {
			m.BloodPressure = &models.BloodPressure{Systolic: int(systolic.Int64), Diastolic: int(diastolic.Int64)}
		}
		m.Notes = nullStringPtr(notes)
		out = append(out, m)
	}
	return out, rows.Err()
}

func (d *DB) loadAppointments(ctx context.Context) ([]models.Appointment, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, date, title, notes, completed
		FROM appointments ORDER BY position
	`)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	defer rows.Close()

	out := []models.Appointment{}
	for rows.Next() {
		var id, date string
		var notes sql.NullString
		var a models.Appointment
		if err := rows.Scan(&id, &date, &a.Title, &notes, &a.Completed); err != nil {
			return nil, fmt.Errorf("scan appointment: %w", err)
		}
		if a.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parse appointment ID: %w", err)
		}
		if a.Date, err = models.ParseDate(date); err != nil {
			return nil, fmt.Errorf("scan appointment: %w", err)
		}
		a.Notes = nullStringPtr(notes)
		out = append(out, a)
	}
	return out, rows.Err()
}

func (d *DB) loadMilestones(ctx context.Context) ([]models.Milestone, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, date, title, description, completed
		FROM milestones ORDER BY position
	`)
	if err != nil {
		return nil, fmt.Errorf("list milestones: %w", err)
	}
	defer rows.Close()

	out := []models.Milestone{}
	for rows.Next() {
		var id, date string
		var m models.Milestone
		if err := rows.Scan(&id, &date, &m.Title, &m.Description, &m.Completed); err != nil {
			return nil, fmt.Errorf("scan milestone: %w", err)
		}
		if m.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parse milestone ID: %w", err)
		}
		if m.Date, err = models.ParseDate(date); err != nil {
			return nil, fmt.Errorf("scan milestone: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (d *DB) loadPostpartumNotes(ctx context.Context) ([]models.PostpartumNote, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT date, content FROM postpartum_notes ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("list postpartum notes: %w", err)
	}
	defer rows.Close()

	out := []models.PostpartumNote{}
	for rows.Next() {
		var date string
		var n models.PostpartumNote
		if err := rows.Scan(&date, &n.Content); err != nil {
			return nil, fmt.Errorf("scan postpartum note: %w", err)
		}
		if n.Date, err = models.ParseDate(date); err != nil {
			return nil, fmt.Errorf("scan postpartum note: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// Save replaces the stored snapshot in a single transaction.
func (d *DB) Save(ctx context.Context, snap *models.Snapshot) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{
		"cycle_days", "cycles", "cycle_settings", "pregnancy_symptoms", "measurements",
		"appointments", "milestones", "postpartum_notes", "pregnancy", "snapshot_meta",
	} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	updated := snap.UpdatedAt
	if updated.IsZero() {
		updated = time.Now().UTC()
	}
	version := snap.Version
	if version == "" {
		version = models.SnapshotVersion
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO snapshot_meta (id, version, mode, updated_at) VALUES (1, ?, ?, ?)`,
		version, string(snap.Mode), updated.Format(time.RFC3339),
	); err != nil {
		return fmt.Errorf("save snapshot meta: %w", err)
	}

	s := snap.Settings
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO cycle_settings (id, average_cycle_length, average_period_length, temperature_unit,
			track_temperature, track_cervical_mucus, period_reminder, ovulation_reminder, symptom_reminder)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?)
	`, s.AverageCycleLength, s.AveragePeriodLength, string(s.TemperatureUnit),
		s.TrackTemperature, s.TrackCervicalMucus,
		s.Notifications.PeriodReminder, s.Notifications.OvulationReminder, s.Notifications.SymptomReminder,
	); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}

	for _, c := range snap.Cycles {
		if err := saveCycle(ctx, tx, c); err != nil {
			return err
		}
	}
	if err := savePregnancy(ctx, tx, snap.Pregnancy); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}
	logger.Log.WithField("cycles", len(snap.Cycles)).Debug("saved snapshot to sqlite")
	return nil
}

func saveCycle(ctx context.Context, tx *sql.Tx, c models.Cycle) error {
	start := c.StartDate.String()
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO cycles (start_date, end_date) VALUES (?, ?)`,
		start, nullDate(c.EndDate),
	); err != nil {
		return fmt.Errorf("save cycle %s: %w", start, err)
	}

	for _, day := range c.Days {
		symptoms := make([]string, len(day.Symptoms))
		for i, s := range day.Symptoms {
			symptoms[i] = string(s)
		}
		moods := make([]string, len(day.Mood))
		for i, m := range day.Mood {
			moods[i] = string(m)
		}
		var temp, tempUnit any
		if day.Temperature != nil {
			temp = day.Temperature.Value
			tempUnit = string(day.Temperature.Unit)
		}
		var bleeding, mucus any
		if day.Bleeding != nil {
			bleeding = string(*day.Bleeding)
		}
		if day.CervicalMucus != nil {
			mucus = string(*day.CervicalMucus)
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO cycle_days (cycle_start, date, bleeding, symptoms, custom_symptoms, mood, custom_moods,
				temperature, temperature_unit, notes, cervical_mucus)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, start, day.Date.String(), bleeding,
			encodeList(symptoms), encodeList(day.CustomSymptoms),
			encodeList(moods), encodeList(day.CustomMoods),
			temp, tempUnit, day.Notes, mucus,
		); err != nil {
			return fmt.Errorf("save cycle day %s: %w", day.Date, err)
		}
	}
	return nil
}

func savePregnancy(ctx context.Context, tx *sql.Tx, rec models.PregnancyRecord) error {
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO pregnancy (id, is_pregnant, is_postpartum, last_period_date, due_date, birth_date,
			recovery_start, first_period_return, weight_unit,
			notify_appointments, notify_weekly_updates, notify_measurements)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.IsPregnant, rec.IsPostpartum,
		nullDate(rec.LastPeriodDate), nullDate(rec.DueDate), nullDate(rec.BirthDate),
		nullDate(rec.Postpartum.RecoveryStart), nullDate(rec.Postpartum.FirstPeriodReturn),
		string(rec.Settings.WeightUnit),
		rec.Settings.Notifications.Appointments, rec.Settings.Notifications.WeeklyUpdates,
		rec.Settings.Notifications.Measurements,
	); err != nil {
		return fmt.Errorf("save pregnancy: %w", err)
	}

	symptomSets := []struct {
		phase string
		list  []models.PregnancySymptom
	}{
		{phasePregnancy, rec.Symptoms},
		{phasePostpartum, rec.Postpartum.Symptoms},
	}
	for _, set := range symptomSets {
		for i, s := range set.list {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO pregnancy_symptoms (id, phase, date, symptom_type, severity, notes, position)
				VALUES (?, ?, ?, ?, ?, ?, ?)
			`, s.ID.String(), set.phase, s.Date.String(), s.Type, string(s.Severity), s.Notes, i); err != nil {
				return fmt.Errorf("save %s symptom %s: %w", set.phase, s.ID, err)
			}
		}
	}

	for i, m := range rec.Measurements {
		var systolic, diastolic any
		if m.BloodPressure != nil {
			systolic = m.BloodPressure.Systolic
			diastolic = m.BloodPressure.Diastolic
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO measurements (id, date, weight, systolic, diastolic, notes, position)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, m.ID.String(), m.Date.String(), m.Weight, systolic, diastolic, m.Notes, i); err != nil {
			return fmt.Errorf("save measurement %s: %w", m.ID, err)
		}
	}

	for i, a := range rec.Appointments {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO appointments (id, date, title, notes, completed, position)
			VALUES (?, ?, ?, ?, ?, ?)
		`, a.ID.String(), a.Date.String(), a.Title, a.Notes, a.Completed, i); err != nil {
			return fmt.Errorf("save appointment %s: %w", a.ID, err)
		}
	}

	for i, m := range rec.Milestones {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO milestones (id, date, title, description, completed, position)
			VALUES (?, ?, ?, ?, ?, ?)
		`, m.ID.String(), m.Date.String(), m.Title, m.Description, m.Completed, i); err != nil {
			return fmt.Errorf("save milestone %s: %w", m.ID, err)
		}
	}

	for i, n := range rec.Postpartum.Notes {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO postpartum_notes (position, date, content) VALUES (?, ?, ?)`,
			i, n.Date.String(), n.Content,
		); err != nil {
			return fmt.Errorf("save postpartum note: %w", err)
		}
	}
	return nil
}

// nullDate converts an optional date to a SQL value.
func nullDate(d *models.Date) any {
	if d == nil || d.IsZero() {
		return nil
	}
	return d.String()
}

func parseNullDate(s sql.NullString) (*models.Date, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	d, err := models.ParseDate(s.String)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func nullStringPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

// encodeList stores a tag set as a JSON array; nil and empty sets store NULL.
func encodeList(tags []string) any {
	if len(tags) == 0 {
		return nil
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return nil
	}
	return string(data)
}

func decodeList(s sql.NullString, dst *[]string) error {
	if !s.Valid || s.String == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(s.String), dst); err != nil {
		return fmt.Errorf("decode tag list: %w", err)
	}
	return nil
}
