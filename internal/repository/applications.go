package repository

import (
	"context"
	"database/sql"
	"slices"
	"time"

	"github.com/sysu-ecnc-dev/leave-manager/backend/internal/domain"
)

const selectApplicationsQuery = `
	SELECT
		a.id,
		a.person_id,
		a.applier_id,
		a.boss_id,
		a.start_date,
		a.start_time::text,
		a.end_date,
		a.end_time::text,
		a.day_length,
		vt.id,
		vt.category,
		vt.message_key,
		vt.active,
		a.hours,
		a.reason,
		a.address,
		a.team_informed,
		a.status,
		a.application_date,
		a.remind_date,
		a.edited_date,
		a.cancel_date,
		a.created_at,
		a.version
	FROM applications a
	JOIN vacation_types vt ON a.vacation_type_id = vt.id
`

// 数据库中 time 类型转成文本后形如 08:00:00，只保留到分钟
func timeOfDay(s sql.NullString) string {
	if !s.Valid || len(s.String) < 5 {
		return ""
	}
	return s.String[:5]
}

func nullableString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullableDate(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func datePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	d := domain.Date(t.Time)
	return &d
}

func applicationStatusStrings(statuses []domain.ApplicationStatus) []string {
	result := make([]string, 0, len(statuses))
	for _, status := range statuses {
		result = append(result, string(status))
	}
	return result
}

func (r *Repository) queryApplications(query string, args ...any) ([]*domain.Application, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applications := make([]*domain.Application, 0)
	personIDs := make([]int64, 0)
	for rows.Next() {
		var row struct {
			PersonID   int64
			ApplierID  int64
			BossID     sql.NullInt64
			StartTime  sql.NullString
			EndTime    sql.NullString
			RemindDate sql.NullTime
			EditedDate sql.NullTime
			CancelDate sql.NullTime
		}

		application := &domain.Application{
			VacationType: &domain.VacationType{},
		}
		dst := []any{
			&application.ID,
			&row.PersonID,
			&row.ApplierID,
			&row.BossID,
			&application.StartDate,
			&row.StartTime,
			&application.EndDate,
			&row.EndTime,
			&application.DayLength,
			&application.VacationType.ID,
			&application.VacationType.Category,
			&application.VacationType.MessageKey,
			&application.VacationType.Active,
			&application.Hours,
			&application.Reason,
			&application.Address,
			&application.TeamInformed,
			&application.Status,
			&application.ApplicationDate,
			&row.RemindDate,
			&row.EditedDate,
			&row.CancelDate,
			&application.CreatedAt,
			&application.Version,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}

		application.StartDate = domain.Date(application.StartDate)
		application.EndDate = domain.Date(application.EndDate)
		application.ApplicationDate = domain.Date(application.ApplicationDate)
		application.StartTime = timeOfDay(row.StartTime)
		application.EndTime = timeOfDay(row.EndTime)
		application.RemindDate = datePtr(row.RemindDate)
		application.EditedDate = datePtr(row.EditedDate)
		application.CancelDate = datePtr(row.CancelDate)

		// 先只记录 id，稍后统一查询人员
		application.Person = &domain.Person{ID: row.PersonID}
		application.Applier = &domain.Person{ID: row.ApplierID}
		personIDs = append(personIDs, row.PersonID, row.ApplierID)
		if row.BossID.Valid {
			application.Boss = &domain.Person{ID: row.BossID.Int64}
			personIDs = append(personIDs, row.BossID.Int64)
		}

		applications = append(applications, application)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(applications) == 0 {
		return applications, nil
	}

	replacements, err := r.getHolidayReplacements(ctx, applications)
	if err != nil {
		return nil, err
	}
	for _, application := range applications {
		application.HolidayReplacements = replacements[application.ID]
		for _, replacement := range application.HolidayReplacements {
			personIDs = append(personIDs, replacement.Person.ID)
		}
	}

	persons, err := r.getPersonsMap(personIDs)
	if err != nil {
		return nil, err
	}
	for _, application := range applications {
		application.Person = persons[application.Person.ID]
		application.Applier = persons[application.Applier.ID]
		if application.Boss != nil {
			application.Boss = persons[application.Boss.ID]
		}
		for _, replacement := range application.HolidayReplacements {
			replacement.Person = persons[replacement.Person.ID]
		}
	}

	return applications, nil
}

func (r *Repository) getHolidayReplacements(ctx context.Context, applications []*domain.Application) (map[int64][]*domain.HolidayReplacement, error) {
	ids := make([]int64, 0, len(applications))
	for _, application := range applications {
		ids = append(ids, application.ID)
	}

	query := `
		SELECT application_id, person_id, note
		FROM application_holiday_replacements
		WHERE application_id = ANY($1)
		ORDER BY application_id, person_id
	`
	rows, err := r.dbpool.QueryContext(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[int64][]*domain.HolidayReplacement)
	for _, id := range ids {
		result[id] = make([]*domain.HolidayReplacement, 0)
	}
	for rows.Next() {
		var applicationID, personID int64
		replacement := &domain.HolidayReplacement{}
		if err := rows.Scan(&applicationID, &personID, &replacement.Note); err != nil {
			return nil, err
		}
		replacement.Person = &domain.Person{ID: personID}
		result[applicationID] = append(result[applicationID], replacement)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *Repository) getPersonsMap(ids []int64) (map[int64]*domain.Person, error) {
	slices.Sort(ids)
	persons, err := r.GetPersonsByIDs(slices.Compact(ids))
	if err != nil {
		return nil, err
	}

	result := make(map[int64]*domain.Person, len(persons))
	for _, person := range persons {
		result[person.ID] = person
	}
	return result, nil
}

func (r *Repository) GetApplicationByID(id int64) (*domain.Application, error) {
	applications, err := r.queryApplications(selectApplicationsQuery+`WHERE a.id = $1`, id)
	if err != nil {
		return nil, err
	}
	if len(applications) == 0 {
		return nil, sql.ErrNoRows
	}
	return applications[0], nil
}

func (r *Repository) GetApplicationsByPersonID(personID int64) ([]*domain.Application, error) {
	return r.queryApplications(selectApplicationsQuery+`WHERE a.person_id = $1 ORDER BY a.start_date DESC, a.id`, personID)
}

func (r *Repository) GetApplicationsByStatuses(statuses []domain.ApplicationStatus) ([]*domain.Application, error) {
	return r.queryApplications(selectApplicationsQuery+`WHERE a.status = ANY($1) ORDER BY a.start_date, a.id`, applicationStatusStrings(statuses))
}

func (r *Repository) GetApplicationsByStatusesAndStartDate(statuses []domain.ApplicationStatus, startDate time.Time) ([]*domain.Application, error) {
	query := selectApplicationsQuery + `WHERE a.status = ANY($1) AND a.start_date = $2 ORDER BY a.id`
	return r.queryApplications(query, applicationStatusStrings(statuses), domain.Date(startDate))
}

// GetApplicationsByStatusesSince 返回结束日期不早于 since 的申请，personIDs 为 nil 时不按人员过滤
func (r *Repository) GetApplicationsByStatusesSince(statuses []domain.ApplicationStatus, since time.Time, personIDs []int64) ([]*domain.Application, error) {
	if personIDs == nil {
		query := selectApplicationsQuery + `WHERE a.status = ANY($1) AND a.end_date >= $2 ORDER BY a.start_date, a.id`
		return r.queryApplications(query, applicationStatusStrings(statuses), domain.Date(since))
	}
	query := selectApplicationsQuery + `WHERE a.status = ANY($1) AND a.end_date >= $2 AND a.person_id = ANY($3) ORDER BY a.start_date, a.id`
	return r.queryApplications(query, applicationStatusStrings(statuses), domain.Date(since), personIDs)
}

func applicationArgs(application *domain.Application) []any {
	var bossID sql.NullInt64
	if application.Boss != nil {
		bossID = sql.NullInt64{Int64: application.Boss.ID, Valid: true}
	}

	return []any{
		application.Person.ID,
		application.Applier.ID,
		bossID,
		application.StartDate,
		nullableString(application.StartTime),
		application.EndDate,
		nullableString(application.EndTime),
		application.DayLength,
		application.VacationType.ID,
		application.Hours,
		application.Reason,
		application.Address,
		application.TeamInformed,
		application.Status,
		application.ApplicationDate,
		nullableDate(application.RemindDate),
		nullableDate(application.EditedDate),
		nullableDate(application.CancelDate),
	}
}

func (r *Repository) CreateApplication(application *domain.Application) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		INSERT INTO applications (
			person_id, applier_id, boss_id, start_date, start_time, end_date, end_time, day_length,
			vacation_type_id, hours, reason, address, team_informed, status,
			application_date, remind_date, edited_date, cancel_date
		)
		VALUES ($1, $2, $3, $4, $5::time, $6, $7::time, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		RETURNING id, created_at, version
	`
	if err := tx.QueryRowContext(ctx, query, applicationArgs(application)...).Scan(&application.ID, &application.CreatedAt, &application.Version); err != nil {
		return err
	}

	if err := insertHolidayReplacements(ctx, tx, application); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

func (r *Repository) UpdateApplication(application *domain.Application) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		UPDATE applications
		SET
			person_id = $1,
			applier_id = $2,
			boss_id = $3,
			start_date = $4,
			start_time = $5::time,
			end_date = $6,
			end_time = $7::time,
			day_length = $8,
			vacation_type_id = $9,
			hours = $10,
			reason = $11,
			address = $12,
			team_informed = $13,
			status = $14,
			application_date = $15,
			remind_date = $16,
			edited_date = $17,
			cancel_date = $18,
			version = version + 1
		WHERE id = $19 AND version = $20
		RETURNING created_at, version
	`
	args := append(applicationArgs(application), application.ID, application.Version)
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&application.CreatedAt, &application.Version); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM application_holiday_replacements WHERE application_id = $1`, application.ID); err != nil {
		return err
	}
	if err := insertHolidayReplacements(ctx, tx, application); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

func insertHolidayReplacements(ctx context.Context, tx *sql.Tx, application *domain.Application) error {
	query := `
		INSERT INTO application_holiday_replacements (application_id, person_id, note)
		VALUES ($1, $2, $3)
		ON CONFLICT DO NOTHING
	`
	for _, replacement := range application.HolidayReplacements {
		if _, err := tx.ExecContext(ctx, query, application.ID, replacement.Person.ID, replacement.Note); err != nil {
			return err
		}
	}
	return nil
}
