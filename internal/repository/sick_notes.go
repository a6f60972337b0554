package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/sysu-ecnc-dev/leave-manager/backend/internal/domain"
)

const selectSickNotesQuery = `
	SELECT
		id,
		person_id,
		applier_id,
		category,
		start_date,
		end_date,
		day_length,
		aub_start_date,
		aub_end_date,
		status,
		created_at,
		version
	FROM sick_notes
`

func sickNoteStatusStrings(statuses []domain.SickNoteStatus) []string {
	result := make([]string, 0, len(statuses))
	for _, status := range statuses {
		result = append(result, string(status))
	}
	return result
}

func (r *Repository) querySickNotes(query string, args ...any) ([]*domain.SickNote, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sickNotes := make([]*domain.SickNote, 0)
	personIDs := make([]int64, 0)
	for rows.Next() {
		var row struct {
			PersonID     int64
			ApplierID    int64
			AubStartDate sql.NullTime
			AubEndDate   sql.NullTime
		}

		sickNote := &domain.SickNote{}
		dst := []any{
			&sickNote.ID,
			&row.PersonID,
			&row.ApplierID,
			&sickNote.Category,
			&sickNote.StartDate,
			&sickNote.EndDate,
			&sickNote.DayLength,
			&row.AubStartDate,
			&row.AubEndDate,
			&sickNote.Status,
			&sickNote.CreatedAt,
			&sickNote.Version,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}

		sickNote.StartDate = domain.Date(sickNote.StartDate)
		sickNote.EndDate = domain.Date(sickNote.EndDate)
		sickNote.AubStartDate = datePtr(row.AubStartDate)
		sickNote.AubEndDate = datePtr(row.AubEndDate)
		sickNote.Person = &domain.Person{ID: row.PersonID}
		sickNote.Applier = &domain.Person{ID: row.ApplierID}
		personIDs = append(personIDs, row.PersonID, row.ApplierID)

		sickNotes = append(sickNotes, sickNote)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(sickNotes) == 0 {
		return sickNotes, nil
	}

	persons, err := r.getPersonsMap(personIDs)
	if err != nil {
		return nil, err
	}
	for _, sickNote := range sickNotes {
		sickNote.Person = persons[sickNote.Person.ID]
		sickNote.Applier = persons[sickNote.Applier.ID]
	}

	return sickNotes, nil
}

func (r *Repository) GetSickNoteByID(id int64) (*domain.SickNote, error) {
	sickNotes, err := r.querySickNotes(selectSickNotesQuery+`WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	if len(sickNotes) == 0 {
		return nil, sql.ErrNoRows
	}
	return sickNotes[0], nil
}

func (r *Repository) GetSickNotesByPersonID(personID int64) ([]*domain.SickNote, error) {
	return r.querySickNotes(selectSickNotesQuery+`WHERE person_id = $1 ORDER BY start_date DESC, id`, personID)
}

// GetSickNotesByStatusesAndPeriod 返回与 [from, to] 有交集的病假条
func (r *Repository) GetSickNotesByStatusesAndPeriod(statuses []domain.SickNoteStatus, from, to time.Time) ([]*domain.SickNote, error) {
	query := selectSickNotesQuery + `
		WHERE status = ANY($1) AND start_date <= $3 AND end_date >= $2
		ORDER BY start_date, id
	`
	return r.querySickNotes(query, sickNoteStatusStrings(statuses), domain.Date(from), domain.Date(to))
}

func (r *Repository) GetSickNotesByStatusesPersonsAndPeriod(statuses []domain.SickNoteStatus, personIDs []int64, from, to time.Time) ([]*domain.SickNote, error) {
	if len(personIDs) == 0 {
		return make([]*domain.SickNote, 0), nil
	}
	query := selectSickNotesQuery + `
		WHERE status = ANY($1) AND person_id = ANY($2) AND start_date <= $4 AND end_date >= $3
		ORDER BY start_date, id
	`
	return r.querySickNotes(query, sickNoteStatusStrings(statuses), personIDs, domain.Date(from), domain.Date(to))
}

// GetSickNotesByStatusesSince personIDs 为 nil 时不按人员过滤
func (r *Repository) GetSickNotesByStatusesSince(statuses []domain.SickNoteStatus, since time.Time, personIDs []int64) ([]*domain.SickNote, error) {
	if personIDs == nil {
		query := selectSickNotesQuery + `WHERE status = ANY($1) AND end_date >= $2 ORDER BY start_date, id`
		return r.querySickNotes(query, sickNoteStatusStrings(statuses), domain.Date(since))
	}
	query := selectSickNotesQuery + `WHERE status = ANY($1) AND end_date >= $2 AND person_id = ANY($3) ORDER BY start_date, id`
	return r.querySickNotes(query, sickNoteStatusStrings(statuses), domain.Date(since), personIDs)
}

func sickNoteArgs(sickNote *domain.SickNote) []any {
	return []any{
		sickNote.Person.ID,
		sickNote.Applier.ID,
		sickNote.Category,
		sickNote.StartDate,
		sickNote.EndDate,
		sickNote.DayLength,
		nullableDate(sickNote.AubStartDate),
		nullableDate(sickNote.AubEndDate),
		sickNote.Status,
	}
}

func (r *Repository) CreateSickNote(sickNote *domain.SickNote) error {
	query := `
		INSERT INTO sick_notes (
			person_id, applier_id, category, start_date, end_date, day_length,
			aub_start_date, aub_end_date, status
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	if err := r.dbpool.QueryRowContext(ctx, query, sickNoteArgs(sickNote)...).Scan(&sickNote.ID, &sickNote.CreatedAt, &sickNote.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) UpdateSickNote(sickNote *domain.SickNote) error {
	query := `
		UPDATE sick_notes
		SET
			person_id = $1,
			applier_id = $2,
			category = $3,
			start_date = $4,
			end_date = $5,
			day_length = $6,
			aub_start_date = $7,
			aub_end_date = $8,
			status = $9,
			version = version + 1
		WHERE id = $10 AND version = $11
		RETURNING created_at, version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := append(sickNoteArgs(sickNote), sickNote.ID, sickNote.Version)
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&sickNote.CreatedAt, &sickNote.Version); err != nil {
		return err
	}

	return nil
}
