package repository

import (
	"context"
	"time"

	"github.com/sysu-ecnc-dev/leave-manager/backend/internal/domain"
)

func (r *Repository) GetBasedataByPersonID(personID int64) (*domain.PersonBasedata, error) {
	query := `
		SELECT personnel_number, additional_information
		FROM person_basedata WHERE person_id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	basedata := &domain.PersonBasedata{
		PersonID: personID,
	}

	if err := r.dbpool.QueryRowContext(ctx, query, personID).Scan(&basedata.PersonnelNumber, &basedata.AdditionalInformation); err != nil {
		return nil, err
	}

	return basedata, nil
}

// GetBasedataByPersonIDs 返回 personID -> basedata，没有基础数据的人员不会出现在结果中
func (r *Repository) GetBasedataByPersonIDs(personIDs []int64) (map[int64]*domain.PersonBasedata, error) {
	result := make(map[int64]*domain.PersonBasedata)
	if len(personIDs) == 0 {
		return result, nil
	}

	query := `
		SELECT person_id, personnel_number, additional_information
		FROM person_basedata WHERE person_id = ANY($1)
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, personIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		basedata := &domain.PersonBasedata{}
		if err := rows.Scan(&basedata.PersonID, &basedata.PersonnelNumber, &basedata.AdditionalInformation); err != nil {
			return nil, err
		}
		result[basedata.PersonID] = basedata
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *Repository) SaveBasedata(basedata *domain.PersonBasedata) error {
	query := `
		INSERT INTO person_basedata (person_id, personnel_number, additional_information)
		VALUES ($1, $2, $3)
		ON CONFLICT (person_id) DO UPDATE
		SET personnel_number = EXCLUDED.personnel_number,
			additional_information = EXCLUDED.additional_information
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	if _, err := r.dbpool.ExecContext(ctx, query, basedata.PersonID, basedata.PersonnelNumber, basedata.AdditionalInformation); err != nil {
		return err
	}

	return nil
}
