package repository

import (
	"context"
	"time"

	"github.com/sysu-ecnc-dev/leave-manager/backend/internal/domain"
)

func (r *Repository) GetAllVacationTypes() ([]*domain.VacationType, error) {
	query := `
		SELECT id, category, message_key, active FROM vacation_types ORDER BY id
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	vacationTypes := make([]*domain.VacationType, 0)
	for rows.Next() {
		vacationType := &domain.VacationType{}
		if err := rows.Scan(&vacationType.ID, &vacationType.Category, &vacationType.MessageKey, &vacationType.Active); err != nil {
			return nil, err
		}
		vacationTypes = append(vacationTypes, vacationType)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return vacationTypes, nil
}

func (r *Repository) GetVacationTypeByID(id int64) (*domain.VacationType, error) {
	query := `
		SELECT category, message_key, active FROM vacation_types WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	vacationType := &domain.VacationType{
		ID: id,
	}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(&vacationType.Category, &vacationType.MessageKey, &vacationType.Active); err != nil {
		return nil, err
	}

	return vacationType, nil
}

func (r *Repository) CreateVacationType(vacationType *domain.VacationType) error {
	query := `
		INSERT INTO vacation_types (category, message_key, active)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{vacationType.Category, vacationType.MessageKey, vacationType.Active}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&vacationType.ID); err != nil {
		return err
	}

	return nil
}

func (r *Repository) UpdateVacationType(vacationType *domain.VacationType) error {
	query := `
		UPDATE vacation_types SET active = $1 WHERE id = $2
		RETURNING category, message_key
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	if err := r.dbpool.QueryRowContext(ctx, query, vacationType.Active, vacationType.ID).Scan(&vacationType.Category, &vacationType.MessageKey); err != nil {
		return err
	}

	return nil
}
