package repository

import (
	"context"
	"time"

	"github.com/sysu-ecnc-dev/leave-manager/backend/internal/domain"
)

func (r *Repository) querySpecialLeaveSettings(query string, args ...any) ([]*domain.SpecialLeaveSettings, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	settings := make([]*domain.SpecialLeaveSettings, 0)
	for rows.Next() {
		s := &domain.SpecialLeaveSettings{}
		if err := rows.Scan(&s.ID, &s.MessageKey, &s.Active, &s.Days); err != nil {
			return nil, err
		}
		settings = append(settings, s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return settings, nil
}

func (r *Repository) GetAllSpecialLeaveSettings() ([]*domain.SpecialLeaveSettings, error) {
	return r.querySpecialLeaveSettings(`
		SELECT id, message_key, active, days FROM special_leave_settings ORDER BY id
	`)
}

func (r *Repository) GetSpecialLeaveSettingsByIDs(ids []int64) ([]*domain.SpecialLeaveSettings, error) {
	if len(ids) == 0 {
		return make([]*domain.SpecialLeaveSettings, 0), nil
	}
	return r.querySpecialLeaveSettings(`
		SELECT id, message_key, active, days FROM special_leave_settings WHERE id = ANY($1) ORDER BY id
	`, ids)
}

// GetSpecialLeaveSettingsByMessageKey 不存在时返回 sql.ErrNoRows
func (r *Repository) GetSpecialLeaveSettingsByMessageKey(messageKey string) (*domain.SpecialLeaveSettings, error) {
	query := `
		SELECT id, active, days FROM special_leave_settings WHERE message_key = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	s := &domain.SpecialLeaveSettings{
		MessageKey: messageKey,
	}
	if err := r.dbpool.QueryRowContext(ctx, query, messageKey).Scan(&s.ID, &s.Active, &s.Days); err != nil {
		return nil, err
	}

	return s, nil
}

func (r *Repository) CreateSpecialLeaveSettings(s *domain.SpecialLeaveSettings) error {
	query := `
		INSERT INTO special_leave_settings (message_key, active, days)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	if err := r.dbpool.QueryRowContext(ctx, query, s.MessageKey, s.Active, s.Days).Scan(&s.ID); err != nil {
		return err
	}

	return nil
}

// UpdateSpecialLeaveSettings 在一个事务中批量更新，任一条不存在时整体回滚并返回 sql.ErrNoRows
func (r *Repository) UpdateSpecialLeaveSettings(settings []*domain.SpecialLeaveSettings) error {
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
		UPDATE special_leave_settings SET active = $1, days = $2 WHERE id = $3
		RETURNING message_key
	`
	for _, s := range settings {
		if err := tx.QueryRowContext(ctx, query, s.Active, s.Days, s.ID).Scan(&s.MessageKey); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}
