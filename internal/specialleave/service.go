package specialleave

import (
	"errors"
	"fmt"

	"github.com/sysu-ecnc-dev/leave-manager/backend/internal/domain"
)

var (
	ErrNegativeDays    = errors.New("特殊假天数不能为负数")
	ErrUnknownSettings = errors.New("特殊假设置不存在")
)

type Repository interface {
	GetAllSpecialLeaveSettings() ([]*domain.SpecialLeaveSettings, error)
	GetSpecialLeaveSettingsByIDs(ids []int64) ([]*domain.SpecialLeaveSettings, error)
	GetSpecialLeaveSettingsByMessageKey(messageKey string) (*domain.SpecialLeaveSettings, error)
	UpdateSpecialLeaveSettings(settings []*domain.SpecialLeaveSettings) error
}

type Service struct {
	repository Repository
}

func NewService(repo Repository) *Service {
	return &Service{repository: repo}
}

func (s *Service) GetAll() ([]*domain.SpecialLeaveSettings, error) {
	return s.repository.GetAllSpecialLeaveSettings()
}

// GetByMessageKey 不存在时返回 sql.ErrNoRows
func (s *Service) GetByMessageKey(messageKey string) (*domain.SpecialLeaveSettings, error) {
	return s.repository.GetSpecialLeaveSettingsByMessageKey(messageKey)
}

// Update 只更新已存在设置的启用状态和天数，消息键保持不变
func (s *Service) Update(updates []*domain.SpecialLeaveSettings) ([]*domain.SpecialLeaveSettings, error) {
	ids := make([]int64, 0, len(updates))
	for _, update := range updates {
		if update.Days < 0 {
			return nil, fmt.Errorf("%w: %d", ErrNegativeDays, update.ID)
		}
		ids = append(ids, update.ID)
	}

	existing, err := s.repository.GetSpecialLeaveSettingsByIDs(ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]*domain.SpecialLeaveSettings, len(existing))
	for _, settings := range existing {
		byID[settings.ID] = settings
	}

	updated := make([]*domain.SpecialLeaveSettings, 0, len(updates))
	for _, update := range updates {
		settings, ok := byID[update.ID]
		if !ok {
			return nil, fmt.Errorf("%w: %d", ErrUnknownSettings, update.ID)
		}
		settings.Active = update.Active
		settings.Days = update.Days
		updated = append(updated, settings)
	}

	if err := s.repository.UpdateSpecialLeaveSettings(updated); err != nil {
		return nil, err
	}

	return updated, nil
}
