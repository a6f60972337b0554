package specialleave

import (
	"database/sql"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sysu-ecnc-dev/leave-manager/backend/internal/domain"
)

type fakeRepository struct {
	settings []*domain.SpecialLeaveSettings
	updated  []*domain.SpecialLeaveSettings
}

func (f *fakeRepository) GetAllSpecialLeaveSettings() ([]*domain.SpecialLeaveSettings, error) {
	return f.settings, nil
}

func (f *fakeRepository) GetSpecialLeaveSettingsByIDs(ids []int64) ([]*domain.SpecialLeaveSettings, error) {
	result := make([]*domain.SpecialLeaveSettings, 0)
	for _, settings := range f.settings {
		if slices.Contains(ids, settings.ID) {
			copied := *settings
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (f *fakeRepository) GetSpecialLeaveSettingsByMessageKey(messageKey string) (*domain.SpecialLeaveSettings, error) {
	for _, settings := range f.settings {
		if settings.MessageKey == messageKey {
			return settings, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeRepository) UpdateSpecialLeaveSettings(settings []*domain.SpecialLeaveSettings) error {
	f.updated = settings
	return nil
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		settings: []*domain.SpecialLeaveSettings{
			{ID: 1, MessageKey: "application.data.specialleave.own_wedding", Active: true, Days: 1},
			{ID: 2, MessageKey: "application.data.specialleave.birth_of_child", Active: true, Days: 1},
		},
	}
}

func TestGetByMessageKey(t *testing.T) {
	service := NewService(newFakeRepository())

	settings, err := service.GetByMessageKey("application.data.specialleave.birth_of_child")
	require.NoError(t, err)
	require.Equal(t, int64(2), settings.ID)

	_, err = service.GetByMessageKey("application.data.specialleave.unknown")
	require.ErrorIs(t, err, sql.ErrNoRows)
}

func TestUpdate(t *testing.T) {
	repo := newFakeRepository()
	service := NewService(repo)

	updated, err := service.Update([]*domain.SpecialLeaveSettings{
		{ID: 1, MessageKey: "ignored", Active: false, Days: 3},
	})
	require.NoError(t, err)
	require.Len(t, updated, 1)
	require.Equal(t, "application.data.specialleave.own_wedding", updated[0].MessageKey)
	require.False(t, updated[0].Active)
	require.Equal(t, int32(3), updated[0].Days)
	require.Equal(t, updated, repo.updated)
}

func TestUpdateRejectsNegativeDays(t *testing.T) {
	repo := newFakeRepository()
	service := NewService(repo)

	_, err := service.Update([]*domain.SpecialLeaveSettings{{ID: 1, Days: -1}})
	require.ErrorIs(t, err, ErrNegativeDays)
	require.Nil(t, repo.updated)
}

func TestUpdateRejectsUnknownSettings(t *testing.T) {
	repo := newFakeRepository()
	service := NewService(repo)

	_, err := service.Update([]*domain.SpecialLeaveSettings{{ID: 99, Days: 1}})
	require.ErrorIs(t, err, ErrUnknownSettings)
	require.Nil(t, repo.updated)
}
