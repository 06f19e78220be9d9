package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"timetabler/internal/domain"
)

// MockTimetableRepository is a mock implementation of port.TimetableRepository.
type MockTimetableRepository struct {
	mock.Mock
}

func (m *MockTimetableRepository) Create(ctx context.Context, t *domain.Timetable) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockTimetableRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Timetable, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Timetable), args.Error(1)
}

func (m *MockTimetableRepository) List(ctx context.Context, offset, limit int) ([]domain.Timetable, int, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Timetable), args.Int(1), args.Error(2)
}

func (m *MockTimetableRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
