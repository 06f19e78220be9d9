package mocks

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"timetabler/internal/domain"
	"timetabler/internal/service"
)

// MockTimetableService is a mock implementation of service.TimetableService.
type MockTimetableService struct {
	mock.Mock
}

func (m *MockTimetableService) Extract(ctx context.Context, input service.ExtractInput) (*domain.Timetable, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Timetable), args.Error(1)
}

func (m *MockTimetableService) Normalize(ctx context.Context, doc *domain.ScheduleDocument) (*service.NormalizeResult, error) {
	args := m.Called(ctx, doc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.NormalizeResult), args.Error(1)
}

func (m *MockTimetableService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Timetable, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Timetable), args.Error(1)
}

func (m *MockTimetableService) List(ctx context.Context, offset, limit int) ([]domain.Timetable, int, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Timetable), args.Int(1), args.Error(2)
}

func (m *MockTimetableService) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// Export writes the optional third return value (a string) to w before returning.
func (m *MockTimetableService) Export(ctx context.Context, id uuid.UUID, format domain.ExportFormat, w io.Writer) (*domain.Timetable, error) {
	args := m.Called(ctx, id, format, w)
	if len(args) > 2 {
		if body, ok := args.Get(2).(string); ok {
			_, _ = io.WriteString(w, body)
		}
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Timetable), args.Error(1)
}
