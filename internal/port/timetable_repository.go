package port

import (
	"context"

	"github.com/google/uuid"

	"timetabler/internal/domain"
)

// TimetableRepository persists extraction results.
type TimetableRepository interface {
	Create(ctx context.Context, t *domain.Timetable) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Timetable, error)
	List(ctx context.Context, offset, limit int) ([]domain.Timetable, int, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
