package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"timetabler/internal/domain"
	"timetabler/internal/port"
)

type timetableRepo struct {
	db *sqlx.DB
}

// NewTimetableRepo creates a new PostgreSQL-backed TimetableRepository.
func NewTimetableRepo(db *sqlx.DB) port.TimetableRepository {
	return &timetableRepo{db: db}
}

func (r *timetableRepo) Create(ctx context.Context, t *domain.Timetable) error {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	if len(t.Document) == 0 {
		t.Document = []byte("{}")
	}
	if len(t.Warnings) == 0 {
		t.Warnings = []byte("[]")
	}

	query := `INSERT INTO timetables
		(id, title, original_name, file_type, file_size, s3_bucket, s3_key,
		 parser_model, status, error_message, document, warnings,
		 day_count, block_count, created_at)
		VALUES (:id, :title, :original_name, :file_type, :file_size, :s3_bucket, :s3_key,
		 :parser_model, :status, :error_message, :document, :warnings,
		 :day_count, :block_count, :created_at)`

	if _, err := r.db.NamedExecContext(ctx, query, t); err != nil {
		return fmt.Errorf("timetableRepo.Create: %w", err)
	}
	return nil
}

func (r *timetableRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Timetable, error) {
	var t domain.Timetable
	err := r.db.GetContext(ctx, &t, "SELECT * FROM timetables WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("timetableRepo.GetByID: %w", err)
	}
	return &t, nil
}

func (r *timetableRepo) List(ctx context.Context, offset, limit int) ([]domain.Timetable, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM timetables"); err != nil {
		return nil, 0, fmt.Errorf("timetableRepo.List count: %w", err)
	}

	var items []domain.Timetable
	err := r.db.SelectContext(ctx, &items,
		`SELECT * FROM timetables ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("timetableRepo.List: %w", err)
	}
	return items, total, nil
}

func (r *timetableRepo) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM timetables WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("timetableRepo.Delete: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("timetableRepo.Delete rows: %w", err)
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
