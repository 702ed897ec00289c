package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/AlfredoZC/DentiAI/internal/domain"
	"github.com/AlfredoZC/DentiAI/internal/repository"
)

type pgHistoryRepository struct {
	db *sql.DB
}

func NewPgHistoryRepository(db *sql.DB) repository.HistoryRepository {
	return &pgHistoryRepository{db: db}
}

func (r *pgHistoryRepository) Create(ctx context.Context, record *domain.HistoryRecord) (*domain.HistoryRecord, error) {
	query := `INSERT INTO history (user_id, image_path, detections, created_at)
	           VALUES ($1, $2, $3, CURRENT_TIMESTAMP)
	           RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query, record.UserID, record.ImagePath, record.Detections).
		Scan(&record.ID, &record.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("HistoryRepository.Create: %w", err)
	}
	record.Timestamp = record.Timestamp.In(time.UTC)
	return record, nil
}

func (r *pgHistoryRepository) FindByUserID(ctx context.Context, userID int) ([]domain.HistoryRecord, error) {
	query := `SELECT id, user_id, image_path, detections, created_at
	           FROM history WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("HistoryRepository.FindByUserID: %w", err)
	}
	defer rows.Close()

	var records []domain.HistoryRecord
	for rows.Next() {
		var rec domain.HistoryRecord
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.ImagePath, &rec.Detections, &rec.Timestamp); err != nil {
			return nil, fmt.Errorf("HistoryRepository.FindByUserID: scanning row: %w", err)
		}
		rec.Timestamp = rec.Timestamp.In(time.UTC)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("HistoryRepository.FindByUserID: %w", err)
	}
	return records, nil
}
