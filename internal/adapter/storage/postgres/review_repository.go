package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/seu-repo/restoran-pos/internal/domain"
	"github.com/seu-repo/restoran-pos/internal/ports"
)

type reviewModel struct {
	ID             string  `gorm:"primaryKey;size:36"`
	Text           string  `gorm:"type:text;not null"`
	Intent         *string `gorm:"size:128"`
	Confidence     float64 `gorm:"not null"`
	Status         string  `gorm:"size:16;not null;index"`
	ResolvedIntent *string `gorm:"size:128"`
	CreatedAt      time.Time
	ResolvedAt     *time.Time
}

func (reviewModel) TableName() string { return "nlu_review_entries" }

func (m reviewModel) toDomain() domain.ReviewItem {
	return domain.ReviewItem{
		ID:             m.ID,
		Text:           m.Text,
		Intent:         m.Intent,
		Confidence:     m.Confidence,
		Status:         domain.ReviewStatus(m.Status),
		ResolvedIntent: m.ResolvedIntent,
		CreatedAt:      m.CreatedAt,
		ResolvedAt:     m.ResolvedAt,
	}
}

// ReviewRepository stores low-confidence detections for operators.
type ReviewRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewReviewRepository(db *gorm.DB, log *zap.Logger) ports.ReviewStore {
	return &ReviewRepository{
		db:  db,
		log: log,
	}
}

func (r *ReviewRepository) Append(ctx context.Context, entry domain.ReviewQueueEntry) error {
	row := reviewModel{
		ID:         uuid.NewString(),
		Text:       entry.Text,
		Intent:     entry.Intent,
		Confidence: entry.Confidence,
		Status:     string(domain.ReviewPending),
		CreatedAt:  time.Now().UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("insert review entry: %w", err)
	}
	return nil
}

func (r *ReviewRepository) ListPending(ctx context.Context, limit int) ([]domain.ReviewItem, error) {
	q := r.db.WithContext(ctx).
		Where("status = ?", string(domain.ReviewPending)).
		Order("created_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var rows []reviewModel
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}

	items := make([]domain.ReviewItem, len(rows))
	for i, row := range rows {
		items[i] = row.toDomain()
	}
	return items, nil
}

func (r *ReviewRepository) Get(ctx context.Context, id string) (*domain.ReviewItem, error) {
	var row reviewModel
	err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrReviewNotFound
		}
		return nil, err
	}
	item := row.toDomain()
	return &item, nil
}

func (r *ReviewRepository) Resolve(ctx context.Context, id, intent string) (*domain.ReviewItem, error) {
	now := time.Now().UTC()
	res := r.db.WithContext(ctx).Model(&reviewModel{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":          string(domain.ReviewResolved),
			"resolved_intent": intent,
			"resolved_at":     now,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, domain.ErrReviewNotFound
	}
	return r.Get(ctx, id)
}

func (r *ReviewRepository) Dismiss(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Model(&reviewModel{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":      string(domain.ReviewDismissed),
			"resolved_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrReviewNotFound
	}
	return nil
}
