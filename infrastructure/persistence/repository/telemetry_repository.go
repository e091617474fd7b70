package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"mysre-backend/domain/model"
	apperrors "mysre-backend/pkg/errors"
)

// TelemetryRepository covers the auxiliary records: annotations,
// assignments, analytics events and gaze samples. None carry invariants
// beyond their foreign keys.
type TelemetryRepository struct {
	db *gorm.DB
}

// NewTelemetryRepository creates a telemetry repository.
func NewTelemetryRepository(db *gorm.DB) *TelemetryRepository {
	return &TelemetryRepository{db: db}
}

// CreateAnnotation inserts an annotation on one of the user's articles.
func (r *TelemetryRepository) CreateAnnotation(ctx context.Context, userID, articleID, target, body string) (*model.Annotation, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Article{}).
		Where("id = ? AND user_id = ?", articleID, userID).Count(&count).Error; err != nil {
		return nil, apperrors.NewDatabaseError("create annotation", err)
	}
	if count == 0 {
		return nil, apperrors.NewNotFoundError("article")
	}
	annotation := model.Annotation{
		ID:        uuid.New().String(),
		UserID:    userID,
		ArticleID: articleID,
		Target:    target,
		Body:      body,
	}
	if err := r.db.WithContext(ctx).Create(&annotation).Error; err != nil {
		return nil, apperrors.NewDatabaseError("create annotation", err)
	}
	return &annotation, nil
}

// ListAnnotations returns the user's annotations, optionally for one article.
func (r *TelemetryRepository) ListAnnotations(ctx context.Context, userID string, articleID *string) ([]model.Annotation, error) {
	query := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC")
	if articleID != nil {
		query = query.Where("article_id = ?", *articleID)
	}
	var annotations []model.Annotation
	if err := query.Find(&annotations).Error; err != nil {
		return nil, apperrors.NewDatabaseError("list annotations", err)
	}
	return annotations, nil
}

// DeleteAnnotation removes one of the user's annotations.
func (r *TelemetryRepository) DeleteAnnotation(ctx context.Context, userID, id string) error {
	result := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&model.Annotation{})
	if result.Error != nil {
		return apperrors.NewDatabaseError("delete annotation", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NewNotFoundError("annotation")
	}
	return nil
}

// CreateAssignment inserts a dashboard task.
func (r *TelemetryRepository) CreateAssignment(ctx context.Context, userID, title, description string, dueAt *time.Time) (*model.Assignment, error) {
	assignment := model.Assignment{
		ID:          uuid.New().String(),
		UserID:      userID,
		Title:       title,
		Description: description,
		Status:      "OPEN",
		DueAt:       dueAt,
	}
	if err := r.db.WithContext(ctx).Create(&assignment).Error; err != nil {
		return nil, apperrors.NewDatabaseError("create assignment", err)
	}
	return &assignment, nil
}

// ListAssignments returns the user's assignments by due date.
func (r *TelemetryRepository) ListAssignments(ctx context.Context, userID string) ([]model.Assignment, error) {
	var assignments []model.Assignment
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("due_at ASC NULLS LAST, created_at DESC").Find(&assignments).Error; err != nil {
		return nil, apperrors.NewDatabaseError("list assignments", err)
	}
	return assignments, nil
}

// AssignmentUpdate carries the mutable assignment fields; nil means unchanged.
type AssignmentUpdate struct {
	Title       *string
	Description *string
	Status      *string
	DueAt       *time.Time
}

// UpdateAssignment applies a partial update and returns the fresh row.
func (r *TelemetryRepository) UpdateAssignment(ctx context.Context, userID, id string, update AssignmentUpdate) (*model.Assignment, error) {
	updates := map[string]any{}
	if update.Title != nil {
		updates["title"] = *update.Title
	}
	if update.Description != nil {
		updates["description"] = *update.Description
	}
	if update.Status != nil {
		updates["status"] = *update.Status
	}
	if update.DueAt != nil {
		updates["due_at"] = *update.DueAt
	}
	if len(updates) > 0 {
		result := r.db.WithContext(ctx).Model(&model.Assignment{}).
			Where("id = ? AND user_id = ?", id, userID).Updates(updates)
		if result.Error != nil {
			return nil, apperrors.NewDatabaseError("update assignment", result.Error)
		}
		if result.RowsAffected == 0 {
			return nil, apperrors.NewNotFoundError("assignment")
		}
	}
	var assignment model.Assignment
	err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&assignment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NewNotFoundError("assignment")
	}
	if err != nil {
		return nil, apperrors.NewDatabaseError("get assignment", err)
	}
	return &assignment, nil
}

// CreateAnalyticsEvent records one client event.
func (r *TelemetryRepository) CreateAnalyticsEvent(ctx context.Context, userID, event string, payload datatypes.JSON) (*model.AnalyticsEvent, error) {
	record := model.AnalyticsEvent{
		ID:      uuid.New().String(),
		UserID:  userID,
		Event:   event,
		Payload: payload,
	}
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return nil, apperrors.NewDatabaseError("create analytics event", err)
	}
	return &record, nil
}

// ListAnalyticsEvents returns recent events across all users. Admin only at
// the handler layer.
func (r *TelemetryRepository) ListAnalyticsEvents(ctx context.Context, limit int) ([]model.AnalyticsEvent, error) {
	if limit <= 0 {
		limit = 100
	} else if limit > 1000 {
		limit = 1000
	}
	var events []model.AnalyticsEvent
	if err := r.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&events).Error; err != nil {
		return nil, apperrors.NewDatabaseError("list analytics events", err)
	}
	return events, nil
}

// InsertGazeEvents stores a batch of samples in one write.
func (r *TelemetryRepository) InsertGazeEvents(ctx context.Context, events []model.GazeEvent) (int, error) {
	if len(events) == 0 {
		return 0, nil
	}
	if err := r.db.WithContext(ctx).Create(&events).Error; err != nil {
		return 0, apperrors.NewDatabaseError("insert gaze events", err)
	}
	return len(events), nil
}
