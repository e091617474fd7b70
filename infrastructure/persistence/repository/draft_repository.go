package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"mysre-backend/domain/model"
	apperrors "mysre-backend/pkg/errors"
)

// DraftRepository persists drafts and their ordered sections.
type DraftRepository struct {
	db *gorm.DB
}

// NewDraftRepository creates a draft repository.
func NewDraftRepository(db *gorm.DB) *DraftRepository {
	return &DraftRepository{db: db}
}

// SectionInput is one section as submitted by the client; order in the slice
// is the stored order.
type SectionInput struct {
	Title   string
	Content string
}

// CreateWithSections creates the draft and its sections in one nested write.
// Section positions follow input order.
func (r *DraftRepository) CreateWithSections(ctx context.Context, userID, title string, sessionID *string, sections []SectionInput) (*model.Draft, error) {
	draft := model.Draft{
		ID:        uuid.New().String(),
		UserID:    userID,
		SessionID: sessionID,
		Title:     title,
		Sections:  make([]model.Section, 0, len(sections)),
	}
	for i, s := range sections {
		draft.Sections = append(draft.Sections, model.Section{
			ID:       uuid.New().String(),
			Position: i,
			Title:    s.Title,
			Content:  s.Content,
		})
	}
	if err := r.db.WithContext(ctx).Create(&draft).Error; err != nil {
		return nil, apperrors.NewDatabaseError("create draft", err)
	}
	if sessionID != nil {
		r.touchWriterSession(ctx, *sessionID)
	}
	return r.GetByID(ctx, userID, draft.ID)
}

// ListByUser returns the user's drafts without section bodies, newest first.
func (r *DraftRepository) ListByUser(ctx context.Context, userID string, sessionID *string) ([]model.Draft, error) {
	query := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("updated_at DESC")
	if sessionID != nil {
		query = query.Where("session_id = ?", *sessionID)
	}
	var drafts []model.Draft
	if err := query.Find(&drafts).Error; err != nil {
		return nil, apperrors.NewDatabaseError("list drafts", err)
	}
	return drafts, nil
}

// GetByID fetches one of the user's drafts with sections in stored order.
// The user filter is the cross-user access guard.
func (r *DraftRepository) GetByID(ctx context.Context, userID, id string) (*model.Draft, error) {
	var draft model.Draft
	err := r.db.WithContext(ctx).
		Preload("Sections", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("id = ? AND user_id = ?", id, userID).
		First(&draft).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NewNotFoundError("draft")
	}
	if err != nil {
		return nil, apperrors.NewDatabaseError("get draft", err)
	}
	return &draft, nil
}

// Replace overwrites the draft's title and section set in one transaction.
func (r *DraftRepository) Replace(ctx context.Context, userID, id, title string, sections []SectionInput) (*model.Draft, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var draft model.Draft
		err := tx.Where("id = ? AND user_id = ?", id, userID).First(&draft).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NewNotFoundError("draft")
		}
		if err != nil {
			return apperrors.NewDatabaseError("update draft", err)
		}
		if err := tx.Model(&draft).Update("title", title).Error; err != nil {
			return apperrors.NewDatabaseError("update draft", err)
		}
		if err := tx.Where("draft_id = ?", id).Delete(&model.Section{}).Error; err != nil {
			return apperrors.NewDatabaseError("replace sections", err)
		}
		for i, s := range sections {
			section := model.Section{
				ID:       uuid.New().String(),
				DraftID:  id,
				Position: i,
				Title:    s.Title,
				Content:  s.Content,
			}
			if err := tx.Create(&section).Error; err != nil {
				return apperrors.NewDatabaseError("replace sections", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, userID, id)
}

// Delete removes the draft and its sections.
func (r *DraftRepository) Delete(ctx context.Context, userID, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var draft model.Draft
		err := tx.Where("id = ? AND user_id = ?", id, userID).First(&draft).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NewNotFoundError("draft")
		}
		if err != nil {
			return apperrors.NewDatabaseError("delete draft", err)
		}
		if err := tx.Where("draft_id = ?", id).Delete(&model.Section{}).Error; err != nil {
			return apperrors.NewDatabaseError("delete sections", err)
		}
		if err := tx.Delete(&draft).Error; err != nil {
			return apperrors.NewDatabaseError("delete draft", err)
		}
		return nil
	})
}

func (r *DraftRepository) touchWriterSession(ctx context.Context, sessionID string) {
	r.db.WithContext(ctx).Model(&model.WriterSession{}).
		Where("id = ?", sessionID).Update("last_activity_at", time.Now())
}
