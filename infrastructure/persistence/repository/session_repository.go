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

// SessionKind distinguishes the two per-user container tables.
type SessionKind string

const (
	KindBrainstorming SessionKind = "brainstorming"
	KindWriter        SessionKind = "writer"
)

// SessionRepository persists both brainstorming and writer sessions; the two
// tables share a shape, so a kind switch picks the model.
type SessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository creates a session repository.
func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// SessionRecord is the kind-independent view handed to handlers.
type SessionRecord struct {
	ID             string    `json:"id"`
	UserID         string    `json:"userId"`
	Title          string    `json:"title"`
	CoverImage     string    `json:"coverImage"`
	LastActivityAt time.Time `json:"lastActivityAt"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func brainstormingRecord(s model.BrainstormingSession) SessionRecord {
	return SessionRecord{ID: s.ID, UserID: s.UserID, Title: s.Title, CoverImage: s.CoverImage,
		LastActivityAt: s.LastActivityAt, CreatedAt: s.CreatedAt, UpdatedAt: s.UpdatedAt}
}

func writerRecord(s model.WriterSession) SessionRecord {
	return SessionRecord{ID: s.ID, UserID: s.UserID, Title: s.Title, CoverImage: s.CoverImage,
		LastActivityAt: s.LastActivityAt, CreatedAt: s.CreatedAt, UpdatedAt: s.UpdatedAt}
}

// Create inserts a session of the given kind.
func (r *SessionRepository) Create(ctx context.Context, kind SessionKind, userID, title, coverImage string) (*SessionRecord, error) {
	now := time.Now()
	id := uuid.New().String()
	var record SessionRecord
	var err error
	switch kind {
	case KindWriter:
		session := model.WriterSession{ID: id, UserID: userID, Title: title, CoverImage: coverImage, LastActivityAt: now}
		err = r.db.WithContext(ctx).Create(&session).Error
		record = writerRecord(session)
	default:
		session := model.BrainstormingSession{ID: id, UserID: userID, Title: title, CoverImage: coverImage, LastActivityAt: now}
		err = r.db.WithContext(ctx).Create(&session).Error
		record = brainstormingRecord(session)
	}
	if err != nil {
		return nil, apperrors.NewDatabaseError("create session", err)
	}
	return &record, nil
}

// ListByUser returns the user's sessions, most recently active first.
func (r *SessionRepository) ListByUser(ctx context.Context, kind SessionKind, userID string) ([]SessionRecord, error) {
	records := []SessionRecord{}
	switch kind {
	case KindWriter:
		var sessions []model.WriterSession
		if err := r.db.WithContext(ctx).Where("user_id = ?", userID).
			Order("last_activity_at DESC").Find(&sessions).Error; err != nil {
			return nil, apperrors.NewDatabaseError("list sessions", err)
		}
		for _, s := range sessions {
			records = append(records, writerRecord(s))
		}
	default:
		var sessions []model.BrainstormingSession
		if err := r.db.WithContext(ctx).Where("user_id = ?", userID).
			Order("last_activity_at DESC").Find(&sessions).Error; err != nil {
			return nil, apperrors.NewDatabaseError("list sessions", err)
		}
		for _, s := range sessions {
			records = append(records, brainstormingRecord(s))
		}
	}
	return records, nil
}

// GetByID fetches one of the user's sessions.
func (r *SessionRepository) GetByID(ctx context.Context, kind SessionKind, userID, id string) (*SessionRecord, error) {
	var record SessionRecord
	var err error
	switch kind {
	case KindWriter:
		var session model.WriterSession
		err = r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&session).Error
		record = writerRecord(session)
	default:
		var session model.BrainstormingSession
		err = r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&session).Error
		record = brainstormingRecord(session)
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NewNotFoundError("session")
	}
	if err != nil {
		return nil, apperrors.NewDatabaseError("get session", err)
	}
	return &record, nil
}

// SessionUpdate carries the mutable session fields; nil means unchanged.
type SessionUpdate struct {
	Title      *string
	CoverImage *string
}

// Update applies a partial update, touches the activity timestamp and
// returns the fresh record.
func (r *SessionRepository) Update(ctx context.Context, kind SessionKind, userID, id string, update SessionUpdate) (*SessionRecord, error) {
	updates := map[string]any{"last_activity_at": time.Now()}
	if update.Title != nil {
		updates["title"] = *update.Title
	}
	if update.CoverImage != nil {
		updates["cover_image"] = *update.CoverImage
	}
	var result *gorm.DB
	switch kind {
	case KindWriter:
		result = r.db.WithContext(ctx).Model(&model.WriterSession{}).
			Where("id = ? AND user_id = ?", id, userID).Updates(updates)
	default:
		result = r.db.WithContext(ctx).Model(&model.BrainstormingSession{}).
			Where("id = ? AND user_id = ?", id, userID).Updates(updates)
	}
	if result.Error != nil {
		return nil, apperrors.NewDatabaseError("update session", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, apperrors.NewNotFoundError("session")
	}
	return r.GetByID(ctx, kind, userID, id)
}

// Delete removes one of the user's sessions. Contained articles or drafts
// keep existing with a dangling session id cleared.
func (r *SessionRepository) Delete(ctx context.Context, kind SessionKind, userID, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var result *gorm.DB
		switch kind {
		case KindWriter:
			if err := tx.Model(&model.Draft{}).Where("session_id = ?", id).
				Update("session_id", nil).Error; err != nil {
				return apperrors.NewDatabaseError("detach drafts", err)
			}
			result = tx.Where("id = ? AND user_id = ?", id, userID).Delete(&model.WriterSession{})
		default:
			if err := tx.Model(&model.Article{}).Where("session_id = ?", id).
				Update("session_id", nil).Error; err != nil {
				return apperrors.NewDatabaseError("detach articles", err)
			}
			result = tx.Where("id = ? AND user_id = ?", id, userID).Delete(&model.BrainstormingSession{})
		}
		if result.Error != nil {
			return apperrors.NewDatabaseError("delete session", result.Error)
		}
		if result.RowsAffected == 0 {
			return apperrors.NewNotFoundError("session")
		}
		return nil
	})
}
