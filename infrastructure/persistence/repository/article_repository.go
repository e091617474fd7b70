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

// ArticleRepository persists articles and performs the cascade delete that
// removes a whole graph.
type ArticleRepository struct {
	db *gorm.DB
}

// NewArticleRepository creates an article repository.
func NewArticleRepository(db *gorm.DB) *ArticleRepository {
	return &ArticleRepository{db: db}
}

// Create inserts an article owned by userID.
func (r *ArticleRepository) Create(ctx context.Context, userID, title, content string, sessionID *string) (*model.Article, error) {
	article := model.Article{
		ID:        uuid.New().String(),
		UserID:    userID,
		SessionID: sessionID,
		Title:     title,
		Content:   content,
	}
	if err := r.db.WithContext(ctx).Create(&article).Error; err != nil {
		return nil, apperrors.NewDatabaseError("create article", err)
	}
	if sessionID != nil {
		r.touchSession(ctx, *sessionID)
	}
	return &article, nil
}

// ListByUser returns the user's articles, newest first, optionally filtered
// by brainstorming session.
func (r *ArticleRepository) ListByUser(ctx context.Context, userID string, sessionID *string) ([]model.Article, error) {
	query := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("updated_at DESC")
	if sessionID != nil {
		query = query.Where("session_id = ?", *sessionID)
	}
	var articles []model.Article
	if err := query.Find(&articles).Error; err != nil {
		return nil, apperrors.NewDatabaseError("list articles", err)
	}
	return articles, nil
}

// GetByID fetches one of the user's articles.
func (r *ArticleRepository) GetByID(ctx context.Context, userID, id string) (*model.Article, error) {
	var article model.Article
	err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&article).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NewNotFoundError("article")
	}
	if err != nil {
		return nil, apperrors.NewDatabaseError("get article", err)
	}
	return &article, nil
}

// ArticleUpdate carries the mutable article fields; nil means unchanged.
type ArticleUpdate struct {
	Title   *string
	Content *string
}

// Update applies a partial update and returns the fresh row.
func (r *ArticleRepository) Update(ctx context.Context, userID, id string, update ArticleUpdate) (*model.Article, error) {
	updates := map[string]any{}
	if update.Title != nil {
		updates["title"] = *update.Title
	}
	if update.Content != nil {
		updates["content"] = *update.Content
	}
	if len(updates) > 0 {
		result := r.db.WithContext(ctx).Model(&model.Article{}).
			Where("id = ? AND user_id = ?", id, userID).Updates(updates)
		if result.Error != nil {
			return nil, apperrors.NewDatabaseError("update article", result.Error)
		}
		if result.RowsAffected == 0 {
			return nil, apperrors.NewNotFoundError("article")
		}
	}
	return r.GetByID(ctx, userID, id)
}

// DeleteCascade removes the article with its nodes and edges in one
// transaction. The caller resolves node-id-vs-article-id ambiguity first.
func (r *ArticleRepository) DeleteCascade(ctx context.Context, userID, articleID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var article model.Article
		err := tx.Where("id = ? AND user_id = ?", articleID, userID).First(&article).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NewNotFoundError("article")
		}
		if err != nil {
			return apperrors.NewDatabaseError("delete article", err)
		}
		if err := tx.Where("article_id = ?", articleID).Delete(&model.Edge{}).Error; err != nil {
			return apperrors.NewDatabaseError("delete edges", err)
		}
		if err := tx.Where("article_id = ?", articleID).Delete(&model.Node{}).Error; err != nil {
			return apperrors.NewDatabaseError("delete nodes", err)
		}
		if err := tx.Delete(&article).Error; err != nil {
			return apperrors.NewDatabaseError("delete article", err)
		}
		return nil
	})
}

// OwnerOfArticle returns the article's user id, or a not-found error.
func (r *ArticleRepository) OwnerOfArticle(ctx context.Context, id string) (string, error) {
	var article model.Article
	err := r.db.WithContext(ctx).Select("user_id").Where("id = ?", id).First(&article).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", apperrors.NewNotFoundError("article")
	}
	if err != nil {
		return "", apperrors.NewDatabaseError("lookup article owner", err)
	}
	return article.UserID, nil
}

func (r *ArticleRepository) touchSession(ctx context.Context, sessionID string) {
	// Best effort; a stale last-activity timestamp is not worth failing the
	// write that triggered it.
	r.db.WithContext(ctx).Model(&model.BrainstormingSession{}).
		Where("id = ?", sessionID).Update("last_activity_at", time.Now())
}
