package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mysre-backend/domain/model"
	apperrors "mysre-backend/pkg/errors"
)

func TestSessionKindsAreSeparateTables(t *testing.T) {
	repo := NewSessionRepository(openTestDB(t))
	userID := uuid.New().String()

	brain, err := repo.Create(context.Background(), KindBrainstorming, userID, "Brain", "")
	require.NoError(t, err)
	_, err = repo.Create(context.Background(), KindWriter, userID, "Writer", "")
	require.NoError(t, err)

	brainList, err := repo.ListByUser(context.Background(), KindBrainstorming, userID)
	require.NoError(t, err)
	require.Len(t, brainList, 1)
	assert.Equal(t, "Brain", brainList[0].Title)

	// A brainstorming id does not resolve as a writer session.
	_, err = repo.GetByID(context.Background(), KindWriter, userID, brain.ID)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestUpdateSessionTouchesActivity(t *testing.T) {
	repo := NewSessionRepository(openTestDB(t))
	userID := uuid.New().String()

	session, err := repo.Create(context.Background(), KindBrainstorming, userID, "Before", "")
	require.NoError(t, err)

	title := "After"
	updated, err := repo.Update(context.Background(), KindBrainstorming, userID, session.ID, SessionUpdate{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "After", updated.Title)
	assert.False(t, updated.LastActivityAt.Before(session.LastActivityAt))
}

func TestDeleteSessionDetachesArticles(t *testing.T) {
	db := openTestDB(t)
	repo := NewSessionRepository(db)
	articles := NewArticleRepository(db)
	userID := uuid.New().String()

	session, err := repo.Create(context.Background(), KindBrainstorming, userID, "Container", "")
	require.NoError(t, err)
	article, err := articles.Create(context.Background(), userID, "Survivor", "", &session.ID)
	require.NoError(t, err)

	require.NoError(t, repo.Delete(context.Background(), KindBrainstorming, userID, session.ID))

	var survivor model.Article
	require.NoError(t, db.First(&survivor, "id = ?", article.ID).Error)
	assert.Nil(t, survivor.SessionID)
}

func TestDeleteSessionEnforcesOwnership(t *testing.T) {
	repo := NewSessionRepository(openTestDB(t))
	owner := uuid.New().String()

	session, err := repo.Create(context.Background(), KindWriter, owner, "Mine", "")
	require.NoError(t, err)

	err = repo.Delete(context.Background(), KindWriter, uuid.New().String(), session.ID)
	assert.True(t, apperrors.IsNotFound(err))
}
