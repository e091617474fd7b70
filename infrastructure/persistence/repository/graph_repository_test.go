package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"mysre-backend/domain/model"
	apperrors "mysre-backend/pkg/errors"
)

func seedArticle(t *testing.T, db *gorm.DB, userID string) model.Article {
	t.Helper()
	article := model.Article{ID: uuid.New().String(), UserID: userID, Title: "Paper"}
	require.NoError(t, db.Create(&article).Error)
	return article
}

func TestCreateNodeRequiresOwnedArticle(t *testing.T) {
	db := openTestDB(t)
	repo := NewGraphRepository(db)
	owner := uuid.New().String()
	article := seedArticle(t, db, owner)

	_, err := repo.CreateNode(context.Background(), uuid.New().String(), &model.Node{ArticleID: article.ID, Label: "x"})
	assert.True(t, apperrors.IsNotFound(err))

	node, err := repo.CreateNode(context.Background(), owner, &model.Node{ArticleID: article.ID, Label: "x"})
	require.NoError(t, err)
	assert.NotEmpty(t, node.ID)
}

func TestCreateEdgeRejectsCrossArticleEndpoints(t *testing.T) {
	db := openTestDB(t)
	repo := NewGraphRepository(db)
	userID := uuid.New().String()
	a1 := seedArticle(t, db, userID)
	a2 := seedArticle(t, db, userID)

	n1, err := repo.CreateNode(context.Background(), userID, &model.Node{ArticleID: a1.ID, Label: "a"})
	require.NoError(t, err)
	n2, err := repo.CreateNode(context.Background(), userID, &model.Node{ArticleID: a2.ID, Label: "b"})
	require.NoError(t, err)

	_, err = repo.CreateEdge(context.Background(), userID, &model.Edge{FromID: n1.ID, ToID: n2.ID, Relation: "links"})
	require.Error(t, err)

	n3, err := repo.CreateNode(context.Background(), userID, &model.Node{ArticleID: a1.ID, Label: "c"})
	require.NoError(t, err)
	edge, err := repo.CreateEdge(context.Background(), userID, &model.Edge{FromID: n1.ID, ToID: n3.ID, Relation: "links"})
	require.NoError(t, err)
	assert.Equal(t, a1.ID, edge.ArticleID)
}

func TestDeleteNodeRemovesTouchingEdges(t *testing.T) {
	db := openTestDB(t)
	repo := NewGraphRepository(db)
	userID := uuid.New().String()
	article := seedArticle(t, db, userID)

	n1, err := repo.CreateNode(context.Background(), userID, &model.Node{ArticleID: article.ID, Label: "a"})
	require.NoError(t, err)
	n2, err := repo.CreateNode(context.Background(), userID, &model.Node{ArticleID: article.ID, Label: "b"})
	require.NoError(t, err)
	n3, err := repo.CreateNode(context.Background(), userID, &model.Node{ArticleID: article.ID, Label: "c"})
	require.NoError(t, err)

	_, err = repo.CreateEdge(context.Background(), userID, &model.Edge{FromID: n1.ID, ToID: n2.ID, Relation: "r"})
	require.NoError(t, err)
	keep, err := repo.CreateEdge(context.Background(), userID, &model.Edge{FromID: n2.ID, ToID: n3.ID, Relation: "r"})
	require.NoError(t, err)

	require.NoError(t, repo.DeleteNode(context.Background(), userID, n1.ID))

	var edges []model.Edge
	require.NoError(t, db.Find(&edges).Error)
	require.Len(t, edges, 1)
	assert.Equal(t, keep.ID, edges[0].ID)
}

func TestGetGraphReturnsOwnedArticleOnly(t *testing.T) {
	db := openTestDB(t)
	repo := NewGraphRepository(db)
	owner := uuid.New().String()
	article := seedArticle(t, db, owner)

	_, err := repo.CreateNode(context.Background(), owner, &model.Node{ArticleID: article.ID, Label: "a"})
	require.NoError(t, err)

	nodes, edges, err := repo.GetGraph(context.Background(), owner, article.ID)
	require.NoError(t, err)
	assert.Len(t, nodes, 1)
	assert.Empty(t, edges)

	_, _, err = repo.GetGraph(context.Background(), uuid.New().String(), article.ID)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestFindEdgeByEndpoints(t *testing.T) {
	db := openTestDB(t)
	repo := NewGraphRepository(db)
	userID := uuid.New().String()
	article := seedArticle(t, db, userID)

	n1, err := repo.CreateNode(context.Background(), userID, &model.Node{ArticleID: article.ID, Label: "a"})
	require.NoError(t, err)
	n2, err := repo.CreateNode(context.Background(), userID, &model.Node{ArticleID: article.ID, Label: "b"})
	require.NoError(t, err)
	edge, err := repo.CreateEdge(context.Background(), userID, &model.Edge{FromID: n1.ID, ToID: n2.ID, Relation: "supports"})
	require.NoError(t, err)

	found, err := repo.FindEdgeByEndpoints(context.Background(), userID, n1.ID, n2.ID, "supports")
	require.NoError(t, err)
	assert.Equal(t, edge.ID, found.ID)

	_, err = repo.FindEdgeByEndpoints(context.Background(), userID, n1.ID, n2.ID, "refutes")
	assert.True(t, apperrors.IsNotFound(err))
}
