package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"mysre-backend/domain/model"
	apperrors "mysre-backend/pkg/errors"
)

// GraphRepository persists nodes and edges. Ownership checks join through
// the owning article's user id.
type GraphRepository struct {
	db *gorm.DB
}

// NewGraphRepository creates a graph repository.
func NewGraphRepository(db *gorm.DB) *GraphRepository {
	return &GraphRepository{db: db}
}

func (r *GraphRepository) ownedNodes(ctx context.Context, userID string) *gorm.DB {
	return r.db.WithContext(ctx).Model(&model.Node{}).
		Joins("JOIN articles ON articles.id = nodes.article_id").
		Where("articles.user_id = ?", userID)
}

func (r *GraphRepository) ownedEdges(ctx context.Context, userID string) *gorm.DB {
	return r.db.WithContext(ctx).Model(&model.Edge{}).
		Joins("JOIN articles ON articles.id = edges.article_id").
		Where("articles.user_id = ?", userID)
}

// CreateNode inserts a node after verifying the article belongs to the user.
func (r *GraphRepository) CreateNode(ctx context.Context, userID string, node *model.Node) (*model.Node, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Article{}).
		Where("id = ? AND user_id = ?", node.ArticleID, userID).Count(&count).Error; err != nil {
		return nil, apperrors.NewDatabaseError("create node", err)
	}
	if count == 0 {
		return nil, apperrors.NewNotFoundError("article")
	}
	if node.ID == "" {
		node.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(node).Error; err != nil {
		return nil, apperrors.NewDatabaseError("create node", err)
	}
	return node, nil
}

// GetNode fetches one of the user's nodes.
func (r *GraphRepository) GetNode(ctx context.Context, userID, id string) (*model.Node, error) {
	var node model.Node
	err := r.ownedNodes(ctx, userID).Where("nodes.id = ?", id).First(&node).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NewNotFoundError("node")
	}
	if err != nil {
		return nil, apperrors.NewDatabaseError("get node", err)
	}
	return &node, nil
}

// NodeUpdate carries the mutable node fields; nil means unchanged.
type NodeUpdate struct {
	Label   *string
	Content *string
	X       *float64
	Y       *float64
}

// UpdateNode applies a partial update and returns the fresh row.
func (r *GraphRepository) UpdateNode(ctx context.Context, userID, id string, update NodeUpdate) (*model.Node, error) {
	node, err := r.GetNode(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	updates := map[string]any{}
	if update.Label != nil {
		updates["label"] = *update.Label
	}
	if update.Content != nil {
		updates["content"] = *update.Content
	}
	if update.X != nil {
		updates["x"] = *update.X
	}
	if update.Y != nil {
		updates["y"] = *update.Y
	}
	if len(updates) > 0 {
		if err := r.db.WithContext(ctx).Model(node).Updates(updates).Error; err != nil {
			return nil, apperrors.NewDatabaseError("update node", err)
		}
	}
	return node, nil
}

// DeleteNode removes a node and any edges touching it.
func (r *GraphRepository) DeleteNode(ctx context.Context, userID, id string) error {
	node, err := r.GetNode(ctx, userID, id)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("from_id = ? OR to_id = ?", id, id).Delete(&model.Edge{}).Error; err != nil {
			return apperrors.NewDatabaseError("delete node edges", err)
		}
		if err := tx.Delete(node).Error; err != nil {
			return apperrors.NewDatabaseError("delete node", err)
		}
		return nil
	})
}

// ArticleOfNode returns the owning article id for a node the user owns.
func (r *GraphRepository) ArticleOfNode(ctx context.Context, userID, nodeID string) (string, error) {
	node, err := r.GetNode(ctx, userID, nodeID)
	if err != nil {
		return "", err
	}
	return node.ArticleID, nil
}

// GetGraph loads the full node/edge set of one of the user's articles.
func (r *GraphRepository) GetGraph(ctx context.Context, userID, articleID string) ([]model.Node, []model.Edge, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Article{}).
		Where("id = ? AND user_id = ?", articleID, userID).Count(&count).Error; err != nil {
		return nil, nil, apperrors.NewDatabaseError("get graph", err)
	}
	if count == 0 {
		return nil, nil, apperrors.NewNotFoundError("article")
	}
	var nodes []model.Node
	if err := r.db.WithContext(ctx).Where("article_id = ?", articleID).Order("created_at").Find(&nodes).Error; err != nil {
		return nil, nil, apperrors.NewDatabaseError("get graph nodes", err)
	}
	var edges []model.Edge
	if err := r.db.WithContext(ctx).Where("article_id = ?", articleID).Order("created_at").Find(&edges).Error; err != nil {
		return nil, nil, apperrors.NewDatabaseError("get graph edges", err)
	}
	return nodes, edges, nil
}

// CreateEdge inserts an edge between two nodes of the same owned article.
func (r *GraphRepository) CreateEdge(ctx context.Context, userID string, edge *model.Edge) (*model.Edge, error) {
	var from model.Node
	err := r.ownedNodes(ctx, userID).Where("nodes.id = ?", edge.FromID).First(&from).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NewNotFoundError("source node")
	}
	if err != nil {
		return nil, apperrors.NewDatabaseError("create edge", err)
	}
	var to model.Node
	err = r.ownedNodes(ctx, userID).Where("nodes.id = ?", edge.ToID).First(&to).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NewNotFoundError("target node")
	}
	if err != nil {
		return nil, apperrors.NewDatabaseError("create edge", err)
	}
	if from.ArticleID != to.ArticleID {
		return nil, apperrors.NewValidationError("edge endpoints belong to different articles")
	}
	if edge.ID == "" {
		edge.ID = uuid.New().String()
	}
	edge.ArticleID = from.ArticleID
	if err := r.db.WithContext(ctx).Create(edge).Error; err != nil {
		return nil, apperrors.NewDatabaseError("create edge", err)
	}
	return edge, nil
}

// GetEdge fetches one of the user's edges by primary id.
func (r *GraphRepository) GetEdge(ctx context.Context, userID, id string) (*model.Edge, error) {
	var edge model.Edge
	err := r.ownedEdges(ctx, userID).Where("edges.id = ?", id).First(&edge).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NewNotFoundError("edge")
	}
	if err != nil {
		return nil, apperrors.NewDatabaseError("get edge", err)
	}
	return &edge, nil
}

// FindEdgeByEndpoints fetches an edge by its from/to/relation triple.
func (r *GraphRepository) FindEdgeByEndpoints(ctx context.Context, userID, fromID, toID, relation string) (*model.Edge, error) {
	var edge model.Edge
	err := r.ownedEdges(ctx, userID).
		Where("edges.from_id = ? AND edges.to_id = ? AND edges.relation = ?", fromID, toID, relation).
		First(&edge).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NewNotFoundError("edge")
	}
	if err != nil {
		return nil, apperrors.NewDatabaseError("find edge", err)
	}
	return &edge, nil
}

// DeleteEdge removes an edge the user owns.
func (r *GraphRepository) DeleteEdge(ctx context.Context, userID, id string) error {
	edge, err := r.GetEdge(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Delete(edge).Error; err != nil {
		return apperrors.NewDatabaseError("delete edge", err)
	}
	return nil
}
