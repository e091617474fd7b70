// Package services holds the thin application layer between handlers and
// repositories: identifier resolution, the delete cascade entry point and
// the upload-progress broadcaster.
package services

import (
	"context"

	"go.uber.org/zap"

	"mysre-backend/domain/model"
	"mysre-backend/infrastructure/persistence/repository"
	apperrors "mysre-backend/pkg/errors"
)

// GraphService resolves ambiguous graph identifiers and drives the article
// delete cascade.
type GraphService struct {
	articles *repository.ArticleRepository
	graph    *repository.GraphRepository
	logger   *zap.Logger
}

// NewGraphService creates a graph service.
func NewGraphService(articles *repository.ArticleRepository, graph *repository.GraphRepository, logger *zap.Logger) *GraphService {
	return &GraphService{articles: articles, graph: graph, logger: logger}
}

// GraphTarget is the tagged result of resolving a node-or-article id.
type GraphTarget struct {
	Kind    GraphTargetKind
	Node    *model.Node
	Article *model.Article
}

// ResolveTarget probes the more specific interpretation first: node id, then
// article id. Not-found only when neither matches.
func (s *GraphService) ResolveTarget(ctx context.Context, userID, raw string) (*GraphTarget, error) {
	node, err := s.graph.GetNode(ctx, userID, raw)
	if err == nil {
		return &GraphTarget{Kind: TargetNode, Node: node}, nil
	}
	if !apperrors.IsNotFound(err) {
		return nil, err
	}
	article, err := s.articles.GetByID(ctx, userID, raw)
	if err == nil {
		return &GraphTarget{Kind: TargetArticle, Article: article}, nil
	}
	if !apperrors.IsNotFound(err) {
		return nil, err
	}
	return nil, apperrors.NewNotFoundError("node or article")
}

// DeleteArticleByRef accepts a node id or an article id and cascade-deletes
// the owning article. The existence probe and the delete are separate
// statements; a concurrent delete between them surfaces as 404 from the
// delete transaction, which is the accepted behavior.
func (s *GraphService) DeleteArticleByRef(ctx context.Context, userID, raw string) (string, error) {
	articleID := raw
	if nodeArticle, err := s.graph.ArticleOfNode(ctx, userID, raw); err == nil {
		articleID = nodeArticle
	} else if !apperrors.IsNotFound(err) {
		return "", err
	}
	if err := s.articles.DeleteCascade(ctx, userID, articleID); err != nil {
		return "", err
	}
	s.logger.Info("article deleted", zap.String("articleId", articleID), zap.String("userId", userID))
	return articleID, nil
}

// LookupEdge resolves a raw edge reference: composite endpoints first, then
// direct id.
func (s *GraphService) LookupEdge(ctx context.Context, userID, raw string) (*model.Edge, error) {
	ref := ParseEdgeRef(raw)
	if ref.Composite {
		edge, err := s.graph.FindEdgeByEndpoints(ctx, userID, ref.FromID, ref.ToID, ref.Relation)
		if err == nil {
			return edge, nil
		}
		if !apperrors.IsNotFound(err) {
			return nil, err
		}
	}
	return s.graph.GetEdge(ctx, userID, ref.ID)
}

// DeleteEdgeByRef deletes the edge found by LookupEdge.
func (s *GraphService) DeleteEdgeByRef(ctx context.Context, userID, raw string) error {
	edge, err := s.LookupEdge(ctx, userID, raw)
	if err != nil {
		return err
	}
	return s.graph.DeleteEdge(ctx, userID, edge.ID)
}
