package services

import "strings"

// EdgeRef is the parsed form of a raw edge path parameter. Clients may
// address an edge either by its row id or by the composite
// "fromId-toId-relation" string; the composite reading is attempted first.
type EdgeRef struct {
	Composite bool
	ID        string
	FromID    string
	ToID      string
	Relation  string
}

// ParseEdgeRef interprets raw once, before any lookups. A raw value splitting
// into exactly three non-empty parts reads as composite; anything else is a
// direct id. Dash-bearing ids (UUIDs split into five parts) therefore fall
// through to the direct reading.
func ParseEdgeRef(raw string) EdgeRef {
	parts := strings.Split(raw, "-")
	if len(parts) == 3 && parts[0] != "" && parts[1] != "" && parts[2] != "" {
		return EdgeRef{Composite: true, ID: raw, FromID: parts[0], ToID: parts[1], Relation: parts[2]}
	}
	return EdgeRef{ID: raw}
}

// GraphTargetKind tags what a raw node-or-article identifier resolved to.
type GraphTargetKind string

const (
	TargetNode    GraphTargetKind = "node"
	TargetArticle GraphTargetKind = "article"
)
