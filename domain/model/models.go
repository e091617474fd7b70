// Package model defines the relational schema shared by every app surface
// (brain, writer, profile). All tables are plain gorm models; ownership is
// expressed through user-id foreign keys and enforced in the repositories.
package model

import (
	"time"

	"gorm.io/datatypes"
)

// Roles assigned to users. New accounts default to RoleUser.
const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

// User mirrors the auth provider's identity. A row is created on first
// sign-in; the id is the provider's UUID, not generated locally.
type User struct {
	ID        string         `gorm:"type:uuid;primaryKey" json:"id"`
	Email     string         `gorm:"uniqueIndex;not null" json:"email"`
	Name      string         `json:"name"`
	Role      string         `gorm:"not null;default:USER" json:"role"`
	Group     string         `json:"group"`
	AvatarURL string         `json:"avatarUrl"`
	Verified  bool           `gorm:"default:false" json:"verified"`
	Settings  datatypes.JSON `gorm:"type:jsonb" json:"settings,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// BrainstormingSession groups articles created in one brain session.
type BrainstormingSession struct {
	ID             string    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID         string    `gorm:"type:uuid;index;not null" json:"userId"`
	Title          string    `gorm:"not null" json:"title"`
	CoverImage     string    `json:"coverImage"`
	LastActivityAt time.Time `json:"lastActivityAt"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`

	Articles []Article `gorm:"foreignKey:SessionID" json:"articles,omitempty"`
}

// WriterSession groups drafts the same way brainstorming sessions group
// articles.
type WriterSession struct {
	ID             string    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID         string    `gorm:"type:uuid;index;not null" json:"userId"`
	Title          string    `gorm:"not null" json:"title"`
	CoverImage     string    `json:"coverImage"`
	LastActivityAt time.Time `json:"lastActivityAt"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`

	Drafts []Draft `gorm:"foreignKey:SessionID" json:"drafts,omitempty"`
}

// Article is the root of a knowledge graph. Deleting an article removes its
// nodes and edges.
type Article struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    string    `gorm:"type:uuid;index;not null" json:"userId"`
	SessionID *string   `gorm:"type:uuid;index" json:"sessionId,omitempty"`
	Title     string    `gorm:"not null" json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Nodes []Node `gorm:"foreignKey:ArticleID;constraint:OnDelete:CASCADE" json:"nodes,omitempty"`
	Edges []Edge `gorm:"foreignKey:ArticleID;constraint:OnDelete:CASCADE" json:"edges,omitempty"`
}

// Node is a graph vertex belonging to an article.
type Node struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	ArticleID string    `gorm:"type:uuid;index;not null" json:"articleId"`
	Label     string    `gorm:"not null" json:"label"`
	Content   string    `json:"content"`
	X         float64   `json:"x"`
	Y         float64   `json:"y"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Edge connects two nodes of the same article with a relation label.
type Edge struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	ArticleID string    `gorm:"type:uuid;index;not null" json:"articleId"`
	FromID    string    `gorm:"type:uuid;index;not null" json:"fromId"`
	ToID      string    `gorm:"type:uuid;index;not null" json:"toId"`
	Relation  string    `gorm:"not null" json:"relation"`
	CreatedAt time.Time `json:"createdAt"`
}

// Draft is a writer document; its sections are created together with the
// draft in one nested write and ordered by Position.
type Draft struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    string    `gorm:"type:uuid;index;not null" json:"userId"`
	SessionID *string   `gorm:"type:uuid;index" json:"sessionId,omitempty"`
	Title     string    `gorm:"not null" json:"title"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Sections []Section `gorm:"foreignKey:DraftID;constraint:OnDelete:CASCADE" json:"sections,omitempty"`
}

// Section is one ordered unit of a draft.
type Section struct {
	ID       string `gorm:"type:uuid;primaryKey" json:"id"`
	DraftID  string `gorm:"type:uuid;index;not null" json:"draftId"`
	Position int    `gorm:"not null" json:"position"`
	Title    string `json:"title"`
	Content  string `json:"content"`
}

// Annotation is a user note anchored to an article.
type Annotation struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    string    `gorm:"type:uuid;index;not null" json:"userId"`
	ArticleID string    `gorm:"type:uuid;index;not null" json:"articleId"`
	Target    string    `json:"target"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Assignment is a dashboard task item.
type Assignment struct {
	ID          string     `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      string     `gorm:"type:uuid;index;not null" json:"userId"`
	Title       string     `gorm:"not null" json:"title"`
	Description string     `json:"description"`
	Status      string     `gorm:"not null;default:OPEN" json:"status"`
	DueAt       *time.Time `json:"dueAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// AnalyticsEvent records a client-side event with a free-form payload.
type AnalyticsEvent struct {
	ID        string         `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    string         `gorm:"type:uuid;index;not null" json:"userId"`
	Event     string         `gorm:"index;not null" json:"event"`
	Payload   datatypes.JSON `gorm:"type:jsonb" json:"payload,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}

// GazeEvent is a single eye-tracking sample; clients upload them in batches.
type GazeEvent struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     string    `gorm:"type:uuid;index;not null" json:"userId"`
	SessionID  *string   `gorm:"type:uuid;index" json:"sessionId,omitempty"`
	X          float64   `json:"x"`
	Y          float64   `json:"y"`
	RecordedAt time.Time `gorm:"index" json:"recordedAt"`
}

// All returns every model for AutoMigrate, dependency-ordered.
func All() []any {
	return []any{
		&User{},
		&BrainstormingSession{},
		&WriterSession{},
		&Article{},
		&Node{},
		&Edge{},
		&Draft{},
		&Section{},
		&Annotation{},
		&Assignment{},
		&AnalyticsEvent{},
		&GazeEvent{},
	}
}
