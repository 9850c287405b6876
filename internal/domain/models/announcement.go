// internal/domain/models/announcement.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Attachment is a file stored in the object store and linked to an
// announcement. Key is the storage key (not a URL); URLs are generated at
// render time by the storage provider.
type Attachment struct {
	Name        string `bson:"name" json:"name"`
	Key         string `bson:"key" json:"key"`
	Size        int64  `bson:"size" json:"size"`
	ContentType string `bson:"content_type" json:"content_type"`
}

// Announcement is a post on a group's board. Each announcement has exactly
// one author and belongs to exactly one group; authorization for modifying
// it depends on group role and authorship, never on content.
type Announcement struct {
	ID       primitive.ObjectID `bson:"_id" json:"id"`
	GroupID  primitive.ObjectID `bson:"group_id" json:"group_id"`
	AuthorID primitive.ObjectID `bson:"author_id" json:"author_id"`

	Title string `bson:"title" json:"title"`
	// Body is sanitized HTML; raw user input never reaches this field.
	Body        string       `bson:"body" json:"body"`
	Category    string       `bson:"category" json:"category"`
	Tags        []string     `bson:"tags,omitempty" json:"tags,omitempty"`
	Attachments []Attachment `bson:"attachments,omitempty" json:"attachments,omitempty"`
	Pinned      bool         `bson:"pinned" json:"pinned"`

	// VoteCount is maintained by the vote-count worker; the votes
	// collection is authoritative.
	VoteCount int64 `bson:"vote_count" json:"vote_count"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// AnnouncementOwner is the point-lookup projection used by permission
// checks: who wrote it and which group it belongs to.
type AnnouncementOwner struct {
	AuthorID primitive.ObjectID `bson:"author_id"`
	GroupID  primitive.ObjectID `bson:"group_id"`
}
