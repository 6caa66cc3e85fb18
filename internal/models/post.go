package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Reaction kinds. A user holds at most one reaction of one kind per post.
const (
	ReactionThumbsUp = "thumbsUp"
	ReactionHeart    = "heart"
	ReactionNone     = "none"
)

// ReactionTally is the per-post reaction state. Each count must equal the
// length of its backing list; the whole tally is persisted in one write.
type ReactionTally struct {
	ThumbsUpCount int    `json:"thumbsUpCount" bson:"thumbs_up_count"`
	ThumbsUps     []uint `json:"thumbsUps" bson:"thumbs_ups"`
	HeartCount    int    `json:"heartCount" bson:"heart_count"`
	Hearts        []uint `json:"hearts" bson:"hearts"`
}

// Post is a social media post stored in MongoDB with its reaction tally and
// comment list embedded.
type Post struct {
	ID            primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	UserID        uint               `json:"userId" bson:"user_id"`
	Text          string             `json:"text" bson:"text"`
	ReactionTally `bson:",inline"`
	Comments      []Comment `json:"comments" bson:"comments"`
	CreatedAt     time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt     time.Time `json:"updatedAt" bson:"updated_at"`
}

// Comment is owned by exactly one post and lives inside its document
type Comment struct {
	ID        primitive.ObjectID `json:"id" bson:"_id"`
	UserID    uint               `json:"userId" bson:"user_id"`
	Text      string             `json:"text" bson:"text"`
	CreatedAt time.Time          `json:"createdAt" bson:"created_at"`
}

// CreatePostRequest defines the request body for creating a new post
type CreatePostRequest struct {
	Text string `json:"text" validate:"required,min=1,max=1000"`
}

// DeletePostRequest defines the request body for deleting a post
type DeletePostRequest struct {
	PostID string `json:"postId" validate:"required"`
}

// SendReactionRequest defines the request body for reacting to a post
type SendReactionRequest struct {
	PostID string `json:"postId" validate:"required"`
	Type   string `json:"type" validate:"required"`
}

// UndoReactionRequest defines the request body for removing a reaction
type UndoReactionRequest struct {
	PostID string `json:"postId" validate:"required"`
}

// CreateCommentRequest defines the request body for commenting on a post
type CreateCommentRequest struct {
	PostID string `json:"postId" validate:"required"`
	Text   string `json:"text" validate:"required,min=1,max=500"`
}

// DeleteCommentRequest defines the request body for deleting a comment
type DeleteCommentRequest struct {
	PostID    string `json:"postId" validate:"required"`
	CommentID string `json:"commentId" validate:"required"`
}
