package engine

import (
	"context"
	"fmt"

	"github.com/friendo-social/backend/internal/keylock"
	"github.com/friendo-social/backend/internal/models"
	"github.com/friendo-social/backend/internal/repositories"
)

// ReactionEngine keeps the at-most-one-reaction-per-user-per-post rule and
// the count==len(list) tally invariant. Mutations for the same (user, post)
// pair are serialized through a keyed mutex so two concurrent sends cannot
// both pass the already-reacted check.
type ReactionEngine struct {
	posts repositories.PostRepository
	locks *keylock.KeyLock
}

// NewReactionEngine creates a new ReactionEngine
func NewReactionEngine(posts repositories.PostRepository, locks *keylock.KeyLock) *ReactionEngine {
	return &ReactionEngine{posts: posts, locks: locks}
}

func reactionKey(userID uint, postID string) string {
	return fmt.Sprintf("reaction:%d:%s", userID, postID)
}

// reactionOf scans the tally for the user's reaction, thumbs up first
func reactionOf(tally models.ReactionTally, userID uint) string {
	for _, id := range tally.ThumbsUps {
		if id == userID {
			return models.ReactionThumbsUp
		}
	}
	for _, id := range tally.Hearts {
		if id == userID {
			return models.ReactionHeart
		}
	}
	return models.ReactionNone
}

// GetReaction reports the user's current reaction kind on a post:
// "thumbsUp", "heart" or "none".
func (e *ReactionEngine) GetReaction(ctx context.Context, userID uint, postID string) (string, error) {
	post, err := e.posts.GetPostByID(ctx, postID)
	if err != nil {
		return "", err
	}
	return reactionOf(post.ReactionTally, userID), nil
}

// SendReaction records a reaction of the given kind. It fails with
// ErrAlreadyReacted when the user already holds any reaction on the post,
// and with ErrInvalidReaction for an unknown kind. The matching list and
// count are updated together and persisted in one write; the other kind is
// left untouched.
func (e *ReactionEngine) SendReaction(ctx context.Context, userID uint, postID, kind string) error {
	if kind != models.ReactionThumbsUp && kind != models.ReactionHeart {
		return ErrInvalidReaction
	}

	key := reactionKey(userID, postID)
	e.locks.Lock(key)
	defer e.locks.Unlock(key)

	post, err := e.posts.GetPostByID(ctx, postID)
	if err != nil {
		return err
	}

	if reactionOf(post.ReactionTally, userID) != models.ReactionNone {
		return ErrAlreadyReacted
	}

	tally := post.ReactionTally
	switch kind {
	case models.ReactionThumbsUp:
		tally.ThumbsUps = append(tally.ThumbsUps, userID)
		tally.ThumbsUpCount = len(tally.ThumbsUps)
	case models.ReactionHeart:
		tally.Hearts = append(tally.Hearts, userID)
		tally.HeartCount = len(tally.Hearts)
	}

	return e.posts.UpdateReactionTally(ctx, postID, tally)
}

// UndoReaction removes the user's current reaction. It fails with
// ErrNoReaction when the user has none; removal is search-then-guard, so a
// missing entry can never turn into an out-of-range splice.
func (e *ReactionEngine) UndoReaction(ctx context.Context, userID uint, postID string) error {
	key := reactionKey(userID, postID)
	e.locks.Lock(key)
	defer e.locks.Unlock(key)

	post, err := e.posts.GetPostByID(ctx, postID)
	if err != nil {
		return err
	}

	tally := post.ReactionTally
	switch reactionOf(tally, userID) {
	case models.ReactionThumbsUp:
		tally.ThumbsUps = removeUser(tally.ThumbsUps, userID)
		tally.ThumbsUpCount = len(tally.ThumbsUps)
	case models.ReactionHeart:
		tally.Hearts = removeUser(tally.Hearts, userID)
		tally.HeartCount = len(tally.Hearts)
	default:
		return ErrNoReaction
	}

	return e.posts.UpdateReactionTally(ctx, postID, tally)
}

// removeUser drops the first occurrence of userID from the list
func removeUser(list []uint, userID uint) []uint {
	out := make([]uint, 0, len(list))
	removed := false
	for _, id := range list {
		if !removed && id == userID {
			removed = true
			continue
		}
		out = append(out, id)
	}
	return out
}
