package repositories

import (
	"errors"
	"time"

	"github.com/friendo-social/backend/internal/models"
	"gorm.io/gorm"
)

// FriendshipRepository defines the interface for friend-link data
// operations. Operations touching both directions of a pair are atomic.
// GetLink returns (nil, nil) when no link exists.
type FriendshipRepository interface {
	GetLink(ownerID, counterpartID uint) (*models.FriendLink, error)
	GetLinksByOwner(ownerID uint) ([]models.FriendLink, error)
	CreateRequestLinks(senderID, receiverID uint, at time.Time) error
	AcceptLinks(accepterID, senderID uint, since time.Time) error
	DeleteLinks(userA, userB uint) error
	DeleteLink(ownerID, counterpartID uint) error
}

// PostgresFriendshipRepository implements FriendshipRepository for PostgreSQL
type PostgresFriendshipRepository struct {
	db *gorm.DB
}

// NewPostgresFriendshipRepository creates a new PostgresFriendshipRepository
func NewPostgresFriendshipRepository(db *gorm.DB) *PostgresFriendshipRepository {
	return &PostgresFriendshipRepository{db: db}
}

// GetLink retrieves the link owned by ownerID pointing at counterpartID
func (r *PostgresFriendshipRepository) GetLink(ownerID, counterpartID uint) (*models.FriendLink, error) {
	var link models.FriendLink
	err := r.db.Where("owner_id = ? AND counterpart_id = ?", ownerID, counterpartID).First(&link).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &link, nil
}

// GetLinksByOwner retrieves all links owned by a user
func (r *PostgresFriendshipRepository) GetLinksByOwner(ownerID uint) ([]models.FriendLink, error) {
	var links []models.FriendLink
	if err := r.db.Where("owner_id = ?", ownerID).Find(&links).Error; err != nil {
		return nil, err
	}
	return links, nil
}

// CreateRequestLinks writes the sent/pending pair for a new friend request
// in one transaction. The unique (owner, counterpart) index rejects a
// concurrent duplicate that slipped past the engine's existence check.
func (r *PostgresFriendshipRepository) CreateRequestLinks(senderID, receiverID uint, at time.Time) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&models.FriendLink{
			OwnerID:       senderID,
			CounterpartID: receiverID,
			Bucket:        models.BucketSent,
			Since:         at,
		}).Error; err != nil {
			return err
		}
		return tx.Create(&models.FriendLink{
			OwnerID:       receiverID,
			CounterpartID: senderID,
			Bucket:        models.BucketPending,
			Since:         at,
		}).Error
	})
}

// AcceptLinks promotes a requested pair to accepted in one transaction:
// both old links are removed and both accepted links carry the same Since.
func (r *PostgresFriendshipRepository) AcceptLinks(accepterID, senderID uint, since time.Time) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := deleteLinksTx(tx, accepterID, senderID); err != nil {
			return err
		}
		if err := tx.Create(&models.FriendLink{
			OwnerID:       accepterID,
			CounterpartID: senderID,
			Bucket:        models.BucketAccepted,
			Since:         since,
		}).Error; err != nil {
			return err
		}
		return tx.Create(&models.FriendLink{
			OwnerID:       senderID,
			CounterpartID: accepterID,
			Bucket:        models.BucketAccepted,
			Since:         since,
		}).Error
	})
}

// DeleteLinks removes both directions between two users in one transaction
func (r *PostgresFriendshipRepository) DeleteLinks(userA, userB uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return deleteLinksTx(tx, userA, userB)
	})
}

// DeleteLink removes a single direction, used to drop a stale pending entry
// whose counterpart side is already gone
func (r *PostgresFriendshipRepository) DeleteLink(ownerID, counterpartID uint) error {
	return r.db.Where("owner_id = ? AND counterpart_id = ?", ownerID, counterpartID).
		Delete(&models.FriendLink{}).Error
}

func deleteLinksTx(tx *gorm.DB, userA, userB uint) error {
	return tx.Where(
		"(owner_id = ? AND counterpart_id = ?) OR (owner_id = ? AND counterpart_id = ?)",
		userA, userB, userB, userA,
	).Delete(&models.FriendLink{}).Error
}
