package repository

import (
	"errors"

	"art-market/internal/model"

	"gorm.io/gorm"
)

type ArtistRepository struct {
	db *gorm.DB
}

func NewArtistRepository(db *gorm.DB) *ArtistRepository {
	return &ArtistRepository{db: db}
}

func (r *ArtistRepository) Create(artist *model.Artist) error {
	return r.db.Create(artist).Error
}

// GetByUserID returns the artist profile for a user, or (nil, nil) when the
// user has none.
func (r *ArtistRepository) GetByUserID(userID uint) (*model.Artist, error) {
	var a model.Artist
	err := r.db.Where("user_id = ?", userID).First(&a).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

// GetByUserIDs returns the artist profiles that exist among the given user
// ids, keyed by user id.
func (r *ArtistRepository) GetByUserIDs(userIDs []uint) (map[uint]*model.Artist, error) {
	if len(userIDs) == 0 {
		return map[uint]*model.Artist{}, nil
	}
	var artists []*model.Artist
	if err := r.db.Where("user_id IN ?", userIDs).Find(&artists).Error; err != nil {
		return nil, err
	}

	byUser := make(map[uint]*model.Artist, len(artists))
	for _, a := range artists {
		byUser[a.UserID] = a
	}
	return byUser, nil
}
