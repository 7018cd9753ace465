package service

import (
	"art-market/pkg/response"
)

// DirectoryService resolves minimal display identities for conversation
// enrichment. A missing id yields no entry, never an error.
type DirectoryService struct {
	users   UserLookup
	artists ArtistLookup
}

func NewDirectoryService(users UserLookup, artists ArtistLookup) *DirectoryService {
	return &DirectoryService{users: users, artists: artists}
}

// Identities returns the display identity of each resolvable id.
func (s *DirectoryService) Identities(ids []uint) (map[uint]*response.UserView, error) {
	if len(ids) == 0 {
		return map[uint]*response.UserView{}, nil
	}

	users, err := s.users.GetByIDs(ids)
	if err != nil {
		return nil, err
	}
	artists, err := s.artists.GetByUserIDs(ids)
	if err != nil {
		return nil, err
	}

	views := make(map[uint]*response.UserView, len(users))
	for _, u := range users {
		views[u.ID] = response.NewUserView(u, artists[u.ID])
	}
	return views, nil
}
