package service

import (
	"errors"
	"strings"

	"art-market/internal/model"
	"art-market/pkg/jwt"
	"art-market/pkg/password"

	"gorm.io/gorm"
)

// UserService covers account identity: register, login, profile. It exists
// so the messaging subsystem has a verified user id to work with; fuller
// account management lives elsewhere.
type UserService struct {
	users      UserLookup
	userWriter UserWriter
	artists    ArtistLookup
	jwtService *jwt.JWTService
}

// UserWriter is the write side of the account store.
type UserWriter interface {
	Create(user *model.User) error
	GetByEmail(email string) (*model.User, error)
}

func NewUserService(users UserLookup, userWriter UserWriter, artists ArtistLookup, jwtService *jwt.JWTService) *UserService {
	return &UserService{users: users, userWriter: userWriter, artists: artists, jwtService: jwtService}
}

// Register creates an account and issues a token.
func (s *UserService) Register(name, email, plainPassword, role, city string) (*model.User, string, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" || email == "" || plainPassword == "" {
		return nil, "", errors.New("name, email and password are required")
	}
	if role != "artist" {
		role = "user"
	}

	if existing, err := s.userWriter.GetByEmail(email); err == nil && existing != nil {
		return nil, "", ErrEmailTaken
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", err
	}

	hash, err := password.Hash(plainPassword)
	if err != nil {
		return nil, "", err
	}

	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		City:         city,
	}
	if err := s.userWriter.Create(user); err != nil {
		return nil, "", err
	}

	token, err := s.jwtService.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Login verifies credentials and issues a token. Banned accounts are
// refused here, before any token exists.
func (s *UserService) Login(email, plainPassword string) (*model.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || plainPassword == "" {
		return nil, "", ErrInvalidCredentials
	}

	user, err := s.userWriter.GetByEmail(email)
	if err != nil {
		return nil, "", ErrInvalidCredentials
	}
	if !password.Verify(plainPassword, user.PasswordHash) {
		return nil, "", ErrInvalidCredentials
	}
	if user.IsBanned {
		return nil, "", ErrAccountSuspended
	}

	token, err := s.jwtService.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Profile returns the account and its optional artist profile.
func (s *UserService) Profile(userID uint) (*model.User, *model.Artist, error) {
	user, err := s.users.GetByID(userID)
	if err != nil {
		return nil, nil, err
	}
	artist, err := s.artists.GetByUserID(userID)
	if err != nil {
		return nil, nil, err
	}
	return user, artist, nil
}
