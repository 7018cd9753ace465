package service

import (
	"errors"
	"testing"
	"time"

	"art-market/config"
	"art-market/internal/model"
	"art-market/pkg/jwt"

	"gorm.io/gorm"
)

// fakeAccountStore satisfies both UserLookup and UserWriter with the same
// missing-row behavior as the gorm repository.
type fakeAccountStore struct {
	byID    map[uint]*model.User
	byEmail map[string]*model.User
	nextID  uint
}

func newFakeAccountStore() *fakeAccountStore {
	return &fakeAccountStore{byID: map[uint]*model.User{}, byEmail: map[string]*model.User{}}
}

func (f *fakeAccountStore) Create(user *model.User) error {
	f.nextID++
	user.ID = f.nextID
	f.byID[user.ID] = user
	f.byEmail[user.Email] = user
	return nil
}

func (f *fakeAccountStore) GetByID(id uint) (*model.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (f *fakeAccountStore) GetByIDs(ids []uint) ([]*model.User, error) {
	var out []*model.User
	for _, id := range ids {
		if u, ok := f.byID[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeAccountStore) GetByEmail(email string) (*model.User, error) {
	u, ok := f.byEmail[email]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func newUserService(store *fakeAccountStore) (*UserService, *jwt.JWTService) {
	jwtSvc := jwt.NewJWTService(config.JWTConfig{
		Secret:     "test-secret",
		ExpireTime: time.Hour,
		Issuer:     "art-market-test",
	})
	artists := &fakeArtistStore{artists: map[uint]*model.Artist{}}
	return NewUserService(store, store, artists, jwtSvc), jwtSvc
}

func TestRegisterAndLogin(t *testing.T) {
	store := newFakeAccountStore()
	svc, jwtSvc := newUserService(store)

	user, token, err := svc.Register("Asha Nair", "Asha@Example.com", "password123", "user", "Kochi")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.ID == 0 {
		t.Fatal("no id assigned")
	}
	if user.Email != "asha@example.com" {
		t.Fatalf("email not normalized: %q", user.Email)
	}
	if user.PasswordHash == "password123" || user.PasswordHash == "" {
		t.Fatal("password stored unhashed")
	}

	claims, err := jwtSvc.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate issued token: %v", err)
	}
	if claims.UserID() != user.ID {
		t.Fatalf("token subject %d, want %d", claims.UserID(), user.ID)
	}

	logged, _, err := svc.Login("asha@example.com", "password123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if logged.ID != user.ID {
		t.Fatalf("logged in as %d, want %d", logged.ID, user.ID)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	store := newFakeAccountStore()
	svc, _ := newUserService(store)

	if _, _, err := svc.Register("Asha", "asha@example.com", "password123", "user", ""); err != nil {
		t.Fatalf("register: %v", err)
	}
	_, _, err := svc.Register("Other", "asha@example.com", "different", "user", "")
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("got %v, want ErrEmailTaken", err)
	}
}

func TestRegisterRoleDefaultsToUser(t *testing.T) {
	store := newFakeAccountStore()
	svc, _ := newUserService(store)

	user, _, err := svc.Register("Asha", "asha@example.com", "password123", "admin", "")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Role != "user" {
		t.Fatalf("role %q, want user", user.Role)
	}

	artist, _, err := svc.Register("Meera", "meera@example.com", "password123", "artist", "")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if artist.Role != "artist" {
		t.Fatalf("role %q, want artist", artist.Role)
	}
}

func TestLoginFailures(t *testing.T) {
	store := newFakeAccountStore()
	svc, _ := newUserService(store)

	if _, _, err := svc.Register("Asha", "asha@example.com", "password123", "user", ""); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, _, err := svc.Login("asha@example.com", "wrongpass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password: got %v", err)
	}
	if _, _, err := svc.Login("nobody@example.com", "password123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown email: got %v", err)
	}
	if _, _, err := svc.Login("", ""); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("empty credentials: got %v", err)
	}
}

func TestLoginBannedAccount(t *testing.T) {
	store := newFakeAccountStore()
	svc, _ := newUserService(store)

	user, _, err := svc.Register("Asha", "asha@example.com", "password123", "user", "")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	user.IsBanned = true

	if _, _, err := svc.Login("asha@example.com", "password123"); !errors.Is(err, ErrAccountSuspended) {
		t.Fatalf("got %v, want ErrAccountSuspended", err)
	}
}

func TestProfileWithArtist(t *testing.T) {
	store := newFakeAccountStore()
	jwtSvc := jwt.NewJWTService(config.JWTConfig{Secret: "test-secret", ExpireTime: time.Hour, Issuer: "t"})
	artists := &fakeArtistStore{artists: map[uint]*model.Artist{}}
	svc := NewUserService(store, store, artists, jwtSvc)

	user, _, err := svc.Register("Meera", "meera@example.com", "password123", "artist", "")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	artists.artists[user.ID] = &model.Artist{ID: 1, UserID: user.ID, DisplayName: "Meera Originals"}

	got, artist, err := svc.Profile(user.ID)
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if got.ID != user.ID {
		t.Fatalf("profile user %d", got.ID)
	}
	if artist == nil || artist.DisplayName != "Meera Originals" {
		t.Fatalf("artist profile missing: %+v", artist)
	}
}
