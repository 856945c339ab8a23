package auth

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/webstack/backend/internal/infrastructure/config"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// DefaultUsername is created when no users are configured
const DefaultUsername = "user"

// ErrInvalidCredentials is returned for an unknown user or a wrong password
var ErrInvalidCredentials = errors.New("invalid credentials")

// UserStore checks username/password pairs against bcrypt hashes
type UserStore struct {
	hashes map[string][]byte
	// compared against when the user is unknown so both paths cost one bcrypt
	dummyHash []byte
}

// NewUserStore builds the store from configuration.
// With no users configured it creates DefaultUsername with a random password and logs it once.
func NewUserStore(users []config.UserConfig, logger *zap.Logger) (*UserStore, error) {
	s := &UserStore{hashes: make(map[string][]byte, len(users))}

	// the dummy hash costs as much as the most expensive stored hash
	dummyCost := bcrypt.DefaultCost
	for i, u := range users {
		if u.Username == "" || u.PasswordHash == "" {
			return nil, fmt.Errorf("user entry requires username and password_hash")
		}
		cost, err := bcrypt.Cost([]byte(u.PasswordHash))
		if err != nil {
			return nil, fmt.Errorf("user %q: password_hash is not a bcrypt hash: %w", u.Username, err)
		}
		if i == 0 || cost > dummyCost {
			dummyCost = cost
		}
		s.hashes[u.Username] = []byte(u.PasswordHash)
	}

	dummy, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), dummyCost)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare user store: %w", err)
	}
	s.dummyHash = dummy

	if len(s.hashes) == 0 {
		password := uuid.NewString()
		if err := s.AddUser(DefaultUsername, password); err != nil {
			return nil, err
		}
		logger.Warn("Using generated security password",
			zap.String("username", DefaultUsername),
			zap.String("password", password))
	}

	return s, nil
}

// AddUser hashes password and stores it for username
func (s *UserStore) AddUser(username, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	s.hashes[username] = hash
	return nil
}

// Authenticate returns ErrInvalidCredentials unless the password matches
func (s *UserStore) Authenticate(username, password string) error {
	hash, ok := s.hashes[username]
	if !ok {
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		return ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// Exists reports whether username is known
func (s *UserStore) Exists(username string) bool {
	_, ok := s.hashes[username]
	return ok
}
