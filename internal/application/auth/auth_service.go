// Package auth resolves who is calling: it issues and revokes access tokens
// and turns Bearer or Basic credentials into a principal.
package auth

import (
	"context"
	"errors"
	"time"

	"github.com/webstack/backend/internal/domain/shared"
	"github.com/webstack/backend/internal/infrastructure/auth"
	"go.uber.org/zap"
)

// Authentication methods recorded on a principal
const (
	MethodBearer = "bearer"
	MethodBasic  = "basic"
)

// Error codes returned by the service
const (
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeTokenExpired       = "TOKEN_EXPIRED"
	CodeTokenRevoked       = "TOKEN_REVOKED"
	CodeInvalidToken       = "INVALID_TOKEN"
)

// CredentialVerifier checks a username and password
type CredentialVerifier interface {
	Authenticate(username, password string) error
}

// LoginInput holds the credentials of a token request
type LoginInput struct {
	Username string `json:"username" binding:"required,max=128"`
	Password string `json:"password" binding:"required,max=256"`
}

// TokenResponse is returned by a successful login
type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	ExpiresIn   int64     `json:"expires_in"`
}

// Principal is the authenticated caller of a request
type Principal struct {
	Username string
	Method   string
	TokenID  string
}

// AuthService handles authentication operations
type AuthService struct {
	users      CredentialVerifier
	jwtService *auth.JWTService
	blacklist  auth.TokenBlacklist
	logger     *zap.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(
	users CredentialVerifier,
	jwtService *auth.JWTService,
	blacklist auth.TokenBlacklist,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		users:      users,
		jwtService: jwtService,
		blacklist:  blacklist,
		logger:     logger,
	}
}

// Login verifies the credentials and issues an access token
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*TokenResponse, error) {
	if err := s.users.Authenticate(input.Username, input.Password); err != nil {
		s.logger.Warn("Login failed", zap.String("username", input.Username))
		return nil, shared.NewDomainError(CodeInvalidCredentials, "Invalid username or password")
	}

	token, err := s.jwtService.GenerateAccessToken(input.Username)
	if err != nil {
		s.logger.Error("Failed to generate access token", zap.Error(err))
		return nil, err
	}

	s.logger.Info("Access token issued", zap.String("username", input.Username))
	return &TokenResponse{
		AccessToken: token.Token,
		TokenType:   token.TokenType,
		ExpiresAt:   token.ExpiresAt,
		ExpiresIn:   int64(time.Until(token.ExpiresAt).Seconds()),
	}, nil
}

// Logout revokes the given access token until it expires.
// An empty or invalid token is ignored.
func (s *AuthService) Logout(ctx context.Context, tokenString string) error {
	if tokenString == "" {
		return nil
	}
	claims, err := s.jwtService.ValidateAccessToken(tokenString)
	if err != nil {
		s.logger.Debug("Logout with unusable token", zap.Error(err))
		return nil
	}
	if err := s.blacklist.AddToBlacklist(ctx, claims.ID, claims.GetRemainingTTL()); err != nil {
		return err
	}
	s.logger.Info("Access token revoked",
		zap.String("username", claims.Subject),
		zap.String("jti", claims.ID),
	)
	return nil
}

// AuthenticateBearer validates an access token and checks it has not been revoked
func (s *AuthService) AuthenticateBearer(ctx context.Context, tokenString string) (*Principal, error) {
	claims, err := s.jwtService.ValidateAccessToken(tokenString)
	if err != nil {
		if errors.Is(err, auth.ErrExpiredToken) {
			return nil, shared.NewDomainError(CodeTokenExpired, "Access token has expired")
		}
		return nil, shared.NewDomainError(CodeInvalidToken, "Invalid access token")
	}

	revoked, err := s.blacklist.IsBlacklisted(ctx, claims.ID)
	if err != nil {
		s.logger.Error("Token blacklist lookup failed", zap.Error(err))
		return nil, err
	}
	if revoked {
		return nil, shared.NewDomainError(CodeTokenRevoked, auth.ErrTokenBlacklisted.Error())
	}

	return &Principal{Username: claims.Subject, Method: MethodBearer, TokenID: claims.ID}, nil
}

// AuthenticateBasic checks HTTP Basic credentials
func (s *AuthService) AuthenticateBasic(_ context.Context, username, password string) (*Principal, error) {
	if err := s.users.Authenticate(username, password); err != nil {
		return nil, shared.NewDomainError(CodeInvalidCredentials, "Invalid username or password")
	}
	return &Principal{Username: username, Method: MethodBasic}, nil
}
