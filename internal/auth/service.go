package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Service errors.
var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrNoAdminAccount     = errors.New("no admin password hash configured")
)

// Config is the auth section of the server configuration.
type Config struct {
	JWTSecret         string        `mapstructure:"jwt_secret"`
	AccessTokenTTL    time.Duration `mapstructure:"access_token_ttl"`
	AdminUsername     string        `mapstructure:"admin_username"`
	AdminPasswordHash string        `mapstructure:"admin_password_hash"`
}

// TokenPair is the login response. PollNow issues access tokens only.
type TokenPair struct {
	AccessToken string `json:"access_token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	TokenType   string `json:"token_type" example:"Bearer"`
	ExpiresIn   int    `json:"expires_in" example:"900"` // Access token TTL in seconds
}

// Service authenticates the configured admin account.
type Service struct {
	username string
	hash     string
	dummy    string // compared on unknown usernames so both paths cost one bcrypt
	tokens   *TokenService
	logger   *zap.Logger
}

// NewService creates an auth Service. An empty JWT secret is replaced with
// a random one, so issued tokens do not survive a restart.
func NewService(cfg Config, logger *zap.Logger) (*Service, error) {
	if cfg.AdminPasswordHash == "" {
		return nil, ErrNoAdminAccount
	}
	cost, err := bcrypt.Cost([]byte(cfg.AdminPasswordHash))
	if err != nil {
		return nil, fmt.Errorf("admin_password_hash: %w", err)
	}
	dummy, err := HashPassword("pollnow-unknown-user", cost)
	if err != nil {
		return nil, err
	}
	if cfg.AdminUsername == "" {
		cfg.AdminUsername = "admin"
	}
	if cfg.AccessTokenTTL <= 0 {
		cfg.AccessTokenTTL = 15 * time.Minute
	}

	secret := []byte(cfg.JWTSecret)
	if len(secret) == 0 {
		secret, err = RandomSecret()
		if err != nil {
			return nil, err
		}
		logger.Warn("auth.jwt_secret not set; using an ephemeral signing secret")
	}

	return &Service{
		username: cfg.AdminUsername,
		hash:     cfg.AdminPasswordHash,
		dummy:    dummy,
		tokens:   NewTokenService(secret, cfg.AccessTokenTTL),
		logger:   logger,
	}, nil
}

// Tokens returns the token service for middleware use.
func (s *Service) Tokens() *TokenService {
	return s.tokens
}

// Login checks the credentials against the admin account and issues an access token.
func (s *Service) Login(username, password string) (*TokenPair, error) {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.username)) == 1
	hash := s.hash
	if !userOK {
		hash = s.dummy
	}
	if !CheckPassword(hash, password) || !userOK {
		s.logger.Info("login failed", zap.String("username", username))
		return nil, ErrInvalidCredentials
	}

	access, err := s.tokens.IssueAccessToken(s.username)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}
	s.logger.Info("login succeeded", zap.String("username", s.username))
	return &TokenPair{
		AccessToken: access,
		TokenType:   "Bearer",
		ExpiresIn:   int(s.tokens.AccessTokenTTL().Seconds()),
	}, nil
}
