package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mrlokans/readtrack/internal/apperr"
	"github.com/mrlokans/readtrack/internal/config"
	"github.com/mrlokans/readtrack/internal/database/users"
	"github.com/mrlokans/readtrack/internal/entities"
)

const (
	MsgUsernameTaken      = "Username already taken"
	MsgInvalidCredentials = "Incorrect username or password"
	MsgUnauthorized       = "Unauthorized request"
)

var errInvalidCredentials = apperr.Validation(MsgInvalidCredentials)

// UserStore defines the user data access the service needs. Implemented by database/users.Repository.
type UserStore interface {
	CreateUser(ctx context.Context, user *entities.User) error
	UsernameExists(ctx context.Context, username string) (bool, error)
	GetUserByUsername(ctx context.Context, username string) (*entities.User, error)
}

// AuditLogger records authentication events. Implemented by audit.Service.
type AuditLogger interface {
	LogAuth(userID uint, action, ipAddr, userAgent string, success bool)
}

// ClientInfo identifies the caller for audit purposes.
type ClientInfo struct {
	IP        string
	UserAgent string
}

type RegisterInput struct {
	Username string
	Password string
	Email    string
}

type LoginInput struct {
	Username string
	Password string
}

// LoginResult is returned to the client after a successful login.
type LoginResult struct {
	AuthToken string `json:"authToken"`
	UserID    uint   `json:"user_id"`
}

// Service registers accounts, checks credentials and resolves bearer tokens.
type Service struct {
	users  UserStore
	tokens *TokenIssuer
	config config.Auth
	audit  AuditLogger
	log    *zap.Logger
}

// NewService creates a new authentication service.
func NewService(userStore UserStore, tokens *TokenIssuer, cfg config.Auth, audit AuditLogger, log *zap.Logger) *Service {
	return &Service{
		users:  userStore,
		tokens: tokens,
		config: cfg,
		audit:  audit,
		log:    log,
	}
}

// Register creates an account. Username uniqueness is ultimately decided by
// the storage layer, so two concurrent registrations cannot both succeed.
func (s *Service) Register(ctx context.Context, in RegisterInput, client ClientInfo) (*entities.User, error) {
	for _, f := range []struct{ name, value string }{
		{"username", in.Username},
		{"password", in.Password},
		{"email", in.Email},
	} {
		if f.value == "" {
			return nil, apperr.MissingField(f.name)
		}
	}

	if err := ValidatePassword(in.Password); err != nil {
		return nil, err
	}

	exists, err := s.users.UsernameExists(ctx, in.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if exists {
		return nil, apperr.Conflict(MsgUsernameTaken)
	}

	passwordHash, err := HashPassword(in.Password, s.config.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &entities.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: passwordHash,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, users.ErrUsernameTaken) {
			return nil, apperr.Conflict(MsgUsernameTaken)
		}
		return nil, err
	}

	s.log.Info("user registered", zap.Uint("user_id", user.ID))
	s.logAuth(user.ID, entities.AuditActionUserRegister, client, true)
	return user, nil
}

// Login checks credentials and issues a bearer token. Unknown usernames and
// wrong passwords produce the same error.
func (s *Service) Login(ctx context.Context, in LoginInput, client ClientInfo) (*LoginResult, error) {
	if in.Username == "" {
		return nil, apperr.MissingField("username")
	}
	if in.Password == "" {
		return nil, apperr.MissingField("password")
	}

	user, err := s.users.GetUserByUsername(ctx, in.Username)
	if err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			s.logAuth(0, entities.AuditActionLogin, client, false)
			return nil, errInvalidCredentials
		}
		return nil, err
	}

	if err := CheckPassword(in.Password, user.PasswordHash); err != nil {
		if errors.Is(err, ErrInvalidPassword) {
			s.logAuth(user.ID, entities.AuditActionLogin, client, false)
			return nil, errInvalidCredentials
		}
		return nil, fmt.Errorf("failed to check password: %w", err)
	}

	token, err := s.tokens.Sign(user)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	s.logAuth(user.ID, entities.AuditActionLogin, client, true)
	return &LoginResult{AuthToken: token, UserID: user.ID}, nil
}

// ResolveUser maps a bearer token to an existing user. Every failure is
// reported as the same unauthorized error.
func (s *Service) ResolveUser(ctx context.Context, token string) (*entities.User, error) {
	claims, err := s.tokens.Parse(strings.TrimSpace(token))
	if err != nil {
		return nil, apperr.Unauthorized(MsgUnauthorized)
	}

	user, err := s.users.GetUserByUsername(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			return nil, apperr.Unauthorized(MsgUnauthorized)
		}
		return nil, err
	}
	if claims.UserID != 0 && claims.UserID != user.ID {
		return nil, apperr.Unauthorized(MsgUnauthorized)
	}
	return user, nil
}

func (s *Service) logAuth(userID uint, action string, client ClientInfo, success bool) {
	if s.audit == nil {
		return
	}
	s.audit.LogAuth(userID, action, client.IP, client.UserAgent, success)
}
