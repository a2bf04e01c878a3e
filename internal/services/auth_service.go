package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/crypto/bcrypt"

	"shopmesh/internal/models"
	"shopmesh/internal/repositories"
	"shopmesh/internal/token"
)

// replicationTimeout bounds a single replication attempt. There are
// no retries; a missed attempt leaves the mirror stale until the next
// write for that identity.
const replicationTimeout = 5 * time.Second

// IdentityReplicator pushes a newly registered identity to the user
// service's mirror intake.
type IdentityReplicator interface {
	SyncIdentity(ctx context.Context, user models.PublicUser) error
}

// AuthService owns registration, login, and token verification. It is
// the trust anchor: downstream services validate every bearer token
// through it rather than sharing the signing secret.
type AuthService struct {
	userRepo   repositories.UserRepository
	codec      *token.Codec
	replicator IdentityReplicator
}

// NewAuthService creates a new AuthService. replicator may be nil, in
// which case registration skips replication entirely.
func NewAuthService(userRepo repositories.UserRepository, codec *token.Codec, replicator IdentityReplicator) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		codec:      codec,
		replicator: replicator,
	}
}

// Register creates a new identity and triggers a best-effort
// replication of it to the user service. Replication runs detached
// from the request and its failure is logged and swallowed: identity
// issuance is never blocked or rolled back by an unreachable replica.
func (s *AuthService) Register(email, password, firstName, lastName string) (*models.User, error) {
	if existing, err := s.userRepo.GetByEmail(email); err == nil && existing != nil {
		return nil, ErrDuplicateEmail
	} else if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("failed to check for existing user: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:        email,
		PasswordHash: string(hashed),
		FirstName:    firstName,
		LastName:     lastName,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	if s.replicator != nil {
		pub := user.Public()
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), replicationTimeout)
			defer cancel()
			if err := s.replicator.SyncIdentity(ctx, pub); err != nil {
				log.Printf("Failed to sync user %d to user service: %v", pub.ID, err)
			}
		}()
	}

	return user, nil
}

// Login authenticates a user by email and password and issues a
// bearer token. An unknown email and a wrong password produce the
// same error.
func (s *AuthService) Login(email, password string) (string, *models.User, error) {
	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		return "", nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	tok, err := s.codec.Issue(user.ID, user.Email)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return tok, user, nil
}

// VerifyToken validates a bearer token and resolves its subject in
// the credential store. The store lookup guards against tokens whose
// subject no longer exists.
func (s *AuthService) VerifyToken(tokenString string) (*models.User, error) {
	claims, err := s.codec.Verify(tokenString)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(claims.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUnknownSubject
		}
		return nil, fmt.Errorf("failed to resolve token subject: %w", err)
	}
	return user, nil
}
