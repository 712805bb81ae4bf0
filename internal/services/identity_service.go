package services

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"lemari/internal/models"
	"lemari/internal/policy"
	"lemari/internal/repositories"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// RegisterInput is the body of a registration request.
type RegisterInput struct {
	Username       string  `json:"username" validate:"required,notblank,max=100"`
	Email          string  `json:"email" validate:"required,email,max=200"`
	Country        string  `json:"country" validate:"required,notblank,max=100"`
	ProfilePicture *string `json:"profile_picture" validate:"omitempty,max=255"`
	Password       string  `json:"password" validate:"required"`
	Password2      string  `json:"password_2" validate:"required,eqfield=Password"`
}

// LoginInput represents the request body for login.
type LoginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// ProfileInput carries profile changes. Nil fields are left unchanged.
type ProfileInput struct {
	Username       *string `json:"username" validate:"required,notblank,max=100"`
	Country        *string `json:"country" validate:"omitempty,notblank,max=100"`
	ProfilePicture *string `json:"profile_picture" validate:"omitempty,max=255"`
}

// IdentityService owns accounts, credentials and session tokens.
type IdentityService struct {
	users      repositories.UserRepository
	tokens     repositories.TokenRepository
	secret     []byte
	bcryptCost int
	events     EventPublisher
}

// NewIdentityService creates a new IdentityService. Token keys are signed
// with secret; passwords are hashed at bcryptCost.
func NewIdentityService(users repositories.UserRepository, tokens repositories.TokenRepository, secret string, bcryptCost int, events EventPublisher) *IdentityService {
	return &IdentityService{
		users:      users,
		tokens:     tokens,
		secret:     []byte(secret),
		bcryptCost: bcryptCost,
		events:     events,
	}
}

// Register creates an ordinary account.
func (s *IdentityService) Register(in RegisterInput) (*models.User, error) {
	return s.createUser(in, false)
}

// CreateSuperuser creates an account with staff and superuser rights.
func (s *IdentityService) CreateSuperuser(in RegisterInput) (*models.User, error) {
	return s.createUser(in, true)
}

func (s *IdentityService) createUser(in RegisterInput, superuser bool) (*models.User, error) {
	verr, err := check(in)
	if err != nil {
		return nil, err
	}
	// Provisioned superusers may omit the country.
	if superuser && strings.TrimSpace(in.Country) == "" {
		delete(verr.Fields, "country")
	}
	if err := verr.orNil(); err != nil {
		return nil, err
	}
	in.Email = normalizeEmail(in.Email)

	if err := s.ensureFree(in.Username, in.Email, "", verr); err != nil {
		return nil, err
	}
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:       in.Username,
		Email:          in.Email,
		Country:        in.Country,
		ProfilePicture: in.ProfilePicture,
		Password:       string(hashedPassword),
		IsStaff:        superuser,
		IsSuperuser:    superuser,
	}
	if err := s.users.Create(user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, newValidationError("username", "A user with that username or email already exists.")
		}
		return nil, fmt.Errorf("failed to register user: %w", err)
	}
	return user, nil
}

// ensureFree records a message in verr for a username or email held by a
// user other than selfID.
func (s *IdentityService) ensureFree(username, email, selfID string, verr *ValidationError) error {
	if username != "" {
		existing, err := s.users.GetByUsername(username)
		switch {
		case err == nil && existing != nil && existing.ID != selfID:
			verr.add("username", "A user with that username already exists.")
		case err != nil && !errors.Is(err, repositories.ErrNotFound):
			return fmt.Errorf("failed to check username: %w", err)
		}
	}
	if email != "" {
		existing, err := s.users.GetByEmail(email)
		switch {
		case err == nil && existing != nil && existing.ID != selfID:
			verr.add("email", "A user with that email already exists.")
		case err != nil && !errors.Is(err, repositories.ErrNotFound):
			return fmt.Errorf("failed to check email: %w", err)
		}
	}
	return nil
}

// Login checks the credentials and returns the user's session token,
// creating it on first login. Repeated logins return the same token until
// it is revoked or stops verifying, in which case it is reissued.
func (s *IdentityService) Login(in LoginInput) (*models.User, *models.Token, error) {
	if err := validateInput(in); err != nil {
		return nil, nil, err
	}

	user, err := s.users.GetByUsername(in.Username)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, fmt.Errorf("failed to load user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	token, err := s.tokens.GetOrCreate(user.ID, s.keyValid, func() (string, error) {
		return s.signTokenKey(user)
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return user, token, nil
}

// keyValid reports whether a stored key still verifies under the current
// secret.
func (s *IdentityService) keyValid(key string) bool {
	_, err := s.ValidateToken(key)
	return err == nil
}

// signTokenKey produces a fresh token key. Keys carry no expiry; a key is
// valid while its row exists.
func (s *IdentityService) signTokenKey(user *models.User) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"jti":     uuid.New().String(),
		"iat":     time.Now().Unix(),
	})
	key, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return key, nil
}

// ValidateToken parses and verifies the signature of a token key,
// returning its claims.
func (s *IdentityService) ValidateToken(key string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(key, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, ErrInvalidToken
}

// Resolve maps a presented token key to its user.
func (s *IdentityService) Resolve(key string) (*models.User, error) {
	claims, err := s.ValidateToken(key)
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.GetByKey(key)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: revoked", ErrInvalidToken)
		}
		return nil, fmt.Errorf("failed to look up token: %w", err)
	}
	if userID, _ := claims["user_id"].(string); userID != token.UserID {
		return nil, fmt.Errorf("%w: subject mismatch", ErrInvalidToken)
	}

	user, err := s.users.GetByID(token.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown user", ErrInvalidToken)
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return user, nil
}

// Revoke deletes the caller's token.
func (s *IdentityService) Revoke(actor *models.User) error {
	if err := policy.Authenticated(actor); err != nil {
		return err
	}
	if err := s.tokens.DeleteByUserID(actor.ID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrTokenNotFound
		}
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// Profile returns the caller's own account.
func (s *IdentityService) Profile(actor *models.User) (*models.User, error) {
	if err := policy.Authenticated(actor); err != nil {
		return nil, err
	}
	return s.users.GetByID(actor.ID)
}

// UpdateProfile changes the caller's profile. A full update needs every
// required field; a partial one only the fields it changes.
func (s *IdentityService) UpdateProfile(actor *models.User, in ProfileInput, partial bool) (*models.User, error) {
	action := policy.ActionUpdate
	if partial {
		action = policy.ActionPartialUpdate
	}
	if err := policy.Authorize(actor, action, actor); err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(actor.ID)
	if err != nil {
		return nil, err
	}

	merged := ProfileInput{Username: &user.Username, Country: &user.Country, ProfilePicture: user.ProfilePicture}
	if in.Username != nil {
		merged.Username = in.Username
	}
	if in.Country != nil {
		merged.Country = in.Country
	}
	if in.ProfilePicture != nil {
		merged.ProfilePicture = in.ProfilePicture
	}

	target := merged
	if !partial {
		target = in
	}
	verr, err := check(target)
	if err != nil {
		return nil, err
	}
	if len(verr.Fields) == 0 && *merged.Username != user.Username {
		if err := s.ensureFree(*merged.Username, "", user.ID, verr); err != nil {
			return nil, err
		}
	}
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	user.Username = *merged.Username
	user.Country = *merged.Country
	user.ProfilePicture = merged.ProfilePicture
	if err := s.users.Update(user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, newValidationError("username", "A user with that username already exists.")
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return user, nil
}

// DeleteAccount removes the caller and everything the caller owns.
func (s *IdentityService) DeleteAccount(actor *models.User) error {
	if err := policy.Authorize(actor, policy.ActionDelete, actor); err != nil {
		return err
	}
	if err := s.users.Delete(actor.ID); err != nil {
		return fmt.Errorf("failed to delete account %s: %w", actor.ID, err)
	}

	log.Printf("Account %s (%s) deleted", actor.ID, actor.Username)
	publish(s.events, EventAccountDeleted, map[string]interface{}{
		"userID":   actor.ID,
		"username": actor.Username,
	})
	return nil
}

// normalizeEmail lowercases the domain part of an address.
func normalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	return email[:at] + "@" + strings.ToLower(email[at+1:])
}
