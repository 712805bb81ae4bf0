package services_test

import (
	"errors"
	"testing"

	"lemari/internal/database"
	"lemari/internal/models"
	"lemari/internal/policy"
	"lemari/internal/repositories"
	"lemari/internal/services"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret"

func newIdentityService() (*services.IdentityService, *MockUserRepository, *MockTokenRepository, *MockPublisher) {
	users := new(MockUserRepository)
	tokens := new(MockTokenRepository)
	events := new(MockPublisher)
	return services.NewIdentityService(users, tokens, testSecret, bcrypt.MinCost, events), users, tokens, events
}

func validRegistration() services.RegisterInput {
	return services.RegisterInput{
		Username:  "alice",
		Email:     "alice@Example.COM",
		Country:   "Indonesia",
		Password:  "s3cret",
		Password2: "s3cret",
	}
}

func TestIdentityService_Register(t *testing.T) {
	svc, users, _, _ := newIdentityService()

	users.On("GetByUsername", "alice").Return(nil, repositories.ErrNotFound).Once()
	users.On("GetByEmail", "alice@example.com").Return(nil, repositories.ErrNotFound).Once()
	users.On("Create", mock.AnythingOfType("*models.User")).Return(nil).Once()

	user, err := svc.Register(validRegistration())
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.False(t, user.IsStaff)
	assert.NotEqual(t, "s3cret", user.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("s3cret")))
	users.AssertExpectations(t)
}

func TestIdentityService_Register_PasswordMismatch(t *testing.T) {
	svc, users, _, _ := newIdentityService()

	in := validRegistration()
	in.Password2 = "other"
	_, err := svc.Register(in)

	var verr *services.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Passwords must match.", verr.Fields["non_field_errors"])
	users.AssertNotCalled(t, "Create", mock.Anything)
}

func TestIdentityService_Register_Duplicate(t *testing.T) {
	svc, users, _, _ := newIdentityService()

	users.On("GetByUsername", "alice").Return(&models.User{ID: "u1", Username: "alice"}, nil).Once()
	users.On("GetByEmail", "alice@example.com").Return(&models.User{ID: "u1"}, nil).Once()

	_, err := svc.Register(validRegistration())

	var verr *services.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "A user with that username already exists.", verr.Fields["username"])
	assert.Equal(t, "A user with that email already exists.", verr.Fields["email"])
	users.AssertNotCalled(t, "Create", mock.Anything)
}

func TestIdentityService_CreateSuperuser(t *testing.T) {
	svc, users, _, _ := newIdentityService()

	users.On("GetByUsername", "alice").Return(nil, repositories.ErrNotFound).Once()
	users.On("GetByEmail", "alice@example.com").Return(nil, repositories.ErrNotFound).Once()
	users.On("Create", mock.AnythingOfType("*models.User")).Return(nil).Once()

	user, err := svc.CreateSuperuser(validRegistration())
	require.NoError(t, err)
	assert.True(t, user.IsStaff)
	assert.True(t, user.IsSuperuser)
}

func hashedUser(t *testing.T, id, username, password string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &models.User{ID: id, Username: username, Password: string(hash)}
}

func TestIdentityService_LoginAndResolve(t *testing.T) {
	svc, users, tokens, _ := newIdentityService()
	alice := hashedUser(t, "u1", "alice", "s3cret")

	stored := &models.Token{UserID: alice.ID}
	users.On("GetByUsername", "alice").Return(alice, nil)
	tokens.On("GetOrCreate", alice.ID, mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		if stored.Key != "" {
			return
		}
		key, err := args.Get(2).(func() (string, error))()
		require.NoError(t, err)
		stored.Key = key
	}).Return(stored, nil).Twice()

	_, first, err := svc.Login(services.LoginInput{Username: "alice", Password: "s3cret"})
	require.NoError(t, err)
	_, second, err := svc.Login(services.LoginInput{Username: "alice", Password: "s3cret"})
	require.NoError(t, err)
	assert.NotEmpty(t, first.Key)
	assert.Equal(t, first.Key, second.Key)

	tokens.On("GetByKey", first.Key).Return(stored, nil).Once()
	users.On("GetByID", alice.ID).Return(alice, nil).Once()

	resolved, err := svc.Resolve(first.Key)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, resolved.ID)
	tokens.AssertExpectations(t)
}

func TestIdentityService_Login_BadCredentials(t *testing.T) {
	svc, users, tokens, _ := newIdentityService()
	alice := hashedUser(t, "u1", "alice", "s3cret")

	users.On("GetByUsername", "alice").Return(alice, nil).Once()
	users.On("GetByUsername", "bob").Return(nil, repositories.ErrNotFound).Once()

	_, _, err := svc.Login(services.LoginInput{Username: "alice", Password: "wrong"})
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
	_, _, err = svc.Login(services.LoginInput{Username: "bob", Password: "s3cret"})
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
	tokens.AssertNotCalled(t, "GetOrCreate", mock.Anything, mock.Anything, mock.Anything)
}

func TestIdentityService_Resolve_Rejects(t *testing.T) {
	svc, _, tokens, _ := newIdentityService()

	_, err := svc.Resolve("not-a-token")
	assert.ErrorIs(t, err, services.ErrInvalidToken)

	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"user_id": "u1"}).
		SignedString([]byte("another-secret"))
	require.NoError(t, err)
	_, err = svc.Resolve(forged)
	assert.ErrorIs(t, err, services.ErrInvalidToken)

	tokens.AssertNotCalled(t, "GetByKey", mock.Anything)
}

func TestIdentityService_Resolve_Revoked(t *testing.T) {
	svc, users, tokens, _ := newIdentityService()
	alice := hashedUser(t, "u1", "alice", "s3cret")

	stored := &models.Token{UserID: alice.ID}
	users.On("GetByUsername", "alice").Return(alice, nil).Once()
	tokens.On("GetOrCreate", alice.ID, mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		stored.Key, _ = args.Get(2).(func() (string, error))()
	}).Return(stored, nil).Once()

	_, token, err := svc.Login(services.LoginInput{Username: "alice", Password: "s3cret"})
	require.NoError(t, err)

	tokens.On("GetByKey", token.Key).Return(nil, repositories.ErrNotFound).Once()
	_, err = svc.Resolve(token.Key)
	assert.ErrorIs(t, err, services.ErrInvalidToken)
}

func TestIdentityService_Revoke(t *testing.T) {
	svc, _, tokens, _ := newIdentityService()
	alice := &models.User{ID: "u1"}

	tokens.On("DeleteByUserID", "u1").Return(nil).Once()
	assert.NoError(t, svc.Revoke(alice))

	tokens.On("DeleteByUserID", "u1").Return(repositories.ErrNotFound).Once()
	assert.ErrorIs(t, svc.Revoke(alice), services.ErrTokenNotFound)

	assert.ErrorIs(t, svc.Revoke(nil), policy.ErrUnauthenticated)
}

func TestIdentityService_UpdateProfile(t *testing.T) {
	svc, users, _, _ := newIdentityService()
	stored := &models.User{ID: "u1", Username: "alice", Country: "Indonesia"}

	users.On("GetByID", "u1").Return(stored, nil)
	users.On("Update", mock.AnythingOfType("*models.User")).Return(nil)

	// A partial update keeps the username.
	updated, err := svc.UpdateProfile(stored, services.ProfileInput{Country: strPtr("Japan")}, true)
	require.NoError(t, err)
	assert.Equal(t, "alice", updated.Username)
	assert.Equal(t, "Japan", updated.Country)

	// A full update requires it.
	_, err = svc.UpdateProfile(stored, services.ProfileInput{Country: strPtr("Japan")}, false)
	var verr *services.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "This field is required.", verr.Fields["username"])
}

func TestIdentityService_UpdateProfile_UsernameTaken(t *testing.T) {
	svc, users, _, _ := newIdentityService()
	stored := &models.User{ID: "u1", Username: "alice", Country: "Indonesia"}

	users.On("GetByID", "u1").Return(stored, nil).Once()
	users.On("GetByUsername", "bob").Return(&models.User{ID: "u2", Username: "bob"}, nil).Once()

	_, err := svc.UpdateProfile(stored, services.ProfileInput{Username: strPtr("bob")}, true)
	var verr *services.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "username")
	users.AssertNotCalled(t, "Update", mock.Anything)
}

func TestIdentityService_DeleteAccount(t *testing.T) {
	svc, users, _, events := newIdentityService()
	alice := &models.User{ID: "u1", Username: "alice"}

	users.On("Delete", "u1").Return(nil).Once()
	events.On("Publish", services.EventAccountDeleted, mock.Anything).Return(errors.New("broker down")).Once()

	// A failed publish does not fail the deletion.
	assert.NoError(t, svc.DeleteAccount(alice))
	users.AssertExpectations(t)
	events.AssertExpectations(t)

	assert.ErrorIs(t, svc.DeleteAccount(nil), policy.ErrUnauthenticated)
}

func TestIdentityService_Login_ReissuesAfterSecretRotation(t *testing.T) {
	db, err := database.Open("sqlite", database.MemoryDSN(uuid.NewString()), "silent")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { _ = database.Close(db) })

	users := repositories.NewGORMUserRepository(db)
	tokens := repositories.NewGORMTokenRepository(db)
	events := new(MockPublisher)
	before := services.NewIdentityService(users, tokens, "old-secret", bcrypt.MinCost, events)
	after := services.NewIdentityService(users, tokens, "new-secret", bcrypt.MinCost, events)

	_, err = before.Register(validRegistration())
	require.NoError(t, err)
	creds := services.LoginInput{Username: "alice", Password: "s3cret"}

	_, old, err := before.Login(creds)
	require.NoError(t, err)
	_, err = after.Resolve(old.Key)
	assert.ErrorIs(t, err, services.ErrInvalidToken)

	_, fresh, err := after.Login(creds)
	require.NoError(t, err)
	assert.NotEqual(t, old.Key, fresh.Key)

	user, err := after.Resolve(fresh.Key)
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)

	_, err = tokens.GetByKey(old.Key)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}
