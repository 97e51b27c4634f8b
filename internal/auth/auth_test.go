package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/fleetcmd/fleet-command/internal/models"
)

func TestNewService(t *testing.T) {
	service := NewService()
	assert.NotNil(t, service)
	assert.NotEmpty(t, service.jwtSecret)
	assert.Equal(t, 24*time.Hour, service.tokenExp)
}

func TestNewService_ExpiryFromEnv(t *testing.T) {
	t.Setenv("JWT_EXPIRY", "2h")
	service := NewService()
	assert.Equal(t, 2*time.Hour, service.tokenExp)
}

func TestService_HashPassword(t *testing.T) {
	service := NewService()

	password := "testpassword123"
	hash, err := service.HashPassword(password)

	assert.NoError(t, err)
	assert.NotEmpty(t, hash)
	assert.NotEqual(t, password, hash)
}

func TestService_CheckPassword(t *testing.T) {
	service := NewService()

	password := "testpassword123"
	hash, _ := service.HashPassword(password)

	assert.True(t, service.CheckPassword(password, hash))
	assert.False(t, service.CheckPassword("wrongpassword", hash))
}

func TestService_GenerateToken(t *testing.T) {
	service := NewService()

	user := &models.User{
		ID:       primitive.NewObjectID(),
		Username: "testuser",
		Role:     models.RoleAdmin,
	}

	token, err := service.GenerateToken(user)
	assert.NoError(t, err)
	assert.NotEmpty(t, token)
}

func TestService_ValidateToken(t *testing.T) {
	service := NewService()

	user := &models.User{
		ID:       primitive.NewObjectID(),
		Username: "testuser",
		Role:     models.RoleManager,
	}
	token, _ := service.GenerateToken(user)

	claims, err := service.ValidateToken(token)
	require.NoError(t, err)
	require.NotNil(t, claims)
	assert.Equal(t, user.ID.Hex(), claims.UserID)
	assert.Equal(t, user.Username, claims.Username)
	assert.Equal(t, user.Role, claims.Role)

	_, err = service.ValidateToken("invalid-token")
	assert.Equal(t, ErrInvalidToken, err)
}

func TestService_ValidateToken_BearerPrefix(t *testing.T) {
	service := NewService()
	user := &models.User{ID: primitive.NewObjectID(), Username: "testuser", Role: models.RoleViewer}
	token, _ := service.GenerateToken(user)

	claims, err := service.ValidateToken("Bearer " + token)
	require.NoError(t, err)
	assert.Equal(t, user.Username, claims.Username)
}

func TestService_ValidateToken_Expired(t *testing.T) {
	service := NewService()
	service.tokenExp = -time.Hour

	user := &models.User{ID: primitive.NewObjectID(), Username: "testuser", Role: models.RoleViewer}
	token, _ := service.GenerateToken(user)

	_, err := service.ValidateToken(token)
	assert.Equal(t, ErrExpiredToken, err)
}

func TestService_ValidateToken_WrongSecret(t *testing.T) {
	service := NewService()
	user := &models.User{ID: primitive.NewObjectID(), Username: "testuser", Role: models.RoleViewer}
	token, _ := service.GenerateToken(user)

	other := &Service{jwtSecret: []byte("another-secret"), tokenExp: time.Hour}
	_, err := other.ValidateToken(token)
	assert.Equal(t, ErrInvalidToken, err)
}

func TestService_ValidatePassword(t *testing.T) {
	service := NewService()
	assert.Error(t, service.ValidatePassword("short"))
	assert.NoError(t, service.ValidatePassword("longenough"))
}

func TestService_ValidateUsername(t *testing.T) {
	service := NewService()
	assert.Error(t, service.ValidateUsername("ab"))
	assert.NoError(t, service.ValidateUsername("abc"))
	long := make([]byte, 51)
	for i := range long {
		long[i] = 'a'
	}
	assert.Error(t, service.ValidateUsername(string(long)))
}
