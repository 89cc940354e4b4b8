package jwt

import (
	"errors"
	"testing"
	"time"

	gjwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestJWTService_GenerateAndValidate(t *testing.T) {
	svc := NewJWTService("secret", time.Minute)
	userID := uuid.New()

	token, err := svc.GenerateToken(userID, "test@mail.com", "user")
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := svc.ValidateToken(token)
	assert.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "test@mail.com", claims.Email)
	assert.Equal(t, "user", claims.Role)
}

func TestJWTService_ValidateInvalidToken(t *testing.T) {
	svc := NewJWTService("secret", time.Minute)

	_, err := svc.ValidateToken("not-a-token")
	assert.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTService_ValidateExpiredToken(t *testing.T) {
	svc := NewJWTService("secret", -time.Second)

	token, err := svc.GenerateToken(uuid.New(), "expired@mail.com", "user")
	assert.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.Error(t, err)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestJWTService_ValidateWrongSigningMethod(t *testing.T) {
	svc := NewJWTService("secret", time.Minute)

	claims := gjwt.MapClaims{
		"userId": uuid.NewString(),
		"email":  "x@y.z",
		"role":   "user",
		"exp":    time.Now().Add(time.Minute).Unix(),
		"iat":    time.Now().Unix(),
		"nbf":    time.Now().Unix(),
	}
	unsigned := gjwt.NewWithClaims(gjwt.SigningMethodNone, claims)
	tokenStr, err := unsigned.SignedString(gjwt.UnsafeAllowNoneSignatureType)
	assert.NoError(t, err)

	_, err = svc.ValidateToken(tokenStr)
	assert.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTService_SigningFailure(t *testing.T) {
	orig := signJWTToken
	t.Cleanup(func() { signJWTToken = orig })
	signJWTToken = func(*gjwt.Token, []byte) (string, error) {
		return "", errors.New("sign failed")
	}

	svc := NewJWTService("secret", time.Minute)
	_, err := svc.GenerateToken(uuid.New(), "x@y.z", "user")
	assert.Error(t, err)
}
