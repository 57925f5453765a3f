package jwt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/heladeria-api/pkg/jwt"
)

func TestGenerateParse_RoundTripConRol(t *testing.T) {
	token, err := jwt.Generate("secreto", "u-1", "ana", "EMPLOYEE", "heladeria", 5)
	require.NoError(t, err)

	claims, err := jwt.Parse("secreto", token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "ana", claims.Username)
	assert.Equal(t, "EMPLOYEE", claims.Role)
	assert.Equal(t, "heladeria", claims.Issuer)
}

func TestParse_FirmaIncorrecta(t *testing.T) {
	token, err := jwt.Generate("secreto", "u-1", "ana", "CLIENT", "heladeria", 5)
	require.NoError(t, err)

	_, err = jwt.Parse("otro-secreto", token)
	assert.Error(t, err)
}

func TestParse_TokenExpirado(t *testing.T) {
	token, err := jwt.Generate("secreto", "u-1", "ana", "CLIENT", "heladeria", -1)
	require.NoError(t, err)

	_, err = jwt.Parse("secreto", token)
	assert.Error(t, err)
}

func TestGenerate_SecretVacio(t *testing.T) {
	_, err := jwt.Generate("", "u-1", "ana", "CLIENT", "heladeria", 5)
	assert.Error(t, err)
}
