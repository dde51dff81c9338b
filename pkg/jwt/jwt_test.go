package jwt_test

import (
	"testing"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inventario-sucursales/pkg/jwt"
)

const secret = "secreto-de-prueba"

func TestGenerateParse(t *testing.T) {
	tok, err := jwt.Generate(secret, jwt.Identity{UserID: "u1", BranchID: "b1", Role: "bodeguero"}, "inv", 5)
	require.NoError(t, err)

	id, err := jwt.Parse(secret, tok)
	require.NoError(t, err)
	assert.Equal(t, jwt.Identity{UserID: "u1", BranchID: "b1", Role: "bodeguero"}, id)
}

func TestParse_Rechazos(t *testing.T) {
	valid, err := jwt.Generate(secret, jwt.Identity{UserID: "u1", Role: "admin"}, "inv", 5)
	require.NoError(t, err)
	expired, err := jwt.Generate(secret, jwt.Identity{UserID: "u1", Role: "admin"}, "inv", -1)
	require.NoError(t, err)
	none, err := gojwt.NewWithClaims(gojwt.SigningMethodNone, gojwt.MapClaims{"user_id": "u1"}).
		SignedString(gojwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = jwt.Parse("otro-secreto", valid)
	assert.Error(t, err, "firma con otro secreto")
	_, err = jwt.Parse(secret, expired)
	assert.Error(t, err, "token expirado")
	_, err = jwt.Parse(secret, none)
	assert.Error(t, err, "alg none")
	_, err = jwt.Parse("", valid)
	assert.Error(t, err, "secreto vacío")
}

func TestParse_SubjectComoUsuario(t *testing.T) {
	tok, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, gojwt.MapClaims{"sub": "u9", "role": "vendedor"}).
		SignedString([]byte(secret))
	require.NoError(t, err)

	id, err := jwt.Parse(secret, tok)
	require.NoError(t, err)
	assert.Equal(t, "u9", id.UserID)
	assert.Equal(t, "vendedor", id.Role)
}

func TestGenerate_SecretoVacio(t *testing.T) {
	_, err := jwt.Generate("", jwt.Identity{UserID: "u1"}, "inv", 5)
	assert.Error(t, err)
}
