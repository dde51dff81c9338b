package http_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apphttp "github.com/jhoicas/Inventario-sucursales/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/Inventario-sucursales/pkg/jwt"
)

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testUserID    = "00000000-0000-0000-0000-000000000001"
	testBranchID  = "00000000-0000-0000-0000-000000000002"
	testIssuer    = "inventario-sucursales-test"
	testExpMin    = 60
)

func identity(role string) pkgjwt.Identity {
	return pkgjwt.Identity{UserID: testUserID, BranchID: testBranchID, Role: role}
}

// tokenForRole genera el header Authorization con el rol indicado.
func tokenForRole(t *testing.T, role string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, identity(role), testIssuer, testExpMin)
	require.NoError(t, err, "debe generarse un token JWT válido")
	return "Bearer " + tok
}

// protectedApp expone GET /protected detrás de AuthMiddleware + RequireRole.
func protectedApp(allowedRoles ...string) *fiber.App {
	app := fiber.New()
	app.Get("/protected",
		apphttp.AuthMiddleware(testJWTSecret),
		apphttp.RequireRole(allowedRoles...),
		func(c *fiber.Ctx) error {
			return c.JSON(fiber.Map{
				"user_id":   apphttp.GetUserID(c),
				"branch_id": apphttp.GetBranchID(c),
				"role":      apphttp.GetRole(c),
			})
		},
	)
	return app
}

func get(t *testing.T, app *fiber.App, authHeader string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestRequireRole_PoliticaDeRoles(t *testing.T) {
	warehouse := []string{apphttp.RoleAdmin, apphttp.RoleBodeguero}
	sales := []string{apphttp.RoleAdmin, apphttp.RoleVendedor, apphttp.RoleTecnico}

	cases := []struct {
		name    string
		allowed []string
		role    string
		status  int
	}{
		{"admin en ruta de bodega", warehouse, apphttp.RoleAdmin, http.StatusOK},
		{"bodeguero en ruta de bodega", warehouse, apphttp.RoleBodeguero, http.StatusOK},
		{"vendedor en ruta de bodega", warehouse, apphttp.RoleVendedor, http.StatusForbidden},
		{"tecnico en ruta de bodega", warehouse, apphttp.RoleTecnico, http.StatusForbidden},
		{"tecnico en ruta de órdenes", sales, apphttp.RoleTecnico, http.StatusOK},
		{"bodeguero en ruta de órdenes", sales, apphttp.RoleBodeguero, http.StatusForbidden},
		{"rol en mayúsculas", warehouse, "BODEGUERO", http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := get(t, protectedApp(tc.allowed...), tokenForRole(t, tc.role))
			assert.Equal(t, tc.status, status, body)
			if tc.status == http.StatusForbidden {
				assert.Contains(t, body, "FORBIDDEN")
			}
		})
	}
}

func TestAuthMiddleware_Rechazos(t *testing.T) {
	app := protectedApp(apphttp.RoleAdmin)
	noRole, err := pkgjwt.Generate(testJWTSecret, identity(""), testIssuer, testExpMin)
	require.NoError(t, err)
	noUser, err := pkgjwt.Generate(testJWTSecret, pkgjwt.Identity{Role: apphttp.RoleAdmin}, testIssuer, testExpMin)
	require.NoError(t, err)

	cases := []struct {
		name   string
		header string
		code   string
	}{
		{"sin header", "", "MISSING_TOKEN"},
		{"esquema distinto", "Basic abc", "INVALID_TOKEN"},
		{"token malformado", "Bearer token.invalido.aqui", "INVALID_TOKEN"},
		{"token sin usuario", "Bearer " + noUser, "INVALID_TOKEN"},
		{"token sin rol", "Bearer " + noRole, "MISSING_ROLE"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := get(t, app, tc.header)
			assert.Equal(t, http.StatusUnauthorized, status)
			assert.Contains(t, body, tc.code)
		})
	}
}

func TestAuthMiddleware_CargaIdentidad(t *testing.T) {
	status, raw := get(t, protectedApp(apphttp.RoleVendedor), tokenForRole(t, apphttp.RoleVendedor))
	require.Equal(t, http.StatusOK, status)

	var body map[string]string
	require.NoError(t, json.Unmarshal([]byte(raw), &body))
	assert.Equal(t, testUserID, body["user_id"])
	assert.Equal(t, testBranchID, body["branch_id"])
	assert.Equal(t, apphttp.RoleVendedor, body["role"])
}
