package postgres

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inventario-sucursales/pkg/config"
)

func fixedResolver(ip string) func(string) (string, error) {
	return func(string) (string, error) {
		if ip == "" {
			return "", errors.New("sin IPv4")
		}
		return ip, nil
	}
}

func TestBuildPoolConfig(t *testing.T) {
	cfg := config.DBConfig{
		Host: "db.interno", Port: 5433, User: "app", Password: "secreto", DBName: "inv", SSLMode: "disable",
		MaxConns: 10, MinConns: 3,
	}
	pc, err := buildPoolConfig(cfg, fixedResolver("10.0.0.7"))
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.7", pc.ConnConfig.Host)
	assert.Equal(t, uint16(5433), pc.ConnConfig.Port)
	assert.Equal(t, "inv", pc.ConnConfig.Database)
	assert.Equal(t, int32(10), pc.MaxConns)
	assert.Equal(t, int32(3), pc.MinConns)
	assert.NotNil(t, pc.AfterConnect)
}

func TestBuildPoolConfig_SinIPv4ConservaHost(t *testing.T) {
	cfg := config.DBConfig{DatabaseURL: "postgres://app:x@supabase.example:6543/inv?sslmode=require", MinConns: 50}
	pc, err := buildPoolConfig(cfg, fixedResolver(""))
	require.NoError(t, err)
	assert.Equal(t, "supabase.example", pc.ConnConfig.Host)
	assert.Equal(t, uint16(6543), pc.ConnConfig.Port)
	assert.LessOrEqual(t, pc.MinConns, pc.MaxConns, "MinConns fuera de rango se ignora")
}

func TestWithIPv4(t *testing.T) {
	assert.Equal(t, "postgres://u@1.2.3.4:5432/db", withIPv4("postgres://u@host/db", fixedResolver("1.2.3.4")))
	assert.Equal(t, "host=x dbname=y", withIPv4("host=x dbname=y", fixedResolver("1.2.3.4")), "DSN clave=valor no se toca")
}
