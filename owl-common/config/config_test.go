package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDatabaseConfig_LoadFromEnv(t *testing.T) {
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("DB_NAME", "triage")

	cfg := DatabaseConfig{Host: "localhost", Port: 5432, User: "postgres", SSLMode: "disable"}
	cfg.LoadFromEnv("DB")

	assert.Equal(t, "db.internal", cfg.Host)
	assert.Equal(t, 6543, cfg.Port)
	assert.Equal(t, "postgres", cfg.User)
	assert.Equal(t, "triage", cfg.Database)
	assert.Equal(t, "host=db.internal port=6543 user=postgres password= dbname=triage sslmode=disable", cfg.GetDSN())
}

func TestMQTTConfig_LoadFromEnv_IgnoresInvalidQoS(t *testing.T) {
	t.Setenv("MQTT_QOS", "7")
	t.Setenv("MQTT_CONNECT_TIMEOUT", "3")

	cfg := MQTTConfig{QoS: 1}
	cfg.LoadFromEnv("MQTT")

	assert.Equal(t, byte(1), cfg.QoS)
	assert.Equal(t, 3*time.Second, cfg.ConnectTimeout)
}

func TestEnvHelpers_Defaults(t *testing.T) {
	t.Setenv("X_BOOL", "nope")
	t.Setenv("X_INT", "abc")
	t.Setenv("X_DUR", "250ms")

	assert.True(t, EnvBool("X_BOOL", true))
	assert.Equal(t, 9, EnvInt("X_INT", 9))
	assert.Equal(t, 250*time.Millisecond, EnvDuration("X_DUR", time.Second))
	assert.Equal(t, "def", EnvString("X_MISSING", "def"))
}
