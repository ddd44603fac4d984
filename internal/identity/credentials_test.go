package identity

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/InternBridge/internship-service/internal/config"
)

func credJSON() []byte {
	return []byte(`{
		"endpoint": "https://sso.example.com",
		"clientId": "client-1",
		"clientSecret": "secret-1",
		"organization": "org",
		"application": "app"
	}`)
}

func TestLoadCredentials_PlainEnvWins(t *testing.T) {
	t.Chdir(t.TempDir())
	// A base64 source is also present but must not be consulted.
	t.Setenv(envCredentialsBase64, base64.StdEncoding.EncodeToString([]byte(`{"endpoint":"https://other","clientId":"x","clientSecret":"y"}`)))

	cred, tried := LoadCredentials(config.CasdoorConfig{
		Endpoint:     "https://sso.example.com",
		ClientID:     "client-1",
		ClientSecret: "secret-1",
	})
	require.NotNil(t, cred)
	assert.Empty(t, tried)
	assert.Equal(t, "https://sso.example.com", cred.Endpoint)
}

func TestLoadCredentials_Base64(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv(envCredentialsBase64, base64.StdEncoding.EncodeToString(credJSON()))

	cred, _ := LoadCredentials(config.CasdoorConfig{})
	require.NotNil(t, cred)
	assert.Equal(t, "client-1", cred.ClientID)
	assert.Equal(t, "org", cred.Organization)
}

func TestLoadCredentials_BadBase64FallsThroughToFile(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv(envCredentialsBase64, "%%% not base64 %%%")

	path := filepath.Join(t.TempDir(), "creds.json")
	require.NoError(t, os.WriteFile(path, credJSON(), 0o600))
	t.Setenv(envCredentialsPath, path)

	cred, _ := LoadCredentials(config.CasdoorConfig{})
	require.NotNil(t, cred)
	assert.Equal(t, "secret-1", cred.ClientSecret)
}

func TestLoadCredentials_DefaultPath(t *testing.T) {
	t.Chdir(t.TempDir())
	require.NoError(t, os.WriteFile("casdoor-credentials.json", credJSON(), 0o600))

	cred, _ := LoadCredentials(config.CasdoorConfig{})
	require.NotNil(t, cred)
	assert.Equal(t, "https://sso.example.com", cred.Endpoint)
}

func TestLoadCredentials_NothingFoundReportsAttempts(t *testing.T) {
	t.Chdir(t.TempDir())

	cred, tried := LoadCredentials(config.CasdoorConfig{})
	assert.Nil(t, cred)
	assert.Contains(t, tried, "casdoor-credentials.json")
	assert.Contains(t, tried, "config/casdoor-credentials.json")
}

func TestLoadCredentials_PersistIsOptInAndNeverOverwrites(t *testing.T) {
	t.Run("no write without opt-in", func(t *testing.T) {
		t.Chdir(t.TempDir())
		t.Setenv(envCredentialsBase64, base64.StdEncoding.EncodeToString(credJSON()))

		cred, _ := LoadCredentials(config.CasdoorConfig{})
		require.NotNil(t, cred)

		_, err := os.Stat("casdoor-credentials.json")
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("writes when opted in", func(t *testing.T) {
		t.Chdir(t.TempDir())
		t.Setenv(envCredentialsBase64, base64.StdEncoding.EncodeToString(credJSON()))
		t.Setenv(envCredentialsWrite, "true")

		cred, _ := LoadCredentials(config.CasdoorConfig{})
		require.NotNil(t, cred)

		data, err := os.ReadFile("casdoor-credentials.json")
		require.NoError(t, err)
		assert.Contains(t, string(data), "client-1")
	})

	t.Run("keeps an existing file intact", func(t *testing.T) {
		t.Chdir(t.TempDir())
		require.NoError(t, os.WriteFile("casdoor-credentials.json", []byte(`{"sentinel":true}`), 0o600))
		t.Setenv(envCredentialsBase64, base64.StdEncoding.EncodeToString(credJSON()))
		t.Setenv(envCredentialsWrite, "true")

		cred, _ := LoadCredentials(config.CasdoorConfig{})
		require.NotNil(t, cred)

		data, err := os.ReadFile("casdoor-credentials.json")
		require.NoError(t, err)
		assert.Contains(t, string(data), "sentinel")
	})
}
