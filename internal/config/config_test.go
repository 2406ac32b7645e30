package config

import (
	"flag"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfig(t *testing.T) {
	type want struct {
		serverAddress   string
		baseURL         string
		databaseDSN     string
		fileStoragePath string
		secretKey       string
		tokenTTL        time.Duration
		keyLength       int
		keyAttempts     int
		shouldError     bool
		errContains     string
	}

	tests := []struct {
		name    string
		envVars map[string]string
		flags   []string
		want    want
	}{
		{
			name:    "default values",
			envVars: map[string]string{},
			flags:   []string{},
			want: want{
				serverAddress: "localhost:8080",
				baseURL:       "http://localhost:8080",
				secretKey:     DefaultSecretKey,
				tokenTTL:      time.Hour,
				keyLength:     5,
				keyAttempts:   10,
			},
		},
		{
			name: "environment variables only",
			envVars: map[string]string{
				"SERVER_ADDRESS":    "localhost:8888",
				"BASE_URL":          "http://example.com",
				"DATABASE_DSN":      "postgres://scissors@localhost/scissors",
				"FILE_STORAGE_PATH": "/tmp/links.json",
				"SECRET_KEY":        "env-secret",
				"TOKEN_TTL":         "15m",
				"KEY_LENGTH":        "7",
				"KEY_ATTEMPTS":      "3",
			},
			flags: []string{},
			want: want{
				serverAddress:   "localhost:8888",
				baseURL:         "http://example.com",
				databaseDSN:     "postgres://scissors@localhost/scissors",
				fileStoragePath: "/tmp/links.json",
				secretKey:       "env-secret",
				tokenTTL:        15 * time.Minute,
				keyLength:       7,
				keyAttempts:     3,
			},
		},
		{
			name:    "flags only",
			envVars: map[string]string{},
			flags: []string{
				"-a", "localhost:9999",
				"-b", "http://myserver.com",
				"-d", "postgres://flag@localhost/db",
				"-s", "flag-secret",
				"-t", "2h",
			},
			want: want{
				serverAddress: "localhost:9999",
				baseURL:       "http://myserver.com",
				databaseDSN:   "postgres://flag@localhost/db",
				secretKey:     "flag-secret",
				tokenTTL:      2 * time.Hour,
				keyLength:     5,
				keyAttempts:   10,
			},
		},
		{
			name: "environment variables override flags",
			envVars: map[string]string{
				"SERVER_ADDRESS": "env-server:7777",
				"BASE_URL":       "http://env-url.com",
				"SECRET_KEY":     "env-secret",
			},
			flags: []string{"-a", "flag-server:8888", "-b", "http://flag-url.com", "-s", "flag-secret"},
			want: want{
				serverAddress: "env-server:7777",
				baseURL:       "http://env-url.com",
				secretKey:     "env-secret",
				tokenTTL:      time.Hour,
				keyLength:     5,
				keyAttempts:   10,
			},
		},
		{
			name: "empty values",
			envVars: map[string]string{
				"SERVER_ADDRESS": "",
				"BASE_URL":       "",
			},
			flags: []string{"-a", "", "-b", "", "-s", ""},
			want: want{
				serverAddress: "localhost:8080",
				baseURL:       "http://localhost:8080",
				secretKey:     DefaultSecretKey,
				tokenTTL:      time.Hour,
				keyLength:     5,
				keyAttempts:   10,
			},
		},
		{
			name: "non-positive key length",
			envVars: map[string]string{
				"KEY_LENGTH": "0",
			},
			flags: []string{},
			want: want{
				shouldError: true,
				errContains: "key length must be positive",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Clearenv()
			flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.ExitOnError)

			for key, value := range tt.envVars {
				os.Setenv(key, value)
			}

			os.Args = append([]string{"test"}, tt.flags...)

			cfg, err := ParseFlags()

			if tt.want.shouldError {
				require.Error(t, err, "expected error but got none")
				assert.Contains(t, err.Error(), tt.want.errContains)
				return
			}

			require.NoError(t, err, "unexpected error")

			assert.Equal(t, tt.want.serverAddress, cfg.ServerAddress, "server address mismatch")
			assert.Equal(t, tt.want.baseURL, cfg.BaseURL, "base URL mismatch")
			assert.Equal(t, tt.want.databaseDSN, cfg.DatabaseDSN, "database DSN mismatch")
			assert.Equal(t, tt.want.fileStoragePath, cfg.FileStoragePath, "file storage path mismatch")
			assert.Equal(t, tt.want.secretKey, cfg.SecretKey, "secret key mismatch")
			assert.Equal(t, tt.want.tokenTTL, cfg.TokenTTL, "token TTL mismatch")
			assert.Equal(t, tt.want.keyLength, cfg.KeyLength, "key length mismatch")
			assert.Equal(t, tt.want.keyAttempts, cfg.KeyAttempts, "key attempts mismatch")
		})
	}
}

func TestValidate(t *testing.T) {
	cfg := &Config{
		ServerAddress: "localhost:8080",
		BaseURL:       "http://localhost:8080",
		SecretKey:     "secret",
		TokenTTL:      time.Minute,
		KeyLength:     5,
		KeyAttempts:   1,
	}
	require.NoError(t, cfg.Validate())

	cfg.TokenTTL = -time.Minute
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "token TTL must be positive")
}
