package config

import (
	"os"
	"testing"
	"time"
)

const testSecret = "this_is_a_test_secret_key_with_32_chars_minimum"

func TestLoadConfig(t *testing.T) {
	os.Clearenv()
	os.Setenv("DB_PASSWORD", "test_password")
	os.Setenv("JWT_SECRET_KEY", testSecret)
	os.Setenv("FEED_MAX_LIMIT", "50")
	defer os.Clearenv()

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.DBDriver != DriverPostgres {
		t.Errorf("DBDriver = %q, want %q", cfg.DBDriver, DriverPostgres)
	}
	if cfg.DBPassword != "test_password" {
		t.Errorf("DBPassword = %q, want %q", cfg.DBPassword, "test_password")
	}
	if cfg.FeedDefaultLimit != 24 {
		t.Errorf("FeedDefaultLimit = %d, want 24", cfg.FeedDefaultLimit)
	}
	if cfg.FeedMaxLimit != 50 {
		t.Errorf("FeedMaxLimit = %d, want 50", cfg.FeedMaxLimit)
	}
	if cfg.NATSSubject != "journal.entries.mutated" {
		t.Errorf("NATSSubject = %q, want %q", cfg.NATSSubject, "journal.entries.mutated")
	}
}

func TestLoadConfig_SQLiteWithoutPassword(t *testing.T) {
	os.Clearenv()
	os.Setenv("DB_DRIVER", "SQLite")
	os.Setenv("DB_PATH", "/tmp/journal.db")
	os.Setenv("JWT_SECRET_KEY", testSecret)
	defer os.Clearenv()

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.DBDriver != DriverSQLite {
		t.Errorf("DBDriver = %q, want %q", cfg.DBDriver, DriverSQLite)
	}
	if cfg.GetDSN() != "/tmp/journal.db" {
		t.Errorf("GetDSN() = %q, want %q", cfg.GetDSN(), "/tmp/journal.db")
	}
}

func TestLoadConfig_MissingRequired(t *testing.T) {
	tests := []struct {
		name    string
		envVars map[string]string
	}{
		{
			name: "Missing DB_PASSWORD",
			envVars: map[string]string{
				"JWT_SECRET_KEY": testSecret,
			},
		},
		{
			name: "Missing JWT_SECRET_KEY",
			envVars: map[string]string{
				"DB_PASSWORD": "password",
			},
		},
		{
			name: "Unknown driver",
			envVars: map[string]string{
				"DB_DRIVER":      "mysql",
				"DB_PASSWORD":    "password",
				"JWT_SECRET_KEY": testSecret,
			},
		},
		{
			name: "Default limit above max",
			envVars: map[string]string{
				"DB_PASSWORD":        "password",
				"JWT_SECRET_KEY":     testSecret,
				"FEED_DEFAULT_LIMIT": "200",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Clearenv()
			defer os.Clearenv()

			for k, v := range tt.envVars {
				os.Setenv(k, v)
			}

			_, err := LoadConfig()
			if err == nil {
				t.Error("LoadConfig() expected error, got nil")
			}
		})
	}
}

func TestValidate_JWTSecretTooShort(t *testing.T) {
	cfg := &Config{
		DBDriver:         DriverPostgres,
		DBPassword:       "password",
		JWTSecret:        "short",
		FeedDefaultLimit: 24,
		FeedMaxLimit:     100,
	}

	if err := cfg.Validate(); err == nil {
		t.Error("Validate() expected error for short JWT secret, got nil")
	}
}

func TestValidateProductionSecurity(t *testing.T) {
	tests := []struct {
		name      string
		cfg       *Config
		shouldErr bool
	}{
		{
			name: "Valid production config",
			cfg: &Config{
				AppEnv:    "production",
				DBDriver:  DriverPostgres,
				DBSSLMode: "require",
				JWTSecret: "production_secret_key_different_from_default",
			},
			shouldErr: false,
		},
		{
			name: "Development mode - no validation",
			cfg: &Config{
				AppEnv:    "development",
				DBDriver:  DriverSQLite,
				DBSSLMode: "disable",
			},
			shouldErr: false,
		},
		{
			name: "Production on sqlite",
			cfg: &Config{
				AppEnv:    "production",
				DBDriver:  DriverSQLite,
				DBSSLMode: "require",
				JWTSecret: "production_secret_key_different_from_default",
			},
			shouldErr: true,
		},
		{
			name: "Production without SSL",
			cfg: &Config{
				AppEnv:    "production",
				DBDriver:  DriverPostgres,
				DBSSLMode: "disable",
				JWTSecret: "production_secret_key_different_from_default",
			},
			shouldErr: true,
		},
		{
			name: "Production with default JWT secret",
			cfg: &Config{
				AppEnv:    "production",
				DBDriver:  DriverPostgres,
				DBSSLMode: "require",
				JWTSecret: defaultJWTSecret,
			},
			shouldErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.ValidateProductionSecurity()
			if tt.shouldErr && err == nil {
				t.Error("ValidateProductionSecurity() expected error, got nil")
			}
			if !tt.shouldErr && err != nil {
				t.Errorf("ValidateProductionSecurity() unexpected error = %v", err)
			}
		})
	}
}

func TestGetDSN(t *testing.T) {
	cfg := &Config{
		DBDriver:   DriverPostgres,
		DBHost:     "localhost",
		DBPort:     "5432",
		DBUser:     "testuser",
		DBPassword: "testpass",
		DBName:     "testdb",
		DBSSLMode:  "disable",
	}

	expected := "host=localhost port=5432 user=testuser password=testpass dbname=testdb sslmode=disable"
	if dsn := cfg.GetDSN(); dsn != expected {
		t.Errorf("GetDSN() = %q, want %q", dsn, expected)
	}
}

func TestDurations(t *testing.T) {
	cfg := &Config{
		RequestTimeoutSeconds: 10,
		RateLimitWindowSecond: 60,
	}

	if got := cfg.GetRequestTimeout(); got != 10*time.Second {
		t.Errorf("GetRequestTimeout() = %v, want %v", got, 10*time.Second)
	}
	if got := cfg.GetRateLimitWindow(); got != time.Minute {
		t.Errorf("GetRateLimitWindow() = %v, want %v", got, time.Minute)
	}
}
