package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

//go:embed config.yml
var embeddedConfig []byte

// DevJWTSecret is the insecure fallback signing secret used when no secret is
// configured. It exists so the server starts out of the box in development;
// any real deployment must set TABMIND_JWT_SECRET. Rotating the secret
// invalidates every outstanding token.
const DevJWTSecret = "dev_secret"

type Config struct {
	Mode     string `mapstructure:"mode"`
	Handlers struct {
		Prometheus struct {
			Port string `mapstructure:"port"`
		} `mapstructure:"prometheus"`
	} `mapstructure:"handlers"`
	Repositories struct {
		Postgres struct {
			Host     string `mapstructure:"host"`
			Password string `mapstructure:"password"`
			Port     string `mapstructure:"port"`
			Username string `mapstructure:"username"`
			DB       string `mapstructure:"db"`
			SSLMode  string `mapstructure:"sslmode"`
		} `mapstructure:"postgres"`
	} `mapstructure:"repositories"`
	Server struct {
		HTTPPort string        `mapstructure:"HTTPPort"`
		Timeout  time.Duration `mapstructure:"HTTPTimeout"`
	} `mapstructure:"server"`
	JWT    JWTConfig    `mapstructure:"jwt"`
	Gemini GeminiConfig `mapstructure:"gemini"`
	CORS   struct {
		AllowedOrigins []string `mapstructure:"allowedOrigins"`
	} `mapstructure:"cors"`
}

// JWTConfig holds the token signing parameters. The secret is read once at
// process start and injected into the issuer constructor; it is never read
// ad hoc from ambient state.
type JWTConfig struct {
	SecretKey string        `mapstructure:"secretKey"`
	Issuer    string        `mapstructure:"issuer"`
	TokenTTL  time.Duration `mapstructure:"tokenTTL"`
}

type GeminiConfig struct {
	Model     string        `mapstructure:"model"`
	ChatModel string        `mapstructure:"chatModel"`
	CacheTTL  time.Duration `mapstructure:"cacheTTL"`
}

func InitConfig() (Config, error) {
	var config Config
	v := viper.New()

	v.AddConfigPath(".")
	v.AddConfigPath("config")
	v.AddConfigPath("/app/config")

	v.SetConfigName("config")
	v.SetConfigType("yml")

	// Environment overrides for values that must not live in the YAML.
	v.SetEnvPrefix("TABMIND")
	v.AutomaticEnv()
	if err := v.BindEnv("jwt.secretKey", "TABMIND_JWT_SECRET"); err != nil {
		return Config{}, fmt.Errorf("failed to bind jwt secret env: %w", err)
	}
	if err := v.BindEnv("repositories.postgres.password", "TABMIND_POSTGRES_PASSWORD"); err != nil {
		return Config{}, fmt.Errorf("failed to bind postgres password env: %w", err)
	}

	err := v.ReadInConfig()
	if err != nil {
		fmt.Printf("Warning: Failed to find file-based config: %s. Falling back to embedded config.\n", err)
		if err = v.ReadConfig(bytes.NewReader(embeddedConfig)); err != nil {
			return Config{}, fmt.Errorf("failed to read embedded config: %s", err)
		}
	}

	if err = v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %s", err)
	}

	if config.JWT.SecretKey == "" {
		fmt.Println("Warning: no JWT secret configured, using insecure development default")
		config.JWT.SecretKey = DevJWTSecret
	}
	if config.JWT.TokenTTL <= 0 {
		config.JWT.TokenTTL = 7 * 24 * time.Hour
	}

	return config, nil
}
