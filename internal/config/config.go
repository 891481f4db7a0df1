package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all runtime configuration for the portal.
type Config struct {
	App struct {
		Port string `mapstructure:"port"`
		Env  string `mapstructure:"env"`
		// PublicURL is the externally visible origin of the portal, used to
		// build the success/cancel callback URLs handed to the payment
		// provider.
		PublicURL       string `mapstructure:"publicUrl"`
		ReadTimeout     int    `mapstructure:"readTimeout"`
		WriteTimeout    int    `mapstructure:"writeTimeout"`
		ShutdownTimeout int    `mapstructure:"shutdownTimeout"`
	} `mapstructure:"app"`
	Backend struct {
		// BaseURL of the remote API that owns users, plans and subscriptions.
		BaseURL string `mapstructure:"baseUrl"`
		Timeout int    `mapstructure:"timeout"`
	} `mapstructure:"backend"`
	Redis struct {
		Addr     string `mapstructure:"addr"`
		Password string `mapstructure:"password"`
		DB       int    `mapstructure:"db"`
	} `mapstructure:"redis"`
	Checkout struct {
		// PollInterval/PollMaxTries bound the post-payment subscription poll.
		PollInterval int `mapstructure:"pollInterval"`
		PollMaxTries int `mapstructure:"pollMaxTries"`
		// PendingTTL bounds how long a pending-payment marker survives.
		PendingTTL int `mapstructure:"pendingTtl"`
	} `mapstructure:"checkout"`
	Auth struct {
		// ResendCooldown throttles verification-code reissue requests.
		ResendCooldown int `mapstructure:"resendCooldown"`
	} `mapstructure:"auth"`
}

// BackendTimeout returns the backend HTTP client timeout.
func (c *Config) BackendTimeout() time.Duration {
	return time.Duration(c.Backend.Timeout) * time.Second
}

// PollInterval returns the delay between post-payment subscription polls.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Checkout.PollInterval) * time.Second
}

// PendingTTL returns the lifetime of the pending-payment marker.
func (c *Config) PendingTTL() time.Duration {
	return time.Duration(c.Checkout.PendingTTL) * time.Minute
}

// ResendCooldown returns the verification-code resend throttle window.
func (c *Config) ResendCooldown() time.Duration {
	return time.Duration(c.Auth.ResendCooldown) * time.Second
}

// Load reads configuration from config.yaml and the environment.
func Load(path string) (*Config, error) {
	if os.Getenv("APP_ENV") != "production" {
		// .env is optional outside production
		_ = godotenv.Load(path)
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		// Config file is optional; defaults plus env vars are enough to run.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("app.port", "8080")
	viper.SetDefault("app.env", "development")
	viper.SetDefault("app.publicUrl", "http://localhost:8080")
	viper.SetDefault("app.readTimeout", 10)
	// must outlast the bounded post-payment poll (pollInterval * pollMaxTries)
	viper.SetDefault("app.writeTimeout", 30)
	viper.SetDefault("app.shutdownTimeout", 10)
	viper.SetDefault("backend.baseUrl", "https://dev.prospecttrade.org/api")
	viper.SetDefault("backend.timeout", 15)
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("checkout.pollInterval", 2)
	viper.SetDefault("checkout.pollMaxTries", 10)
	viper.SetDefault("checkout.pendingTtl", 30)
	viper.SetDefault("auth.resendCooldown", 60)
}
