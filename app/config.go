package app

import (
	"time"

	"github.com/dmitrymomot/sessionguard/core/auth"
	"github.com/dmitrymomot/sessionguard/integration/database/redis"
)

// Session store backends.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

type Config struct {
	Flags auth.Flags
	Redis redis.Config

	APIBaseURL  string        `env:"API_BASE_URL,required"`
	RefreshPath string        `env:"TOKEN_REFRESH_PATH" envDefault:"/gateway/ng/api/user/refreshToken"`
	HTTPTimeout time.Duration `env:"HTTP_TIMEOUT" envDefault:"30s"`

	// Initial session state written to the store on start.
	AccountID      string  `env:"ACCOUNT_ID"`
	Username       string  `env:"SESSION_USERNAME"`
	Token          string  `env:"SESSION_TOKEN"`
	TimeoutMinutes float64 `env:"SESSION_TIMEOUT_MINUTES" envDefault:"1440"`

	SessionStore string `env:"SESSION_STORE" envDefault:"memory"`

	MonitorEndpoint string `env:"MONITOR_ENDPOINT"`
	MonitorAPIKey   string `env:"MONITOR_API_KEY"`

	AppName    string `env:"APP_NAME" envDefault:"sessionguard"`
	AppVersion string `env:"APP_VERSION" envDefault:"dev"`
	Env        string `env:"APP_ENV" envDefault:"development"`
	LogLevel   string `env:"LOG_LEVEL"`
}
