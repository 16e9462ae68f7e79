package music

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the music module configuration loaded from environment
// variables. The defaults are safe for production; tests inject smaller
// values through application.Settings directly.
type Config struct {
	QueueIdleTimeout time.Duration `env:"MUSIC_QUEUE_IDLE_TIMEOUT" envDefault:"300s"`
	ConnectTimeout   time.Duration `env:"MUSIC_CONNECT_TIMEOUT" envDefault:"15s"`
	ConnectAttempts  int           `env:"MUSIC_CONNECT_ATTEMPTS" envDefault:"3"`
	ConnectBackoff   time.Duration `env:"MUSIC_CONNECT_BACKOFF" envDefault:"3s"`
	SettleDelay      time.Duration `env:"MUSIC_CONNECT_SETTLE_DELAY" envDefault:"1s"`
	LivenessInterval time.Duration `env:"MUSIC_LIVENESS_INTERVAL" envDefault:"1s"`
	LeaveGracePeriod time.Duration `env:"MUSIC_LEAVE_GRACE_PERIOD" envDefault:"10s"`
	DefaultVolume    int           `env:"MUSIC_DEFAULT_VOLUME" envDefault:"50"`
	ResolveTimeout   time.Duration `env:"MUSIC_RESOLVE_TIMEOUT" envDefault:"30s"`
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
