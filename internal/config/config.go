package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel string `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort string `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	Redis    Redis  `yaml:"redis"`
	Game     Game   `yaml:"game"`
}

type Redis struct {
	Host string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
}

type Game struct {
	GridSize          int           `yaml:"grid-size" env:"GAME_GRID_SIZE" env-default:"3"`
	AIMark            string        `yaml:"ai-mark" env:"GAME_AI_MARK" env-default:"O"`
	HumanMark         string        `yaml:"human-mark" env:"GAME_HUMAN_MARK" env-default:"X"`
	AIFirst           bool          `yaml:"ai-first" env:"GAME_AI_FIRST"`
	AIDelay           time.Duration `yaml:"ai-delay" env:"GAME_AI_DELAY" env-default:"1s"`
	SessionTTL        time.Duration `yaml:"session-ttl" env:"GAME_SESSION_TTL" env-default:"0s"`
	DefaultDifficulty string        `yaml:"default-difficulty" env:"GAME_DEFAULT_DIFFICULTY" env-default:"easy"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}

	return config
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
