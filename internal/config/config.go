package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/rocketscienceinc/gomoku-arbiter/internal/apperror"
	"github.com/rocketscienceinc/gomoku-arbiter/internal/entity"
)

const (
	SurfaceWeb      = "web"
	SurfaceTerminal = "terminal"
)

type Config struct {
	LogLevel    string        `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	LogFile     string        `yaml:"log-file" env:"LOG_FILE" env-default:"gomoku-arbiter.log"`
	HTTPPort    string        `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	Surface     string        `yaml:"surface" env:"SURFACE" env-default:"web"`
	Mode        string        `yaml:"mode" env:"MODE" env-default:"computer-vs-computer"`
	HumanColor  string        `yaml:"human-color" env:"HUMAN_COLOR" env-default:"black"`
	HumanName   string        `yaml:"human-name" env:"HUMAN_NAME" env-default:"human"`
	MoveTimeout time.Duration `yaml:"move-timeout" env:"MOVE_TIMEOUT" env-default:"10s"`
	MatchTTL    time.Duration `yaml:"match-ttl" env:"MATCH_TTL" env-default:"1h"`
	KeepServing bool          `yaml:"keep-serving" env:"KEEP_SERVING" env-default:"true"`
	Black       Participant   `yaml:"black" env-prefix:"BLACK_"`
	White       Participant   `yaml:"white" env-prefix:"WHITE_"`
	AI          Participant   `yaml:"ai" env-prefix:"AI_"`
	Redis       Redis         `yaml:"redis" env-prefix:"REDIS_"`
}

type Participant struct {
	Name string `yaml:"name" env:"NAME"`
	API  string `yaml:"api" env:"API"`
}

type Redis struct {
	Host     string `yaml:"host" env:"HOST"`
	Port     string `yaml:"port" env:"PORT" env-default:"6379"`
	Password string `yaml:"password" env:"PASSWORD"`
	DB       int    `yaml:"db" env:"DB" env-default:"0"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(err)
	}

	return config
}

// Load - reads the file at path, applies env overrides and validates the result.
func Load(path string) (*Config, error) {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		return nil, fmt.Errorf("unable to load config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return config, nil
}

func (that *Config) Validate() error {
	switch that.Surface {
	case SurfaceWeb, SurfaceTerminal:
	default:
		return fmt.Errorf("surface %q: %w", that.Surface, apperror.ErrUnknownSurface)
	}

	switch that.Mode {
	case entity.ModeComputerVsComputer:
		if that.Black.API == "" || that.White.API == "" {
			return fmt.Errorf("black and white api: %w", apperror.ErrEndpointIsRequired)
		}
	case entity.ModeHumanVsComputer:
		if _, err := entity.ParseColor(that.HumanColor); err != nil {
			return fmt.Errorf("human-color: %w", err)
		}
		if that.AI.API == "" {
			return fmt.Errorf("ai api: %w", apperror.ErrEndpointIsRequired)
		}
	default:
		return fmt.Errorf("mode %q: %w", that.Mode, apperror.ErrUnknownMode)
	}

	return nil
}

// UsesRedis - an empty redis host keeps match snapshots in memory.
func (that *Config) UsesRedis() bool {
	return that.Redis.Host != ""
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
