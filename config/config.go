package config

import (
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

type Config struct {
	Server struct {
		Port string
	}
	Database struct {
		DSN string
	}
	Redis struct {
		Addr     string
		Password string
		DB       int
	}
	JWT struct {
		Secret string
		TTL    time.Duration
	}
	Log struct {
		Level string
	}
	Game GameConfig
}

// GameConfig 对局节奏和托管参数
type GameConfig struct {
	DealDelay      time.Duration
	RevealTicks    int
	RevealInterval time.Duration
	StartingScore  int

	BotDelayMin               time.Duration
	BotDelayMax               time.Duration
	BotPlayProbability        float64
	BotRevealHeartProbability float64
	BotRevealBlackProbability float64

	WorkerPoolSize int
	ListingTTL     time.Duration
	IdleRoomTTL    time.Duration
	SweepSpec      string
}

var C Config

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", ":8080")
	v.SetDefault("database.dsn", "")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("jwt.secret", "change-me")
	v.SetDefault("jwt.ttl", "24h")
	v.SetDefault("log.level", "info")

	v.SetDefault("game.dealDelay", "1500ms")
	v.SetDefault("game.revealTicks", 10)
	v.SetDefault("game.revealInterval", "1s")
	v.SetDefault("game.startingScore", 100)
	v.SetDefault("game.botDelayMin", "1s")
	v.SetDefault("game.botDelayMax", "2s")
	v.SetDefault("game.botPlayProbability", 0.7)
	v.SetDefault("game.botRevealHeartProbability", 0.5)
	v.SetDefault("game.botRevealBlackProbability", 0.3)
	v.SetDefault("game.workerPoolSize", 256)
	v.SetDefault("game.listingTTL", "30m")
	v.SetDefault("game.idleRoomTTL", "30m")
	v.SetDefault("game.sweepSpec", "@every 1m")
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("REDCATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Default 只有内置默认值的配置
func Default() Config {
	var c Config
	_ = newViper().Unmarshal(&c)
	return c
}

// Load 读取配置文件；文件不存在时只用默认值和环境变量
func Load(path string) (Config, error) {
	// .env 可选
	_ = godotenv.Load()

	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return Config{}, errors.Wrapf(err, "read config %s", path)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, errors.Wrap(err, "parse config")
	}
	if c.Game.BotDelayMax < c.Game.BotDelayMin {
		return Config{}, errors.Errorf("game.botDelayMax %s < game.botDelayMin %s", c.Game.BotDelayMax, c.Game.BotDelayMin)
	}
	C = c
	return c, nil
}
