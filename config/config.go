package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Game     GameConfig     `mapstructure:"game"`
}

type ServerConfig struct {
	HTTPAddress    string `mapstructure:"http_address"`
	RPCAddress     string `mapstructure:"rpc_address"`
	MetricsAddress string `mapstructure:"metrics_address"`
}

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	// UseORM 为 false 时使用原生 database/sql 实现
	UseORM bool `mapstructure:"use_orm"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
}

type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

// GameConfig 游戏规则参数
type GameConfig struct {
	RoundTime       time.Duration `mapstructure:"round_time"`       // 每轮答题时间
	RoundGrace      time.Duration `mapstructure:"round_grace"`      // 截止后的宽限期
	Intermission    time.Duration `mapstructure:"intermission"`     // 轮次之间的间隔
	RoundsPerMatch  int           `mapstructure:"rounds_per_match"` // 一局的总轮数
	MaxRoomPlayers  int           `mapstructure:"max_room_players"`
	MinBet          int64         `mapstructure:"min_bet"`
	MaxBet          int64         `mapstructure:"max_bet"`
	DefaultBet      int64         `mapstructure:"default_bet"`
	StartingBalance int64         `mapstructure:"starting_balance"`
	DailyBonus      int64         `mapstructure:"daily_bonus"`
}

func setDefaults() {
	viper.SetDefault("server.http_address", ":8080")
	viper.SetDefault("server.rpc_address", ":8081")
	viper.SetDefault("server.metrics_address", ":9090")
	viper.SetDefault("database.use_orm", true)
	viper.SetDefault("auth.jwt_secret", "change-me-in-production")
	viper.SetDefault("auth.token_ttl", 7*24*time.Hour)
	viper.SetDefault("game.round_time", 30*time.Second)
	viper.SetDefault("game.round_grace", 2*time.Second)
	viper.SetDefault("game.intermission", 5*time.Second)
	viper.SetDefault("game.rounds_per_match", 10)
	viper.SetDefault("game.max_room_players", 8)
	viper.SetDefault("game.min_bet", 10)
	viper.SetDefault("game.max_bet", 10000)
	viper.SetDefault("game.default_bet", 100)
	viper.SetDefault("game.starting_balance", 10000)
	viper.SetDefault("game.daily_bonus", 1000)
}

func LoadConfig(path string) (config *Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	setDefaults()
	viper.AutomaticEnv()

	err = viper.ReadInConfig()
	if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	return
}
