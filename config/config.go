package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Nats     NatsConfig     `mapstructure:"nats"`
	Game     GameConfig     `mapstructure:"game"`
}

type ServerConfig struct {
	HTTPAddress    string `mapstructure:"http_address"`
	RPCAddress     string `mapstructure:"rpc_address"`
	MetricsAddress string `mapstructure:"metrics_address"`
}

type DatabaseConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// Driver selects the postgres implementation: "gorm" or "pq".
	Driver   string         `mapstructure:"driver"`
	Postgres PostgresConfig `mapstructure:"postgres"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
}

type NatsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	URL     string `mapstructure:"url"`
}

type GameConfig struct {
	InitialMoney     int `mapstructure:"initial_money"`
	CallDelaySeconds int `mapstructure:"call_delay_seconds"`
	IdleRoomMinutes  int `mapstructure:"idle_room_minutes"`
}

// CallDelay converts the configured Free-auction call gate to a duration.
func (g GameConfig) CallDelay() time.Duration {
	return time.Duration(g.CallDelaySeconds) * time.Second
}

// IdleRoomTTL is how long a fully disconnected room survives before sweep.
func (g GameConfig) IdleRoomTTL() time.Duration {
	return time.Duration(g.IdleRoomMinutes) * time.Minute
}

func LoadConfig(path string) (config *Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetDefault("server.http_address", ":8080")
	viper.SetDefault("server.rpc_address", ":8081")
	viper.SetDefault("server.metrics_address", ":9100")
	viper.SetDefault("database.driver", "gorm")
	viper.SetDefault("game.initial_money", 100)
	viper.SetDefault("game.call_delay_seconds", 3)
	viper.SetDefault("game.idle_room_minutes", 30)

	viper.AutomaticEnv()

	err = viper.ReadInConfig()
	if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	return
}
