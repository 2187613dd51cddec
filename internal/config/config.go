package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Redis     RedisConfig     `mapstructure:"redis"`
	MySQL     MySQLConfig     `mapstructure:"mysql"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	WebSocket WebSocketConfig `mapstructure:"websocket"`
	Relay     RelayConfig     `mapstructure:"relay"`
	Log       LogConfig       `mapstructure:"log"`
	Instance  InstanceConfig  `mapstructure:"instance"`
}

type ServerConfig struct {
	Port int    `mapstructure:"port"`
	Host string `mapstructure:"host"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type MySQLConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

type JWTConfig struct {
	Secret string `mapstructure:"secret"`
	Issuer string `mapstructure:"issuer"`
}

type WebSocketConfig struct {
	PingInterval    time.Duration `mapstructure:"ping_interval"`
	ReadBufferSize  int           `mapstructure:"read_buffer_size"`
	WriteBufferSize int           `mapstructure:"write_buffer_size"`
	SendBuffer      int           `mapstructure:"send_buffer"`
	WriteWait       time.Duration `mapstructure:"write_wait"`
	MaxMessageSize  int64         `mapstructure:"max_message_size"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
}

type RelayConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Channel string `mapstructure:"channel"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type InstanceConfig struct {
	ID string `mapstructure:"id"`
}

var envBindings = map[string]string{
	"server.port":                 "SERVER_PORT",
	"server.host":                 "SERVER_HOST",
	"redis.address":               "REDIS_ADDRESS",
	"redis.password":              "REDIS_PASSWORD",
	"redis.db":                    "REDIS_DB",
	"mysql.dsn":                   "MYSQL_DSN",
	"mysql.max_open_conns":        "MYSQL_MAX_OPEN_CONNS",
	"mysql.max_idle_conns":        "MYSQL_MAX_IDLE_CONNS",
	"mysql.conn_max_lifetime":     "MYSQL_CONN_MAX_LIFETIME",
	"jwt.secret":                  "JWT_SECRET",
	"jwt.issuer":                  "JWT_ISSUER",
	"websocket.ping_interval":     "WS_PING_INTERVAL",
	"websocket.read_buffer_size":  "WS_READ_BUFFER_SIZE",
	"websocket.write_buffer_size": "WS_WRITE_BUFFER_SIZE",
	"websocket.send_buffer":       "WS_SEND_BUFFER",
	"websocket.write_wait":        "WS_WRITE_WAIT",
	"websocket.max_message_size":  "WS_MAX_MESSAGE_SIZE",
	"websocket.allowed_origins":   "WS_ALLOWED_ORIGINS",
	"relay.enabled":               "RELAY_ENABLED",
	"relay.channel":               "RELAY_CHANNEL",
	"log.level":                   "LOG_LEVEL",
	"instance.id":                 "INSTANCE_ID",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("mysql.dsn", "portal_user:portal_pass@tcp(localhost:3306)/job_portal?parseTime=true")
	v.SetDefault("mysql.max_open_conns", 25)
	v.SetDefault("mysql.max_idle_conns", 10)
	v.SetDefault("mysql.conn_max_lifetime", 5*time.Minute)
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.issuer", "job-portal")
	v.SetDefault("websocket.ping_interval", 30*time.Second)
	v.SetDefault("websocket.read_buffer_size", 1024)
	v.SetDefault("websocket.write_buffer_size", 1024)
	v.SetDefault("websocket.send_buffer", 256)
	v.SetDefault("websocket.write_wait", 10*time.Second)
	v.SetDefault("websocket.max_message_size", 4096)
	v.SetDefault("websocket.allowed_origins", []string{"*"})
	v.SetDefault("relay.enabled", true)
	v.SetDefault("relay.channel", "notification_commands")
	v.SetDefault("log.level", "info")
	v.SetDefault("instance.id", "notification-service-1")
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)

	v.AutomaticEnv()
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}
	return v
}

// Load reads config.yaml from the usual locations when present, then applies
// environment overrides on top of the defaults.
func Load() (*Config, error) {
	v := newViper()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/job-portal/")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	return unmarshal(v)
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(configPath string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", configPath, err)
	}

	return unmarshal(v)
}

func unmarshal(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate rejects settings the service cannot start with.
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return errors.New("jwt.secret must be set")
	}
	// The keep-alive schedule has one-second resolution.
	if c.WebSocket.PingInterval < time.Second {
		return fmt.Errorf("websocket.ping_interval must be at least 1s, got %s", c.WebSocket.PingInterval)
	}
	if c.WebSocket.SendBuffer <= 0 {
		return fmt.Errorf("websocket.send_buffer must be positive, got %d", c.WebSocket.SendBuffer)
	}
	return nil
}

// GetConfigString returns a formatted string representation of the config
func (c *Config) GetConfigString() string {
	return fmt.Sprintf(
		"Server: %s:%d, Redis: %s, Relay: %t(%s), Ping: %s, Instance: %s",
		c.Server.Host,
		c.Server.Port,
		c.Redis.Address,
		c.Relay.Enabled,
		c.Relay.Channel,
		c.WebSocket.PingInterval,
		c.Instance.ID,
	)
}
