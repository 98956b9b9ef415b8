package config

import (
	"time"

	"github.com/spf13/viper"

	pkgconfig "github.com/AC-trading/ac-trading/pkg/config"
	"github.com/AC-trading/ac-trading/pkg/database"
	"github.com/AC-trading/ac-trading/pkg/log"
	"github.com/AC-trading/ac-trading/pkg/storage"
)

type Config struct {
	Server    ServerConfig
	Database  database.Config
	Redis     RedisConfig
	Kafka     KafkaConfig
	JWT       JWTConfig
	WebSocket WebSocketConfig
	Storage   StorageConfig
	Identity  IdentityConfig
	Log       log.Config
}

type ServerConfig struct {
	Host string
	Port int
}

type RedisConfig struct {
	Address  string
	Password string
	DB       int
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

type KafkaConfig struct {
	Enabled    bool
	Brokers    string
	Topic      string
	Partitions int
}

type JWTConfig struct {
	Secret     string
	Issuer     string
	AccessTTL  time.Duration `mapstructure:"access_ttl"`
	RefreshTTL time.Duration `mapstructure:"refresh_ttl"`
}

type WebSocketConfig struct {
	PingInterval     time.Duration `mapstructure:"ping_interval"`
	PongWait         time.Duration `mapstructure:"pong_wait"`
	WriteWait        time.Duration `mapstructure:"write_wait"`
	HandshakeTimeout time.Duration `mapstructure:"handshake_timeout"`
	MaxMessageSize   int64         `mapstructure:"max_message_size"`
}

type StorageConfig struct {
	Driver   string // s3, local
	S3       storage.S3Config
	LocalDir string `mapstructure:"local_dir"`
	LocalURL string `mapstructure:"local_url"`
}

// IdentityConfig describes the managed identity provider endpoints used
// for the authorization-code exchange of each social provider.
type IdentityConfig struct {
	Google ProviderConfig
	Kakao  ProviderConfig
}

type ProviderConfig struct {
	TokenURL     string `mapstructure:"token_url"`
	UserInfoURL  string `mapstructure:"userinfo_url"`
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	RedirectURI  string `mapstructure:"redirect_uri"`
}

func Load() (*Config, error) {
	v, err := pkgconfig.Load("./config", "config")
	if err != nil {
		return nil, err
	}

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.file_path", "ac-trading.db")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.cache_ttl", "5m")
	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", "localhost:9092")
	v.SetDefault("kafka.topic", "chat-events")
	v.SetDefault("kafka.partitions", 4)
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.issuer", "ac-trading")
	v.SetDefault("jwt.access_ttl", "30m")
	v.SetDefault("jwt.refresh_ttl", "336h")
	v.SetDefault("websocket.ping_interval", "30s")
	v.SetDefault("websocket.pong_wait", "60s")
	v.SetDefault("websocket.write_wait", "10s")
	v.SetDefault("websocket.handshake_timeout", "10s")
	v.SetDefault("websocket.max_message_size", 4096)
	v.SetDefault("storage.driver", "local")
	v.SetDefault("storage.local_dir", "./uploads")
	v.SetDefault("storage.local_url", "http://localhost:8080/uploads")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
	v.SetDefault("log.service_name", "ac-trading")

	v.BindEnv("server.port", "PORT")
	v.BindEnv("database.driver", "DB_DRIVER")
	v.BindEnv("database.host", "DB_HOST")
	v.BindEnv("database.port", "DB_PORT")
	v.BindEnv("database.user", "DB_USER")
	v.BindEnv("database.password", "DB_PASSWORD")
	v.BindEnv("database.db_name", "DB_NAME")
	v.BindEnv("redis.address", "REDIS_ADDRESS")
	v.BindEnv("redis.password", "REDIS_PASSWORD")
	v.BindEnv("kafka.enabled", "KAFKA_ENABLED")
	v.BindEnv("kafka.brokers", "KAFKA_BROKERS")
	v.BindEnv("kafka.topic", "KAFKA_TOPIC")
	v.BindEnv("jwt.secret", "JWT_SECRET")
	v.BindEnv("storage.driver", "STORAGE_DRIVER")
	v.BindEnv("storage.s3.endpoint", "S3_ENDPOINT")
	v.BindEnv("storage.s3.bucket", "S3_BUCKET")
	v.BindEnv("storage.s3.access_key_id", "S3_ACCESS_KEY_ID")
	v.BindEnv("storage.s3.secret_access_key", "S3_SECRET_ACCESS_KEY")
	v.BindEnv("identity.google.client_id", "GOOGLE_CLIENT_ID")
	v.BindEnv("identity.google.client_secret", "GOOGLE_CLIENT_SECRET")
	v.BindEnv("identity.kakao.client_id", "KAKAO_CLIENT_ID")
	v.BindEnv("identity.kakao.client_secret", "KAKAO_CLIENT_SECRET")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.Redis.CacheTTL = parseDuration(v, "redis.cache_ttl", 5*time.Minute)
	cfg.JWT.AccessTTL = parseDuration(v, "jwt.access_ttl", 30*time.Minute)
	cfg.JWT.RefreshTTL = parseDuration(v, "jwt.refresh_ttl", 14*24*time.Hour)
	cfg.WebSocket.PingInterval = parseDuration(v, "websocket.ping_interval", 30*time.Second)
	cfg.WebSocket.PongWait = parseDuration(v, "websocket.pong_wait", 60*time.Second)
	cfg.WebSocket.WriteWait = parseDuration(v, "websocket.write_wait", 10*time.Second)
	cfg.WebSocket.HandshakeTimeout = parseDuration(v, "websocket.handshake_timeout", 10*time.Second)

	return &cfg, nil
}

func parseDuration(v *viper.Viper, key string, defaultVal time.Duration) time.Duration {
	d, err := time.ParseDuration(v.GetString(key))
	if err != nil {
		return defaultVal
	}
	return d
}
