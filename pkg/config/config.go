package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 是整個服務的設定
type Config struct {
	Server ServerConfig
	DB     DBConfig
	Auth   AuthConfig
	Log    LogConfig
	Redis  RedisConfig
	Judge  JudgeConfig
}

type ServerConfig struct {
	Address         string
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DBConfig struct {
	Host            string
	User            string
	Password        string
	Name            string
	Port            int
	SSLMode         string        `mapstructure:"sslmode"`
	TimeZone        string        `mapstructure:"timezone"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

// DSN 組出 gorm postgres driver 使用的連線字串
func (c DBConfig) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s TimeZone=%s",
		c.Host, c.User, c.Password, c.Name, c.Port, c.SSLMode, c.TimeZone)
}

// URL 組出 golang-migrate 使用的連線網址
func (c DBConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s", c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode)
}

type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
}

type LogConfig struct {
	Level   string
	Backend string // std | zap
	Service string
}

// RedisConfig Addr 為空時不啟用跨實例廣播
type RedisConfig struct {
	Addr          string
	Password      string
	DB            int
	ChannelPrefix string `mapstructure:"channel_prefix"`
}

func (c RedisConfig) Enabled() bool {
	return c.Addr != ""
}

type JudgeConfig struct {
	BaseURL          string        `mapstructure:"base_url"`
	APIKey           string        `mapstructure:"api_key"`
	Model            string
	Timeout          time.Duration
	CallDelay        time.Duration `mapstructure:"call_delay"`
	Workers          int
	QueueSize        int `mapstructure:"queue_size"`
	MaxManualRetries int `mapstructure:"max_manual_retries"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.name", "debate")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.timezone", "Asia/Taipei")
	v.SetDefault("db.max_open_conns", 20)
	v.SetDefault("db.max_idle_conns", 10)
	v.SetDefault("db.conn_max_lifetime", 5*time.Minute)
	v.SetDefault("db.auto_migrate", true)
	v.SetDefault("db.password", "")

	// 空字串預設值讓 AutomaticEnv 的鍵也能被 Unmarshal 看見
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("judge.api_key", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.backend", "std")
	v.SetDefault("log.service", "debate-arena")

	v.SetDefault("redis.channel_prefix", "debate:room:")

	v.SetDefault("judge.base_url", "https://api.openai.com/v1")
	v.SetDefault("judge.model", "gpt-4o-mini")
	v.SetDefault("judge.timeout", 60*time.Second)
	v.SetDefault("judge.call_delay", time.Second)
	v.SetDefault("judge.workers", 2)
	v.SetDefault("judge.queue_size", 64)
	v.SetDefault("judge.max_manual_retries", 1)
}

// Load 讀取設定
// 順序: 預設值 -> config.yaml -> .env / 環境變數 (DEBATE_ 前綴)
// path 為空時在 ./pkg/config 底下尋找 config.yaml
func Load(path string) (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./pkg/config")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("DEBATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// 沒有設定檔時仍可只靠環境變數啟動
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret is required")
	}
	if c.DB.Host == "" || c.DB.Name == "" {
		return errors.New("db.host and db.name are required")
	}
	if c.Judge.Workers <= 0 {
		return errors.New("judge.workers must be positive")
	}
	if c.Judge.QueueSize <= 0 {
		return errors.New("judge.queue_size must be positive")
	}
	if c.Judge.MaxManualRetries < 0 {
		return errors.New("judge.max_manual_retries must not be negative")
	}
	return nil
}

// loadDotEnv 存在 .env 時才載入，不覆寫已存在的環境變數
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return godotenv.Load(path)
}
