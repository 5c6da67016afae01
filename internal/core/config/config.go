package config

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/viper"
)

type HTTP struct {
	Host            string
	Port            int
	ReadTimeoutSec  int
	WriteTimeoutSec int
	IdleTimeoutSec  int
}
type AdminHTTP struct {
	Host string
	Port int
}

type App struct {
	Name        string
	Env         string
	HTTP        HTTP
	Admin       AdminHTTP
	CORSOrigins []string `mapstructure:"corsorigins"`
	// 单请求超时 / 并发上限
	RequestTimeoutSec int
	MaxConcurrent     int64
	MaxBodyBytes      int64
}

type LogFile struct {
	Enable     bool
	Filename   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

type Log struct {
	Level string
	JSON  bool
	File  LogFile
}

type JWT struct {
	Secret             string
	Issuer             string
	AccessTokenTTLMin  int
	RefreshTokenTTLMin int
}

// Reset 密码重置链接
type Reset struct {
	Secret      string
	TTLMin      int
	FrontendURL string `mapstructure:"frontendurl"`
}

type Redis struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type DB struct {
	Driver             string
	DSN                string
	Username           string
	Password           string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
	AutoMigrate        bool
	LogLevel           string
	ConnectTimeoutSec  int
}

type Mail struct {
	Host       string
	Port       int
	Username   string
	Password   string
	From       string
	Site       string
	Currency   string
	TimeoutSec int
}

type Pagination struct {
	PageSize    int
	MaxPageSize int
}

// Throttle 登录 / 重置接口按 IP 限流
type Throttle struct {
	Requests  int
	WindowSec int
}

type Config struct {
	App        App
	Log        Log
	JWT        JWT
	Reset      Reset
	DB         DB
	Redis      Redis `mapstructure:"redis"`
	Mail       Mail
	Pagination Pagination
	Throttle   Throttle
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "charity-backend")
	v.SetDefault("app.env", "local")
	v.SetDefault("app.http.host", "0.0.0.0")
	v.SetDefault("app.http.port", 8080)
	v.SetDefault("app.http.readtimeoutsec", 5)
	v.SetDefault("app.http.writetimeoutsec", 15)
	v.SetDefault("app.http.idletimeoutsec", 60)
	v.SetDefault("app.admin.host", "0.0.0.0")
	v.SetDefault("app.admin.port", 8081)
	v.SetDefault("app.corsorigins", []string{"*"})
	v.SetDefault("app.requesttimeoutsec", 10)
	v.SetDefault("app.maxconcurrent", 300)
	v.SetDefault("app.maxbodybytes", 1<<20)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file.filename", "logs/app.log")
	v.SetDefault("log.file.maxsizemb", 100)
	v.SetDefault("log.file.maxbackups", 7)
	v.SetDefault("log.file.maxagedays", 30)

	// 没有默认值的键也要登记，否则只靠环境变量提供时 Unmarshal 读不到
	for _, k := range []string{
		"jwt.secret", "reset.secret", "db.username", "db.password",
		"redis.addr", "redis.password", "mail.host", "mail.username", "mail.password",
	} {
		v.SetDefault(k, "")
	}
	v.SetDefault("redis.db", 0)

	v.SetDefault("jwt.issuer", "charity-backend")
	v.SetDefault("jwt.accesstokenttlmin", 60)
	v.SetDefault("jwt.refreshtokenttlmin", 7*24*60)

	v.SetDefault("reset.ttlmin", 60*24*3)
	v.SetDefault("reset.frontendurl", "http://localhost:3000")

	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.dsn", "charity.db")
	v.SetDefault("db.automigrate", true)
	v.SetDefault("db.loglevel", "warn")
	v.SetDefault("db.connecttimeoutsec", 30)

	v.SetDefault("mail.port", 587)
	v.SetDefault("mail.from", "no-reply@charityconnect.local")
	v.SetDefault("mail.site", "CharityConnect")
	v.SetDefault("mail.currency", "KES")
	v.SetDefault("mail.timeoutsec", 10)

	v.SetDefault("pagination.pagesize", 6)
	v.SetDefault("pagination.maxpagesize", 50)

	v.SetDefault("throttle.requests", 10)
	v.SetDefault("throttle.windowsec", 60)
}

// Read 读取 yaml + APP_ 环境变量；文件不存在时只用默认值与环境变量
func Read(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
		if path == "" {
			path = "./configs/config.local.yaml"
		}
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("APP")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, statErr := os.Stat(path); statErr == nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.JWT.Secret == "" {
		return nil, fmt.Errorf("jwt.secret is required")
	}
	if c.Reset.Secret == "" {
		c.Reset.Secret = c.JWT.Secret
	}
	return &c, nil
}

func Load(path string) *Config {
	c, err := Read(path)
	if err != nil {
		log.Fatalf("%v", err)
	}
	return c
}
