package core

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	APIConfig struct {
		BaseURL string
		Timeout time.Duration
	}

	SessionConfig struct {
		Store string // file | memory | redis
		Path  string
	}

	RedisConfig struct {
		Addr     string
		Password string
		DB       int
		Key      string
	}

	JournalConfig struct {
		AbsentToken string
	}

	MockAPIConfig struct {
		Addr          string
		AdminLogin    string
		AdminPassword string
	}

	Config struct {
		Env          string // DEV (local; default), TEST, QA, PROD
		Build        string
		AppName      string
		Debug        bool
		TestMode     bool
		WorkDir      string
		RollbarToken string

		API     APIConfig
		Session SessionConfig
		Redis   RedisConfig
		Journal JournalConfig
		MockAPI MockAPIConfig
	}
)

func NewConfig() *Config {
	conf := viper.New()

	env := strings.ToUpper(os.Getenv("ENV"))
	if env == "" {
		env = "DEV"
	}
	workDir := os.Getenv("WORK_DIR")
	if workDir == "" {
		workDir = Getwd()
	}

	// defaults
	conf.SetTypeByDefaultValue(true)
	conf.SetDefault("debug", env == "DEV")
	conf.SetDefault("testMode", env == "TEST")
	conf.SetDefault("appName", "Eduportal")
	conf.SetDefault("build", "develop")
	conf.SetDefault("rollbarToken", "")
	conf.SetDefault("api.baseURL", "http://localhost:18080")
	conf.SetDefault("api.timeout", 15*time.Second)
	conf.SetDefault("session.store", "file")
	conf.SetDefault("session.path", defaultSessionPath())
	conf.SetDefault("redis.addr", "127.0.0.1:6379")
	conf.SetDefault("redis.password", "")
	conf.SetDefault("redis.db", 0)
	conf.SetDefault("redis.key", "eduportal:session")
	conf.SetDefault("journal.absentToken", "Н")
	conf.SetDefault("mockapi.addr", ":18080")
	conf.SetDefault("mockapi.adminLogin", "admin")
	conf.SetDefault("mockapi.adminPassword", "admin")

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(workDir, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}

	// eg. DEV_API_BASEURL, PROD_SESSION_STORE
	conf.SetEnvPrefix(env)
	conf.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	conf.AutomaticEnv()

	return &Config{
		Env:          env,
		Build:        conf.GetString("build"),
		AppName:      conf.GetString("appName"),
		Debug:        conf.GetBool("debug"),
		TestMode:     conf.GetBool("testMode"),
		WorkDir:      workDir,
		RollbarToken: conf.GetString("rollbarToken"),
		API: APIConfig{
			BaseURL: strings.TrimRight(conf.GetString("api.baseURL"), "/"),
			Timeout: conf.GetDuration("api.timeout"),
		},
		Session: SessionConfig{
			Store: CleanString(conf.GetString("session.store"), true /* lower */),
			Path:  conf.GetString("session.path"),
		},
		Redis: RedisConfig{
			Addr:     conf.GetString("redis.addr"),
			Password: conf.GetString("redis.password"),
			DB:       conf.GetInt("redis.db"),
			Key:      conf.GetString("redis.key"),
		},
		Journal: JournalConfig{
			AbsentToken: CleanString(conf.GetString("journal.absentToken")),
		},
		MockAPI: MockAPIConfig{
			Addr:          conf.GetString("mockapi.addr"),
			AdminLogin:    conf.GetString("mockapi.adminLogin"),
			AdminPassword: conf.GetString("mockapi.adminPassword"),
		},
	}
}

func defaultSessionPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".eduportal-session.json"
	}
	return filepath.Join(dir, "eduportal", "session.json")
}
