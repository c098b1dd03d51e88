package core

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Database engines
const (
	EngineSurrealDB = "surrealdb"
	EnginePostgres  = "postgres"
	EngineMemory    = "memory" // no primary store; always serve from the fallback
)

type (
	Config struct {
		Env          string
		Build        string
		Debug        bool
		TestMode     bool
		AppName      string `validate:"required"`
		SecretKey    string `validate:"required"`
		RollbarToken string
		WorkDir      string
		Server       ServerConfig
		Database     DatabaseConfig
		Auth         AuthConfig
	}

	ServerConfig struct {
		Host               string
		Address            string        `validate:"required"`
		DebugHost          string
		ShutdownTimeout    time.Duration `validate:"gt=0"`
		JWTExpirationDelta time.Duration `validate:"gt=0"`
	}

	DatabaseConfig struct {
		Engine       string `validate:"oneof=surrealdb postgres memory"`
		Host         string
		Name         string
		Namespace    string
		User         string
		Password     string
		DisableTLS   bool
		ProbeTimeout time.Duration `validate:"gt=0"`
		SeedFile     string
	}

	AuthConfig struct {
		Enabled bool
	}
)

// NewConfig loads the configuration of the current ENV (DEV by default; TEST, QA, PROD).
// Values come from, by order of precedence: <ENV>_ prefixed environment variables,
// config/.env.<env> (if it exists), and the defaults below.
func NewConfig() (*Config, error) {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("testMode", false)
	v.SetDefault("appName", "Masomo")
	v.SetDefault("build", "develop")
	v.SetDefault("secretKey", "poq5-wer)enb$+57=dz&uoxh2(h!x)#*c2(#yg4h^$cegm2emy")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.address", ":8000")
	v.SetDefault("server.debugHost", ":4000")
	v.SetDefault("server.shutdownTimeout", 5*time.Second)
	v.SetDefault("server.jwtExpirationDelta", 7*24*time.Hour)
	v.SetDefault("database.engine", EngineSurrealDB)
	v.SetDefault("database.host", "localhost:8000")
	v.SetDefault("database.name", "masomo")
	v.SetDefault("database.namespace", "masomo")
	v.SetDefault("database.user", "root")
	v.SetDefault("database.password", "root")
	v.SetDefault("database.disableTLS", true)
	v.SetDefault("database.probeTimeout", 3*time.Second)
	v.SetDefault("database.seedFile", filepath.Join("assets", "seed.yaml"))
	v.SetDefault("auth.enabled", false)

	env := strings.ToUpper(os.Getenv("ENV"))
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AllowEmptyEnv(true)

	// load .env if it exists (ignore if it does not)
	wd := Getwd()
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			return nil, errors.Wrapf(err, "loading %s", dotEnvPath)
		}
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "stat %s", dotEnvPath)
	}
	v.AutomaticEnv()

	conf := &Config{
		Env:          env,
		Build:        v.GetString("build"),
		Debug:        v.GetBool("debug"),
		TestMode:     v.GetBool("testMode"),
		AppName:      v.GetString("appName"),
		SecretKey:    v.GetString("secretKey"),
		RollbarToken: v.GetString("rollbarToken"),
		WorkDir:      wd,
		Server: ServerConfig{
			Host:               v.GetString("server.host"),
			Address:            v.GetString("server.address"),
			DebugHost:          v.GetString("server.debugHost"),
			ShutdownTimeout:    v.GetDuration("server.shutdownTimeout"),
			JWTExpirationDelta: v.GetDuration("server.jwtExpirationDelta"),
		},
		Database: DatabaseConfig{
			Engine:       strings.ToLower(v.GetString("database.engine")),
			Host:         v.GetString("database.host"),
			Name:         v.GetString("database.name"),
			Namespace:    v.GetString("database.namespace"),
			User:         v.GetString("database.user"),
			Password:     v.GetString("database.password"),
			DisableTLS:   v.GetBool("database.disableTLS"),
			ProbeTimeout: v.GetDuration("database.probeTimeout"),
			SeedFile:     v.GetString("database.seedFile"),
		},
		Auth: AuthConfig{
			Enabled: v.GetBool("auth.enabled"),
		},
	}
	if !filepath.IsAbs(conf.Database.SeedFile) {
		conf.Database.SeedFile = filepath.Join(wd, conf.Database.SeedFile)
	}

	if err := validator.New().Struct(conf); err != nil {
		return nil, errors.Wrap(err, "validating config")
	}
	if conf.Database.Engine != EngineMemory && (conf.Database.Host == "" || conf.Database.Name == "") {
		return nil, errors.Errorf("database.host and database.name are required by the %s engine", conf.Database.Engine)
	}
	return conf, nil
}
