package core

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Config carries all client settings. It is created once at app start
// and passed by reference to everything that needs it.
type Config struct {
	Debug    bool
	TestMode bool
	Env      string // DEV (local; default), TEST, QA, PROD
	AppName  string
	Build    string

	// APIBaseURL is the origin of the PolyLab API.
	// FileBaseURL is the origin that serves uploaded files; when unset it is
	// derived from APIBaseURL with any "/api" suffix stripped so that file
	// links never end up as https://host/api/uploads/...
	APIBaseURL  string
	FileBaseURL string

	RequestTimeout      time.Duration
	VerifyRedirectDelay time.Duration
	MaxUploadSize       int64

	LogLevel     string
	RollbarToken string
}

// NewConfig loads configuration with viper: defaults first, then an optional
// config/.env.<env> file, then environment variables prefixed with the env name.
func NewConfig(dir string) (*Config, error) {
	v := viper.New()
	v.SetTypeByDefaultValue(true)

	// defaults
	v.SetDefault("debug", true)
	v.SetDefault("appName", "PolyLab")
	v.SetDefault("build", "dev")
	v.SetDefault("apiBaseURL", "http://127.0.0.1:8000")
	v.SetDefault("fileBaseURL", "")
	v.SetDefault("requestTimeout", 15*time.Second)
	v.SetDefault("verifyRedirectDelay", 1500*time.Millisecond)
	v.SetDefault("maxUploadSize", 10<<20) // 10MB; enforced server-side too
	v.SetDefault("logLevel", "info")
	v.SetDefault("rollbarToken", "")

	env := strings.ToUpper(os.Getenv("ENV"))
	if env == "" {
		env = "DEV"
	}
	v.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(dir, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			return nil, errors.Wrapf(err, "config.godotenv(%s)", dotEnvPath)
		}
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "config.os.Stat(%s)", dotEnvPath)
	}
	v.AutomaticEnv()

	conf := &Config{
		Debug:               v.GetBool("debug"),
		TestMode:            env == "TEST",
		Env:                 env,
		AppName:             v.GetString("appName"),
		Build:               v.GetString("build"),
		APIBaseURL:          strings.TrimRight(v.GetString("apiBaseURL"), "/"),
		FileBaseURL:         strings.TrimRight(v.GetString("fileBaseURL"), "/"),
		RequestTimeout:      v.GetDuration("requestTimeout"),
		VerifyRedirectDelay: v.GetDuration("verifyRedirectDelay"),
		MaxUploadSize:       v.GetInt64("maxUploadSize"),
		LogLevel:            v.GetString("logLevel"),
		RollbarToken:        v.GetString("rollbarToken"),
	}
	if conf.FileBaseURL == "" {
		conf.FileBaseURL = strings.TrimSuffix(conf.APIBaseURL, "/api")
	}
	return conf, nil
}
