package app

import (
	"os"
	"path/filepath"

	"github.com/go-faster/errors"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap"

	"github.com/Blackdeer1524/lrukpool/src/cfg"
)

const envPrefix = "LRUK"

type envVars struct {
	LogLevel string `split_words:"true" default:"info"`
}

// loadEnv exports <configPath>/.env into the process environment, without
// overriding variables that are already set, and reads the LRUK_* bootstrap
// variables.
func loadEnv(configPath string) (envVars, error) {
	var env envVars

	err := godotenv.Load(filepath.Join(configPath, ".env"))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return env, errors.Wrap(err, "load .env")
	}

	if err := envconfig.Process(envPrefix, &env); err != nil {
		return env, errors.Wrap(err, "process env")
	}

	return env, nil
}

func newLogger(environment cfg.Environment, level string) (*zap.SugaredLogger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, errors.Wrapf(err, "parse log level %q", level)
	}

	var zcfg zap.Config
	if environment == cfg.EnvDev {
		zcfg = zap.NewDevelopmentConfig()
	} else {
		zcfg = zap.NewProductionConfig()
	}
	zcfg.Level = lvl

	log, err := zcfg.Build()
	if err != nil {
		return nil, errors.Wrap(err, "build logger")
	}

	return log.Sugar(), nil
}
