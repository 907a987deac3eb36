package cfg

import (
	"fmt"

	"github.com/go-faster/errors"
	"github.com/spf13/viper"

	"github.com/Blackdeer1524/lrukpool/src/bufferpool"
	"github.com/Blackdeer1524/lrukpool/src/workload"
)

type Config struct {
	Environment Environment `mapstructure:"ENVIRONMENT"`

	PoolSize uint64 `mapstructure:"POOL_SIZE"`
	K        uint64 `mapstructure:"K"`
	Policy   string `mapstructure:"POLICY"`

	Workload   workload.Kind `mapstructure:"WORKLOAD"`
	Accesses   int           `mapstructure:"ACCESSES"`
	Pages      uint64        `mapstructure:"PAGES"`
	Workers    int           `mapstructure:"WORKERS"`
	Seed       int64         `mapstructure:"SEED"`
	ZipfS      float64       `mapstructure:"ZIPF_S"`
	WriteRatio float64       `mapstructure:"WRITE_RATIO"`

	DataDir string `mapstructure:"DATA_DIR"`
}

// LoadConfig reads <path>/.env, falling back to LRUK_* environment variables
// and defaults for anything missing.
func LoadConfig(path string) (Config, error) {
	v := viper.NewWithOptions(viper.ExperimentalBindStruct())

	v.AddConfigPath(path)
	v.SetConfigType("env")
	v.SetConfigName(".env")
	v.SetEnvPrefix("LRUK")
	v.AutomaticEnv()

	v.SetDefault("ENVIRONMENT", DefaultEnv)
	v.SetDefault("POOL_SIZE", 64)
	v.SetDefault("K", 2)
	v.SetDefault("POLICY", bufferpool.PolicyLRUK)
	v.SetDefault("WORKLOAD", string(workload.KindMixed))
	v.SetDefault("ACCESSES", 100_000)
	v.SetDefault("PAGES", 1024)
	v.SetDefault("WORKERS", 4)
	v.SetDefault("SEED", 42)
	v.SetDefault("ZIPF_S", 1.2)
	v.SetDefault("WRITE_RATIO", 0.1)
	v.SetDefault("DATA_DIR", "")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, errors.Wrap(err, "read config")
		}
		fmt.Println("config file not found, using env vars")
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, errors.Wrap(err, "viper unmarshaling config")
	}

	if err := c.Validate(); err != nil {
		return Config{}, err
	}

	return c, nil
}

func (c Config) Validate() error {
	if err := c.Environment.Validate(); err != nil {
		return errors.Wrap(err, "environment validation")
	}
	if c.PoolSize == 0 {
		return errors.New("pool size must be positive")
	}
	if c.K == 0 {
		return errors.New("k must be at least 1")
	}
	if c.Policy != bufferpool.PolicyLRUK && c.Policy != bufferpool.PolicyLRU {
		return errors.Wrapf(bufferpool.ErrUnknownPolicy, "policy %q", c.Policy)
	}
	if c.Accesses < 0 {
		return errors.New("accesses must not be negative")
	}
	if c.Workers < 1 || uint64(c.Workers) > c.PoolSize {
		return errors.Errorf("workers must be in [1, %d], got %d", c.PoolSize, c.Workers)
	}

	return nil
}

func (c Config) GeneratorConfig() workload.GeneratorConfig {
	return workload.GeneratorConfig{
		Kind:       c.Workload,
		Pages:      c.Pages,
		Seed:       c.Seed,
		ZipfS:      c.ZipfS,
		WriteRatio: c.WriteRatio,
	}
}

const (
	EnvDev  Environment = "dev"
	EnvProd Environment = "prod"

	DefaultEnv = EnvDev
)

type Environment string

func (e Environment) Validate() error {
	if e != EnvDev && e != EnvProd {
		return errors.New("environment must be either dev or prod")
	}

	return nil
}
