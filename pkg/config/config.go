package config

import (
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/gridpool-project/gridpool/pkg/models"
)

const (
	environmentVariablePrefix = "GRIDPOOL"
	inferConfigTypes          = true

	configType = "yaml"
	configName = "config"

	// MarketStorePath is where the marketplace keeps its sqlite database,
	// relative to the repo path.
	MarketStorePath = "marketstore.db"
)

var environmentVariableReplace = strings.NewReplacer(".", "_")

// MarketplaceConfig is the configuration surface of the requestor
// marketplace. The reference usage benchmark and the strategy variant per
// task type are supplied at task-creation time by the task definition
// loader; this only carries the process-wide defaults.
type MarketplaceConfig struct {
	// UsageBenchmark is the requestor's reference workload duration used to
	// normalize prices across providers.
	UsageBenchmark float64

	// DefaultStrategy names the market strategy used for task types that do
	// not declare one.
	DefaultStrategy string

	// InvalidOfferPolicy is "exclude" or "demote".
	InvalidOfferPolicy string

	// StorePath is the sqlite database path for persisted marketplace
	// state. Empty keeps the usage ledger memory-only.
	StorePath string
}

func Default(path string) MarketplaceConfig {
	return MarketplaceConfig{
		UsageBenchmark:     models.DefaultUsageBenchmark,
		DefaultStrategy:    "usage-factor",
		InvalidOfferPolicy: "exclude",
		StorePath:          filepath.Join(path, MarketStorePath),
	}
}

// Load reads config.yaml from path when present, then applies GRIDPOOL_*
// environment variables over the defaults.
func Load(path string) (MarketplaceConfig, error) {
	defaultConfig := Default(path)

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName(configName)
	v.SetConfigType(configType)
	v.SetEnvPrefix(environmentVariablePrefix)
	v.SetTypeByDefaultValue(inferConfigTypes)
	v.SetEnvKeyReplacer(environmentVariableReplace)

	v.SetDefault("usagebenchmark", defaultConfig.UsageBenchmark)
	v.SetDefault("defaultstrategy", defaultConfig.DefaultStrategy)
	v.SetDefault("invalidofferpolicy", defaultConfig.InvalidOfferPolicy)
	v.SetDefault("storepath", defaultConfig.StorePath)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return MarketplaceConfig{}, err
		}
	}
	v.AutomaticEnv()

	var out MarketplaceConfig
	if err := v.Unmarshal(&out); err != nil {
		return MarketplaceConfig{}, err
	}
	return out, nil
}
