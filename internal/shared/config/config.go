package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"auctionscan/internal/shared/types"

	"github.com/joho/godotenv"
	"gopkg.in/ini.v1"
)

// LoadIni 加载 auctionscan.ini, 缺失的键保留 cfg 中已有的默认值。
func LoadIni(cfg *types.Config, fileName string) error {
	iniFile, err := ini.Load(fileName)
	if err != nil {
		return err
	}
	if err := iniFile.MapTo(cfg); err != nil {
		return fmt.Errorf("failed to map %s: %w", fileName, err)
	}
	return nil
}

// LoadEnv 读取可选的 .env 文件, 然后用环境变量覆盖配置。
func LoadEnv(cfg *types.Config, envFile string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}
	overrideFromEnvInt(&cfg.Threads, "AUCTIONSCAN_THREADS")
	overrideFromEnvInt(&cfg.MaxRetries, "AUCTIONSCAN_MAX_RETRIES")
	overrideFromEnvInt64(&cfg.SkipThreshold, "AUCTIONSCAN_SKIP_THRESHOLD")
	if level := os.Getenv("AUCTIONSCAN_LOG_LEVEL"); level != "" {
		cfg.Level = level
	}
	return nil
}

// Load is LoadIni + LoadEnv + Validate on top of the defaults.
func Load(iniPath, envFile string) (*types.Config, error) {
	cfg := types.DefaultConfig()
	if err := LoadIni(cfg, iniPath); err != nil {
		return nil, err
	}
	if err := LoadEnv(cfg, envFile); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func overrideFromEnvInt(target *int, envName string) {
	envValue := os.Getenv(envName)
	if envValue != "" {
		if intValue, err := strconv.Atoi(envValue); err == nil {
			*target = intValue
		}
	}
}

func overrideFromEnvInt64(target *int64, envName string) {
	envValue := os.Getenv(envName)
	if envValue != "" {
		if intValue, err := strconv.ParseInt(envValue, 10, 64); err == nil {
			*target = intValue
		}
	}
}
