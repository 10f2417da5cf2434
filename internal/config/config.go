// Package config 负责 codestat 配置的加载与保存。
//
// 加载顺序：默认值 -> YAML 配置文件 -> .env 文件 -> CODESTAT_* 环境变量 -> 校验。
// 命令行参数由 cmd 层最后覆盖。
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig 表示配置内容不合法。
var ErrInvalidConfig = errors.New("invalid config")

// envPrefix 是环境变量覆盖项的统一前缀。
const envPrefix = "CODESTAT_"

// Config 是 codestat 的完整配置。
type Config struct {
	Targets        []string `yaml:"targets"`
	Exclude        []string `yaml:"exclude,omitempty"`
	Languages      []string `yaml:"languages,omitempty"`
	LanguagesDir   string   `yaml:"languages_dir,omitempty"`
	Producers      int      `yaml:"producers"`
	Consumers      int      `yaml:"consumers"`
	BracesAsCode   bool     `yaml:"braces_as_code"`
	SearchInDotted bool     `yaml:"search_in_dotted"`
	LogLevel       string   `yaml:"log_level"`
	HistoryFile    string   `yaml:"history_file,omitempty"`
}

// Default 返回默认配置。
func Default() Config {
	return Config{
		Targets:   []string{"."},
		Producers: runtime.NumCPU(),
		Consumers: runtime.NumCPU(),
		LogLevel:  "info",
	}
}

// Load 按顺序叠加配置来源。
// path 或 envFile 为空、或文件不存在时跳过对应来源。
// 进程环境变量优先于 .env 文件中的同名变量。
func Load(path string, envFile string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadYAML(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	fileValues := map[string]string{}
	if envFile != "" {
		values, err := godotenv.Read(envFile)
		switch {
		case err == nil:
			fileValues = values
		case errors.Is(err, os.ErrNotExist):
		default:
			return Config{}, fmt.Errorf("read env file: %w", err)
		}
	}

	lookup := func(key string) (string, bool) {
		if value, ok := os.LookupEnv(key); ok {
			return value, true
		}
		value, ok := fileValues[key]
		return value, ok
	}
	if err := applyEnv(&cfg, lookup); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadYAML(path string, cfg *Config) error {
	file, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("open config file: %w", err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, path, err)
	}
	return nil
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	if value, ok := lookup(envPrefix + "TARGETS"); ok {
		cfg.Targets = splitList(value)
	}
	if value, ok := lookup(envPrefix + "EXCLUDE"); ok {
		cfg.Exclude = splitList(value)
	}
	if value, ok := lookup(envPrefix + "LANGUAGES"); ok {
		cfg.Languages = splitList(value)
	}
	if value, ok := lookup(envPrefix + "LANGUAGES_DIR"); ok {
		cfg.LanguagesDir = strings.TrimSpace(value)
	}
	if value, ok := lookup(envPrefix + "LOG_LEVEL"); ok {
		cfg.LogLevel = strings.TrimSpace(value)
	}
	if value, ok := lookup(envPrefix + "HISTORY_FILE"); ok {
		cfg.HistoryFile = strings.TrimSpace(value)
	}

	for key, target := range map[string]*int{
		"PRODUCERS": &cfg.Producers,
		"CONSUMERS": &cfg.Consumers,
	} {
		value, ok := lookup(envPrefix + key)
		if !ok {
			continue
		}
		parsed, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("%w: %s%s=%q is not a number", ErrInvalidConfig, envPrefix, key, value)
		}
		*target = parsed
	}

	for key, target := range map[string]*bool{
		"BRACES_AS_CODE":   &cfg.BracesAsCode,
		"SEARCH_IN_DOTTED": &cfg.SearchInDotted,
	} {
		value, ok := lookup(envPrefix + key)
		if !ok {
			continue
		}
		parsed, err := strconv.ParseBool(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("%w: %s%s=%q is not a boolean", ErrInvalidConfig, envPrefix, key, value)
		}
		*target = parsed
	}
	return nil
}

// splitList 解析逗号分隔列表，忽略空项。
func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// Validate 校验配置取值。
func (c Config) Validate() error {
	if c.Producers <= 0 {
		return fmt.Errorf("%w: producers must be greater than 0", ErrInvalidConfig)
	}
	if c.Consumers <= 0 {
		return fmt.Errorf("%w: consumers must be greater than 0", ErrInvalidConfig)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level 把 LogLevel 解析为 slog 级别。
func (c Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return slog.LevelInfo, fmt.Errorf("%w: log level %q", ErrInvalidConfig, c.LogLevel)
	}
	return level, nil
}

// Save 把配置以 YAML 写入 path，目录不存在时自动创建。
func Save(path string, cfg Config) error {
	content, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	directory := filepath.Dir(path)
	if directory != "." && directory != "" {
		if err := os.MkdirAll(directory, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, content, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}
