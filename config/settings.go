package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/rushteam/coursekit/core"
)

// EnvPrefix 是环境变量前缀：COURSEKIT_RECOMMEND_TOP_K -> recommend.top_k
const EnvPrefix = "COURSEKIT_"

// ConfigPathEnvVar 指定配置文件路径。
const ConfigPathEnvVar = EnvPrefix + "CONFIG"

// DefaultConfigPaths 按顺序查找，使用第一个存在的文件。
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/coursekit/config.yaml",
}

// Settings 是进程配置。优先级：环境变量 > 配置文件 > 默认值。
type Settings struct {
	Catalog   CatalogSettings   `koanf:"catalog"`
	Recommend RecommendSettings `koanf:"recommend"`
	Cache     CacheSettings     `koanf:"cache"`
	Server    ServerSettings    `koanf:"server"`
	Logging   LoggingSettings   `koanf:"logging"`
}

type CatalogSettings struct {
	Path     string `koanf:"path" validate:"required"`
	Workers  int    `koanf:"workers" validate:"min=0"`   // 0 = GOMAXPROCS
	MaxItems int    `koanf:"max_items" validate:"min=0"` // 0 = similarity.DefaultMaxItems
}

type RecommendSettings struct {
	TopK          int           `koanf:"top_k" validate:"min=1,max=100"`
	FallbackLimit int           `koanf:"fallback_limit" validate:"min=1,max=100"`
	CacheTTL      time.Duration `koanf:"cache_ttl" validate:"min=0"`
	PipelinesPath string        `koanf:"pipelines_path"` // 空则使用内置链路
}

type CacheSettings struct {
	Backend       string `koanf:"backend" validate:"oneof=none memory redis"`
	RedisAddr     string `koanf:"redis_addr" validate:"required_if=Backend redis"`
	RedisPassword string `koanf:"redis_password"`
	RedisDB       int    `koanf:"redis_db" validate:"min=0"`
	RedisPrefix   string `koanf:"redis_prefix"`
}

type ServerSettings struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `koanf:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `koanf:"write_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
	CORSOrigins     []string      `koanf:"cors_origins"`
	RateLimit       int           `koanf:"rate_limit" validate:"min=0"` // 每窗口每 IP 请求数，0 关闭限流
	RateLimitWindow time.Duration `koanf:"rate_limit_window" validate:"gt=0"`
}

type LoggingSettings struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// DefaultSettings 返回全部默认值。
func DefaultSettings() *Settings {
	return &Settings{
		Catalog: CatalogSettings{
			Path: "data/udemy_courses.csv",
		},
		Recommend: RecommendSettings{
			TopK:          6,
			FallbackLimit: 6,
			CacheTTL:      5 * time.Minute,
		},
		Cache: CacheSettings{
			Backend:     "memory",
			RedisPrefix: "coursekit:",
		},
		Server: ServerSettings{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			CORSOrigins:     []string{"*"},
			RateLimit:       100,
			RateLimitWindow: time.Minute,
		},
		Logging: LoggingSettings{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load 依次叠加默认值、配置文件与环境变量，然后校验。
// path 为空时先看 COURSEKIT_CONFIG，再查找 DefaultConfigPaths；都不存在则只用默认值与环境变量。
// 显式指定但不存在的文件是错误。
func Load(path string) (*Settings, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(DefaultSettings(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	configPath, err := resolveConfigPath(path)
	if err != nil {
		return nil, err
	}
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}
	if err := splitCommaSeparated(k, "server.cors_origins"); err != nil {
		return nil, err
	}

	s := &Settings{}
	if err := k.Unmarshal("", s); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func resolveConfigPath(path string) (string, error) {
	if path == "" {
		path = os.Getenv(ConfigPathEnvVar)
	}
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("config file %s: %w", path, err)
		}
		return path, nil
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", nil
}

var envSections = map[string]bool{
	"catalog":   true,
	"recommend": true,
	"cache":     true,
	"server":    true,
	"logging":   true,
}

// envTransform 把 COURSEKIT_SECTION_FIELD_NAME 映射为 section.field_name；未知 section 忽略。
func envTransform(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	section, field, ok := strings.Cut(key, "_")
	if !ok || !envSections[section] || field == "" {
		return ""
	}
	return section + "." + field
}

// splitCommaSeparated 把环境变量传入的 "a,b" 转成列表；来自 YAML 的列表保持不变。
func splitCommaSeparated(k *koanf.Koanf, path string) error {
	raw, ok := k.Get(path).(string)
	if !ok {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if err := k.Set(path, out); err != nil {
		return fmt.Errorf("set %s: %w", path, err)
	}
	return nil
}

var validate = validator.New()

// Validate 按 validate 标签校验。
func (s *Settings) Validate() error {
	if err := validate.Struct(s); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid settings: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid settings: %w", err)
	}
	return nil
}

// Addr 返回 HTTP 监听地址。
func (s *ServerSettings) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

var _ core.RecommendConfig = (*Settings)(nil)

func (s *Settings) DefaultTopK() int { return s.Recommend.TopK }

func (s *Settings) DefaultFallbackLimit() int { return s.Recommend.FallbackLimit }

func (s *Settings) DefaultCacheTTL() time.Duration { return s.Recommend.CacheTTL }
