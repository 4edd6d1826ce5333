// Package config 提供配置加载功能
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/viper"
)

// envPlaceholder 匹配 ${VAR} 或 ${VAR:default}
// g1: 变量名, g2: 默认值部分（含冒号）, g3: 默认值内容
var envPlaceholder = regexp.MustCompile(`\${(\w+)(:([^}]*))?}`)

// Load 加载配置文件
// 按优先级加载：默认配置 -> 环境配置 -> 环境变量
func Load() (*Config, error) {
	dir := os.Getenv("CONFIG_DIR")
	if dir == "" {
		dir = "configs"
	}
	return LoadFromDir(dir)
}

// LoadFromDir 从指定目录加载配置
func LoadFromDir(dir string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	// 1. 加载默认配置
	if err := loadConfigFile(v, filepath.Join(dir, "config.yaml"), false); err != nil {
		return nil, err
	}

	// 2. 加载环境特定配置
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}
	envFile := filepath.Join(dir, fmt.Sprintf("config.%s.yaml", env))
	if err := loadConfigFile(v, envFile, true); err != nil {
		return nil, err
	}

	// 3. 绑定环境变量 (直接覆盖)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// loadConfigFile 读取文件，执行环境变量替换，并加载到 viper
func loadConfigFile(v *viper.Viper, path string, optional bool) error {
	content, err := os.ReadFile(path)
	if err != nil {
		if optional && os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	expanded := expandEnv(string(content))

	reader := strings.NewReader(expanded)
	if v.ConfigFileUsed() == "" {
		if err := v.ReadConfig(reader); err != nil {
			return fmt.Errorf("failed to read processed config %s: %w", path, err)
		}
		// 手动标记已加载文件，防止后续 ReadInConfig 报错
		v.SetConfigFile(path)
	} else {
		if err := v.MergeConfig(reader); err != nil {
			return fmt.Errorf("failed to merge processed config %s: %w", path, err)
		}
	}

	return nil
}

// expandEnv 替换字符串中的 ${VAR:default} 占位符
func expandEnv(s string) string {
	return envPlaceholder.ReplaceAllStringFunc(s, func(match string) string {
		submatch := envPlaceholder.FindStringSubmatch(match)
		key := submatch[1]
		hasDefault := submatch[2] != ""
		defVal := submatch[3]

		if val, ok := os.LookupEnv(key); ok {
			return val
		}
		if hasDefault {
			return defVal
		}
		// 保留原样以便识别未定义的变量
		return match
	})
}

// MustLoad 加载配置，失败时 panic
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}
	return cfg
}

// Validate 校验配置的业务约束
func (c *Config) Validate() error {
	var errs []error

	ranges := map[string]LengthRange{
		"short":  c.Guide.TourLengths.Short,
		"medium": c.Guide.TourLengths.Medium,
		"long":   c.Guide.TourLengths.Long,
	}
	for _, name := range []string{"short", "medium", "long"} {
		r := ranges[name]
		if r.Min < 1 || r.Max < r.Min {
			errs = append(errs, fmt.Errorf("guide.tour_lengths.%s: invalid range [%d, %d]", name, r.Min, r.Max))
		}
	}

	switch c.Vector.Backend {
	case VectorBackendMemory, VectorBackendMilvus, VectorBackendPgvector:
	default:
		errs = append(errs, fmt.Errorf("vector.backend: unsupported value %q", c.Vector.Backend))
	}

	switch c.Guide.SessionBackend {
	case SessionBackendMemory:
	case SessionBackendRedis:
		if !c.Cache.Redis.Enabled {
			errs = append(errs, errors.New("guide.session_backend=redis requires cache.redis.enabled"))
		}
	default:
		errs = append(errs, fmt.Errorf("guide.session_backend: unsupported value %q", c.Guide.SessionBackend))
	}

	if c.Messaging.RedisStream.Enabled && !c.Cache.Redis.Enabled {
		errs = append(errs, errors.New("messaging.redis_stream.enabled requires cache.redis.enabled"))
	}
	if c.Guide.CorpusPath == "" {
		errs = append(errs, errors.New("guide.corpus_path is required"))
	}
	if c.Guide.MessageChunkRunes < 1 {
		errs = append(errs, errors.New("guide.message_chunk_runes must be positive"))
	}
	if c.Guide.CaptionRunes < 1 || c.Guide.CaptionRunes > c.Guide.MessageChunkRunes {
		errs = append(errs, errors.New("guide.caption_runes must be within (0, message_chunk_runes]"))
	}
	if c.Guide.CallTimeout <= 0 {
		errs = append(errs, errors.New("guide.call_timeout must be positive"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// setDefaults 设置配置默认值
func setDefaults(v *viper.Viper) {
	// 应用默认值
	v.SetDefault("app.name", "museum-guide")
	v.SetDefault("app.version", "v0.0.0")
	v.SetDefault("app.env", "development")

	// HTTP 服务器默认值
	v.SetDefault("server.http.host", "0.0.0.0")
	v.SetDefault("server.http.port", 8080)
	v.SetDefault("server.http.read_timeout", "30s")
	v.SetDefault("server.http.write_timeout", "120s")
	v.SetDefault("server.http.idle_timeout", "120s")

	// Redis 默认值
	v.SetDefault("cache.redis.enabled", false)
	v.SetDefault("cache.redis.host", "localhost")
	v.SetDefault("cache.redis.port", 6379)
	v.SetDefault("cache.redis.db", 0)
	v.SetDefault("cache.redis.pool_size", 50)
	v.SetDefault("cache.redis.min_idle_conns", 5)
	v.SetDefault("cache.redis.dial_timeout", "5s")
	v.SetDefault("cache.redis.read_timeout", "3s")
	v.SetDefault("cache.redis.write_timeout", "3s")
	v.SetDefault("cache.redis.embedding_ttl", "24h")

	// 向量检索默认值
	v.SetDefault("vector.backend", VectorBackendMemory)
	v.SetDefault("vector.milvus.host", "localhost")
	v.SetDefault("vector.milvus.port", 19530)
	v.SetDefault("vector.milvus.collection_prefix", "museum")
	v.SetDefault("vector.milvus.index_type", "HNSW")
	v.SetDefault("vector.milvus.metric_type", "COSINE")
	v.SetDefault("vector.milvus.hnsw_m", 16)
	v.SetDefault("vector.milvus.hnsw_ef_construction", 200)
	v.SetDefault("vector.pgvector.table", "artworks")
	v.SetDefault("vector.pgvector.max_conns", 10)

	// LLM 默认值
	v.SetDefault("llm.default_provider", "openai")

	// Embedding 默认值
	v.SetDefault("embedding.provider", "openai")
	v.SetDefault("embedding.model", "text-embedding-3-small")
	v.SetDefault("embedding.dimension", 1536)
	v.SetDefault("embedding.batch_size", 32)
	v.SetDefault("embedding.timeout", "30s")

	// 消息流默认值
	v.SetDefault("messaging.redis_stream.enabled", false)
	v.SetDefault("messaging.redis_stream.max_len", 10000)
	v.SetDefault("messaging.redis_stream.audit_stream", "stream:guide:audit")
	v.SetDefault("messaging.redis_stream.tour_stream", "stream:guide:tours")

	// 可观测性默认值
	v.SetDefault("observability.logging.level", "info")
	v.SetDefault("observability.logging.format", "json")
	v.SetDefault("observability.tracing.enabled", false)
	v.SetDefault("observability.tracing.endpoint", "localhost:4317")
	v.SetDefault("observability.tracing.sample_rate", 1.0)
	v.SetDefault("observability.metrics.enabled", true)
	v.SetDefault("observability.metrics.path", "/metrics")

	// 安全默认值
	v.SetDefault("security.rate_limit.enabled", false)
	v.SetDefault("security.rate_limit.events_per_minute", 60)

	// 导览默认值
	v.SetDefault("guide.corpus_path", "data/artworks.json")
	v.SetDefault("guide.session_backend", SessionBackendMemory)
	v.SetDefault("guide.session_ttl", "24h")
	v.SetDefault("guide.call_timeout", "60s")
	v.SetDefault("guide.museum_link", "https://photo.sirius.ru/links/YwWpZAppgnsZYQhAKJvfFM")
	v.SetDefault("guide.message_chunk_runes", 4096)
	v.SetDefault("guide.caption_runes", 1024)
	v.SetDefault("guide.concise_max_tokens", 400)
	v.SetDefault("guide.expanded_max_tokens", 1200)
	v.SetDefault("guide.audit_enabled", true)
	v.SetDefault("guide.tour_lengths.short.min", 2)
	v.SetDefault("guide.tour_lengths.short.max", 5)
	v.SetDefault("guide.tour_lengths.medium.min", 8)
	v.SetDefault("guide.tour_lengths.medium.max", 12)
	v.SetDefault("guide.tour_lengths.long.min", 13)
	v.SetDefault("guide.tour_lengths.long.max", 20)
}
