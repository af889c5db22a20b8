// Package config 负责加载和管理应用程序的配置。
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// 全局配置变量，存储从配置文件与环境变量加载的所有设置。
var Conf Config

// Config 是整个应用程序的配置结构体，与 config.yaml 文件结构对应。
// 所有关键项都可以通过环境变量覆盖（见 bindEnvs）。
type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Log           LogConfig           `mapstructure:"log"`
	Upload        UploadConfig        `mapstructure:"upload"`
	Chunking      ChunkingConfig      `mapstructure:"chunking"`
	Retrieval     RetrievalConfig     `mapstructure:"retrieval"`
	AI            AIConfig            `mapstructure:"ai"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Redis         RedisConfig         `mapstructure:"redis"`
	Storage       StorageConfig       `mapstructure:"storage"`
	Extract       ExtractConfig       `mapstructure:"extract"`
	Auth          AuthConfig          `mapstructure:"auth"`
}

// ServerConfig 存储 HTTP 服务器相关的配置。
type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

// LogConfig 存储日志相关的配置。
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

// UploadConfig 存储文件上传相关的配置。
type UploadConfig struct {
	MaxFileSize  int64    `mapstructure:"max_file_size"`
	AllowedTypes []string `mapstructure:"allowed_types"`
	Dir          string   `mapstructure:"dir"`
	SeedDir      string   `mapstructure:"seed_dir"`
}

// ChunkingConfig 存储文本分块相关的配置。
type ChunkingConfig struct {
	Size    int `mapstructure:"size"`
	Overlap int `mapstructure:"overlap"`
}

// RetrievalConfig 存储检索相关的配置。
type RetrievalConfig struct {
	TopK                int     `mapstructure:"top_k"`
	SimilarityThreshold float64 `mapstructure:"similarity_threshold"`
	IncludeZeroScores   bool    `mapstructure:"include_zero_scores"`
}

// AIConfig 存储生成式模型提供方的配置。Provider 为空时使用模板回答模式。
type AIConfig struct {
	Provider string       `mapstructure:"provider"`
	OpenAI   OpenAIConfig `mapstructure:"openai"`
	Gemini   GeminiConfig `mapstructure:"gemini"`
}

// OpenAIConfig 存储 OpenAI 兼容接口的配置。
type OpenAIConfig struct {
	APIKey         string  `mapstructure:"api_key"`
	BaseURL        string  `mapstructure:"base_url"`
	Model          string  `mapstructure:"model"`
	EmbeddingModel string  `mapstructure:"embedding_model"`
	MaxTokens      int     `mapstructure:"max_tokens"`
	Temperature    float64 `mapstructure:"temperature"`
}

// GeminiConfig 存储 Google Gemini 的配置。
type GeminiConfig struct {
	APIKey         string `mapstructure:"api_key"`
	Model          string `mapstructure:"model"`
	EmbeddingModel string `mapstructure:"embedding_model"`
}

// ElasticsearchConfig 存储 Elasticsearch 向量索引的配置。
type ElasticsearchConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Addresses  string `mapstructure:"addresses"`
	Username   string `mapstructure:"username"`
	Password   string `mapstructure:"password"`
	IndexName  string `mapstructure:"index_name"`
	Dimensions int    `mapstructure:"dimensions"`
}

// DatabaseConfig 存储 MySQL 文档注册表后端的配置。
type DatabaseConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	DSN     string `mapstructure:"dsn"`
}

// RedisConfig 存储 Redis 会话后端的配置。
type RedisConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	Addr       string        `mapstructure:"addr"`
	Password   string        `mapstructure:"password"`
	DB         int           `mapstructure:"db"`
	SessionTTL time.Duration `mapstructure:"session_ttl"`
	MaxHistory int           `mapstructure:"max_history"`
}

// StorageConfig 存储原始文件归档的配置。Backend 可选 local 或 minio。
type StorageConfig struct {
	Backend string      `mapstructure:"backend"`
	MinIO   MinIOConfig `mapstructure:"minio"`
}

// MinIOConfig 存储 MinIO 对象存储的配置。
type MinIOConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UseSSL          bool   `mapstructure:"use_ssl"`
	BucketName      string `mapstructure:"bucket_name"`
}

// ExtractConfig 存储文本提取相关的配置。Backend 可选 native 或 tika。
type ExtractConfig struct {
	Backend        string `mapstructure:"backend"`
	TikaURL        string `mapstructure:"tika_url"`
	PDFPageHeaders bool   `mapstructure:"pdf_page_headers"`
}

// AuthConfig 存储可选的 API 鉴权配置。Enabled 为 false 时所有接口开放访问。
type AuthConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	JWTSecret  string        `mapstructure:"jwt_secret"`
	APIKeyHash string        `mapstructure:"api_key_hash"`
	TokenTTL   time.Duration `mapstructure:"token_ttl"`
}

// Init 初始化配置：先注册默认值与环境变量绑定，再尝试读取 YAML 文件，
// 最后做合法性修正。配置文件不存在不算错误，环境变量和默认值足以启动。
// 返回需要在日志系统就绪后输出的告警信息。
func Init(configPath string) []string {
	setDefaults()
	bindEnvs()

	if configPath != "" {
		viper.SetConfigFile(configPath)
		viper.SetConfigType("yaml")
		if err := viper.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !os.IsNotExist(err) {
				panic(fmt.Errorf("读取配置文件失败: %w", err))
			}
		}
	}

	if err := viper.Unmarshal(&Conf); err != nil {
		panic(fmt.Errorf("无法将配置解析到结构体中: %w", err))
	}

	return normalize(&Conf)
}

// AIEnabled 判断是否配置了可用的生成式模型提供方。
func (c *Config) AIEnabled() bool {
	switch c.AI.Provider {
	case "openai":
		return c.AI.OpenAI.APIKey != ""
	case "gemini":
		return c.AI.Gemini.APIKey != ""
	}
	return false
}

// VectorEnabled 判断向量检索路径是否可用：需要同时具备 embedding
// 提供方和 Elasticsearch。
func (c *Config) VectorEnabled() bool {
	return c.AIEnabled() && c.Elasticsearch.Enabled
}

// TypeAllowed 判断文件扩展名（不含点，小写）是否在允许列表中。
func (c *Config) TypeAllowed(ext string) bool {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	for _, t := range c.Upload.AllowedTypes {
		if strings.ToLower(strings.TrimSpace(t)) == ext {
			return true
		}
	}
	return false
}

func setDefaults() {
	viper.SetDefault("server.port", "8000")
	viper.SetDefault("server.mode", "release")

	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "json")
	viper.SetDefault("log.output_path", "")

	viper.SetDefault("upload.max_file_size", 10*1024*1024)
	viper.SetDefault("upload.allowed_types", []string{"pdf", "txt", "docx", "md"})
	viper.SetDefault("upload.dir", "uploads")
	viper.SetDefault("upload.seed_dir", "")

	viper.SetDefault("chunking.size", 1000)
	viper.SetDefault("chunking.overlap", 200)

	viper.SetDefault("retrieval.top_k", 4)
	viper.SetDefault("retrieval.similarity_threshold", 0.7)
	viper.SetDefault("retrieval.include_zero_scores", false)

	viper.SetDefault("ai.provider", "")
	viper.SetDefault("ai.openai.base_url", "https://api.openai.com/v1")
	viper.SetDefault("ai.openai.model", "gpt-3.5-turbo")
	viper.SetDefault("ai.openai.embedding_model", "text-embedding-3-small")
	viper.SetDefault("ai.openai.max_tokens", 500)
	viper.SetDefault("ai.openai.temperature", 0.1)
	viper.SetDefault("ai.gemini.model", "gemini-1.5-flash")
	viper.SetDefault("ai.gemini.embedding_model", "text-embedding-004")

	viper.SetDefault("elasticsearch.enabled", false)
	viper.SetDefault("elasticsearch.addresses", "http://localhost:9200")
	viper.SetDefault("elasticsearch.index_name", "docqa_chunks")
	viper.SetDefault("elasticsearch.dimensions", 1536)

	viper.SetDefault("database.enabled", false)
	viper.SetDefault("database.dsn", "")

	viper.SetDefault("redis.enabled", false)
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.session_ttl", "168h")
	viper.SetDefault("redis.max_history", 0)

	viper.SetDefault("storage.backend", "local")
	viper.SetDefault("storage.minio.use_ssl", false)

	viper.SetDefault("extract.backend", "native")
	viper.SetDefault("extract.tika_url", "http://localhost:9998")
	viper.SetDefault("extract.pdf_page_headers", false)

	viper.SetDefault("auth.enabled", false)
	viper.SetDefault("auth.token_ttl", "24h")
}

// bindEnvs 将原项目使用的环境变量名绑定到对应配置键上。
func bindEnvs() {
	bindings := map[string]string{
		"server.port":                    "SERVER_PORT",
		"server.mode":                    "GIN_MODE",
		"log.level":                      "LOG_LEVEL",
		"log.format":                     "LOG_FORMAT",
		"log.output_path":                "LOG_OUTPUT",
		"upload.max_file_size":           "MAX_FILE_SIZE",
		"upload.allowed_types":           "ALLOWED_TYPES",
		"upload.dir":                     "UPLOAD_DIR",
		"upload.seed_dir":                "SEED_DIR",
		"chunking.size":                  "CHUNK_SIZE",
		"chunking.overlap":               "CHUNK_OVERLAP",
		"retrieval.top_k":                "MAX_RETRIEVED_DOCS",
		"retrieval.similarity_threshold": "SIMILARITY_THRESHOLD",
		"retrieval.include_zero_scores":  "INCLUDE_ZERO_SCORES",
		"ai.provider":                    "AI_PROVIDER",
		"ai.openai.api_key":              "OPENAI_API_KEY",
		"ai.openai.base_url":             "OPENAI_BASE_URL",
		"ai.openai.model":                "CHAT_MODEL",
		"ai.openai.embedding_model":      "EMBEDDING_MODEL",
		"ai.openai.max_tokens":           "MAX_TOKENS",
		"ai.openai.temperature":          "TEMPERATURE",
		"ai.gemini.api_key":              "GEMINI_API_KEY",
		"ai.gemini.model":                "GEMINI_MODEL",
		"ai.gemini.embedding_model":      "GEMINI_EMBEDDING_MODEL",
		"elasticsearch.enabled":          "ES_ENABLED",
		"elasticsearch.addresses":        "ES_ADDRESSES",
		"elasticsearch.username":         "ES_USERNAME",
		"elasticsearch.password":         "ES_PASSWORD",
		"elasticsearch.index_name":       "ES_INDEX",
		"elasticsearch.dimensions":       "EMBEDDING_DIMENSIONS",
		"database.enabled":               "DB_ENABLED",
		"database.dsn":                   "DB_DSN",
		"redis.enabled":                  "REDIS_ENABLED",
		"redis.addr":                     "REDIS_ADDR",
		"redis.password":                 "REDIS_PASSWORD",
		"redis.db":                       "REDIS_DB",
		"storage.backend":                "STORAGE_BACKEND",
		"storage.minio.endpoint":         "MINIO_ENDPOINT",
		"storage.minio.access_key_id":    "MINIO_ACCESS_KEY",
		"storage.minio.secret_access_key": "MINIO_SECRET_KEY",
		"storage.minio.bucket_name":      "MINIO_BUCKET",
		"extract.backend":                "EXTRACT_BACKEND",
		"extract.tika_url":               "TIKA_URL",
		"extract.pdf_page_headers":       "PDF_PAGE_HEADERS",
		"auth.enabled":                   "AUTH_ENABLED",
		"auth.jwt_secret":                "JWT_SECRET",
		"auth.api_key_hash":              "API_KEY_HASH",
	}
	for key, env := range bindings {
		_ = viper.BindEnv(key, env)
	}
}

// normalize 修正非法取值，返回告警文本供调用方在日志就绪后输出。
func normalize(c *Config) []string {
	var warnings []string

	if c.Chunking.Size <= 0 {
		warnings = append(warnings, fmt.Sprintf("chunking.size=%d 非法，回退为 1000", c.Chunking.Size))
		c.Chunking.Size = 1000
	}
	if c.Chunking.Overlap < 0 || c.Chunking.Overlap >= c.Chunking.Size {
		warnings = append(warnings, fmt.Sprintf("chunking.overlap=%d 必须小于 chunking.size=%d，回退为 200", c.Chunking.Overlap, c.Chunking.Size))
		c.Chunking.Overlap = 200
		if c.Chunking.Overlap >= c.Chunking.Size {
			c.Chunking.Overlap = c.Chunking.Size / 5
		}
	}
	if c.Retrieval.TopK <= 0 {
		warnings = append(warnings, fmt.Sprintf("retrieval.top_k=%d 非法，回退为 4", c.Retrieval.TopK))
		c.Retrieval.TopK = 4
	}
	if c.Upload.MaxFileSize <= 0 {
		warnings = append(warnings, "upload.max_file_size 非法，回退为 10MB")
		c.Upload.MaxFileSize = 10 * 1024 * 1024
	}

	switch c.AI.Provider {
	case "", "openai", "gemini":
	default:
		panic(fmt.Errorf("未知的 ai.provider: %q（可选 openai / gemini 或留空）", c.AI.Provider))
	}

	switch c.Extract.Backend {
	case "", "native":
		c.Extract.Backend = "native"
	case "tika":
	default:
		panic(fmt.Errorf("未知的 extract.backend: %q（可选 native / tika）", c.Extract.Backend))
	}

	switch c.Storage.Backend {
	case "", "local":
		c.Storage.Backend = "local"
	case "minio":
	default:
		panic(fmt.Errorf("未知的 storage.backend: %q（可选 local / minio）", c.Storage.Backend))
	}

	if c.Auth.Enabled && (c.Auth.JWTSecret == "" || c.Auth.APIKeyHash == "") {
		panic(errors.New("auth.enabled 开启时必须同时配置 auth.jwt_secret 和 auth.api_key_hash"))
	}

	return warnings
}
