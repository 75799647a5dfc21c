package config

import (
	"errors"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Gateway     GatewayConfig     `mapstructure:"gateway"`
	Auth        AuthConfig        `mapstructure:"auth"`
	Prompt      PromptConfig      `mapstructure:"prompt"`
	CORS        CORSConfig        `mapstructure:"cors"`
	Log         LogConfig         `mapstructure:"log"`
	RateLimit   RateLimitConfig   `mapstructure:"rate_limit"`
	MockGateway MockGatewayConfig `mapstructure:"mock_gateway"`
	Client      ClientConfig      `mapstructure:"client"`
}

type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	MaxHeaderBytes int           `mapstructure:"max_header_bytes"`
}

// GatewayConfig describes the upstream completion API. HeaderTimeout bounds
// the wait for response headers only; the streamed body has no deadline.
type GatewayConfig struct {
	BaseURL       string        `mapstructure:"base_url"`
	APIKey        string        `mapstructure:"api_key"`
	Model         string        `mapstructure:"model"`
	HeaderTimeout time.Duration `mapstructure:"header_timeout"`
}

type AuthConfig struct {
	Provider     string            `mapstructure:"provider"`
	URL          string            `mapstructure:"url"`
	AnonKey      string            `mapstructure:"anon_key"`
	StaticTokens map[string]string `mapstructure:"static_tokens"`
	Timeout      time.Duration     `mapstructure:"timeout"`
}

type PromptConfig struct {
	SystemPrompt string `mapstructure:"system_prompt"`
}

type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type RateLimitConfig struct {
	Enabled           bool `mapstructure:"enabled"`
	RequestsPerMinute int  `mapstructure:"requests_per_minute"`
	Burst             int  `mapstructure:"burst"`
}

type MockGatewayConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	ChunkDelay time.Duration `mapstructure:"chunk_delay"`
}

// ClientConfig is read by the terminal client only.
type ClientConfig struct {
	Endpoint       string        `mapstructure:"endpoint"`
	StorageType    string        `mapstructure:"storage_type"`
	DataDir        string        `mapstructure:"data_dir"`
	StorageKey     string        `mapstructure:"storage_key"`
	SessionKey     string        `mapstructure:"session_key"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// DefaultAllowedHeaders is the header set browsers send to the chat endpoint.
var DefaultAllowedHeaders = []string{
	"authorization",
	"x-client-info",
	"apikey",
	"content-type",
	"x-supabase-client-platform",
	"x-supabase-client-platform-version",
	"x-supabase-client-runtime",
	"x-supabase-client-runtime-version",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 0)
	v.SetDefault("server.max_header_bytes", 1<<20)

	v.SetDefault("gateway.base_url", "https://ai.gateway.lovable.dev/v1")
	v.SetDefault("gateway.model", "google/gemini-3-flash-preview")
	v.SetDefault("gateway.header_timeout", 60*time.Second)

	v.SetDefault("auth.provider", "gotrue")
	v.SetDefault("auth.timeout", 10*time.Second)

	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cors.allowed_methods", []string{"POST", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", DefaultAllowedHeaders)
	v.SetDefault("cors.max_age", 86400)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("rate_limit.enabled", false)
	v.SetDefault("rate_limit.requests_per_minute", 30)
	v.SetDefault("rate_limit.burst", 5)

	v.SetDefault("mock_gateway.enabled", false)
	v.SetDefault("mock_gateway.chunk_delay", 40*time.Millisecond)

	v.SetDefault("client.endpoint", "http://localhost:8080/chat")
	v.SetDefault("client.storage_type", "disk")
	v.SetDefault("client.data_dir", "./data")
	v.SetDefault("client.storage_key", "ayurveda-chat-history")
	v.SetDefault("client.session_key", "ayurwell-auth-session")
	v.SetDefault("client.request_timeout", 60*time.Second)
}

// Load reads configPath (a missing file means defaults only) and applies
// AYURWELL_* environment overrides, e.g. AYURWELL_GATEWAY_MODEL.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("AYURWELL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}

	// 配置文件优先，未设置时使用环境变量
	if cfg.Gateway.APIKey == "" {
		if apiKey := os.Getenv("LOVABLE_API_KEY"); apiKey != "" {
			cfg.Gateway.APIKey = apiKey
		}
		if apiKey := os.Getenv("GATEWAY_API_KEY"); apiKey != "" {
			cfg.Gateway.APIKey = apiKey
		}
	}
	if cfg.Auth.URL == "" {
		cfg.Auth.URL = os.Getenv("SUPABASE_URL")
	}
	if cfg.Auth.AnonKey == "" {
		cfg.Auth.AnonKey = os.Getenv("SUPABASE_ANON_KEY")
	}

	return cfg, nil
}
