package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	SQLite   SQLiteConfig
	Qiita    QiitaConfig
	LLM      LLMConfig
	Logging  LoggingConfig
	Security SecurityConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  int
	WriteTimeout int
	BodyLimit    int
}

type SQLiteConfig struct {
	Path string
}

type QiitaConfig struct {
	BaseURL    string
	Token      string
	TimeoutSec int
}

type LLMConfig struct {
	BaseURL     string
	Model       string
	APIKey      string
	Temperature float32
	MaxTokens   int
	TimeoutSec  int
}

type LoggingConfig struct {
	Level      string
	Format     string
	OutputPath string
}

type SecurityConfig struct {
	AllowedOrigins []string
	IsDevelopment  bool
}

// Load reads config.yaml (if present) and the environment. The Qiita token and
// OpenAI key are also read from their conventional unprefixed variables.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/article-eval")

	v.SetEnvPrefix("ARTICLE_EVAL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.BindEnv("qiita.token", "ARTICLE_EVAL_QIITA_TOKEN", "QIITA_API_TOKEN"); err != nil {
		return nil, fmt.Errorf("failed to bind qiita token: %w", err)
	}
	if err := v.BindEnv("llm.apiKey", "ARTICLE_EVAL_LLM_APIKEY", "OPENAI_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind llm api key: %w", err)
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.readTimeout", 30)
	v.SetDefault("server.writeTimeout", 90)
	v.SetDefault("server.bodyLimit", 1048576)

	v.SetDefault("sqlite.path", "./evaluation.db")

	v.SetDefault("qiita.baseURL", "https://qiita.com")
	v.SetDefault("qiita.timeoutSec", 15)

	v.SetDefault("llm.model", "gpt-3.5-turbo")
	v.SetDefault("llm.temperature", 0.7)
	v.SetDefault("llm.maxTokens", 1000)
	v.SetDefault("llm.timeoutSec", 60)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.outputPath", "stdout")

	v.SetDefault("security.allowedOrigins", []string{})
	v.SetDefault("security.isDevelopment", false)
}
