package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	OAuth     OAuthConfig     `mapstructure:"oauth"`
	OSS       OSSConfig       `mapstructure:"oss"`
	CORS      CORSConfig      `mapstructure:"cors"`
	Inference InferenceConfig `mapstructure:"inference"`
	Credits   CreditsConfig   `mapstructure:"credits"`
	Payment   PaymentConfig   `mapstructure:"payment"`
	Models    []ModelConfig   `mapstructure:"models"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Username     string `mapstructure:"username"`
	Password     string `mapstructure:"password"`
	Database     string `mapstructure:"database"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	ExpireHours int    `mapstructure:"expire_hours"`
}

type OAuthConfig struct {
	Github GithubOAuthConfig `mapstructure:"github"`
}

type GithubOAuthConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	RedirectURI  string `mapstructure:"redirect_uri"`
}

type OSSConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	AccessKeySecret string `mapstructure:"access_key_secret"`
	BucketName      string `mapstructure:"bucket_name"`
	CDNDomain       string `mapstructure:"cdn_domain"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
}

// InferenceConfig 外部图片生成 API（OpenRouter 协议）
type InferenceConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	APIKey         string `mapstructure:"api_key"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// CreditsConfig 积分规则
type CreditsConfig struct {
	GenerationCost int `mapstructure:"generation_cost"` // 文生图单次消耗
	VariantCost    int `mapstructure:"variant_cost"`    // 图生图单次消耗
	DailyReward    int `mapstructure:"daily_reward"`    // 每日签到奖励
	HistoryLimit   int `mapstructure:"history_limit"`   // 历史记录条数上限
}

type PaymentConfig struct {
	Packages []CreditPackage `mapstructure:"packages"`
}

// CreditPackage 充值套餐：支付金额（美元）对应的积分数
type CreditPackage struct {
	ID      string `mapstructure:"id"`
	Amount  string `mapstructure:"amount"`
	Credits int    `mapstructure:"credits"`
}

type ModelConfig struct {
	Name        string `mapstructure:"name"`
	DisplayName string `mapstructure:"display_name"`
	Description string `mapstructure:"description"`
}

func Load(configPath string) (*Config, error) {
	// 优先尝试读取 config.local.yaml（包含真实密钥，不提交到git）
	dir := filepath.Dir(configPath)
	localConfigPath := filepath.Join(dir, "config.local.yaml")

	if _, err := os.Stat(localConfigPath); err == nil {
		configPath = localConfigPath
	}

	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	// 环境变量覆盖
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Credits.GenerationCost <= 0 {
		cfg.Credits.GenerationCost = 6
	}
	if cfg.Credits.VariantCost <= 0 {
		cfg.Credits.VariantCost = 8
	}
	if cfg.Credits.DailyReward <= 0 {
		cfg.Credits.DailyReward = 20
	}
	if cfg.Credits.HistoryLimit <= 0 {
		cfg.Credits.HistoryLimit = 50
	}
	if cfg.Inference.BaseURL == "" {
		cfg.Inference.BaseURL = "https://openrouter.ai/api/v1"
	}
}
