package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Cache     CacheConfig     `yaml:"cache"`
	Redis     RedisConfig     `yaml:"redis"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	Auth      AuthConfig      `yaml:"auth"`
	Predictor PredictorConfig `yaml:"predictor"`
	Worker    WorkerConfig    `yaml:"worker"`
}

type HTTPConfig struct {
	Address string `yaml:"address"`
}

type DatabaseConfig struct {
	Host                  string `yaml:"host"`
	Port                  int    `yaml:"port"`
	User                  string `yaml:"user"`
	Password              string `yaml:"password"`
	Name                  string `yaml:"name"`
	SSLMode               string `yaml:"ssl_mode"`
	ConnectTimeoutSeconds int    `yaml:"connect_timeout_seconds"`
	MaxConns              int    `yaml:"max_conns"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s connect_timeout=%d",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode, d.ConnectTimeoutSeconds)
}

type CacheConfig struct {
	// Backend selects the cache implementation: "memory" or "redis".
	Backend             string `yaml:"backend"`
	SearchTTLSeconds    int    `yaml:"search_ttl_seconds"`
	FlightTTLSeconds    int    `yaml:"flight_ttl_seconds"`
	ReferenceTTLSeconds int    `yaml:"reference_ttl_seconds"`
	SweepMinutes        int    `yaml:"sweep_minutes"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers        []string `yaml:"brokers"`
	WelcomeTopic   string   `yaml:"welcome_topic"`
	GroupID        string   `yaml:"group_id"`
	PublishRetries int      `yaml:"publish_retries"`
}

type AuthConfig struct {
	HMACSecret string `yaml:"hmac_secret"`
}

type PredictorConfig struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

type WorkerConfig struct {
	ReconcileIntervalMinutes    int `yaml:"reconcile_interval_minutes"`
	WelcomeSweepIntervalMinutes int `yaml:"welcome_sweep_interval_minutes"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &cfg, nil
}
