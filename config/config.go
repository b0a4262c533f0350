package config

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v4"
)

type Config struct {
	Database  DatabaseConfig  `yaml:"database"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	Redis     RedisConfig     `yaml:"redis"`
	Mail      MailConfig      `yaml:"mail"`
	CargoFlow CargoFlowConfig `yaml:"cargoflow"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	DBName   string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

type KafkaConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`

	CargoEventsTopicName    string `yaml:"cargo_events_topic_name"`
	ShipmentEventsTopicName string `yaml:"shipment_events_topic_name"`
	DeliveryEventsTopicName string `yaml:"delivery_events_topic_name"`
	RouteEventsTopicName    string `yaml:"route_events_topic_name"`
	VendorEventsTopicName   string `yaml:"vendor_events_topic_name"`
}

type RedisConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type MailConfig struct {
	// "smtp" | "http" | "log". Empty means "log".
	Mode     string `yaml:"mode"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
	// Comma or semicolon separated default recipients.
	Recipients string `yaml:"recipients"`
	// "mandatory" | "opportunistic" | "none"
	TLSPolicy string `yaml:"tls_policy"`

	RelayURL    string `yaml:"relay_url"`
	RelayAPIKey string `yaml:"relay_api_key"`
}

type CargoFlowConfig struct {
	HTTPAddr string `yaml:"http_addr"`
	// "postgres" | "memory"
	Storage string `yaml:"storage"`

	SessionSecret string `yaml:"session_secret"`
	SessionName   string `yaml:"session_name"`
	SessionSecure bool   `yaml:"session_secure"`

	PrincipalEmailHeader   string `yaml:"principal_email_header"`
	PrincipalNameHeader    string `yaml:"principal_name_header"`
	PrincipalPictureHeader string `yaml:"principal_picture_header"`
	// Principal headers are ignored unless enabled. Enabling requires
	// trusted_proxy_cidrs and/or principal_secret.
	TrustPrincipalHeaders bool     `yaml:"trust_principal_headers"`
	TrustedProxyCIDRs     []string `yaml:"trusted_proxy_cidrs"`
	PrincipalSecretHeader string   `yaml:"principal_secret_header"`
	PrincipalSecret       string   `yaml:"principal_secret"`

	MetricsCacheTTLSeconds   int `yaml:"metrics_cache_ttl_seconds"`
	SideEffectTimeoutSeconds int `yaml:"side_effect_timeout_seconds"`

	LoginRateLimitPerMinute  int `yaml:"login_rate_limit_per_minute"`
	NotifyRateLimitPerMinute int `yaml:"notify_rate_limit_per_minute"`

	AdminEmail    string `yaml:"admin_email"`
	AdminPassword string `yaml:"admin_password"`
	AdminName     string `yaml:"admin_name"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	WorkerHTTPAddr     string `yaml:"worker_http_addr"`
	KafkaConsumerGroup string `yaml:"kafka_consumer_group"`
	ActivityFeedSize   int    `yaml:"activity_feed_size"`
}

// Topics returns all configured entity topics with defaults filled in.
func (k KafkaConfig) Topics() []string {
	return []string{
		orDefault(k.CargoEventsTopicName, "cargo-events"),
		orDefault(k.ShipmentEventsTopicName, "shipment-events"),
		orDefault(k.DeliveryEventsTopicName, "delivery-events"),
		orDefault(k.RouteEventsTopicName, "route-events"),
		orDefault(k.VendorEventsTopicName, "vendor-events"),
	}
}

func (k KafkaConfig) Brokers() []string {
	return []string{fmt.Sprintf("%s:%d", k.Host, k.Port)}
}

func (d DatabaseConfig) ConnString() string {
	sslMode := d.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.Username, d.Password, d.Host, d.Port, d.DBName, sslMode)
}

func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	err = yaml.Unmarshal(data, &config)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal YAML: %w", err)
	}

	return &config, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
