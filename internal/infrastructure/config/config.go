package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// ServerConfig represents server configuration
type ServerConfig struct {
	GRPC GRPCServerConfig `mapstructure:"grpc" yaml:"grpc" json:"grpc"`
}

// GRPCServerConfig represents gRPC server configuration
type GRPCServerConfig struct {
	Host              string          `mapstructure:"host" yaml:"host" json:"host"`
	Port              int             `mapstructure:"port" yaml:"port" json:"port" validate:"min=1,max=65535"`
	MaxRecvMsgSize    int             `mapstructure:"max_recv_msg_size" yaml:"max_recv_msg_size" json:"max_recv_msg_size" validate:"gt=0"`
	MaxSendMsgSize    int             `mapstructure:"max_send_msg_size" yaml:"max_send_msg_size" json:"max_send_msg_size" validate:"gt=0"`
	ConnectionTimeout time.Duration   `mapstructure:"connection_timeout" yaml:"connection_timeout" json:"connection_timeout" validate:"gte=0"`
	KeepAlive         KeepAliveConfig `mapstructure:"keep_alive" yaml:"keep_alive" json:"keep_alive"`
	ShutdownTimeout   time.Duration   `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" json:"shutdown_timeout" validate:"gte=0"`
}

// Address returns the host:port the gRPC server listens on
func (c GRPCServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// KeepAliveConfig represents gRPC keepalive configuration
type KeepAliveConfig struct {
	Time                  time.Duration `mapstructure:"time" yaml:"time" json:"time"`
	Timeout               time.Duration `mapstructure:"timeout" yaml:"timeout" json:"timeout"`
	MinTime               time.Duration `mapstructure:"min_time" yaml:"min_time" json:"min_time"`
	PermitWithoutStream   bool          `mapstructure:"permit_without_stream" yaml:"permit_without_stream" json:"permit_without_stream"`
	MaxConnectionIdle     time.Duration `mapstructure:"max_connection_idle" yaml:"max_connection_idle" json:"max_connection_idle"`
	MaxConnectionAge      time.Duration `mapstructure:"max_connection_age" yaml:"max_connection_age" json:"max_connection_age"`
	MaxConnectionAgeGrace time.Duration `mapstructure:"max_connection_age_grace" yaml:"max_connection_age_grace" json:"max_connection_age_grace"`
}

// BankConfig holds the fixed amounts of the bank service
type BankConfig struct {
	Balance        int32         `mapstructure:"balance" yaml:"balance" json:"balance"`
	MaxWithdraw    int32         `mapstructure:"max_withdraw" yaml:"max_withdraw" json:"max_withdraw" validate:"gte=0"`
	Denomination   int32         `mapstructure:"denomination" yaml:"denomination" json:"denomination" validate:"gt=0"`
	PayoutInterval time.Duration `mapstructure:"payout_interval" yaml:"payout_interval" json:"payout_interval" validate:"gte=0"`
}

// FilesConfig holds upload storage settings
type FilesConfig struct {
	Dir  string `mapstructure:"dir" yaml:"dir" json:"dir" validate:"required"`
	Name string `mapstructure:"name" yaml:"name" json:"name" validate:"required"`
	Mode string `mapstructure:"mode" yaml:"mode" json:"mode" validate:"oneof=shared per_call"`
}

// MetricsConfig controls the Prometheus endpoint
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled" json:"enabled"`
	Address string `mapstructure:"address" yaml:"address" json:"address" validate:"required_if=Enabled true"`
	Path    string `mapstructure:"path" yaml:"path" json:"path" validate:"required_if=Enabled true"`
}

// TracingConfig controls OpenTelemetry tracing
type TracingConfig struct {
	Enabled     bool   `mapstructure:"enabled" yaml:"enabled" json:"enabled"`
	Exporter    string `mapstructure:"exporter" yaml:"exporter" json:"exporter" validate:"oneof=stdout none"`
	ServiceName string `mapstructure:"service_name" yaml:"service_name" json:"service_name" validate:"required"`
}

// LogConfig controls the process logger
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level" json:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" yaml:"format" json:"format" validate:"oneof=json console"`
}

// Config represents the application configuration
type Config struct {
	Server  ServerConfig  `mapstructure:"server" yaml:"server" json:"server"`
	Bank    BankConfig    `mapstructure:"bank" yaml:"bank" json:"bank"`
	Files   FilesConfig   `mapstructure:"files" yaml:"files" json:"files"`
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics" json:"metrics"`
	Tracing TracingConfig `mapstructure:"tracing" yaml:"tracing" json:"tracing"`
	Log     LogConfig     `mapstructure:"log" yaml:"log" json:"log"`
}

// EnvPrefix prefixes every environment variable read by LoadConfig
const EnvPrefix = "BANKSTREAM"

// DefaultConfigPaths are searched when LoadConfig gets no explicit paths
var DefaultConfigPaths = []string{
	"./config.yaml",
	"./configs/config.yaml",
	"/etc/bankstream/config.yaml",
}

// LoadConfig loads the application configuration from defaults, the first existing
// config files and the environment, in increasing order of precedence
func LoadConfig(paths ...string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Bare variables understood by the reference deployment
	if err := v.BindEnv("server.grpc.port", EnvPrefix+"_SERVER_GRPC_PORT", "PORT"); err != nil {
		return nil, fmt.Errorf("failed to bind PORT: %w", err)
	}
	if err := v.BindEnv("log.level", EnvPrefix+"_LOG_LEVEL", "LOG_LEVEL"); err != nil {
		return nil, fmt.Errorf("failed to bind LOG_LEVEL: %w", err)
	}

	if len(paths) == 0 {
		paths = DefaultConfigPaths
	}
	for _, path := range paths {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}
		v.SetConfigFile(path)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// Validate checks the configuration for invalid values
func (c *Config) Validate() error {
	return validator.New(validator.WithRequiredStructEnabled()).Struct(c)
}

func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.grpc.host", "0.0.0.0")
	v.SetDefault("server.grpc.port", 50051)
	v.SetDefault("server.grpc.max_recv_msg_size", 4<<20) // 4MB
	v.SetDefault("server.grpc.max_send_msg_size", 4<<20) // 4MB
	v.SetDefault("server.grpc.connection_timeout", 5*time.Second)
	v.SetDefault("server.grpc.shutdown_timeout", 30*time.Second)
	v.SetDefault("server.grpc.keep_alive.time", 2*time.Hour)
	v.SetDefault("server.grpc.keep_alive.timeout", 20*time.Second)
	v.SetDefault("server.grpc.keep_alive.min_time", 5*time.Minute)
	v.SetDefault("server.grpc.keep_alive.permit_without_stream", false)
	v.SetDefault("server.grpc.keep_alive.max_connection_idle", 15*time.Minute)
	v.SetDefault("server.grpc.keep_alive.max_connection_age", 30*time.Minute)
	v.SetDefault("server.grpc.keep_alive.max_connection_age_grace", 5*time.Minute)

	// Bank defaults
	v.SetDefault("bank.balance", 100)
	v.SetDefault("bank.max_withdraw", 1000)
	v.SetDefault("bank.denomination", 100)
	v.SetDefault("bank.payout_interval", time.Second)

	// Upload storage defaults
	v.SetDefault("files.dir", ".")
	v.SetDefault("files.name", "File_Copy.pdf")
	v.SetDefault("files.mode", "shared")

	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.address", ":9102")
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.exporter", "stdout")
	v.SetDefault("tracing.service_name", "bankstream")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}
