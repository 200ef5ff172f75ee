package types

import (
	"time"
)

// AppConfig is the root configuration for the familynest gateway and CLI
type AppConfig struct {
	DebugMode  bool `key:"debugMode" json:"debug_mode"`
	PrettyLogs bool `key:"prettyLogs" json:"pretty_logs"`

	Database  DatabaseConfig  `key:"database" json:"database"`
	Catalog   CatalogConfig   `key:"catalog" json:"catalog"`
	Cloud     CloudConfig     `key:"cloud" json:"cloud"`
	Cache     CacheConfig     `key:"cache" json:"cache"`
	Picker    PickerConfig    `key:"picker" json:"picker"`
	Resolver  ResolverConfig  `key:"resolver" json:"resolver"`
	Resources ResourcesConfig `key:"resources" json:"resources"`
	Handles   HandlesConfig   `key:"handles" json:"handles"`
	Gateway   GatewayConfig   `key:"gateway" json:"gateway"`
	Metrics   MetricsConfig   `key:"metrics" json:"metrics"`
}

// ----------------------------------------------------------------------------
// Database Configuration
// ----------------------------------------------------------------------------

type DatabaseConfig struct {
	Redis RedisConfig `key:"redis" json:"redis"`
}

type RedisMode string

const (
	RedisModeSingle  RedisMode = "single"
	RedisModeCluster RedisMode = "cluster"
)

// RedisConfig is optional; with no addrs the gateway keeps grants and the
// picker guard in process.
type RedisConfig struct {
	Mode               RedisMode     `key:"mode" json:"mode"`
	Addrs              []string      `key:"addrs" json:"addrs"`
	Username           string        `key:"username" json:"username"`
	Password           string        `key:"password" json:"password"`
	ClientName         string        `key:"clientName" json:"client_name"`
	EnableTLS          bool          `key:"enableTLS" json:"enable_tls"`
	InsecureSkipVerify bool          `key:"insecureSkipVerify" json:"insecure_skip_verify"`
	PoolSize           int           `key:"poolSize" json:"pool_size"`
	MinIdleConns       int           `key:"minIdleConns" json:"min_idle_conns"`
	DialTimeout        time.Duration `key:"dialTimeout" json:"dial_timeout"`
	ReadTimeout        time.Duration `key:"readTimeout" json:"read_timeout"`
	WriteTimeout       time.Duration `key:"writeTimeout" json:"write_timeout"`
	MaxRetries         int           `key:"maxRetries" json:"max_retries"`
}

func (c RedisConfig) Enabled() bool {
	return len(c.Addrs) > 0
}

type PostgresConfig struct {
	Host            string        `key:"host" json:"host"`
	Port            int           `key:"port" json:"port"`
	User            string        `key:"user" json:"user"`
	Password        string        `key:"password" json:"password"`
	Database        string        `key:"database" json:"database"`
	SSLMode         string        `key:"sslMode" json:"ssl_mode"`
	MaxOpenConns    int           `key:"maxOpenConns" json:"max_open_conns"`
	MaxIdleConns    int           `key:"maxIdleConns" json:"max_idle_conns"`
	ConnMaxLifetime time.Duration `key:"connMaxLifetime" json:"conn_max_lifetime"`
}

// ----------------------------------------------------------------------------
// Source Configuration
// ----------------------------------------------------------------------------

const (
	CatalogDriverSQLite   = "sqlite3"
	CatalogDriverPostgres = "postgres"
)

type CatalogConfig struct {
	Driver   string         `key:"driver" json:"driver"` // "sqlite3" or "postgres"
	Path     string         `key:"path" json:"path"`     // sqlite file, ":memory:" for tests
	Postgres PostgresConfig `key:"postgres" json:"postgres"`
}

type CloudConfig struct {
	RootPath string `key:"rootPath" json:"root_path"`
	MaxDepth int    `key:"maxDepth" json:"max_depth"`
}

type CacheConfig struct {
	Dir          string `key:"dir" json:"dir"`
	MinFreeBytes uint64 `key:"minFreeBytes" json:"min_free_bytes"`
}

type PickerConfig struct {
	Timeout time.Duration `key:"timeout" json:"timeout"` // zero waits for the external picker indefinitely
	LockTTL time.Duration `key:"lockTTL" json:"lock_ttl"`
}

type ResolverConfig struct {
	CacheSize int           `key:"cacheSize" json:"cache_size"`
	Timeout   time.Duration `key:"timeout" json:"timeout"`
}

type ResourcesConfig struct {
	DefaultMaxSizeBytes int64 `key:"defaultMaxSizeBytes" json:"default_max_size_bytes"`
}

type S3Config struct {
	Region         string `key:"region" json:"region"`
	Endpoint       string `key:"endpoint" json:"endpoint"`
	AccessKey      string `key:"accessKey" json:"access_key"`
	SecretKey      string `key:"secretKey" json:"secret_key"`
	ForcePathStyle bool   `key:"forcePathStyle" json:"force_path_style"`
}

func (c S3Config) IsConfigured() bool {
	return c.Region != ""
}

type HandlesConfig struct {
	S3 S3Config `key:"s3" json:"s3"`
}

// ----------------------------------------------------------------------------
// Gateway Configuration
// ----------------------------------------------------------------------------

type GatewayConfig struct {
	HTTP            HTTPConfig    `key:"http" json:"http"`
	ShutdownTimeout time.Duration `key:"shutdownTimeout" json:"shutdown_timeout"`
	AuthToken       string        `key:"authToken" json:"auth_token"`
}

type HTTPConfig struct {
	Host             string     `key:"host" json:"host"`
	Port             int        `key:"port" json:"port"`
	EnablePrettyLogs bool       `key:"enablePrettyLogs" json:"enable_pretty_logs"`
	CORS             CORSConfig `key:"cors" json:"cors"`
}

type CORSConfig struct {
	AllowedOrigins []string `key:"allowOrigins" json:"allow_origins"`
	AllowedMethods []string `key:"allowMethods" json:"allow_methods"`
	AllowedHeaders []string `key:"allowHeaders" json:"allow_headers"`
}

type MetricsConfig struct {
	Enabled bool `key:"enabled" json:"enabled"`
}
