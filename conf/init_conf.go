package conf

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config application configuration structure
type Config struct {
	// Network configuration
	Port string // File API service port

	// Database configuration
	Database DatabaseConfig

	// Storage configuration
	Storage StorageConfig

	// Redis configuration
	Redis RedisConfig

	// Upload configuration
	Upload UploadConfig

	// Parser configuration
	Parser ParserConfig

	// Swagger API base URL (e.g., "example.com:7290")
	SwaggerBaseUrl string
}

// DatabaseConfig database configuration
type DatabaseConfig struct {
	Type         string // Database type: mysql, pebble
	Dsn          string // MySQL DSN
	MaxOpenConns int    // MySQL max open connections
	MaxIdleConns int    // MySQL max idle connections
	DataDir      string // PebbleDB data directory
}

// StorageConfig storage configuration
type StorageConfig struct {
	Type  string
	Local LocalStorageConfig
	OSS   OSSStorageConfig
	S3    S3StorageConfig
}

// LocalStorageConfig local storage configuration
type LocalStorageConfig struct {
	BasePath string
}

// OSSStorageConfig OSS storage configuration
type OSSStorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Domain    string
}

// S3StorageConfig AWS S3 storage configuration
type S3StorageConfig struct {
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	Domain    string
	Endpoint  string // Optional custom endpoint
}

// RedisConfig redis configuration
type RedisConfig struct {
	Enabled  bool   // Enable Redis cache
	Host     string // Redis host
	Port     int    // Redis port
	Password string // Redis password (optional)
	DB       int    // Redis database number
	CacheTTL int    // Cache TTL in seconds (default: 300)
}

// UploadConfig upload configuration
type UploadConfig struct {
	MaxFileSize int64 // Max file size in bytes, configured in MB, 0 = unlimited
}

// ParserConfig parsing stage configuration
type ParserConfig struct {
	MaxRows          int // Parsed content row cap
	ChunkCount       int // Progress chunks during the processing phase
	TickMs           int // Progress tick interval in milliseconds
	StalledThreshold int // Seconds before a quiet non-terminal record is marked failed
}

// Cfg global configuration instance
var Cfg *Config

// InitConfig initialize configuration
func InitConfig() error {
	viper.SetConfigFile(GetYaml())
	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("Fatal error config file: %s", err)
	}

	// Create configuration instance
	Cfg = &Config{
		Port: viper.GetString("port"),

		Database: DatabaseConfig{
			Type:         viper.GetString("database.type"),
			Dsn:          viper.GetString("database.dsn"),
			MaxOpenConns: viper.GetInt("database.max_open_conns"),
			MaxIdleConns: viper.GetInt("database.max_idle_conns"),
			DataDir:      viper.GetString("database.data_dir"),
		},

		Storage: StorageConfig{
			Type: viper.GetString("storage.type"),
			Local: LocalStorageConfig{
				BasePath: viper.GetString("storage.local.base_path"),
			},
			OSS: OSSStorageConfig{
				Endpoint:  viper.GetString("storage.oss.endpoint"),
				AccessKey: viper.GetString("storage.oss.access_key"),
				SecretKey: viper.GetString("storage.oss.secret_key"),
				Bucket:    viper.GetString("storage.oss.bucket"),
				Domain:    viper.GetString("storage.oss.domain"),
			},
			S3: S3StorageConfig{
				Region:    viper.GetString("storage.s3.region"),
				AccessKey: viper.GetString("storage.s3.access_key"),
				SecretKey: viper.GetString("storage.s3.secret_key"),
				Bucket:    viper.GetString("storage.s3.bucket"),
				Domain:    viper.GetString("storage.s3.domain"),
				Endpoint:  viper.GetString("storage.s3.endpoint"),
			},
		},

		Redis: RedisConfig{
			Enabled:  viper.GetBool("redis.enabled"),
			Host:     viper.GetString("redis.host"),
			Port:     viper.GetInt("redis.port"),
			Password: viper.GetString("redis.password"),
			DB:       viper.GetInt("redis.db"),
			CacheTTL: viper.GetInt("redis.cache_ttl"),
		},

		Upload: UploadConfig{
			MaxFileSize: viper.GetInt64("upload.max_file_size") * 1024 * 1024, // MB to bytes
		},

		Parser: ParserConfig{
			MaxRows:          viper.GetInt("parser.max_rows"),
			ChunkCount:       viper.GetInt("parser.chunk_count"),
			TickMs:           viper.GetInt("parser.tick_ms"),
			StalledThreshold: viper.GetInt("parser.stalled_threshold"),
		},

		SwaggerBaseUrl: viper.GetString("swagger_base_url"),
	}

	// Set default values
	if Cfg.Port == "" {
		Cfg.Port = "7290"
	}
	if Cfg.Database.Type == "" {
		Cfg.Database.Type = "pebble"
	}
	if Cfg.Database.DataDir == "" {
		Cfg.Database.DataDir = "./data/db"
	}
	if Cfg.Database.MaxOpenConns == 0 {
		Cfg.Database.MaxOpenConns = 100
	}
	if Cfg.Database.MaxIdleConns == 0 {
		Cfg.Database.MaxIdleConns = 10
	}
	if Cfg.Storage.Type == "" {
		Cfg.Storage.Type = "local"
	}
	if Cfg.Storage.Local.BasePath == "" {
		Cfg.Storage.Local.BasePath = "./data/files"
	}
	if Cfg.Redis.CacheTTL == 0 {
		Cfg.Redis.CacheTTL = 300
	}
	if !viper.IsSet("upload.max_file_size") {
		Cfg.Upload.MaxFileSize = 104857600 // 100MB; an explicit 0 means unlimited
	}
	if Cfg.Parser.MaxRows == 0 {
		Cfg.Parser.MaxRows = 5000
	}
	if Cfg.Parser.ChunkCount == 0 {
		Cfg.Parser.ChunkCount = 5
	}
	if Cfg.Parser.TickMs == 0 {
		Cfg.Parser.TickMs = 300
	}
	if Cfg.Parser.StalledThreshold == 0 {
		Cfg.Parser.StalledThreshold = 600
	}
	if Cfg.SwaggerBaseUrl == "" {
		Cfg.SwaggerBaseUrl = "localhost:" + Cfg.Port
	}

	return nil
}
