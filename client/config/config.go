package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gear6io/plvclient/pkg/errors"
	"github.com/gear6io/plvclient/pkg/protocol"
	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up by Load
const FileName = "plv-client.yml"

// Config represents the client configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Protocol ProtocolConfig `yaml:"protocol"`
	Viewer   ViewerConfig   `yaml:"viewer"`
	Archive  ArchiveConfig  `yaml:"archive"`
	Logging  LogConfig      `yaml:"logging"`
}

// ServerConfig holds server connection configuration
type ServerConfig struct {
	Address       string        `yaml:"address"`
	Port          int           `yaml:"port"`
	DialTimeout   time.Duration `yaml:"dial_timeout"`
	ReadBuffer    int           `yaml:"read_buffer"`
	MaxReadBuffer int           `yaml:"max_read_buffer"`
}

// ProtocolConfig bounds what the client accepts from the server
type ProtocolConfig struct {
	MaxFrameSize int `yaml:"max_frame_size"`
}

// ViewerConfig controls the HTTP viewer
type ViewerConfig struct {
	Enabled bool   `yaml:"enabled"`
	Address string `yaml:"address"`
}

// ArchiveConfig controls uploading decoded frames to S3-compatible storage
type ArchiveConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Region    string `yaml:"region"`
	UseSSL    bool   `yaml:"use_ssl"`
	Bucket    string `yaml:"bucket"`
	Prefix    string `yaml:"prefix"`
	EveryN    int    `yaml:"every_n"`
	QueueSize int    `yaml:"queue_size"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// DefaultConfig returns default client configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Address:       "localhost",
			Port:          2346,
			DialTimeout:   10 * time.Second,
			ReadBuffer:    4 << 10,
			MaxReadBuffer: 64 << 10,
		},
		Protocol: ProtocolConfig{
			MaxFrameSize: protocol.DefaultMaxFrameSize,
		},
		Viewer: ViewerConfig{
			Enabled: false,
			Address: "127.0.0.1:8089",
		},
		Archive: ArchiveConfig{
			Enabled:   false,
			Endpoint:  "localhost:9000",
			Region:    "us-east-1",
			Bucket:    "plv-frames",
			Prefix:    "frames",
			EveryN:    1,
			QueueSize: 16,
		},
		Logging: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load loads configuration from the first file on the search path, or the
// defaults when there is none
func Load() (*Config, error) {
	configPath := findConfigFile()

	if configPath != "" {
		return LoadFromFile(configPath)
	}

	return DefaultConfig(), nil
}

// LoadFromFile loads configuration from a specific file. Missing keys keep
// their default values.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New(ErrConfigFileReadFailed, "failed to read config file", err).
			AddContext("path", path)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.New(ErrConfigFileParseFailed, "failed to parse config file", err).
			AddContext("path", path)
	}

	return cfg, nil
}

// Save saves configuration to file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.New(ErrConfigFileMarshalFailed, "failed to marshal config", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.New(ErrConfigFileWriteFailed, "failed to create config directory", err).
				AddContext("path", path)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New(ErrConfigFileWriteFailed, "failed to write config file", err).
			AddContext("path", path)
	}

	return nil
}

// findConfigFile searches for configuration file
func findConfigFile() string {
	// Check current directory
	if _, err := os.Stat(FileName); err == nil {
		return FileName
	}

	// Check home directory
	homeDir, err := os.UserHomeDir()
	if err == nil {
		configPath := filepath.Join(homeDir, ".plvclient", FileName)
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
	}

	// Check /etc/plvclient
	configPath := filepath.Join("/etc/plvclient", FileName)
	if _, err := os.Stat(configPath); err == nil {
		return configPath
	}

	return ""
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Address == "" {
		return errors.New(ErrServerAddressEmpty, "server address cannot be empty", nil)
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return errors.Newf(ErrServerPortInvalid, "invalid server port: %d", c.Server.Port)
	}

	if c.Server.ReadBuffer <= 0 || c.Server.MaxReadBuffer < c.Server.ReadBuffer {
		return errors.Newf(ErrReadBufferInvalid, "read buffer %d must be positive and not exceed max %d",
			c.Server.ReadBuffer, c.Server.MaxReadBuffer)
	}

	if c.Protocol.MaxFrameSize < protocol.FrameHeaderSize {
		return errors.Newf(ErrMaxFrameSizeInvalid, "max frame size %d is smaller than a frame header", c.Protocol.MaxFrameSize)
	}

	if c.Viewer.Enabled {
		if _, _, err := net.SplitHostPort(c.Viewer.Address); err != nil {
			return errors.New(ErrViewerAddressInvalid, "invalid viewer address", err).
				AddContext("address", c.Viewer.Address)
		}
	}

	if c.Archive.Enabled {
		if c.Archive.Endpoint == "" || c.Archive.Bucket == "" {
			return errors.New(ErrArchiveIncomplete, "archive needs an endpoint and a bucket", nil)
		}
		if c.Archive.EveryN <= 0 || c.Archive.QueueSize <= 0 {
			return errors.Newf(ErrArchiveIncomplete, "archive every_n (%d) and queue_size (%d) must be positive",
				c.Archive.EveryN, c.Archive.QueueSize)
		}
	}

	switch strings.ToLower(c.Logging.Format) {
	case "console", "text", "json":
	default:
		return errors.Newf(ErrLogFormatInvalid, "unknown log format %q", c.Logging.Format)
	}

	return nil
}

// ServerAddr returns host:port for dialing
func (c *Config) ServerAddr() string {
	return net.JoinHostPort(c.Server.Address, strconv.Itoa(c.Server.Port))
}

// SetServerAddr parses a host:port override such as the --server flag
func (c *Config) SetServerAddr(addr string) error {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return errors.New(ErrServerAddressEmpty, fmt.Sprintf("invalid server address %q", addr), err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return errors.Newf(ErrServerPortInvalid, "invalid server port: %s", portStr)
	}
	c.Server.Address = host
	c.Server.Port = port
	return nil
}
