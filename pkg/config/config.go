package config

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/fawa-io/lanshare/pkg/fwlog"
)

type Config struct {
	Host       string          `mapstructure:"host"`
	Port       int             `mapstructure:"port"`
	StorageDir string          `mapstructure:"storageDir"`
	LogLevel   string          `mapstructure:"logLevel"`
	QRCode     QRCodeConfig    `mapstructure:"qrcode"`
	Discovery  DiscoveryConfig `mapstructure:"discovery"`
	Redis      RedisConfig     `mapstructure:"redis"`
	MinIO      MinIOConfig     `mapstructure:"minio"`
}

type QRCodeConfig struct {
	Name     string `mapstructure:"name"`
	Terminal bool   `mapstructure:"terminal"`
}

// DiscoveryConfig tunes the LAN address resolver. The adapter labels match
// English ipconfig output by default; localized Windows builds need their
// own labels here.
type DiscoveryConfig struct {
	CommandTimeout time.Duration `mapstructure:"commandTimeout"`
	WirelessLabels []string      `mapstructure:"wirelessLabels"`
	EthernetLabels []string      `mapstructure:"ethernetLabels"`
	IPv4Label      string        `mapstructure:"ipv4Label"`
	ProbeTargets   []string      `mapstructure:"probeTargets"`
	UseGateway     bool          `mapstructure:"useGateway"`
}

// RedisConfig enables the Dragonfly/Redis share-link store when Addr is set.
type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// MinIOConfig enables mirroring uploads to a bucket when Endpoint is set.
type MinIOConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"accessKeyID"`
	SecretAccessKey string `mapstructure:"secretAccessKey"`
	Bucket          string `mapstructure:"bucket"`
	UseSSL          bool   `mapstructure:"useSSL"`
	// Region skips the bucket location lookup when set.
	Region string `mapstructure:"region"`
}

// EnvPrefix is prepended to every environment override, e.g. LANSHARE_PORT.
const EnvPrefix = "LANSHARE"

var (
	ErrInvalidPort       = errors.New("port must be between 1 and 65535")
	ErrEmptyStorageDir   = errors.New("storage dir must not be empty")
	ErrInvalidQRCodeName = errors.New("qrcode name must be a bare file name")
	ErrInvalidTimeout    = errors.New("discovery command timeout must be positive")
)

// Loader reads a Config from flags, environment, an optional config file
// and defaults, in that order of precedence.
type Loader struct {
	v  *viper.Viper
	fs *pflag.FlagSet

	mu  sync.RWMutex
	cfg Config
}

func NewLoader() *Loader {
	v := viper.New()
	setDefaults(v)

	fs := pflag.NewFlagSet("lanshare", pflag.ContinueOnError)
	fs.String("host", v.GetString("host"), "Bind address of the HTTP server")
	fs.Int("port", v.GetInt("port"), "Port of the HTTP server")
	fs.String("storageDir", v.GetString("storageDir"), "Directory holding exchanged files")
	fs.String("logLevel", v.GetString("logLevel"), "Log level (debug, info, warn, error)")
	fs.String("config", "", "Path to a config file")

	return &Loader{v: v, fs: fs}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("port", 7860)
	v.SetDefault("storageDir", "./shared")
	v.SetDefault("logLevel", "info")

	v.SetDefault("qrcode.name", "qrcode.png")
	v.SetDefault("qrcode.terminal", true)

	v.SetDefault("discovery.commandTimeout", 3*time.Second)
	v.SetDefault("discovery.wirelessLabels", []string{"Wireless LAN adapter"})
	v.SetDefault("discovery.ethernetLabels", []string{"Ethernet adapter"})
	v.SetDefault("discovery.ipv4Label", "IPv4 Address")
	v.SetDefault("discovery.probeTargets", []string{"8.8.8.8:1", "192.168.1.1:1"})
	v.SetDefault("discovery.useGateway", false)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", 25*time.Minute)

	v.SetDefault("minio.endpoint", "")
	v.SetDefault("minio.accessKeyID", "")
	v.SetDefault("minio.secretAccessKey", "")
	v.SetDefault("minio.bucket", "lanshare")
	v.SetDefault("minio.useSSL", false)
	v.SetDefault("minio.region", "")
}

// Load parses args and reads the configuration. A missing config file is
// not an error.
func (l *Loader) Load(args []string) (Config, error) {
	if err := l.fs.Parse(args); err != nil {
		return Config{}, fmt.Errorf("failed to parse flags: %w", err)
	}
	if err := l.v.BindPFlags(l.fs); err != nil {
		return Config{}, fmt.Errorf("failed to bind pflags: %w", err)
	}

	l.v.SetEnvPrefix(EnvPrefix)
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	l.v.AutomaticEnv()

	if path, _ := l.fs.GetString("config"); path != "" {
		l.v.SetConfigFile(path)
	} else {
		l.v.SetConfigName("config")
		l.v.SetConfigType("yaml")
		l.v.AddConfigPath(".")
		l.v.AddConfigPath("/etc/lanshare/")
	}

	if err := l.v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			fwlog.Debugf("Config file not found, using flags, environment and defaults.")
		} else {
			return Config{}, fmt.Errorf("fatal error config file: %w", err)
		}
	}

	cfg, err := l.decode()
	if err != nil {
		return Config{}, err
	}

	l.mu.Lock()
	l.cfg = cfg
	l.mu.Unlock()
	return cfg, nil
}

func (l *Loader) decode() (Config, error) {
	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("the configuration cannot be decoded into the struct: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Get returns the most recently loaded configuration.
func (l *Loader) Get() Config {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.cfg
}

// ConfigFileUsed reports the config file that was read, if any.
func (l *Loader) ConfigFileUsed() string {
	return l.v.ConfigFileUsed()
}

// Watch reloads the config file on change and hands every valid new
// configuration to onChange. It is a no-op when no file was read.
func (l *Loader) Watch(onChange func(Config)) {
	if l.v.ConfigFileUsed() == "" {
		return
	}
	l.v.OnConfigChange(func(e fsnotify.Event) {
		fwlog.Infof("Config file %s changed, reloading...", e.Name)

		cfg, err := l.decode()
		if err != nil {
			fwlog.Errorf("Error while reloading config: %v", err)
			return
		}

		l.mu.Lock()
		l.cfg = cfg
		l.mu.Unlock()

		if onChange != nil {
			onChange(cfg)
		}
	})
	l.v.WatchConfig()
}

// ApplyLogLevel is the default Watch callback: only the log level is hot
// reloadable, everything else is read once at startup.
func ApplyLogLevel(cfg Config) {
	lv, err := fwlog.ParseLevel(cfg.LogLevel)
	if err != nil {
		fwlog.Warnf("New log level in config is invalid: %v. Keeping previous level.", err)
		return
	}
	fwlog.SetLevel(lv)
	fwlog.Infof("Log level reloaded successfully to: %s", lv)
}

func (c Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("%w: %d", ErrInvalidPort, c.Port)
	}
	if strings.TrimSpace(c.StorageDir) == "" {
		return ErrEmptyStorageDir
	}
	if c.QRCode.Name == "" || strings.ContainsAny(c.QRCode.Name, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidQRCodeName, c.QRCode.Name)
	}
	if c.Discovery.CommandTimeout <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidTimeout, c.Discovery.CommandTimeout)
	}
	return nil
}
