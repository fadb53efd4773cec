package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type RedisConfig struct {
	Host     string `mapstructure:"host" validate:"required"`
	Port     int    `mapstructure:"port" validate:"required"`
	DB       int    `mapstructure:"db"`
	Password string `mapstructure:"password"`
}

func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// CaptureConfig is the fixed audio-capture request. Nothing here is exposed
// to the page; it only shapes how the microphone is opened.
type CaptureConfig struct {
	Microphone    string `mapstructure:"microphone" validate:"required,oneof=pulse file denied"`
	File          string `mapstructure:"file" validate:"required_if=Microphone file"`
	SampleRate    int    `mapstructure:"sample_rate" validate:"required,min=8000,max=192000"`
	Channels      int    `mapstructure:"channels" validate:"required,min=1,max=2"`
	FramesPerRead int    `mapstructure:"frames_per_read" validate:"required,min=1"`
	TimesliceMs   int    `mapstructure:"timeslice_ms" validate:"required,min=1"`
	EventBuffer   int    `mapstructure:"event_buffer" validate:"min=0"`
}

func (c CaptureConfig) Timeslice() time.Duration {
	return time.Duration(c.TimesliceMs) * time.Millisecond
}

type ArtifactConfig struct {
	Store      string `mapstructure:"store" validate:"required,oneof=memory redis"`
	Origin     string `mapstructure:"origin" validate:"required,url"`
	TTLSeconds int    `mapstructure:"ttl_seconds" validate:"required,min=1"`

	// PublishTimeoutMs bounds the object url calls made when a recording finalizes.
	PublishTimeoutMs int `mapstructure:"publish_timeout_ms" validate:"required,min=1"`
}

func (a ArtifactConfig) PublishTimeout() time.Duration {
	return time.Duration(a.PublishTimeoutMs) * time.Millisecond
}

func (a ArtifactConfig) TTL() time.Duration {
	return time.Duration(a.TTLSeconds) * time.Second
}

// Application config structure
type AppConfig struct {
	Name     string `mapstructure:"service_name" validate:"required"`
	Version  string `mapstructure:"version" validate:"required"`
	Env      string `mapstructure:"env" validate:"required"`
	Host     string `mapstructure:"host" validate:"required"`
	Port     int    `mapstructure:"port" validate:"required"`
	LogLevel string `mapstructure:"log_level" validate:"required"`
	LogPath  string `mapstructure:"log_path" validate:"required"`

	// LogMaxSizeMB is the size at which the log file rotates.
	LogMaxSizeMB int `mapstructure:"log_max_size_mb" validate:"required,min=1"`

	CaptureConfig  CaptureConfig  `mapstructure:"capture" validate:"required"`
	ArtifactConfig ArtifactConfig `mapstructure:"artifact" validate:"required"`
	RedisConfig    RedisConfig    `mapstructure:"redis"`
}

func (cfg *AppConfig) Addr() string {
	return fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
}

// reading config and intializing configs for application
func InitConfig() (*viper.Viper, error) {
	vConfig := viper.NewWithOptions(viper.KeyDelimiter("__"))

	vConfig.AddConfigPath(".")
	vConfig.SetConfigName(".env")
	path := os.Getenv("ENV_PATH")
	if path != "" {
		log.Printf("env path %v", path)
		vConfig.SetConfigFile(path)
	}
	vConfig.SetConfigType("env")
	vConfig.AutomaticEnv()

	setDefault(vConfig)
	if err := vConfig.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		log.Printf("Reading from env variables.")
	}
	return vConfig, nil
}

func setDefault(v *viper.Viper) {
	// keeping watch on https://github.com/spf13/viper/issues/188
	// every key needs a default so AutomaticEnv can see it during Unmarshal
	v.SetDefault("SERVICE_NAME", "capture-api")
	v.SetDefault("VERSION", "0.0.1")
	v.SetDefault("ENV", "development")
	v.SetDefault("HOST", "0.0.0.0")
	v.SetDefault("PORT", 9090)
	v.SetDefault("LOG_LEVEL", "debug")
	v.SetDefault("LOG_PATH", "/tmp/rapida")
	v.SetDefault("LOG_MAX_SIZE_MB", 50)

	v.SetDefault("CAPTURE__MICROPHONE", "pulse")
	v.SetDefault("CAPTURE__FILE", "")
	v.SetDefault("CAPTURE__SAMPLE_RATE", 48000)
	v.SetDefault("CAPTURE__CHANNELS", 1)
	v.SetDefault("CAPTURE__FRAMES_PER_READ", 1024)
	v.SetDefault("CAPTURE__TIMESLICE_MS", 1000)
	v.SetDefault("CAPTURE__EVENT_BUFFER", 64)

	v.SetDefault("ARTIFACT__STORE", "memory")
	v.SetDefault("ARTIFACT__ORIGIN", "http://localhost:9090")
	v.SetDefault("ARTIFACT__TTL_SECONDS", 3600)
	v.SetDefault("ARTIFACT__PUBLISH_TIMEOUT_MS", 10000)

	v.SetDefault("REDIS__HOST", "localhost")
	v.SetDefault("REDIS__PORT", 6379)
	v.SetDefault("REDIS__DB", 0)
	v.SetDefault("REDIS__PASSWORD", "")
}

// Getting application config from viper
func GetApplicationConfig(v *viper.Viper) (*AppConfig, error) {
	var config AppConfig
	err := v.Unmarshal(&config)
	if err != nil {
		log.Printf("%+v\n", err)
		return nil, err
	}

	// valdating the app config
	validate := validator.New()
	err = validate.Struct(&config)
	if err != nil {
		log.Printf("%+v\n", err)
		return nil, err
	}
	return &config, nil
}
