package config

import (
	"fmt"
	"os"
	"path"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Public  Public
	Private Private
}

type Public struct {
	BaseURL  string `yaml:"base_url" validate:"required,url"`
	HTTPAddr string `yaml:"http_addr" validate:"required"`
	LogLevel string `yaml:"log_level" validate:"omitempty,oneof=debug info warn warning error"`
	LogJSON  bool   `yaml:"log_json"`

	DefaultThreadsPerPage int `yaml:"default_threads_per_page" validate:"gte=1"`
	MaxThreadsPerPage     int `yaml:"max_threads_per_page" validate:"gtefield=DefaultThreadsPerPage"`
	PreviewReplies        int `yaml:"preview_replies" validate:"gte=0"` // newest replies shown per thread on board pages

	ThumbnailMaxSize      int      `yaml:"thumbnail_max_size" validate:"gte=1"`
	MaxImageSize          int64    `yaml:"max_image_size" validate:"gte=1"`
	MaxDecodedImageSize   int64    `yaml:"max_decoded_image_size" validate:"gte=1"` // width*height*4 cap checked before decoding
	AllowedImageMimeTypes []string `yaml:"allowed_image_mime_types" validate:"min=1,dive,startswith=image/"`
	BcryptCost            int      `yaml:"bcrypt_cost" validate:"gte=4,lte=31"`

	Media Media `yaml:"media"`
	GC    GC    `yaml:"gc"`

	ShutdownTimeout    time.Duration `yaml:"shutdown_timeout" validate:"gte=0"`
	CorsAllowedOrigins []string      `yaml:"cors_allowed_origins"`
	HTTPS              bool          `yaml:"https"` // enables HSTS header
}

type Media struct {
	Backend string `yaml:"backend" validate:"oneof=fs s3"`
	Root    string `yaml:"root" validate:"required_if=Backend fs"`
	// where clients fetch media from, defaults to <base_url>/uploads
	PublicURL string `yaml:"public_url" validate:"omitempty,url"`
}

// GC controls the orphaned media sweeper. Zero interval disables it.
type GC struct {
	Interval        time.Duration `yaml:"interval" validate:"gte=0"`
	SafetyThreshold time.Duration `yaml:"safety_threshold" validate:"gte=0"`
}

type Private struct {
	Pg Pg `yaml:"pg"`
	S3 S3 `yaml:"s3"`
}

type Pg struct {
	Host     string `yaml:"host" validate:"required"`
	Port     int    `yaml:"port" validate:"required"`
	User     string `yaml:"user" validate:"required"`
	Password string `yaml:"password"`
	Dbname   string `yaml:"dbname" validate:"required"`
	SSLMode  string `yaml:"sslmode"`
}

type S3 struct {
	Endpoint        string `yaml:"endpoint"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	UseSSL          bool   `yaml:"use_ssl"`
	Bucket          string `yaml:"bucket"`
	Region          string `yaml:"region"`
}

func (c *Config) MediaPublicURL() string {
	if c.Public.Media.PublicURL != "" {
		return strings.TrimRight(c.Public.Media.PublicURL, "/")
	}
	return strings.TrimRight(c.Public.BaseURL, "/") + "/uploads"
}

func defaultPublic() Public {
	return Public{
		BaseURL:               "http://localhost:3000",
		HTTPAddr:              ":3000",
		LogLevel:              "info",
		DefaultThreadsPerPage: 15,
		MaxThreadsPerPage:     100,
		PreviewReplies:        3,
		ThumbnailMaxSize:      200,
		MaxImageSize:          5 << 20,
		MaxDecodedImageSize:   100 << 20,
		AllowedImageMimeTypes: []string{"image/jpeg", "image/png", "image/gif", "image/webp", "image/bmp"},
		BcryptCost:            10,
		Media: Media{
			Backend: "fs",
			Root:    "public/uploads",
		},
		GC: GC{
			Interval:        time.Hour,
			SafetyThreshold: 10 * time.Minute,
		},
		ShutdownTimeout: 10 * time.Second,
	}
}

func defaultPrivate() Private {
	return Private{
		Pg: Pg{Port: 5432, SSLMode: "disable"},
	}
}

func mustLoadPath(configPath string, output interface{}) {
	// check if file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		panic("can't read config file: " + configPath)
	}

	if err = yaml.Unmarshal(configFile, output); err != nil {
		panic(fmt.Sprintf("can't unmarshal config file %s: %v", configPath, err))
	}
}

func applyEnv(cfg *Config) {
	if port := os.Getenv("PORT"); port != "" {
		cfg.Public.HTTPAddr = ":" + port
	}
	if pass := os.Getenv("BOARDAPI_PG_PASSWORD"); pass != "" {
		cfg.Private.Pg.Password = pass
	}
	if secret := os.Getenv("BOARDAPI_S3_SECRET_KEY"); secret != "" {
		cfg.Private.S3.SecretAccessKey = secret
	}
}

// Validate checks struct constraints and the cross-field rules tags can't express.
func (c *Config) Validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.Public.Media.Backend == "s3" {
		s3 := c.Private.S3
		if s3.Endpoint == "" || s3.Bucket == "" || s3.AccessKeyID == "" || s3.SecretAccessKey == "" {
			return fmt.Errorf("s3 media backend requires endpoint, bucket and credentials")
		}
		if c.Public.Media.PublicURL == "" {
			return fmt.Errorf("s3 media backend requires media.public_url")
		}
	}
	return nil
}

// MustLoad reads public.yaml and private.yaml from configFolder on top of the
// defaults and panics if the result is invalid.
func MustLoad(configFolder string) *Config {
	cfg := &Config{Public: defaultPublic(), Private: defaultPrivate()}
	mustLoadPath(path.Join(configFolder, "public.yaml"), &cfg.Public)
	mustLoadPath(path.Join(configFolder, "private.yaml"), &cfg.Private)
	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		panic("invalid config: " + err.Error())
	}
	return cfg
}
