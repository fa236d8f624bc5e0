package curio

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/eringen/curio/listing"
)

// SiteConfig holds all configuration for a curio site. It is loaded once at
// startup and treated as read-only for the lifetime of the process.
type SiteConfig struct {
	Name        string `mapstructure:"name"`        // Site name (default "Curio")
	URL         string `mapstructure:"url"`         // Canonical URL
	Description string `mapstructure:"description"` // For RSS and meta tags
	Author      string `mapstructure:"author"`      // Site owner display name

	Addr     string `mapstructure:"addr"`     // Listen address (default ":3000")
	Timezone string `mapstructure:"timezone"` // IANA zone for date display (default local)

	SessionSecret string `mapstructure:"session_secret"` // Required: session encryption secret
	CookieSecure  bool   `mapstructure:"cookie_secure"`  // Set true for HTTPS
	StaticDir     string `mapstructure:"static_dir"`     // User static assets (default "htdocs")

	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`

	Article ModuleConfig  `mapstructure:"article"`
	Note    ModuleConfig  `mapstructure:"note"`
	Book    ModuleConfig  `mapstructure:"book"`
	Gallery GalleryConfig `mapstructure:"gallery"`

	loc *time.Location
}

// DatabaseConfig configures the Postgres pool.
type DatabaseConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	User         string `mapstructure:"user"`
	Password     string `mapstructure:"password"`
	Name         string `mapstructure:"name"`
	SSLMode      string `mapstructure:"sslmode"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
}

// LogConfig selects the zap preset.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "json" or "console"
}

// ModuleConfig configures one content module: its fixed category and type
// tables and its page size. The taxonomies are the small id ↔ path ↔ name
// lookup tables; they never change at runtime.
type ModuleConfig struct {
	PageSize   int              `mapstructure:"page_size"`
	Categories listing.Taxonomy `mapstructure:"categories"`
	Types      listing.Taxonomy `mapstructure:"types"`

	// Books keep uploaded cover files.
	UploadDir string `mapstructure:"upload_dir"`
	PublicURL string `mapstructure:"public_url"`
}

// GalleryConfig configures the image gallery module.
type GalleryConfig struct {
	PageSize  int          `mapstructure:"page_size"`
	UploadDir string       `mapstructure:"upload_dir"`
	PublicURL string       `mapstructure:"public_url"`
	Sizes     []ResizeSpec `mapstructure:"sizes"`
}

// ResizeSpec is one stored variant of an uploaded image: files are written as
// "<prefix>-<name>" scaled to the given width.
type ResizeSpec struct {
	Prefix string `mapstructure:"prefix"`
	Width  int    `mapstructure:"width"`
}

// LoadConfig reads the YAML site configuration from path. Environment
// variables prefixed CURIO_ override file values (CURIO_DATABASE_PASSWORD,
// CURIO_SESSION_SECRET, ...).
func LoadConfig(path string) (SiteConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("curio")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return SiteConfig{}, fmt.Errorf("read config %s: %w", path, err)
	}
	var cfg SiteConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return SiteConfig{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if s := v.GetString("session_secret"); s != "" {
		cfg.SessionSecret = s
	}
	if p := v.GetString("database_password"); p != "" {
		cfg.Database.Password = p
	}
	cfg.setDefaults()
	if err := cfg.resolveTimezone(); err != nil {
		return SiteConfig{}, err
	}
	return cfg, nil
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Curio"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.StaticDir == "" {
		c.StaticDir = "htdocs"
	}
	if c.Database.Host == "" {
		c.Database.Host = "localhost"
	}
	if c.Database.Port == 0 {
		c.Database.Port = 5432
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 20
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = 5
	}
	for _, m := range []*ModuleConfig{&c.Article, &c.Note, &c.Book} {
		if m.PageSize == 0 {
			m.PageSize = listing.DefaultPageSize
		}
	}
	if c.Gallery.PageSize == 0 {
		c.Gallery.PageSize = 12
	}
	if c.Gallery.UploadDir == "" {
		c.Gallery.UploadDir = "data/images"
	}
	if c.Gallery.PublicURL == "" {
		c.Gallery.PublicURL = "/img/u"
	}
	if c.Book.UploadDir == "" {
		c.Book.UploadDir = "data/covers"
	}
	if c.Book.PublicURL == "" {
		c.Book.PublicURL = "/img/covers"
	}
	if len(c.Gallery.Sizes) == 0 {
		c.Gallery.Sizes = []ResizeSpec{{Prefix: "s", Width: 240}, {Prefix: "m", Width: 800}}
	}
}

func (c *SiteConfig) resolveTimezone() error {
	if c.Timezone == "" {
		c.loc = time.Local
		return nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	c.loc = loc
	return nil
}

// Location returns the timezone dates are displayed in.
func (c *SiteConfig) Location() *time.Location {
	if c.loc == nil {
		return time.Local
	}
	return c.loc
}
