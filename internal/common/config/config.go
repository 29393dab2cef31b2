package config

type Config struct {
	App           AppConfig             `mapstructure:"app"`
	Server        ServerConfig          `mapstructure:"server"`
	Backend       BackendConfig         `mapstructure:"backend"`
	Redis         RedisConfig           `mapstructure:"redis"`
	Forms         map[string]FormConfig `mapstructure:"forms"`
	Sessions      SessionConfig         `mapstructure:"sessions"`
	Content       ContentConfig         `mapstructure:"content"`
	Notifications NotificationConfig    `mapstructure:"notifications"`
	Logging       LoggingConfig         `mapstructure:"logging"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// IsDevelopment reports whether the site runs in development build mode.
func (a AppConfig) IsDevelopment() bool {
	return a.Environment == "" || a.Environment == "development"
}

type ServerConfig struct {
	Address         string `mapstructure:"address"`
	BasePath        string `mapstructure:"base_path"`
	ReadTimeout     int    `mapstructure:"read_timeout"`     // milliseconds
	WriteTimeout    int    `mapstructure:"write_timeout"`    // milliseconds
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"` // milliseconds
	MaxUploadBytes  int64  `mapstructure:"max_upload_bytes"`
}

type BackendConfig struct {
	BaseURL      string `mapstructure:"base_url"`
	Timeout      int    `mapstructure:"timeout"` // milliseconds
	EventsTTL    int    `mapstructure:"events_ttl"` // milliseconds
	CacheEnabled bool   `mapstructure:"cache_enabled"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type FormConfig struct {
	Enabled          bool `mapstructure:"enabled"`
	SubmitTimeout    int  `mapstructure:"submit_timeout"` // milliseconds
	MaxUploadRetries int  `mapstructure:"max_upload_retries"`
}

type SessionConfig struct {
	TTL             int `mapstructure:"ttl"`              // milliseconds
	CleanupInterval int `mapstructure:"cleanup_interval"` // milliseconds
	MaxSessions     int `mapstructure:"max_sessions"`
}

type ContentConfig struct {
	CatalogPath string `mapstructure:"catalog_path"`
}

type NotificationConfig struct {
	AWS struct {
		Region string `mapstructure:"region"`
	} `mapstructure:"aws"`
	Email struct {
		Enabled   bool     `mapstructure:"enabled"`
		FromEmail string   `mapstructure:"from_email"`
		ToEmails  []string `mapstructure:"to_emails"`
	} `mapstructure:"email"`
	Events struct {
		Enabled  bool   `mapstructure:"enabled"`
		TopicARN string `mapstructure:"topic_arn"`
	} `mapstructure:"events"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
