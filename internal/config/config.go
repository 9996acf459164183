package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Files    FilesConfig    `mapstructure:"files"`
	GitHub   GitHubConfig   `mapstructure:"github"`
	OAuth    OAuthConfig    `mapstructure:"oauth"`
	Admin    AdminConfig    `mapstructure:"admin"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug, release, test
}

// DatabaseConfig holds the embedded SQLite configuration
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// FilesConfig holds the repository and content layout configuration
type FilesConfig struct {
	RepoURL   string `mapstructure:"repo_url"`
	RepoPath  string `mapstructure:"repo_path"`
	DocsPath  string `mapstructure:"docs_path"`
	AssetPath string `mapstructure:"asset_path"`
}

// GitHubConfig holds GitHub App configuration
type GitHubConfig struct {
	AppID             string   `mapstructure:"app_id"`
	InstallationID    string   `mapstructure:"installation_id"`
	PrivateKeyPath    string   `mapstructure:"private_key_path"`
	APIBaseURL        string   `mapstructure:"api_base_url"`
	DefaultBranch     string   `mapstructure:"default_branch"`
	ProtectedBranches []string `mapstructure:"protected_branches"`
	WatchedBranches   []string `mapstructure:"watched_branches"`
	WebhookSecret     string   `mapstructure:"webhook_secret"`
}

// OAuthConfig holds the user identity provider configuration
type OAuthConfig struct {
	ClientID    string `mapstructure:"client_id"`
	Secret      string `mapstructure:"secret"`
	AuthURL     string `mapstructure:"auth_url"`
	TokenURL    string `mapstructure:"token_url"`
	UserAPIURL  string `mapstructure:"user_api_url"`
	RedirectURL string `mapstructure:"redirect_url"`
}

// AdminConfig identifies the trusted administrator
type AdminConfig struct {
	Username string `mapstructure:"username"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, console
}

// RepoOwnerName parses the owner and repository name out of the remote URL.
// Accepts URLs of the form https://<host>/<owner>/<repo>[.git].
func (f *FilesConfig) RepoOwnerName() (string, string, error) {
	u, err := url.Parse(f.RepoURL)
	if err != nil {
		return "", "", fmt.Errorf("failed to parse repo url: %w", err)
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("repo url %q does not contain an owner and repository", f.RepoURL)
	}
	return parts[0], strings.TrimSuffix(parts[1], ".git"), nil
}

// Load reads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigType("yaml")
	v.SetEnvPrefix("SCRIBE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			v.SetConfigFile(configPath)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/scribe")

		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
			// Config file not found; rely on defaults and env vars
		}
	}

	overrideFromEnv(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")

	v.SetDefault("database.path", "./scribe-data/scribe.db")

	v.SetDefault("files.repo_path", "./repo")
	v.SetDefault("files.docs_path", "docs")
	v.SetDefault("files.asset_path", "assets")

	v.SetDefault("github.api_base_url", "https://api.github.com")
	v.SetDefault("github.default_branch", "main")
	v.SetDefault("github.private_key_path", "./scribe-data/key.pem")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// overrideFromEnv handles special environment variable overrides for secrets
func overrideFromEnv(v *viper.Viper) {
	if secret := os.Getenv("SCRIBE_OAUTH_SECRET"); secret != "" {
		v.Set("oauth.secret", secret)
	}
	if secret := os.Getenv("SCRIBE_WEBHOOK_SECRET"); secret != "" {
		v.Set("github.webhook_secret", secret)
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Database.Path == "" {
		return fmt.Errorf("database path is required")
	}

	if c.Files.RepoURL == "" {
		return fmt.Errorf("files.repo_url is required")
	}
	if c.Files.RepoPath == "" {
		return fmt.Errorf("files.repo_path is required")
	}
	if _, _, err := c.Files.RepoOwnerName(); err != nil {
		return err
	}

	if c.GitHub.AppID == "" {
		return fmt.Errorf("github.app_id is required")
	}
	if c.GitHub.InstallationID == "" {
		return fmt.Errorf("github.installation_id is required")
	}
	if c.GitHub.PrivateKeyPath == "" {
		return fmt.Errorf("github.private_key_path is required")
	}
	if c.GitHub.DefaultBranch == "" {
		return fmt.Errorf("github.default_branch is required")
	}

	if c.OAuth.ClientID == "" {
		return fmt.Errorf("oauth.client_id is required")
	}
	if c.OAuth.AuthURL == "" || c.OAuth.TokenURL == "" {
		return fmt.Errorf("oauth.auth_url and oauth.token_url are required")
	}
	if c.OAuth.UserAPIURL == "" {
		return fmt.Errorf("oauth.user_api_url is required")
	}

	return nil
}

// ServerAddress returns the HTTP server address
func (c *Config) ServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.Mode == "debug" || c.Server.Mode == "development"
}
