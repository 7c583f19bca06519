package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

//go:generate go run ../../cmd/schema/main.go schema.json

// Config holds the application configuration
type Config struct {
	Server struct {
		Listen  string        `yaml:"listen" json:"listen" jsonschema:"default=:8080,description=HTTP server listen address"`
		Timeout time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s,description=HTTP server timeout"`
	} `yaml:"server" json:"server" jsonschema:"description=Server configuration"`

	Database struct {
		DSN             string `yaml:"dsn" json:"dsn" jsonschema:"default=file:mailscope.db?cache=shared&mode=rwc,description=Database connection string"`
		MaxOpenConns    int    `yaml:"max_open_conns" json:"max_open_conns" jsonschema:"default=10,description=Maximum number of open connections"`
		MaxIdleConns    int    `yaml:"max_idle_conns" json:"max_idle_conns" jsonschema:"default=5,description=Maximum number of idle connections"`
		ConnMaxLifetime int    `yaml:"conn_max_lifetime" json:"conn_max_lifetime" jsonschema:"default=3600,description=Connection maximum lifetime in seconds"`
	} `yaml:"database" json:"database" jsonschema:"description=Database configuration"`

	Store StoreConfig `yaml:"store" json:"store" jsonschema:"description=Store write settings"`

	Schedule struct {
		Interval   time.Duration `yaml:"interval" json:"interval" jsonschema:"default=30m,description=Backlog run interval in serve mode"`
		BatchLimit int           `yaml:"batch_limit" json:"batch_limit" jsonschema:"default=50,description=Maximum items enriched per scheduled run"`
	} `yaml:"schedule" json:"schedule" jsonschema:"description=Scheduler configuration"`

	LLM LLMConfig `yaml:"llm" json:"llm" jsonschema:"description=LLM configuration for enrichment handlers"`

	Enrichment EnrichmentConfig `yaml:"enrichment" json:"enrichment" jsonschema:"description=Enrichment settings"`

	Digest DigestConfig `yaml:"digest" json:"digest" jsonschema:"description=Digest splitting and link matching settings"`

	Images ImagesConfig `yaml:"images" json:"images" jsonschema:"description=Image download settings for vision handlers"`

	Sources SourcesConfig `yaml:"sources" json:"sources" jsonschema:"description=Content sources"`

	Senders        []SenderGroup   `yaml:"senders" json:"senders" jsonschema:"description=Allowed sender groups, empty list allows everything"`
	Blocked        BlockedConfig   `yaml:"blocked" json:"blocked" jsonschema:"description=Blocked senders"`
	DetectionRules []DetectionRule `yaml:"detection_rules" json:"detection_rules" jsonschema:"description=Ordered tag detection rules evaluated before the built-in ones"`
}

// StoreConfig holds retry settings for store writes
type StoreConfig struct {
	RetryAttempts int           `yaml:"retry_attempts" json:"retry_attempts" jsonschema:"default=5,minimum=1,description=Write attempts on busy database"`
	RetryDelay    time.Duration `yaml:"retry_delay" json:"retry_delay" jsonschema:"default=1s,description=Delay between write attempts"`
}

// LLMConfig holds settings of the OpenAI-compatible model endpoint
type LLMConfig struct {
	Endpoint          string        `yaml:"endpoint" json:"endpoint" jsonschema:"required,description=OpenAI-compatible API endpoint"`
	APIKey            string        `yaml:"api_key" json:"api_key" jsonschema:"required,description=API key (can use environment variable)"`
	Model             string        `yaml:"model" json:"model" jsonschema:"required,description=Model name for text handlers"`
	VisionModel       string        `yaml:"vision_model" json:"vision_model" jsonschema:"description=Model name for vision handlers, defaults to model"`
	Temperature       float64       `yaml:"temperature" json:"temperature" jsonschema:"default=0.3,description=Temperature for response generation"`
	MaxTokens         int           `yaml:"max_tokens" json:"max_tokens" jsonschema:"default=4000,description=Default maximum tokens in response"`
	Timeout           time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=120s,description=Request timeout"`
	UseJSONMode       bool          `yaml:"use_json_mode" json:"use_json_mode" jsonschema:"default=false,description=Use JSON response format for JSON handlers (not all models support this)"`
	RequestsPerMinute int           `yaml:"requests_per_minute" json:"requests_per_minute" jsonschema:"default=0,description=Client side throttle, 0 disables it"`
	Breaker           BreakerConfig `yaml:"breaker" json:"breaker" jsonschema:"description=Circuit breaker around model calls"`
}

// BreakerConfig holds circuit breaker settings
type BreakerConfig struct {
	MaxFailures int           `yaml:"max_failures" json:"max_failures" jsonschema:"default=5,description=Consecutive failures opening the breaker, 0 disables it"`
	Timeout     time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=1m,description=Time the breaker stays open"`
}

// EnrichmentConfig holds dispatcher and routing settings
type EnrichmentConfig struct {
	MinContentLength  int               `yaml:"min_content_length" json:"min_content_length" jsonschema:"default=100,description=Minimum cleaned text length to invoke a handler"`
	MaxInputChars     int               `yaml:"max_input_chars" json:"max_input_chars" jsonschema:"default=15000,description=Content truncation limit for prompts"`
	ErrorScore        float64           `yaml:"error_score" json:"error_score" jsonschema:"default=5,minimum=0,maximum=10,description=Relevance score of failed enrichments"`
	DefaultHandler    string            `yaml:"default_handler" json:"default_handler" jsonschema:"default=gold_standard_enhanced,description=Handler for unknown tags"`
	DefaultTag        string            `yaml:"default_tag" json:"default_tag" jsonschema:"default=General,description=Tag for items no rule matched"`
	Routes            map[string]string `yaml:"routes" json:"routes" jsonschema:"description=Additional tag to handler routes, override built-in ones"`
	FallbackSearchURL string            `yaml:"fallback_search_url" json:"fallback_search_url" jsonschema:"default=https://news.google.com/search?q=%s,description=Link template for stories without a matched link"`
	Keywords          KeywordsConfig    `yaml:"keywords" json:"keywords" jsonschema:"description=Keyword extraction for stories"`
	Tagger            TaggerConfig      `yaml:"tagger" json:"tagger" jsonschema:"description=Lightweight entity tagger overrides"`
}

// KeywordsConfig holds keyword extractor settings
type KeywordsConfig struct {
	Enabled    bool     `yaml:"enabled" json:"enabled" jsonschema:"default=false,description=Extract keywords with an extra model call"`
	MaxTokens  int      `yaml:"max_tokens" json:"max_tokens" jsonschema:"default=100,description=Token budget of keyword call"`
	Exclusions []string `yaml:"exclusions" json:"exclusions" jsonschema:"description=Additional keywords dropped from results"`
}

// TaggerConfig replaces the built-in keyword tables of the entity tagger
type TaggerConfig struct {
	Actors map[string][]string `yaml:"actors" json:"actors" jsonschema:"description=Actor name to trigger substrings"`
	Themes map[string][]string `yaml:"themes" json:"themes" jsonschema:"description=Theme name to trigger substrings"`
}

// DigestConfig holds digest splitting settings
type DigestConfig struct {
	Threshold      float64  `yaml:"threshold" json:"threshold" jsonschema:"default=0.25,minimum=0,maximum=1,description=Minimum blended score to accept a link"`
	MinLinkText    int      `yaml:"min_link_text" json:"min_link_text" jsonschema:"default=15,description=Minimum anchor text length"`
	MinLinkTextPT  int      `yaml:"min_link_text_pt" json:"min_link_text_pt" jsonschema:"default=3,description=Minimum anchor text length for Portuguese sources"`
	PortugueseTags []string `yaml:"portuguese_tags" json:"portuguese_tags" jsonschema:"description=Tags of Portuguese-language sources"`
	SkipPatterns   []string `yaml:"skip_patterns" json:"skip_patterns" jsonschema:"description=Additional link denylist substrings"`
}

// ImagesConfig holds image download settings
type ImagesConfig struct {
	Timeout   time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=10s,description=Image download timeout"`
	MaxSize   int           `yaml:"max_size" json:"max_size" jsonschema:"default=1568,description=Maximum image side in pixels"`
	MaxImages int           `yaml:"max_images" json:"max_images" jsonschema:"default=10,description=Maximum images per item"`
	MinSide   int           `yaml:"min_side" json:"min_side" jsonschema:"default=100,description=Images with declared width or height below this are skipped"`
}

// SourcesConfig holds content sources
type SourcesConfig struct {
	Gmail GmailConfig  `yaml:"gmail" json:"gmail" jsonschema:"description=Gmail mailbox source"`
	Feeds []FeedSource `yaml:"feeds" json:"feeds" jsonschema:"description=RSS and Atom feed sources"`
}

// GmailConfig holds Gmail API source settings
type GmailConfig struct {
	Enabled         bool          `yaml:"enabled" json:"enabled" jsonschema:"default=false,description=Enable Gmail source"`
	CredentialsFile string        `yaml:"credentials_file" json:"credentials_file" jsonschema:"description=OAuth2 client credentials JSON"`
	TokenFile       string        `yaml:"token_file" json:"token_file" jsonschema:"description=OAuth2 token JSON"`
	User            string        `yaml:"user" json:"user" jsonschema:"default=me,description=Mailbox user id"`
	Query           string        `yaml:"query" json:"query" jsonschema:"description=Gmail search query"`
	Lookback        time.Duration `yaml:"lookback" json:"lookback" jsonschema:"default=24h,description=Fetch messages newer than this"`
	MaxResults      int64         `yaml:"max_results" json:"max_results" jsonschema:"default=100,description=Maximum messages per fetch"`
}

// FeedSource is a single RSS or Atom feed
type FeedSource struct {
	URL    string `yaml:"url" json:"url" jsonschema:"required,description=Feed URL"`
	Sender string `yaml:"sender" json:"sender" jsonschema:"description=Sender string presented to the classifier, e.g. John Cochrane <johnhcochrane@substack.com>"`
}

// SenderGroup is one allowed-sender group with the initial tag it assigns
type SenderGroup struct {
	Tag      string   `yaml:"tag" json:"tag" jsonschema:"required,description=Initial sender tag"`
	Patterns []string `yaml:"patterns" json:"patterns" jsonschema:"description=Case-insensitive substrings of the From header"`
	Active   *bool    `yaml:"active" json:"active" jsonschema:"description=Group is active, defaults to true"`
}

// IsActive reports whether the group takes part in filtering
func (g SenderGroup) IsActive() bool {
	return g.Active == nil || *g.Active
}

// BlockedConfig holds blocked sender rules
type BlockedConfig struct {
	Names    []string `yaml:"names" json:"names" jsonschema:"description=Exact display names"`
	Emails   []string `yaml:"emails" json:"emails" jsonschema:"description=Substrings of the sender address"`
	Patterns []string `yaml:"patterns" json:"patterns" jsonschema:"description=Substrings of display name plus subject"`
}

// DetectionRule is a configurable tag detection rule
type DetectionRule struct {
	Tag             string   `yaml:"tag" json:"tag" jsonschema:"required,description=Tag assigned on match"`
	Sender          string   `yaml:"sender" json:"sender" jsonschema:"description=Substring of sender address or name"`
	SubjectContains []string `yaml:"subject_contains" json:"subject_contains" jsonschema:"description=Subject substrings"`
	BodyContains    []string `yaml:"body_contains" json:"body_contains" jsonschema:"description=Body prefix substrings"`
	Logic           string   `yaml:"logic" json:"logic" jsonschema:"enum=AND,enum=OR,default=AND,description=How subject and body conditions combine"`
}

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // file path comes from CLI flag
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	// expand environment variables
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.setDefaults()

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	// verify against embedded schema
	if err := VerifyAgainstEmbeddedSchema(&cfg); err != nil {
		// log warning but don't fail - schema validation is supplementary
		fmt.Printf("warning: schema validation failed: %v\n", err)
	}

	return &cfg, nil
}

func (c *Config) setDefaults() {
	// server
	if c.Server.Listen == "" {
		c.Server.Listen = ":8080"
	}
	if c.Server.Timeout == 0 {
		c.Server.Timeout = 30 * time.Second
	}

	// database
	if c.Database.DSN == "" {
		c.Database.DSN = "file:mailscope.db?cache=shared&mode=rwc&_txlock=immediate"
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 10
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = 5
	}
	if c.Database.ConnMaxLifetime == 0 {
		c.Database.ConnMaxLifetime = 3600
	}
	if c.Store.RetryAttempts == 0 {
		c.Store.RetryAttempts = 5
	}
	if c.Store.RetryDelay == 0 {
		c.Store.RetryDelay = time.Second
	}

	// schedule
	if c.Schedule.Interval == 0 {
		c.Schedule.Interval = 30 * time.Minute
	}
	if c.Schedule.BatchLimit == 0 {
		c.Schedule.BatchLimit = 50
	}

	// llm
	if c.LLM.VisionModel == "" {
		c.LLM.VisionModel = c.LLM.Model
	}
	if c.LLM.Temperature == 0 {
		c.LLM.Temperature = 0.3
	}
	if c.LLM.MaxTokens == 0 {
		c.LLM.MaxTokens = 4000
	}
	if c.LLM.Timeout == 0 {
		c.LLM.Timeout = 120 * time.Second
	}
	if c.LLM.Breaker.Timeout == 0 {
		c.LLM.Breaker.Timeout = time.Minute
	}

	// enrichment
	if c.Enrichment.MinContentLength == 0 {
		c.Enrichment.MinContentLength = 100
	}
	if c.Enrichment.MaxInputChars == 0 {
		c.Enrichment.MaxInputChars = 15000
	}
	if c.Enrichment.ErrorScore == 0 {
		c.Enrichment.ErrorScore = 5.0
	}
	if c.Enrichment.DefaultHandler == "" {
		c.Enrichment.DefaultHandler = "gold_standard_enhanced"
	}
	if c.Enrichment.DefaultTag == "" {
		c.Enrichment.DefaultTag = "General"
	}
	if c.Enrichment.FallbackSearchURL == "" {
		c.Enrichment.FallbackSearchURL = "https://news.google.com/search?q=%s"
	}
	if c.Enrichment.Keywords.MaxTokens == 0 {
		c.Enrichment.Keywords.MaxTokens = 100
	}

	// digest
	if c.Digest.Threshold == 0 {
		c.Digest.Threshold = 0.25
	}
	if c.Digest.MinLinkText == 0 {
		c.Digest.MinLinkText = 15
	}
	if c.Digest.MinLinkTextPT == 0 {
		c.Digest.MinLinkTextPT = 3
	}
	if len(c.Digest.PortugueseTags) == 0 {
		c.Digest.PortugueseTags = []string{"Estadão", "Folha", "O Globo"}
	}

	// images
	if c.Images.Timeout == 0 {
		c.Images.Timeout = 10 * time.Second
	}
	if c.Images.MaxSize == 0 {
		c.Images.MaxSize = 1568
	}
	if c.Images.MaxImages == 0 {
		c.Images.MaxImages = 10
	}
	if c.Images.MinSide == 0 {
		c.Images.MinSide = 100
	}

	// sources
	if c.Sources.Gmail.User == "" {
		c.Sources.Gmail.User = "me"
	}
	if c.Sources.Gmail.Lookback == 0 {
		c.Sources.Gmail.Lookback = 24 * time.Hour
	}
	if c.Sources.Gmail.MaxResults == 0 {
		c.Sources.Gmail.MaxResults = 100
	}
	for i := range c.DetectionRules {
		if c.DetectionRules[i].Logic == "" {
			c.DetectionRules[i].Logic = "AND"
		}
	}
}

// validate checks configuration for correctness
func validate(cfg *Config) error {
	// llm credentials are required, no handler can succeed without them
	if cfg.LLM.Endpoint == "" {
		return fmt.Errorf("llm.endpoint is required")
	}
	if cfg.LLM.APIKey == "" {
		return fmt.Errorf("llm.api_key is required")
	}
	if cfg.LLM.Model == "" {
		return fmt.Errorf("llm.model is required")
	}
	if cfg.LLM.Temperature < 0 || cfg.LLM.Temperature > 2 {
		return fmt.Errorf("llm.temperature must be between 0 and 2")
	}
	if cfg.LLM.RequestsPerMinute < 0 {
		return fmt.Errorf("llm.requests_per_minute must be non-negative")
	}

	if cfg.Enrichment.ErrorScore < 0 || cfg.Enrichment.ErrorScore > 10 {
		return fmt.Errorf("enrichment.error_score must be between 0 and 10")
	}
	if cfg.Enrichment.MinContentLength < 0 {
		return fmt.Errorf("enrichment.min_content_length must be non-negative")
	}
	if cfg.Digest.Threshold < 0 || cfg.Digest.Threshold > 1 {
		return fmt.Errorf("digest.threshold must be between 0 and 1")
	}
	if cfg.Store.RetryAttempts < 1 {
		return fmt.Errorf("store.retry_attempts must be at least 1")
	}

	for i, r := range cfg.DetectionRules {
		if r.Tag == "" {
			return fmt.Errorf("detection_rules[%d]: tag is required", i)
		}
		if r.Logic != "AND" && r.Logic != "OR" {
			return fmt.Errorf("detection_rules[%d]: logic must be AND or OR, got %q", i, r.Logic)
		}
	}
	for i, g := range cfg.Senders {
		if g.Tag == "" {
			return fmt.Errorf("senders[%d]: tag is required", i)
		}
	}
	for i, f := range cfg.Sources.Feeds {
		if f.URL == "" {
			return fmt.Errorf("sources.feeds[%d]: url is required", i)
		}
	}

	if cfg.Sources.Gmail.Enabled && (cfg.Sources.Gmail.CredentialsFile == "" || cfg.Sources.Gmail.TokenFile == "") {
		return fmt.Errorf("sources.gmail requires credentials_file and token_file when enabled")
	}

	// validate server config
	if cfg.Server.Timeout < time.Second {
		return fmt.Errorf("server timeout must be at least 1 second")
	}

	return nil
}

// GetServerConfig returns server configuration
func (c *Config) GetServerConfig() (listen string, timeout time.Duration) {
	return c.Server.Listen, c.Server.Timeout
}

// IsPortuguese reports whether the tag belongs to a Portuguese-language source
func (c *Config) IsPortuguese(tag string) bool {
	for _, t := range c.Digest.PortugueseTags {
		if t == tag {
			return true
		}
	}
	return false
}
