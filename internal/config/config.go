package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone    = "UTC"
	appName            = "curator"
	configPathEnv      = "CURATOR_CONFIG"
	logLevelEnv        = "CURATOR_LOG_LEVEL"
	databaseDriverEnv  = "CURATOR_DATABASE_DRIVER"
	databaseDSNEnv     = "CURATOR_DATABASE_DSN"
	smtpPasswordEnv    = "CURATOR_SMTP_PASSWORD"
	huggingFaceKeyEnv  = "HF_API_TOKEN"
	chatGPTAPIKeyEnv   = "CHATGPT_API_KEY"
	chatGPTModelEnv    = "CHATGPT_MODEL"
	telegramTokenEnv   = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv  = "TELEGRAM_CHAT_ID"
	defaultBrowserUA   = "Mozilla/5.0 (Windows NT 10.0;Win64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/58.0.3029.110 Safari/537.3"
	defaultRefreshTime = 24 * time.Hour
	defaultPollTime    = time.Second
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging         LoggingConfig        `yaml:"logging"`
	Search          SearchConfig         `yaml:"search"`
	HTTP            HTTPConfig           `yaml:"http"`
	Fetch           FetchConfig          `yaml:"fetch"`
	Analysis        AnalysisConfig       `yaml:"analysis"`
	ML              MLConfig             `yaml:"ml"`
	ChatGPT         ChatGPTConfig        `yaml:"chatgpt"`
	Ranking         RankingConfig        `yaml:"ranking"`
	Recommendations RecommendationConfig `yaml:"recommendations"`
	Pipeline        PipelineConfig       `yaml:"pipeline"`
	Storage         StorageConfig        `yaml:"storage"`
	Scheduler       SchedulerConfig      `yaml:"scheduler"`
	Notifications   NotificationConfig   `yaml:"notifications"`
	Metrics         MetricsConfig        `yaml:"metrics"`
	Queries         []string             `yaml:"queries"`
}

// LoggingConfig sets the slog level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// SearchConfig selects the backend and its endpoint details.
type SearchConfig struct {
	Backend string            `yaml:"backend"`
	HTML    HTMLSearchConfig  `yaml:"html"`
	RSS     RSSSearchConfig   `yaml:"rss"`
	Arxiv   ArxivSearchConfig `yaml:"arxiv"`
}

// HTMLSearchConfig describes a results page and the selectors of its result containers.
type HTMLSearchConfig struct {
	Endpoint          string `yaml:"endpoint"`
	QueryParam        string `yaml:"queryParam"`
	ContainerSelector string `yaml:"containerSelector"`
	TitleSelector     string `yaml:"titleSelector"`
	SnippetSelector   string `yaml:"snippetSelector"`
	LinkSelector      string `yaml:"linkSelector"`
}

// RSSSearchConfig describes a feed endpoint that accepts a query parameter.
type RSSSearchConfig struct {
	Endpoint   string `yaml:"endpoint"`
	QueryParam string `yaml:"queryParam"`
}

// ArxivSearchConfig points at the arXiv listing search.
type ArxivSearchConfig struct {
	Endpoint string `yaml:"endpoint"`
	PageSize int    `yaml:"pageSize"`
}

// HTTPConfig tunes the shared outbound client.
type HTTPConfig struct {
	UserAgent         string  `yaml:"userAgent"`
	Timeout           string  `yaml:"timeout"`
	RequestsPerSecond float64 `yaml:"requestsPerSecond"`
	RespectRobots     bool    `yaml:"respectRobots"`
}

// TimeoutDuration parses Timeout, defaulting to 20s.
func (h HTTPConfig) TimeoutDuration() time.Duration {
	return parseDuration(h.Timeout, 20*time.Second)
}

// FetchConfig controls article content extraction.
type FetchConfig struct {
	ContentSelector     string `yaml:"contentSelector"`
	ReadabilityFallback bool   `yaml:"readabilityFallback"`
}

// AnalysisConfig picks the summarizer and its length bounds.
type AnalysisConfig struct {
	Summarizer       string `yaml:"summarizer"`
	MinSummaryLength int    `yaml:"minSummaryLength"`
	MaxSummaryLength int    `yaml:"maxSummaryLength"`
}

// MLConfig describes the hosted summarization model.
type MLConfig struct {
	InferenceURL string `yaml:"inferenceUrl"`
	APIKey       string `yaml:"apiKey"`
}

// ChatGPTConfig defines how to contact the ChatGPT API.
type ChatGPTConfig struct {
	Endpoint     string `yaml:"endpoint"`
	Model        string `yaml:"model"`
	APIKey       string `yaml:"apiKey"`
	SystemPrompt string `yaml:"systemPrompt"`
}

// RankingConfig holds the display filter.
type RankingConfig struct {
	SentimentThreshold float64 `yaml:"sentimentThreshold"`
}

// RecommendationConfig caps recommendation output; 0 means unlimited.
type RecommendationConfig struct {
	Limit int `yaml:"limit"`
}

// PipelineConfig toggles run-level behavior.
type PipelineConfig struct {
	SkipKnownURLs bool  `yaml:"skipKnownUrls"`
	Seed          int64 `yaml:"seed"`
}

// StorageConfig selects the article store. Driver "memory" keeps data in-process.
type StorageConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// SchedulerConfig defines when jobs run.
type SchedulerConfig struct {
	RefreshInterval string         `yaml:"refreshInterval"`
	NotifyAt        string         `yaml:"notifyAt"`
	PollInterval    string         `yaml:"pollInterval"`
	Timezone        string         `yaml:"timezone"`
	location        *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// RefreshDuration parses RefreshInterval, defaulting to one day.
func (s SchedulerConfig) RefreshDuration() time.Duration {
	return parseDuration(s.RefreshInterval, defaultRefreshTime)
}

// PollDuration parses PollInterval, defaulting to one second.
func (s SchedulerConfig) PollDuration() time.Duration {
	return parseDuration(s.PollInterval, defaultPollTime)
}

// NotificationConfig encapsulates outbound channels.
type NotificationConfig struct {
	Channel  string         `yaml:"channel"`
	Email    EmailConfig    `yaml:"email"`
	Telegram TelegramConfig `yaml:"telegram"`
}

// EmailConfig is the fixed sender/receiver pair and the SMTP relay.
type EmailConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Sender   string `yaml:"sender"`
	Receiver string `yaml:"receiver"`
	Username string `yaml:"username"`
	Password string `yaml:"-"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// MetricsConfig exposes Prometheus metrics when Addr is set.
type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// DefaultPath is where the config file lives when no path is given.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, appName, "config.yaml")
}

// DefaultDatabasePath is the SQLite file used by the default config.
func DefaultDatabasePath() string {
	return filepath.Join(xdg.DataHome, appName, "articles.db")
}

// Load reads YAML configuration (if present) and applies environment overrides.
// path wins over CURATOR_CONFIG, which wins over the XDG default path.
// Problems are logged to slog.Default and the defaults are kept.
func Load(path string) Config {
	return LoadWithLogger(path, slog.Default())
}

// LoadWithLogger is Load with an explicit logger for fallback warnings.
func LoadWithLogger(path string, logger *slog.Logger) Config {
	if logger == nil {
		logger = slog.Default()
	}
	cfg := defaultConfig()

	explicit := path != ""
	if !explicit {
		if path = os.Getenv(configPathEnv); path != "" {
			explicit = true
		} else {
			path = DefaultPath()
		}
	}

	if raw, err := os.ReadFile(path); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			logger.Warn("config unreadable, falling back to defaults", "path", path, "err", err)
		}
	} else {
		fileCfg := defaultConfig()
		if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
			logger.Warn("config unparseable, falling back to defaults", "path", path, "err", err)
		} else {
			cfg = fileCfg
		}
	}

	cfg.applyEnvOverrides()
	cfg.normalize()
	cfg.bindTimezone(logger)

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}

	if v := os.Getenv(databaseDriverEnv); v != "" {
		c.Storage.Driver = v
	}

	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Storage.DSN = v
	}

	if v := os.Getenv(smtpPasswordEnv); v != "" {
		c.Notifications.Email.Password = v
	}

	if v := os.Getenv(huggingFaceKeyEnv); v != "" {
		c.ML.APIKey = v
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}

	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}

	if v := os.Getenv(chatGPTAPIKeyEnv); v != "" {
		c.ChatGPT.APIKey = v
	}

	if v := os.Getenv(chatGPTModelEnv); v != "" {
		c.ChatGPT.Model = v
	}
}

// normalize repairs values a config file may have zeroed out.
func (c *Config) normalize() {
	def := defaultConfig()

	if c.Analysis.MinSummaryLength <= 0 {
		c.Analysis.MinSummaryLength = def.Analysis.MinSummaryLength
	}
	if c.Analysis.MaxSummaryLength < c.Analysis.MinSummaryLength {
		c.Analysis.MaxSummaryLength = max(def.Analysis.MaxSummaryLength, c.Analysis.MinSummaryLength)
	}
	if c.Search.Backend == "" {
		c.Search.Backend = def.Search.Backend
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = def.Storage.Driver
	}
	if c.Notifications.Email.Port == 0 {
		c.Notifications.Email.Port = def.Notifications.Email.Port
	}

	queries := make([]string, 0, len(c.Queries))
	seen := map[string]struct{}{}
	for _, q := range c.Queries {
		q = strings.TrimSpace(q)
		if q == "" {
			continue
		}
		if _, ok := seen[q]; ok {
			continue
		}
		seen[q] = struct{}{}
		queries = append(queries, q)
	}
	c.Queries = queries
}

func (c *Config) bindTimezone(logger *slog.Logger) {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		logger.Warn("unknown timezone, reverting", "timezone", tz, "fallback", defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Scheduler.location = loc
}

func parseDuration(value string, fallback time.Duration) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback
	}
	// "Nd" day syntax
	if strings.HasSuffix(value, "d") {
		if days, err := strconv.Atoi(strings.TrimSuffix(value, "d")); err == nil && days > 0 {
			return time.Duration(days) * 24 * time.Hour
		}
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Logging: LoggingConfig{Level: "info"},
		Search: SearchConfig{
			Backend: "html",
			HTML: HTMLSearchConfig{
				Endpoint:          "https://www.google.com/search",
				QueryParam:        "q",
				ContainerSelector: "div.result",
				TitleSelector:     "h3",
				SnippetSelector:   "span.st",
				LinkSelector:      "a[href]",
			},
			RSS: RSSSearchConfig{
				Endpoint:   "https://news.google.com/rss/search",
				QueryParam: "q",
			},
			Arxiv: ArxivSearchConfig{
				Endpoint: "https://arxiv.org/search/",
				PageSize: 50,
			},
		},
		HTTP: HTTPConfig{
			UserAgent:         defaultBrowserUA,
			Timeout:           "20s",
			RequestsPerSecond: 0,
		},
		Fetch:    FetchConfig{ContentSelector: "div.article-content"},
		Analysis: AnalysisConfig{Summarizer: "extractive", MinSummaryLength: 30, MaxSummaryLength: 100},
		ML: MLConfig{
			InferenceURL: "https://api-inference.huggingface.co/models/sshleifer/distilbart-cnn-12-6",
		},
		ChatGPT: ChatGPTConfig{
			Endpoint:     "https://api.openai.com/v1/chat/completions",
			Model:        "gpt-4o-mini",
			SystemPrompt: "You write short abstractive summaries of news articles.",
		},
		Ranking:         RankingConfig{SentimentThreshold: 0.5},
		Recommendations: RecommendationConfig{Limit: 0},
		Pipeline:        PipelineConfig{SkipKnownURLs: true},
		Storage:         StorageConfig{Driver: "sqlite", DSN: DefaultDatabasePath()},
		Scheduler: SchedulerConfig{
			RefreshInterval: "24h",
			NotifyAt:        "09:00",
			PollInterval:    "1s",
			Timezone:        defaultTimezone,
			location:        tz,
		},
		Notifications: NotificationConfig{
			Channel: "log",
			Email: EmailConfig{
				Host:     "smtp.gmail.com",
				Port:     465,
				Sender:   "your_email@example.com",
				Receiver: "receiver_email@example.com",
			},
		},
	}
}
