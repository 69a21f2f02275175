package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone = "Asia/Shanghai"
	configPathEnv   = "NATURE_DAILY_CONFIG"
	dotenvPathEnv   = "NATURE_DAILY_DOTENV"

	logLevelEnv           = "LOG_LEVEL"
	providerEnv           = "SUMMARIZER_PROVIDER"
	deepseekAPIKeyEnv     = "DEEPSEEK_API_KEY"
	deepseekModelEnv      = "DEEPSEEK_MODEL"
	deepseekMaxTokensEnv  = "DEEPSEEK_MAX_TOKENS"
	deepseekTemperatureEn = "DEEPSEEK_TEMPERATURE"
	geminiAPIKeyEnv       = "GEMINI_API_KEY"
	smtpServerEnv         = "SMTP_SERVER"
	smtpPortEnv           = "SMTP_PORT"
	emailUsernameEnv      = "EMAIL_USERNAME"
	emailPasswordEnv      = "EMAIL_PASSWORD"
	emailRecipientsEnv    = "EMAIL_RECIPIENTS"
	emailBccEnv           = "EMAIL_BCC"
	emailEnabledEnv       = "ENABLE_EMAIL_SENDING"
	outputFormatEnv       = "OUTPUT_FORMAT"
	outputDirEnv          = "OUTPUT_DIR"
	databaseDSNEnv        = "DATABASE_DSN"
	redisAddrEnv          = "REDIS_ADDR"
	s3BucketEnv           = "S3_BUCKET"
	telegramTokenEnv      = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv     = "TELEGRAM_CHAT_ID"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging     LoggingConfig     `yaml:"logging"`
	Scheduler   SchedulerConfig   `yaml:"scheduler"`
	Crawler     CrawlerConfig     `yaml:"crawler"`
	Journals    []JournalConfig   `yaml:"journals"`
	Summarizer  SummarizerConfig  `yaml:"summarizer"`
	Quota       QuotaConfig       `yaml:"quota"`
	Report      ReportConfig      `yaml:"report"`
	Output      OutputConfig      `yaml:"output"`
	Email       EmailConfig       `yaml:"email"`
	Database    DatabaseConfig    `yaml:"database"`
	Cache       CacheConfig       `yaml:"cache"`
	ObjectStore ObjectStoreConfig `yaml:"objectStore"`
	Telegram    TelegramConfig    `yaml:"telegram"`
}

// LoggingConfig selects the slog level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// SchedulerConfig defines when the daily report runs.
type SchedulerConfig struct {
	DailyAt  string         `yaml:"dailyAt"`
	Timezone string         `yaml:"timezone"`
	location *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, err := time.LoadLocation(defaultTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// CrawlerConfig tunes listing page fetches.
type CrawlerConfig struct {
	UserAgent             string        `yaml:"userAgent"`
	Timeout               time.Duration `yaml:"timeout"`
	JournalDelay          time.Duration `yaml:"journalDelay"`
	MaxArticlesPerJournal int           `yaml:"maxArticlesPerJournal"`
	Browser               bool          `yaml:"browser"`
	ChromePath            string        `yaml:"chromePath"`
	SkipDetails           bool          `yaml:"skipDetails"`
}

// JournalConfig describes one tracked journal and the scanner that reads it.
type JournalConfig struct {
	Name    string `yaml:"name"`
	URL     string `yaml:"url"`
	Scanner string `yaml:"scanner"`
	Enabled *bool  `yaml:"enabled"`
}

// IsEnabled treats a missing flag as enabled.
func (j JournalConfig) IsEnabled() bool {
	return j.Enabled == nil || *j.Enabled
}

// SummarizerConfig defines how to contact the LLM API.
type SummarizerConfig struct {
	Provider     string  `yaml:"provider"`
	Endpoint     string  `yaml:"endpoint"`
	Model        string  `yaml:"model"`
	APIKey       string  `yaml:"apiKey"`
	GeminiModel  string  `yaml:"geminiModel"`
	GeminiAPIKey string  `yaml:"geminiApiKey"`
	MaxTokens    int     `yaml:"maxTokens"`
	Temperature  float64 `yaml:"temperature"`
	MaxKeyPoints int     `yaml:"maxKeyPoints"`
	SystemPrompt string  `yaml:"systemPrompt"`
}

// QuotaConfig limits summarizer calls. Zero means unlimited.
type QuotaConfig struct {
	RequestsPerMinute int `yaml:"requestsPerMinute"`
	RequestsPerDay    int `yaml:"requestsPerDay"`
}

// ReportConfig holds presentation settings.
type ReportConfig struct {
	Title       string `yaml:"title"`
	TemplateDir string `yaml:"templateDir"`
}

// OutputConfig selects formats and the target directory.
type OutputConfig struct {
	Dir    string `yaml:"dir"`
	Format string `yaml:"format"`
}

// EmailConfig wires SMTP delivery.
type EmailConfig struct {
	Enabled    *bool    `yaml:"enabled"`
	SendEmpty  bool     `yaml:"sendEmpty"`
	SMTPServer string   `yaml:"smtpServer"`
	SMTPPort   int      `yaml:"smtpPort"`
	Username   string   `yaml:"username"`
	Password   string   `yaml:"password"`
	Recipients []string `yaml:"recipients"`
	Bcc        []string `yaml:"bcc"`
}

// SendingEnabled treats a missing flag as enabled.
func (e EmailConfig) SendingEnabled() bool {
	return e.Enabled == nil || *e.Enabled
}

// DatabaseConfig describes the Postgres archive connection. Empty DSN disables it.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// CacheConfig describes the Redis summary cache. Empty Addr disables it.
type CacheConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

// ObjectStoreConfig describes the optional S3 upload of written reports.
type ObjectStoreConfig struct {
	Bucket       string `yaml:"bucket"`
	Prefix       string `yaml:"prefix"`
	Region       string `yaml:"region"`
	UsePathStyle bool   `yaml:"usePathStyle"`
}

// TelegramConfig wires all data required to send the digest message.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// Load reads .env and the YAML configuration (if present) and applies environment overrides.
func Load() Config {
	dotenv := os.Getenv(dotenvPathEnv)
	if dotenv == "" {
		dotenv = ".env"
	}
	if err := godotenv.Load(dotenv); err != nil && !os.IsNotExist(err) {
		log.Printf("config: cannot load %s: %v", dotenv, err)
	}

	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else if fileCfg, err := Parse(raw); err != nil {
			log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
		} else {
			cfg = mergeConfig(cfg, fileCfg)
		}
	}

	cfg.applyEnvOverrides(os.Getenv)
	cfg.bindTimezone()

	return cfg
}

// Parse decodes a YAML document without applying defaults.
func Parse(raw []byte) (Config, error) {
	var fileCfg Config
	if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
		return Config{}, err
	}
	return fileCfg, nil
}

func (c *Config) applyEnvOverrides(getenv func(string) string) {
	if v := getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}

	if v := getenv(providerEnv); v != "" {
		c.Summarizer.Provider = strings.ToLower(v)
	}
	if v := getenv(deepseekAPIKeyEnv); v != "" {
		c.Summarizer.APIKey = v
	}
	if v := getenv(deepseekModelEnv); v != "" {
		c.Summarizer.Model = v
	}
	if v := getenv(deepseekMaxTokensEnv); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Summarizer.MaxTokens = n
		}
	}
	if v := getenv(deepseekTemperatureEn); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Summarizer.Temperature = f
		}
	}
	if v := getenv(geminiAPIKeyEnv); v != "" {
		c.Summarizer.GeminiAPIKey = v
	}

	if v := getenv(smtpServerEnv); v != "" {
		c.Email.SMTPServer = v
	}
	if v := getenv(smtpPortEnv); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Email.SMTPPort = n
		}
	}
	if v := getenv(emailUsernameEnv); v != "" {
		c.Email.Username = v
	}
	if v := getenv(emailPasswordEnv); v != "" {
		c.Email.Password = v
	}
	if v := getenv(emailRecipientsEnv); v != "" {
		c.Email.Recipients = splitList(v)
	}
	if v := getenv(emailBccEnv); v != "" {
		c.Email.Bcc = splitList(v)
	}
	if v := getenv(emailEnabledEnv); v != "" {
		enabled := strings.EqualFold(strings.TrimSpace(v), "true")
		c.Email.Enabled = &enabled
	}

	if v := getenv(outputFormatEnv); v != "" {
		c.Output.Format = strings.ToLower(v)
	}
	if v := getenv(outputDirEnv); v != "" {
		c.Output.Dir = v
	}

	if v := getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}
	if v := getenv(redisAddrEnv); v != "" {
		c.Cache.Addr = v
	}
	if v := getenv(s3BucketEnv); v != "" {
		c.ObjectStore.Bucket = v
	}

	if v := getenv(telegramTokenEnv); v != "" {
		c.Telegram.BotToken = v
	}
	if v := getenv(telegramChatIDEnv); v != "" {
		c.Telegram.ChatID = v
	}
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to UTC", tz)
		loc = time.UTC
	}
	c.Scheduler.location = loc
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	if override.Scheduler.DailyAt != "" {
		base.Scheduler.DailyAt = override.Scheduler.DailyAt
	}
	if override.Scheduler.Timezone != "" {
		base.Scheduler.Timezone = override.Scheduler.Timezone
	}

	if override.Crawler.UserAgent != "" {
		base.Crawler.UserAgent = override.Crawler.UserAgent
	}
	if override.Crawler.Timeout > 0 {
		base.Crawler.Timeout = override.Crawler.Timeout
	}
	if override.Crawler.JournalDelay > 0 {
		base.Crawler.JournalDelay = override.Crawler.JournalDelay
	}
	if override.Crawler.MaxArticlesPerJournal > 0 {
		base.Crawler.MaxArticlesPerJournal = override.Crawler.MaxArticlesPerJournal
	}
	if override.Crawler.ChromePath != "" {
		base.Crawler.ChromePath = override.Crawler.ChromePath
	}
	base.Crawler.Browser = base.Crawler.Browser || override.Crawler.Browser
	base.Crawler.SkipDetails = base.Crawler.SkipDetails || override.Crawler.SkipDetails

	if len(override.Journals) > 0 {
		base.Journals = override.Journals
	}

	if override.Summarizer.Provider != "" {
		base.Summarizer.Provider = strings.ToLower(override.Summarizer.Provider)
	}
	if override.Summarizer.Endpoint != "" {
		base.Summarizer.Endpoint = override.Summarizer.Endpoint
	}
	if override.Summarizer.Model != "" {
		base.Summarizer.Model = override.Summarizer.Model
	}
	if override.Summarizer.APIKey != "" {
		base.Summarizer.APIKey = override.Summarizer.APIKey
	}
	if override.Summarizer.GeminiModel != "" {
		base.Summarizer.GeminiModel = override.Summarizer.GeminiModel
	}
	if override.Summarizer.GeminiAPIKey != "" {
		base.Summarizer.GeminiAPIKey = override.Summarizer.GeminiAPIKey
	}
	if override.Summarizer.MaxTokens > 0 {
		base.Summarizer.MaxTokens = override.Summarizer.MaxTokens
	}
	if override.Summarizer.Temperature > 0 {
		base.Summarizer.Temperature = override.Summarizer.Temperature
	}
	if override.Summarizer.MaxKeyPoints > 0 {
		base.Summarizer.MaxKeyPoints = override.Summarizer.MaxKeyPoints
	}
	if override.Summarizer.SystemPrompt != "" {
		base.Summarizer.SystemPrompt = override.Summarizer.SystemPrompt
	}

	if override.Quota.RequestsPerMinute != 0 {
		base.Quota.RequestsPerMinute = override.Quota.RequestsPerMinute
	}
	if override.Quota.RequestsPerDay != 0 {
		base.Quota.RequestsPerDay = override.Quota.RequestsPerDay
	}

	if override.Report.Title != "" {
		base.Report.Title = override.Report.Title
	}
	if override.Report.TemplateDir != "" {
		base.Report.TemplateDir = override.Report.TemplateDir
	}

	if override.Output.Dir != "" {
		base.Output.Dir = override.Output.Dir
	}
	if override.Output.Format != "" {
		base.Output.Format = strings.ToLower(override.Output.Format)
	}

	if override.Email.SMTPServer != "" {
		base.Email.SMTPServer = override.Email.SMTPServer
	}
	if override.Email.SMTPPort != 0 {
		base.Email.SMTPPort = override.Email.SMTPPort
	}
	if override.Email.Username != "" {
		base.Email.Username = override.Email.Username
	}
	if override.Email.Password != "" {
		base.Email.Password = override.Email.Password
	}
	if len(override.Email.Recipients) > 0 {
		base.Email.Recipients = override.Email.Recipients
	}
	if len(override.Email.Bcc) > 0 {
		base.Email.Bcc = override.Email.Bcc
	}
	if override.Email.Enabled != nil {
		base.Email.Enabled = override.Email.Enabled
	}
	base.Email.SendEmpty = base.Email.SendEmpty || override.Email.SendEmpty

	if override.Database.DSN != "" {
		base.Database = override.Database
	}
	if override.Cache.Addr != "" {
		base.Cache = override.Cache
		if base.Cache.TTL <= 0 {
			base.Cache.TTL = defaultConfig().Cache.TTL
		}
	}
	if override.ObjectStore.Bucket != "" {
		base.ObjectStore = override.ObjectStore
	}

	if override.Telegram.BotToken != "" {
		base.Telegram.BotToken = override.Telegram.BotToken
	}
	if override.Telegram.ChatID != "" {
		base.Telegram.ChatID = override.Telegram.ChatID
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Logging:   LoggingConfig{Level: "info"},
		Scheduler: SchedulerConfig{DailyAt: "07:00", Timezone: defaultTimezone},
		Crawler: CrawlerConfig{
			UserAgent:             "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
			Timeout:               30 * time.Second,
			JournalDelay:          2 * time.Second,
			MaxArticlesPerJournal: 10,
		},
		Journals: defaultJournals(),
		Summarizer: SummarizerConfig{
			Provider:     "deepseek",
			Endpoint:     "https://api.deepseek.com/v1/chat/completions",
			Model:        "deepseek-chat",
			GeminiModel:  "gemini-2.5-flash",
			MaxTokens:    1000,
			Temperature:  0.7,
			MaxKeyPoints: 5,
			SystemPrompt: "You are a research analyst who summarizes scientific papers precisely.",
		},
		Quota:  QuotaConfig{RequestsPerMinute: 60},
		Report: ReportConfig{Title: "Nature Research Daily"},
		Output: OutputConfig{Dir: "output", Format: "all"},
		Email: EmailConfig{
			SMTPServer: "smtp.office365.com",
			SMTPPort:   587,
		},
		Cache: CacheConfig{TTL: 7 * 24 * time.Hour},
	}
}

func defaultJournals() []JournalConfig {
	journal := func(name, code string) JournalConfig {
		return JournalConfig{
			Name:    name,
			URL:     "https://www.nature.com/" + code + "/research-articles",
			Scanner: "nature",
		}
	}
	return []JournalConfig{
		journal("Nature", "nature"),
		journal("Nature Communications", "ncomms"),
		journal("Nature Materials", "nmat"),
		journal("Nature Photonics", "nphoton"),
		journal("Nature Nanotechnology", "nnano"),
		journal("Nature Electronics", "natelectron"),
		journal("Nature Biotechnology", "nbt"),
	}
}
