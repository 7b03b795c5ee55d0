package config

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	App struct {
		Env       string `env:"APP_ENV" env-default:"development"`
		Port      int    `env:"APP_PORT" env-default:"8080"`
		SentryURL string `env:"SENTRY_URL"`
	}
	Postgres struct {
		Port    int    `env:"POSTGRES_PORT"`
		Host    string `env:"POSTGRES_HOST"`
		User    string `env:"POSTGRES_USER"`
		Pass    string `env:"POSTGRES_PASS"`
		Name    string `env:"POSTGRES_NAME"`
		SslMode string `env:"POSTGRES_SSL_MODE" env-default:"disable"`
	}
	Providers struct {
		Priority       []string      `env:"PROVIDERS_PRIORITY" env-separator:"," env-default:"rapidapi,nodescraper,chromedp,htmlscrape,manual"`
		RequestTimeout time.Duration `env:"PROVIDERS_REQUEST_TIMEOUT" env-default:"15s"`
	}
	GraphAPI struct {
		AccessToken string        `env:"INSTAGRAM_ACCESS_TOKEN"`
		BaseURL     string        `env:"GRAPH_API_BASE_URL" env-default:"https://graph.instagram.com/v18.0"`
		PageDelay   time.Duration `env:"GRAPH_API_PAGE_DELAY" env-default:"1s"`
	}
	RapidAPI struct {
		Key           string        `env:"RAPIDAPI_KEY"`
		Host          string        `env:"RAPIDAPI_HOST" env-default:"instagram-scraper21.p.rapidapi.com"`
		BaseURL       string        `env:"RAPIDAPI_BASE_URL" env-default:"https://instagram-scraper21.p.rapidapi.com/api/v1"`
		RetryBackoff  time.Duration `env:"RAPIDAPI_RETRY_BACKOFF" env-default:"5s"`
		MaxAttempts   int           `env:"RAPIDAPI_MAX_ATTEMPTS" env-default:"2"`
	}
	Instagram struct {
		Username    string `env:"INSTAGRAM_USER"`
		Password    string `env:"INSTAGRAM_PASS"`
		SessionPath string `env:"INSTAGRAM_SESSION_PATH" env-default:"./goinsta-session"`
	}
	Scraper struct {
		NodeBin string        `env:"SCRAPER_NODE_BIN" env-default:"node"`
		WorkDir string        `env:"SCRAPER_WORK_DIR" env-default:"temp_scrapes"`
		Timeout time.Duration `env:"SCRAPER_TIMEOUT" env-default:"60s"`
	}
	Processor struct {
		DownloadDir    string        `env:"PROCESSOR_DOWNLOAD_DIR" env-default:"downloads"`
		EnhanceURLs    bool          `env:"PROCESSOR_ENHANCE_URLS" env-default:"true"`
		MinResolution  int           `env:"PROCESSOR_MIN_RESOLUTION" env-default:"0"`
		Upscale        bool          `env:"PROCESSOR_UPSCALE" env-default:"false"`
		UploadRemote   bool          `env:"PROCESSOR_UPLOAD_REMOTE" env-default:"false"`
		MediaRetention time.Duration `env:"PROCESSOR_MEDIA_RETENTION" env-default:"720h"`
	}
	Upscale struct {
		ReplicateToken string        `env:"REPLICATE_API_TOKEN"`
		Scale          int           `env:"UPSCALE_SCALE" env-default:"2"`
		PollInterval   time.Duration `env:"UPSCALE_POLL_INTERVAL" env-default:"10s"`
		PollAttempts   int           `env:"UPSCALE_POLL_ATTEMPTS" env-default:"30"`
	}
	Storage struct {
		S3Bucket      string `env:"STORAGE_S3_BUCKET"`
		S3Region      string `env:"STORAGE_S3_REGION" env-default:"us-east-1"`
		S3KeyPrefix   string `env:"STORAGE_S3_KEY_PREFIX" env-default:"instagram_media"`
		PublicBaseURL string `env:"STORAGE_PUBLIC_BASE_URL"`
	}
	Batch struct {
		AccountsFile      string        `env:"BATCH_ACCOUNTS_FILE" env-default:"found_accounts.json"`
		PerAccountLimit   int           `env:"BATCH_PER_ACCOUNT_LIMIT" env-default:"10"`
		AccountTimeout    time.Duration `env:"BATCH_ACCOUNT_TIMEOUT" env-default:"5m"`
		InterAccountDelay time.Duration `env:"BATCH_INTER_ACCOUNT_DELAY" env-default:"2s"`
		SummaryPath       string        `env:"BATCH_SUMMARY_PATH" env-default:"batch_download_results.json"`
		Cron              string        `env:"BATCH_CRON"`
	}
	Telegram struct {
		User  int64  `env:"TELEGRAM_USER"`
		Token string `env:"TELEGRAM_TOKEN"`
	}
}

// GetDSN builds the lib/pq connection string used by the migration tool.
func (c *Config) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Postgres.Host, c.Postgres.Port, c.Postgres.User, c.Postgres.Pass, c.Postgres.Name, c.Postgres.SslMode)
}

var (
	once sync.Once
	cfg  *Config
)

func New() (*Config, error) {
	once.Do(func() {
		cfg = &Config{}
		if err := cleanenv.ReadEnv(cfg); err != nil {
			help, _ := cleanenv.GetDescription(cfg, nil)
			log.Fatalf("Failed to read configuration: %v\n%v", err, help)
		}
	})
	return cfg, nil
}
