// internal/config/config.go
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		DataDir  string `yaml:"data_dir"`
		LogLevel string `yaml:"log_level"`

		// RunIntervalMinutes > 0 keeps the engine alive and re-runs the
		// scrape on that interval; 0 runs once and exits.
		RunIntervalMinutes int `yaml:"run_interval_minutes"`
	} `yaml:"app"`

	Scrape struct {
		SearchKeywords        []string `yaml:"search_keywords"`
		MaxPages              int      `yaml:"max_pages"`
		DaysFromPosted        int      `yaml:"days_from_posted"`
		InitialDaysFromPosted int      `yaml:"initial_days_from_posted"`
		InitialRun            bool     `yaml:"initial_run"`
		Concurrency           int      `yaml:"concurrency"`
		RequestsPerSecond     float64  `yaml:"requests_per_second"`
		RequestBurst          int      `yaml:"request_burst"`
	} `yaml:"scrape"`

	Sources struct {
		Seek struct {
			Enabled bool `yaml:"enabled"`
		} `yaml:"seek"`

		GradConnection struct {
			Enabled  bool     `yaml:"enabled"`
			Keywords []string `yaml:"keywords"`
		} `yaml:"gradconnection"`

		Prosple struct {
			Enabled         bool `yaml:"enabled"`
			ItemsPerPage    int  `yaml:"items_per_page"`
			RegularMaxPages int  `yaml:"regular_max_pages"`
		} `yaml:"prosple"`

		Adzuna struct {
			Enabled            bool   `yaml:"enabled"`
			Country            string `yaml:"country"`
			AppID              string `yaml:"app_id"`
			AppKey             string `yaml:"app_key"`
			ResultsPerPage int `yaml:"results_per_page"`

			// ResultsWanted caps one search term; ResultsWantedTotal caps
			// the whole run across terms.
			ResultsWanted      int    `yaml:"results_wanted"`
			ResultsWantedTotal int    `yaml:"results_wanted_total"`
			TermConcurrency    int    `yaml:"term_concurrency"`
			HoursOld           int    `yaml:"hours_old"`
			InitialHoursOld    int    `yaml:"initial_hours_old"`
		} `yaml:"adzuna"`
	} `yaml:"sources"`
}

func Load(path string) (Config, error) {
	_ = godotenv.Load()

	cfg := Defaults()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, err
	}
	applyEnv(&cfg)
	return cfg, nil
}

func Defaults() Config {
	var cfg Config
	cfg.App.DataDir = "."
	cfg.App.LogLevel = "info"

	cfg.Scrape.SearchKeywords = []string{
		"software engineer",
		"software developer",
		"data scientist",
		"machine learning engineer",
		"ai engineer",
		"data engineer",
	}
	cfg.Scrape.MaxPages = 20
	cfg.Scrape.DaysFromPosted = 2
	cfg.Scrape.InitialDaysFromPosted = 31
	cfg.Scrape.Concurrency = 5
	cfg.Scrape.RequestsPerSecond = 1
	cfg.Scrape.RequestBurst = 2

	cfg.Sources.Seek.Enabled = true

	cfg.Sources.GradConnection.Enabled = true
	cfg.Sources.GradConnection.Keywords = []string{
		"software engineer",
		"software developer",
		"data science",
		"machine learning engineer",
		"ai engineer",
		"data analyst",
	}

	cfg.Sources.Prosple.Enabled = true
	cfg.Sources.Prosple.ItemsPerPage = 20
	cfg.Sources.Prosple.RegularMaxPages = 3

	cfg.Sources.Adzuna.Country = "au"
	cfg.Sources.Adzuna.ResultsPerPage = 20
	cfg.Sources.Adzuna.ResultsWanted = 20
	cfg.Sources.Adzuna.ResultsWantedTotal = 100
	cfg.Sources.Adzuna.TermConcurrency = 2
	cfg.Sources.Adzuna.HoursOld = 72
	cfg.Sources.Adzuna.InitialHoursOld = 2000

	return cfg
}

// applyEnv lets deployment-level settings win over the YAML file.
func applyEnv(cfg *Config) {
	if v := os.Getenv("SCRAPER_INITIAL_RUN"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Scrape.InitialRun = b
		}
	}
	if v := os.Getenv("SCRAPER_DATA_DIR"); v != "" {
		cfg.App.DataDir = v
	}
	if v := os.Getenv("ADZUNA_APP_ID"); v != "" {
		cfg.Sources.Adzuna.AppID = v
	}
	if v := os.Getenv("ADZUNA_APP_KEY"); v != "" {
		cfg.Sources.Adzuna.AppKey = v
	}
}
