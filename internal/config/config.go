// Package config loads application configuration from environment variables
// and an optional YAML file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"github.com/ericfisherdev/reviewrot/internal/domain/model"
)

// Source selects where the review-request feed comes from.
type Source string

const (
	// SourceURL fetches a JSON feed document from FeedURL.
	SourceURL Source = "url"
	// SourceGitHub builds the feed from the open pull requests of the
	// watched GitHub repositories.
	SourceGitHub Source = "github"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	FeedSource   Source
	FeedURL      string
	FetchTimeout time.Duration
	ListenAddr   string
	DBPath       string

	// WIPMatch is "substring" or "prefix".
	WIPMatch   string
	HostRules  map[string]int
	Thresholds model.SeverityTable

	GitHubToken       string
	GitHubRepos       []string
	GitHubLastComment bool

	Output         string
	RenderSchedule string
	// RenderOptions are the page options of every standalone render, in
	// query-string form (sort=updated&reverse).
	RenderOptions url.Values

	ConfigFile string
}

// fileConfig is the shape of the optional YAML file.
type fileConfig struct {
	FeedURL     string            `yaml:"feed_url"`
	GitHubRepos []string          `yaml:"github_repos"`
	HostRules   map[string]int    `yaml:"host_rules"`
	Thresholds  map[string]string `yaml:"thresholds"`
}

// Load reads configuration from environment variables and returns a validated Config.
// When REVIEWROT_CONFIG_FILE names a YAML file, its feed_url, github_repos,
// host_rules and thresholds are used for any variable left unset.
// Optional variables with defaults: REVIEWROT_FEED_SOURCE (url),
// REVIEWROT_FETCH_TIMEOUT (30s), REVIEWROT_LISTEN_ADDR (127.0.0.1:8080),
// REVIEWROT_DB_PATH (reviewrot.db), REVIEWROT_WIP_MATCH (substring),
// REVIEWROT_OUTPUT (index.html), REVIEWROT_RENDER_OPTIONS (none).
func Load() (*Config, error) {
	cfg := &Config{
		FeedSource:    SourceURL,
		FetchTimeout:  30 * time.Second,
		ListenAddr:    "127.0.0.1:8080",
		DBPath:        "reviewrot.db",
		WIPMatch:      "substring",
		HostRules:     map[string]int{},
		Thresholds:    model.SeverityTable{},
		GitHubRepos:   []string{},
		Output:        "index.html",
		RenderOptions: url.Values{},
	}

	if v, ok := os.LookupEnv("REVIEWROT_CONFIG_FILE"); ok && v != "" {
		cfg.ConfigFile = v
		if err := cfg.applyFile(v); err != nil {
			return nil, err
		}
	}

	if v, ok := os.LookupEnv("REVIEWROT_FEED_SOURCE"); ok {
		switch Source(v) {
		case SourceURL, SourceGitHub:
			cfg.FeedSource = Source(v)
		default:
			return nil, fmt.Errorf("REVIEWROT_FEED_SOURCE must be %q or %q, got %q", SourceURL, SourceGitHub, v)
		}
	}

	if v, ok := os.LookupEnv("REVIEWROT_FEED_URL"); ok {
		cfg.FeedURL = v
	}

	if v, ok := os.LookupEnv("REVIEWROT_FETCH_TIMEOUT"); ok {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("REVIEWROT_FETCH_TIMEOUT has invalid duration %q: %w", v, err)
		}
		if parsed <= 0 {
			return nil, fmt.Errorf("REVIEWROT_FETCH_TIMEOUT must be positive, got %s", parsed)
		}
		cfg.FetchTimeout = parsed
	}

	if v, ok := os.LookupEnv("REVIEWROT_LISTEN_ADDR"); ok {
		cfg.ListenAddr = v
	}

	if v, ok := os.LookupEnv("REVIEWROT_DB_PATH"); ok {
		cfg.DBPath = v
	}

	if v, ok := os.LookupEnv("REVIEWROT_WIP_MATCH"); ok {
		if v != "substring" && v != "prefix" {
			return nil, fmt.Errorf("REVIEWROT_WIP_MATCH must be \"substring\" or \"prefix\", got %q", v)
		}
		cfg.WIPMatch = v
	}

	if v, ok := os.LookupEnv("REVIEWROT_HOST_RULES"); ok && v != "" {
		rules, err := parseHostRules(splitList(v))
		if err != nil {
			return nil, fmt.Errorf("REVIEWROT_HOST_RULES: %w", err)
		}
		cfg.HostRules = rules
	}

	if v, ok := os.LookupEnv("REVIEWROT_AGE_THRESHOLDS"); ok && v != "" {
		pairs := map[string]string{}
		for _, item := range splitList(v) {
			name, age, found := strings.Cut(item, "=")
			if !found {
				return nil, fmt.Errorf("REVIEWROT_AGE_THRESHOLDS: %q is not severity=duration", item)
			}
			pairs[strings.TrimSpace(name)] = strings.TrimSpace(age)
		}
		table, err := parseThresholds(pairs)
		if err != nil {
			return nil, fmt.Errorf("REVIEWROT_AGE_THRESHOLDS: %w", err)
		}
		cfg.Thresholds = table
	}

	cfg.GitHubToken = os.Getenv("REVIEWROT_GITHUB_TOKEN")

	if v, ok := os.LookupEnv("REVIEWROT_GITHUB_REPOS"); ok && v != "" {
		cfg.GitHubRepos = splitList(v)
	}

	if v, ok := os.LookupEnv("REVIEWROT_GITHUB_LAST_COMMENT"); ok && v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("REVIEWROT_GITHUB_LAST_COMMENT has invalid boolean %q: %w", v, err)
		}
		cfg.GitHubLastComment = parsed
	}

	if v, ok := os.LookupEnv("REVIEWROT_OUTPUT"); ok && v != "" {
		cfg.Output = v
	}

	if v, ok := os.LookupEnv("REVIEWROT_RENDER_SCHEDULE"); ok && v != "" {
		if _, err := cron.ParseStandard(v); err != nil {
			return nil, fmt.Errorf("REVIEWROT_RENDER_SCHEDULE has invalid cron spec %q: %w", v, err)
		}
		cfg.RenderSchedule = v
	}

	if v, ok := os.LookupEnv("REVIEWROT_RENDER_OPTIONS"); ok && v != "" {
		opts, err := url.ParseQuery(v)
		if err != nil {
			return nil, fmt.Errorf("REVIEWROT_RENDER_OPTIONS is not a query string %q: %w", v, err)
		}
		cfg.RenderOptions = opts
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate checks cross-field constraints once every source has been applied.
func (c *Config) validate() error {
	if c.FeedSource != SourceURL {
		return nil
	}

	if c.FeedURL == "" {
		return errors.New("REVIEWROT_FEED_URL is required when REVIEWROT_FEED_SOURCE is url")
	}

	u, err := url.Parse(c.FeedURL)
	if err != nil {
		return fmt.Errorf("REVIEWROT_FEED_URL is not a valid URL: %w", err)
	}
	switch u.Scheme {
	case "http", "https":
		if u.Host == "" {
			return fmt.Errorf("REVIEWROT_FEED_URL %q has no host", c.FeedURL)
		}
	case "file":
		if u.Path == "" {
			return fmt.Errorf("REVIEWROT_FEED_URL %q has no path", c.FeedURL)
		}
	default:
		return fmt.Errorf("REVIEWROT_FEED_URL scheme must be http, https or file, got %q", u.Scheme)
	}

	return nil
}

// applyFile loads the YAML file at path into c. Unknown keys are rejected.
func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var fc fileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	if fc.FeedURL != "" {
		c.FeedURL = fc.FeedURL
	}
	if len(fc.GitHubRepos) > 0 {
		c.GitHubRepos = fc.GitHubRepos
	}
	if len(fc.HostRules) > 0 {
		rules := make([]string, 0, len(fc.HostRules))
		for host, n := range fc.HostRules {
			rules = append(rules, host+"="+strconv.Itoa(n))
		}
		parsed, err := parseHostRules(rules)
		if err != nil {
			return fmt.Errorf("config file host_rules: %w", err)
		}
		c.HostRules = parsed
	}
	if len(fc.Thresholds) > 0 {
		table, err := parseThresholds(fc.Thresholds)
		if err != nil {
			return fmt.Errorf("config file thresholds: %w", err)
		}
		c.Thresholds = table
	}

	return nil
}

// parseHostRules parses "host=N" items. N must be at least 1.
func parseHostRules(items []string) (map[string]int, error) {
	rules := make(map[string]int, len(items))
	for _, item := range items {
		host, count, found := strings.Cut(item, "=")
		host = strings.ToLower(strings.TrimSpace(host))
		if !found || host == "" {
			return nil, fmt.Errorf("%q is not host=segments", item)
		}
		n, err := strconv.Atoi(strings.TrimSpace(count))
		if err != nil || n < 1 {
			return nil, fmt.Errorf("%q: segment count must be a positive integer", item)
		}
		rules[host] = n
	}
	return rules, nil
}

// parseThresholds builds a severity table from severity name to duration.
func parseThresholds(pairs map[string]string) (model.SeverityTable, error) {
	table := make(model.SeverityTable, 0, len(pairs))
	for name, age := range pairs {
		severity, err := model.ParseSeverity(name)
		if err != nil {
			return nil, err
		}
		minAge, err := time.ParseDuration(age)
		if err != nil {
			return nil, fmt.Errorf("%s: invalid duration %q: %w", name, age, err)
		}
		table = append(table, model.SeverityThreshold{Severity: severity, MinAge: minAge})
	}

	if err := table.Validate(); err != nil {
		return nil, err
	}
	return table, nil
}

// splitList splits a comma-separated value, trimming blanks.
func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}
