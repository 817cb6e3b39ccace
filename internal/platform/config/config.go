// Package config loads all runtime configuration from the environment.
//
// The profile (who the reader is) and the rule vocabularies (what counts as
// a placement notice, which branches exist) are configuration, not code:
// everything the engine matches against comes from here and is treated as
// immutable for the lifetime of a run.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/placementcal/placement-calendar-bot/internal/core/domain"
	apperrors "github.com/placementcal/placement-calendar-bot/internal/core/errors"
)

const hoursPerDay = 24

type Config struct {
	AppEnv string `env:"APP_ENV" envDefault:"local"`

	// Reader profile
	MyName       string  `env:"MY_NAME,required"`
	MyReg        string  `env:"MY_REG,required"`
	MyBranch     string  `env:"MY_BRANCH,required"`
	MyCGPA       float64 `env:"MY_CGPA,required"`
	MyPercentage float64 `env:"MY_PERCENTAGE" envDefault:"0"`
	My10th       float64 `env:"MY_10TH" envDefault:"0"`
	My12th       float64 `env:"MY_12TH" envDefault:"0"`
	MyBacklogs   int     `env:"MY_BACKLOGS" envDefault:"0"`
	MyEmail      string  `env:"MY_EMAIL,required"`

	// Rule tuning
	EligibilityTolerance float64 `env:"ELIGIBILITY_TOLERANCE" envDefault:"0.3"`

	// ExtraBranchAliases supplements the built-in alias table,
	// formatted alias:Canonical Name,alias2:Other Name.
	ExtraBranchAliases map[string]string `env:"BRANCH_ALIASES" envSeparator:"," envKeyValSeparator:":"`

	// ExtraKeywords supplements the built-in relevance keyword list.
	ExtraKeywords []string `env:"KEYWORDS" envSeparator:","`

	// AllowedSenders are matched against the From header; entries with "@"
	// match exactly, bare words match as substrings.
	AllowedSenders []string `env:"ALLOWED_SENDERS" envSeparator:"," envDefault:"placement,cdc,career,recruitment,hr"`

	// Mail / calendar collaborators
	GoogleClientID     string `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `env:"GOOGLE_CLIENT_SECRET"`
	GoogleRefreshToken string `env:"GOOGLE_REFRESH_TOKEN"`
	CalendarID         string `env:"CALENDAR_ID" envDefault:"primary"`
	CalendarRPS        int    `env:"CALENDAR_RPS" envDefault:"5"`

	// Registration portal recognized when no URL is present in the text.
	// PortalURL, when set, replaces the portal sentinel in event descriptions.
	PortalKeyword string `env:"PORTAL_KEYWORD" envDefault:"neopat"`
	PortalURL     string `env:"PORTAL_URL"`

	// Dedup store
	DedupBackend string `env:"DEDUP_BACKEND" envDefault:"postgres"`
	PostgresDSN  string `env:"POSTGRES_DSN"`
	RedisURL     string `env:"REDIS_URL"`

	// Run behavior
	DefaultEventDuration time.Duration `env:"DEFAULT_EVENT_DURATION" envDefault:"60m"`
	RetentionDays        int           `env:"RETENTION_DAYS" envDefault:"60"`
	SearchWindow         time.Duration `env:"SEARCH_WINDOW" envDefault:"30m"`
	PollInterval         time.Duration `env:"POLL_INTERVAL" envDefault:"10m"`
	ProcessedLabel       string        `env:"PROCESSED_LABEL" envDefault:"AutoCalendarProcessed"`
	SendSummary          bool          `env:"SEND_SUMMARY" envDefault:"false"`
	Timezone             string        `env:"TIMEZONE" envDefault:"Asia/Kolkata"`

	HealthPort int `env:"HEALTH_PORT" envDefault:"8080"`

	location *time.Location
}

func Load() (*Config, error) {
	_ = godotenv.Load() //nolint:errcheck // .env file is optional

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", cfg.Timezone, err)
	}

	cfg.location = loc

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.DedupBackend {
	case "postgres":
		if c.PostgresDSN == "" {
			return fmt.Errorf("%w: POSTGRES_DSN required for postgres dedup backend", apperrors.ErrInvalidConfig)
		}
	case "redis":
		if c.RedisURL == "" {
			return fmt.Errorf("%w: REDIS_URL required for redis dedup backend", apperrors.ErrInvalidConfig)
		}
	case "memory":
		// test/dev only, nothing to check
	default:
		return fmt.Errorf("%w: unknown dedup backend %q", apperrors.ErrInvalidConfig, c.DedupBackend)
	}

	if c.MyCGPA < 0 || c.MyCGPA > 10 {
		return fmt.Errorf("%w: MY_CGPA %v out of range", apperrors.ErrInvalidConfig, c.MyCGPA)
	}

	return nil
}

// Location returns the fixed locale all extracted datetimes are anchored to.
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.Local
	}

	return c.location
}

// Retention returns the dedup-store retention window as a duration.
func (c *Config) Retention() time.Duration {
	return time.Duration(c.RetentionDays) * hoursPerDay * time.Hour
}

// Profile assembles the immutable reader profile handed to the engine.
// Extra aliases from the environment are merged over the built-in table;
// canonical names are title-cased so alias merging stays consistent.
func (c *Config) Profile() domain.Profile {
	aliases := make(map[string]string, len(defaultBranchAliases)+len(c.ExtraBranchAliases))
	for alias, canonical := range defaultBranchAliases {
		aliases[alias] = canonical
	}

	titler := cases.Title(language.English)

	for alias, canonical := range c.ExtraBranchAliases {
		key := strings.ToLower(strings.TrimSpace(alias))
		if key == "" {
			continue
		}

		canonical = strings.TrimSpace(canonical)
		if canonical != "All" {
			canonical = titler.String(canonical)
		}

		aliases[key] = canonical
	}

	return domain.Profile{
		Name:           c.MyName,
		RegNumber:      c.MyReg,
		Branch:         c.MyBranch,
		CGPA:           c.MyCGPA,
		Percentage:     c.MyPercentage,
		TenthPercent:   c.My10th,
		TwelfthPercent: c.My12th,
		Backlogs:       c.MyBacklogs,
		Email:          c.MyEmail,
		CGPATolerance:  c.EligibilityTolerance,
		BranchAliases:  aliases,
	}
}

// Keywords returns the relevance keyword list with environment additions.
func (c *Config) Keywords() []string {
	if len(c.ExtraKeywords) == 0 {
		return defaultKeywords
	}

	out := make([]string, 0, len(defaultKeywords)+len(c.ExtraKeywords))
	out = append(out, defaultKeywords...)

	for _, k := range c.ExtraKeywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" {
			out = append(out, k)
		}
	}

	return out
}
