package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/BurntSushi/toml"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/teemow/macbridge/internal/calendar"
	"github.com/teemow/macbridge/internal/google"
	"github.com/teemow/macbridge/internal/presentation"
)

// Event source names accepted in [slots] source.
const (
	SourceApple  = "apple"
	SourceGoogle = "google"
	SourceFile   = "file"
)

// Environment variables that override the config file.
const (
	EnvTimezone       = "MACBRIDGE_TIMEZONE"
	EnvCalendarSource = "MACBRIDGE_CALENDAR_SOURCE"
	EnvClientID       = "GOOGLE_CLIENT_ID"
	EnvClientSecret   = "GOOGLE_CLIENT_SECRET"
)

var accountName = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Config is the content of config.toml.
type Config struct {
	Workday Workday `toml:"workday"`
	Slots   Slots   `toml:"slots"`
	Slides  Slides  `toml:"slides"`
	Google  Google  `toml:"google"`
}

// Workday is the window free slots are searched in.
type Workday struct {
	Start    string `toml:"start"`
	End      string `toml:"end"`
	Timezone string `toml:"timezone"`
}

// Slots holds the free slot search defaults.
type Slots struct {
	MinDuration int    `toml:"min_duration"`
	Source      string `toml:"source"`
	Calendar    string `toml:"calendar"`
	Account     string `toml:"account"`
	EventsFile  string `toml:"events_file"`
	SkipAllDay  bool   `toml:"skip_all_day"`
}

// Slides holds the presentation defaults.
type Slides struct {
	Target string `toml:"target"`
	Theme  string `toml:"theme"`
}

// Google holds the OAuth client of the Google Calendar source.
type Google struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	TokenDir     string `toml:"token_dir"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Workday: Workday{
			Start:    calendar.DefaultWorkdayStart.String(),
			End:      calendar.DefaultWorkdayEnd.String(),
			Timezone: "Local",
		},
		Slots: Slots{
			MinDuration: 60,
			Source:      SourceApple,
			Account:     google.DefaultAccount,
		},
		Slides: Slides{
			Target: string(presentation.Keynote),
			Theme:  "White",
		},
	}
}

// DefaultPath returns ~/.config/macbridge/config.toml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "macbridge", "config.toml"), nil
}

// Load reads the config file at path over the defaults and applies the
// environment overrides. An empty path means DefaultPath, which may be
// missing. An explicit path must exist.
func Load(path string) (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = filepath.Join(home, ".config", "macbridge", "config.toml")
	}
	path = expandHome(path, home)

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	} else if explicit {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}

	cfg.applyEnv()

	// expand ~ in paths
	cfg.Slots.EventsFile = expandHome(cfg.Slots.EventsFile, home)
	cfg.Google.TokenDir = expandHome(cfg.Google.TokenDir, home)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvTimezone); v != "" {
		c.Workday.Timezone = v
	}
	if v := os.Getenv(EnvCalendarSource); v != "" {
		c.Slots.Source = v
	}
	if v := os.Getenv(EnvClientID); v != "" {
		c.Google.ClientID = v
	}
	if v := os.Getenv(EnvClientSecret); v != "" {
		c.Google.ClientSecret = v
	}
}

func expandHome(path, home string) string {
	if len(path) > 1 && path[0] == '~' && path[1] == '/' {
		return filepath.Join(home, path[2:])
	}
	return path
}

// Validate checks every section.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Workday),
		validation.Field(&c.Slots),
		validation.Field(&c.Slides),
	)
}

// Validate checks the clock format, their order and the time zone.
func (w Workday) Validate() error {
	return validation.ValidateStruct(&w,
		validation.Field(&w.Start, validation.Required, validation.By(isClock)),
		validation.Field(&w.End, validation.Required, validation.By(isClock), validation.By(w.after)),
		validation.Field(&w.Timezone, validation.By(isZone)),
	)
}

func (w Workday) after(value any) error {
	start, err := calendar.ParseClock(w.Start)
	if err != nil {
		return nil
	}
	end, err := calendar.ParseClock(value.(string))
	if err != nil {
		return nil
	}
	if !start.Before(end) {
		return validation.NewError("validation_workday_order", "must be later than start")
	}
	return nil
}

// Validate checks the search defaults.
func (s Slots) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.MinDuration, validation.Required, validation.Min(1)),
		validation.Field(&s.Source, validation.Required, validation.In(SourceApple, SourceGoogle, SourceFile)),
		validation.Field(&s.Account, validation.Match(accountName)),
	)
}

// Validate checks the presentation target.
func (s Slides) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Target, validation.Required, validation.In(string(presentation.Keynote), string(presentation.PowerPoint))),
	)
}

func isClock(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	if _, err := calendar.ParseClock(s); err != nil {
		return validation.NewError("validation_is_clock", "must be a time of day in HH:MM format")
	}
	return nil
}

func isZone(value any) error {
	s, _ := value.(string)
	if _, err := loadLocation(s); err != nil {
		return validation.NewError("validation_is_timezone", "must be an IANA time zone name")
	}
	return nil
}

func loadLocation(name string) (*time.Location, error) {
	if name == "" || name == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(name)
}

// Location returns the workday time zone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := loadLocation(c.Workday.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load time zone %q: %w", c.Workday.Timezone, err)
	}
	return loc, nil
}

// WorkdayClocks returns the parsed workday bounds.
func (c *Config) WorkdayClocks() (start, end calendar.Clock, err error) {
	if start, err = calendar.ParseClock(c.Workday.Start); err != nil {
		return start, end, err
	}
	end, err = calendar.ParseClock(c.Workday.End)
	return start, end, err
}

// GoogleCredentials returns the OAuth client credentials.
func (c *Config) GoogleCredentials() google.Credentials {
	return google.Credentials{
		ClientID:     c.Google.ClientID,
		ClientSecret: c.Google.ClientSecret,
	}
}
