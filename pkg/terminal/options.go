package terminal

import "github.com/rs/zerolog"

// Theme captures optional message prefixes applied by the session.
type Theme struct {
	InfoPrefix  string
	ErrorPrefix string
}

// DefaultTheme is used when no theme is configured.
var DefaultTheme = Theme{ErrorPrefix: "error: "}

// Option configures a Session.
type Option func(*Session)

// WithPromptDriver overrides the prompt driver.
func WithPromptDriver(driver PromptDriver) Option {
	return func(s *Session) {
		if driver != nil {
			s.driver = driver
		}
	}
}

// WithTheme applies message prefixes.
func WithTheme(theme Theme) Option {
	return func(s *Session) {
		s.theme = theme
	}
}

// WithAvatarLimit bounds avatar files in bytes; zero disables the limit.
func WithAvatarLimit(maxBytes int64) Option {
	return func(s *Session) {
		if maxBytes >= 0 {
			s.avatarMax = maxBytes
		}
	}
}

// WithLogger sets the session logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}
