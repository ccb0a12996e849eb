package grove

import "github.com/rs/zerolog"

// Option configures a container at creation time. Children created with
// [Container.NewChild] inherit the logger and metrics of their parent unless
// an option overrides them.
type Option func(*Container)

// WithName sets a human-readable scope name used in log lines.
func WithName(name string) Option {
	return func(c *Container) {
		c.name = name
	}
}

// WithLogger sets the logger used for container diagnostics. The default is
// [zerolog.Nop].
func WithLogger(l zerolog.Logger) Option {
	return func(c *Container) {
		c.logger = l
	}
}

// WithMetrics records construction, disposal and resolution failures on m.
// A nil m disables metrics.
func WithMetrics(m *Metrics) Option {
	return func(c *Container) {
		c.metrics = m
	}
}
