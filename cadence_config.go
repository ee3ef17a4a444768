package cadence

import (
	"log/slog"
	"time"

	"github.com/eleven-am/cadence/internal/domain"
)

// Config controls an engine's scheduling and persistence behavior. Zero
// values fall back to defaults; see DefaultConfig.
type Config = domain.Config

// DefaultConfig returns a config with the stock limits: in-memory store,
// eight concurrent tasks, five-minute task timeout, one-hour approval wait.
func DefaultConfig() *Config {
	return domain.DefaultConfig()
}

// ConfigBuilder assembles a Config fluently.
//
//	config := cadence.NewConfigBuilder().
//		WithDataDir("/var/lib/cadence").
//		WithMaxConcurrentTasks(16).
//		Build()
type ConfigBuilder struct {
	config *Config
}

func NewConfigBuilder() *ConfigBuilder {
	return &ConfigBuilder{config: DefaultConfig()}
}

func (b *ConfigBuilder) WithLogger(logger *slog.Logger) *ConfigBuilder {
	b.config.Logger = logger
	return b
}

// WithDataDir enables the durable badger-backed state store at the given
// directory.
func (b *ConfigBuilder) WithDataDir(dataDir string) *ConfigBuilder {
	b.config.DataDir = dataDir
	return b
}

func (b *ConfigBuilder) WithMaxConcurrentTasks(limit int) *ConfigBuilder {
	b.config.MaxConcurrentTasks = limit
	return b
}

func (b *ConfigBuilder) WithDefaultTaskTimeout(timeout time.Duration) *ConfigBuilder {
	b.config.DefaultTaskTimeout = timeout
	return b
}

func (b *ConfigBuilder) WithApprovalTimeout(timeout time.Duration) *ConfigBuilder {
	b.config.ApprovalTimeout = timeout
	return b
}

func (b *ConfigBuilder) WithHandlerTimeout(timeout time.Duration) *ConfigBuilder {
	b.config.HandlerTimeout = timeout
	return b
}

// WithCheckpointEveryTask toggles per-task snapshot persistence. Terminal
// snapshots are always written.
func (b *ConfigBuilder) WithCheckpointEveryTask(enabled bool) *ConfigBuilder {
	b.config.CheckpointEveryTask = enabled
	return b
}

func (b *ConfigBuilder) Build() *Config {
	return b.config.Normalized()
}
