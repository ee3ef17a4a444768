package domain

import (
	"log/slog"
	"time"
)

type Config struct {
	Logger *slog.Logger `json:"-"`

	// DataDir enables the durable badger-backed state store when set;
	// otherwise snapshots are kept in memory.
	DataDir string `json:"data_dir,omitempty"`

	MaxConcurrentTasks int           `json:"max_concurrent_tasks"`
	DefaultTaskTimeout time.Duration `json:"default_task_timeout"`
	ApprovalTimeout    time.Duration `json:"approval_timeout"`
	HandlerTimeout     time.Duration `json:"handler_timeout"`

	// CheckpointEveryTask persists a snapshot after every task completion
	// instead of only at terminal status.
	CheckpointEveryTask bool `json:"checkpoint_every_task"`
}

func DefaultConfig() *Config {
	return &Config{
		Logger:              slog.Default(),
		MaxConcurrentTasks:  8,
		DefaultTaskTimeout:  5 * time.Minute,
		ApprovalTimeout:     time.Hour,
		HandlerTimeout:      30 * time.Second,
		CheckpointEveryTask: true,
	}
}

// Normalized returns a copy with zero values replaced by defaults.
func (c *Config) Normalized() *Config {
	defaults := DefaultConfig()
	if c == nil {
		return defaults
	}

	normalized := *c
	if normalized.Logger == nil {
		normalized.Logger = slog.Default()
	}
	if normalized.MaxConcurrentTasks <= 0 {
		normalized.MaxConcurrentTasks = defaults.MaxConcurrentTasks
	}
	if normalized.DefaultTaskTimeout <= 0 {
		normalized.DefaultTaskTimeout = defaults.DefaultTaskTimeout
	}
	if normalized.ApprovalTimeout <= 0 {
		normalized.ApprovalTimeout = defaults.ApprovalTimeout
	}
	if normalized.HandlerTimeout <= 0 {
		normalized.HandlerTimeout = defaults.HandlerTimeout
	}

	return &normalized
}
