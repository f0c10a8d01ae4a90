package main

import (
	"time"

	"github.com/pedrodeoliamarante/shorts-blocker-app/internal/model"
)

const (
	defaultBindHost            = "127.0.0.1"
	defaultTCPPort             = 4100
	defaultAPIPort             = 3000
	defaultMuxBufferSize       = DefaultMuxBuffer
	defaultQueryTimeout        = 30 * time.Second
	defaultInsertBatchSize     = 200
	defaultInsertFlushInterval = 200 * time.Millisecond
	defaultInsertFlushQueue    = 16
	defaultRetentionDays       = 30 // days, 0 = disabled
)

// appConfig is internal runtime configuration.
// It is package-private to keep defaults and shape local to the CLI entrypoint.
type appConfig struct {
	Cooldown            time.Duration `mapstructure:"cooldown"`
	ReelClickWindow     time.Duration `mapstructure:"reel-click-window"`
	ExploreWindow       time.Duration `mapstructure:"explore-window"`
	Action              string        `mapstructure:"action"`
	DryRun              bool          `mapstructure:"dry-run"`
	AdbPath             string        `mapstructure:"adb-path"`
	AdbSerial           string        `mapstructure:"adb-serial"`
	TCPEnabled          bool          `mapstructure:"tcp-enabled"`
	TCPPort             int           `mapstructure:"tcp-port"`
	TCPAddr             string        `mapstructure:"tcp-addr"`
	MuxBufferSize       int           `mapstructure:"mux-buffer-size"`
	DBPath              string        `mapstructure:"db-path"`
	APIEnabled          bool          `mapstructure:"api-enabled"`
	APIPort             int           `mapstructure:"api-port"`
	APIAddr             string        `mapstructure:"api-addr"`
	QueryTimeout        time.Duration `mapstructure:"query-timeout"`
	InsertBatchSize     int           `mapstructure:"insert-batch-size"`
	InsertFlushInterval time.Duration `mapstructure:"insert-flush-interval"`
	InsertFlushQueue    int           `mapstructure:"insert-flush-queue-size"`
	RetentionDays       int           `mapstructure:"decision-retention"`
	ConfigPath          string        `mapstructure:"-"` // not from config file
}

// blockAction returns the configured action, validated.
func (c appConfig) blockAction() model.ActionKind {
	kind := model.ActionKind(c.Action)
	if !kind.Valid() {
		return model.DefaultAction
	}
	return kind
}
