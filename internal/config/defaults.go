package config

import (
	"github.com/guilhermedcampos/event-management-system/internal/ems"
	"github.com/guilhermedcampos/event-management-system/internal/notify"
)

const (
	DefaultJobsExt = ".jobs"
	DefaultOutExt  = ".out"
)

// Default returns the built-in settings: one script at a time, one worker
// per script, no access delay, no journal and no broker.
func Default() *Config {
	return &Config{
		MaxProcesses: 1,
		MaxThreads:   1,
		JobsExt:      DefaultJobsExt,
		OutExt:       DefaultOutExt,
		MaxSeats:     ems.DefaultMaxSeats,
		AMQPQueue:    notify.DefaultQueue,
	}
}
