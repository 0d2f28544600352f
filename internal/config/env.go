package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// EnvPrefix prefixes every environment variable the runner reads.
const EnvPrefix = "EMS_"

// LookupFunc looks up an environment variable.
type LookupFunc func(key string) (string, bool)

// EnvLookup returns a lookup over the process environment, falling back to
// the variables of dotenvPath. A missing dotenv file is not an error.
// Process variables take precedence.
func EnvLookup(dotenvPath string) (LookupFunc, error) {
	vars := map[string]string{}
	if dotenvPath != "" {
		read, err := godotenv.Read(dotenvPath)
		switch {
		case err == nil:
			vars = read
		case errors.Is(err, fs.ErrNotExist):
		default:
			return nil, fmt.Errorf("read %s: %w", dotenvPath, err)
		}
	}

	return func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := vars[key]
		return v, ok
	}, nil
}

// ApplyEnv overlays EMS_* variables onto c.
func (c *Config) ApplyEnv(lookup LookupFunc) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok {
			*dst = v
		}
	}
	num := func(name string, dst *int) error {
		v, ok := lookup(EnvPrefix + name)
		if !ok {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s%s: invalid integer %q", EnvPrefix, name, v)
		}
		*dst = n
		return nil
	}

	str("DIRECTORY", &c.Directory)
	str("JOBS_EXT", &c.JobsExt)
	str("OUT_EXT", &c.OutExt)
	str("JOURNAL", &c.Journal)
	str("AMQP_URL", &c.AMQPURL)
	str("AMQP_QUEUE", &c.AMQPQueue)

	if err := num("MAX_PROCESSES", &c.MaxProcesses); err != nil {
		return err
	}
	if err := num("MAX_THREADS", &c.MaxThreads); err != nil {
		return err
	}
	if err := num("MAX_SEATS", &c.MaxSeats); err != nil {
		return err
	}

	if v, ok := lookup(EnvPrefix + "ACCESS_DELAY"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%sACCESS_DELAY: %w", EnvPrefix, err)
		}
		c.AccessDelay = d
	}
	return nil
}
