// Package config assembles runner settings from defaults, an optional YAML
// file, the environment and command-line overrides, in that order.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaCUE string

// Config holds every runner setting.
type Config struct {
	Directory    string        `yaml:"directory" json:"directory" validate:"required"`
	MaxProcesses int           `yaml:"max_processes" json:"max_processes" validate:"gte=1,lte=1024"`
	MaxThreads   int           `yaml:"max_threads" json:"max_threads" validate:"gte=1,lte=1024"`
	AccessDelay  time.Duration `yaml:"access_delay" json:"access_delay" validate:"gte=0"`
	JobsExt      string        `yaml:"jobs_ext" json:"jobs_ext" validate:"required,startswith=.,nefield=OutExt"`
	OutExt       string        `yaml:"out_ext" json:"out_ext" validate:"required,startswith=."`
	MaxSeats     int           `yaml:"max_seats" json:"max_seats" validate:"gte=1"`
	Journal      string        `yaml:"journal" json:"journal,omitempty"`
	AMQPURL      string        `yaml:"amqp_url" json:"amqp_url,omitempty" validate:"omitempty,url"`
	AMQPQueue    string        `yaml:"amqp_queue" json:"amqp_queue" validate:"required"`
}

// ValidationErrors lists every field that failed validation.
type ValidationErrors []string

func (v ValidationErrors) Error() string {
	return fmt.Sprintf("invalid config: %d error(s): [%s]", len(v), strings.Join(v, "; "))
}

// Validate checks the merged configuration.
func (c *Config) Validate() error {
	err := validator.New().Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate config: %w", err)
	}
	msgs := make(ValidationErrors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, describe(fe))
	}
	return msgs
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "gte", "lte", "startswith":
		return fmt.Sprintf("%s must satisfy %s=%s (got %v)", fe.Field(), fe.Tag(), fe.Param(), fe.Value())
	case "nefield":
		return fmt.Sprintf("%s must differ from %s", fe.Field(), fe.Param())
	case "url":
		return fmt.Sprintf("%s is not a valid URL", fe.Field())
	default:
		return fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
	}
}

// LoadFile overlays the YAML file at path onto c.
//
// The document is checked against the embedded CUE schema first, so type
// and range errors are reported with the offending field before decoding.
// Unknown keys are rejected.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := c.load(data); err != nil {
		return fmt.Errorf("config %s: %w", path, err)
	}
	return nil
}

func (c *Config) load(data []byte) error {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse yaml: %w", err)
	}
	if len(doc) == 0 {
		return nil
	}
	if err := checkSchema(doc); err != nil {
		return err
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode yaml: %w", err)
	}
	return nil
}

func checkSchema(doc map[string]any) error {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Config"))

	v := def.Unify(ctx.Encode(doc))
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("schema: %w", err)
	}
	return nil
}
