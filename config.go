package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"reflect"
	"time"
	"unicode"

	"github.com/naoina/toml"
)

// Config is the full configuration of the simulator service.
type Config struct {
	Server ServerConfig
	Engine EngineConfig
	Log    LogConfig
}

type ServerConfig struct {
	Addr            string
	ReadTimeout     Duration
	WriteTimeout    Duration
	ShutdownTimeout Duration
	MaxBodyBytes    int64
	AllowedOrigins  []string
}

type EngineConfig struct {
	// MaxQubits caps the register size of a request. Operators are 2^n x 2^n.
	MaxQubits int
}

type LogConfig struct {
	Level      string // debug, info, warn, error
	Format     string // text or json
	File       string // empty means stderr
	MaxSizeMB  int
	MaxBackups int
	Compress   bool
}

// DefaultConfig contains the settings used when nothing else is given.
var DefaultConfig = Config{
	Server: ServerConfig{
		Addr:            ":5000",
		ReadTimeout:     Duration(10 * time.Second),
		WriteTimeout:    Duration(30 * time.Second),
		ShutdownTimeout: Duration(5 * time.Second),
		MaxBodyBytes:    1 << 20,
		AllowedOrigins:  []string{"*"},
	},
	Engine: EngineConfig{
		MaxQubits: 8,
	},
	Log: LogConfig{
		Level:      "info",
		Format:     "text",
		MaxSizeMB:  100,
		MaxBackups: 3,
	},
}

// Duration is a time.Duration written in TOML as a string such as "2s" or "1m30s".
type Duration time.Duration

func (d Duration) String() string {
	return time.Duration(d).String()
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Keys are the field names verbatim. Unknown keys are rejected.
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string {
		return key
	},
	FieldToKey: func(rt reflect.Type, field string) string {
		return field
	},
	MissingField: func(rt reflect.Type, field string) error {
		link := ""
		if unicode.IsUpper(rune(rt.Name()[0])) && rt.PkgPath() != "main" {
			link = fmt.Sprintf(", see https://pkg.go.dev/%s#%s for available fields", rt.PkgPath(), rt.Name())
		}
		return fmt.Errorf("field '%s' is not defined in %s%s", field, rt.String(), link)
	},
}

// LoadConfig reads a TOML file over the defaults.
func LoadConfig(file string, cfg *Config) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	err = tomlSettings.NewDecoder(bufio.NewReader(f)).Decode(cfg)
	// Add file name to errors that have a line number.
	var lineErr *toml.LineError
	if errors.As(err, &lineErr) {
		err = fmt.Errorf("%s, %w", file, err)
	}
	return err
}

// Validate checks the settings that would otherwise fail late.
func (c *Config) Validate() error {
	if c.Engine.MaxQubits < 1 || c.Engine.MaxQubits > MaxRegisterQubits {
		return fmt.Errorf("engine: MaxQubits must be between 1 and %d, got %d", MaxRegisterQubits, c.Engine.MaxQubits)
	}
	if c.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("server: MaxBodyBytes must be positive, got %d", c.Server.MaxBodyBytes)
	}
	return nil
}

// DumpConfig writes cfg as TOML.
func DumpConfig(cfg *Config) ([]byte, error) {
	return tomlSettings.Marshal(cfg)
}
