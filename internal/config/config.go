package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the tunables a deployment adjusts without a rebuild: how
// the reactor paces its tick, how the framer bounds packet sizes, and
// where the server listens.
type Config struct {
	Listen string `yaml:"listen"`

	ReactorTickMs int `yaml:"reactor_tick_ms"`

	MaxPacketSize int `yaml:"max_packet_size"`

	Telemetry Telemetry `yaml:"telemetry"`
}

// Telemetry controls where structured connection/audit logs are written.
type Telemetry struct {
	Directory      string `yaml:"directory"`
	// RotateEveryTicks is checked by Validate but read nowhere else; the
	// telemetry writer rotates its files on each UTC hour boundary.
	RotateEveryTicks int  `yaml:"rotate_every_ticks"`
}

// Default returns the configuration used when no file is supplied.
func Default() Config {
	return Config{
		Listen:        ":25565",
		ReactorTickMs: 50,
		MaxPacketSize: 1 << 21,
		Telemetry: Telemetry{
			Directory:        "logs",
			RotateEveryTicks: 72000, // roughly one hour at 20 ticks/sec
		},
	}
}

// Load reads and parses a YAML configuration file, starting from Default
// so a partial file only overrides the fields it sets.
func Load(path string) (Config, error) {
	c := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return c, err
	}
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return c, fmt.Errorf("config: %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return c, err
	}
	return c, nil
}

// Validate rejects settings the rest of the system can't act on.
func (c Config) Validate() error {
	if c.ReactorTickMs <= 0 {
		return fmt.Errorf("config: reactor_tick_ms must be positive, got %d", c.ReactorTickMs)
	}
	if c.MaxPacketSize <= 0 {
		return fmt.Errorf("config: max_packet_size must be positive, got %d", c.MaxPacketSize)
	}
	if c.Telemetry.RotateEveryTicks <= 0 {
		return fmt.Errorf("config: telemetry.rotate_every_ticks must be positive, got %d", c.Telemetry.RotateEveryTicks)
	}
	return nil
}

// TickInterval converts the millisecond tuning value to a time.Duration
// for reactor.New.
func (c Config) TickInterval() time.Duration {
	return time.Duration(c.ReactorTickMs) * time.Millisecond
}
