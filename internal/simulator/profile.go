package simulator

import (
	"fmt"
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// Metric describes how one simulated measurement evolves: it starts at Base,
// moves by Drift every tick and is perturbed by up to ±Jitter.
type Metric struct {
	Base   float64 `yaml:"base"`
	Jitter float64 `yaml:"jitter"`
	Drift  float64 `yaml:"drift"`
}

// TankProfile configures the three measurements of one tank.
type TankProfile struct {
	TDS       Metric `yaml:"tds"`
	PH        Metric `yaml:"ph"`
	Turbidity Metric `yaml:"turbidity"`
}

// Profile is the simulator configuration, usually read from a YAML file.
type Profile struct {
	// Target is the base URL of the water quality API.
	Target string `yaml:"target"`

	// Schedule is a cron spec or descriptor, e.g. "@every 5s".
	Schedule string `yaml:"schedule"`

	// Timeout bounds each POST /data request.
	Timeout time.Duration `yaml:"timeout"`

	Tank1 TankProfile `yaml:"tank1"`
	Tank2 TankProfile `yaml:"tank2"`
}

// DefaultProfile mimics a clean rooftop tank and a slowly fouling
// underground one.
func DefaultProfile() Profile {
	return Profile{
		Target:   "http://localhost:8000",
		Schedule: "@every 5s",
		Timeout:  5 * time.Second,
		Tank1: TankProfile{
			TDS:       Metric{Base: 350, Jitter: 20, Drift: 0.5},
			PH:        Metric{Base: 7.4, Jitter: 0.1},
			Turbidity: Metric{Base: 0.8, Jitter: 0.2, Drift: 0.005},
		},
		Tank2: TankProfile{
			TDS:       Metric{Base: 700, Jitter: 40, Drift: 2},
			PH:        Metric{Base: 8.2, Jitter: 0.2, Drift: 0.002},
			Turbidity: Metric{Base: 3, Jitter: 0.5, Drift: 0.03},
		},
	}
}

// LoadProfile reads a YAML profile. Keys missing from the file keep their
// DefaultProfile values.
func LoadProfile(path string) (Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("reading profile %s: %w", path, err)
	}
	return ParseProfile(data)
}

// ParseProfile decodes a YAML profile on top of DefaultProfile.
func ParseProfile(data []byte) (Profile, error) {
	p := DefaultProfile()
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Profile{}, fmt.Errorf("parsing profile: %w", err)
	}
	if err := p.Validate(); err != nil {
		return Profile{}, err
	}
	return p, nil
}

// Validate checks the target and schedule.
func (p Profile) Validate() error {
	if p.Target == "" {
		return fmt.Errorf("profile: target is required")
	}
	if _, err := cron.ParseStandard(p.Schedule); err != nil {
		return fmt.Errorf("profile: invalid schedule %q: %w", p.Schedule, err)
	}
	if p.Timeout <= 0 {
		return fmt.Errorf("profile: timeout must be positive")
	}
	return nil
}
