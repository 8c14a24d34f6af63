package deferred

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Settings configures the demo application.
type Settings struct {
	Width      int     `yaml:"width"`
	Height     int     `yaml:"height"`
	Title      string  `yaml:"title"`
	Hz         float64 `yaml:"hz"`
	LightCount int     `yaml:"light_count"`
	Seed       int64   `yaml:"seed"`
	ShowFPS    bool    `yaml:"show_fps"`
	ShowPos    bool    `yaml:"show_pos"`
	Debug      bool    `yaml:"debug"`
	Model      string  `yaml:"gltf_model"`
}

func DefaultSettings() Settings {
	return Settings{
		Width:      1280,
		Height:     720,
		Title:      "deferred",
		Hz:         DefaultHz,
		LightCount: 16,
		Seed:       1,
	}
}

// LoadSettings reads a YAML file over DefaultSettings. Keys missing from the
// file keep their default value.
func LoadSettings(path string) (Settings, error) {
	s := DefaultSettings()
	data, err := os.ReadFile(path)
	if err != nil {
		return s, fmt.Errorf("reading settings file: %w", err)
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("parsing settings file: %w", err)
	}
	return s, s.Validate()
}

func (s Settings) Validate() error {
	if s.Width <= 0 || s.Height <= 0 {
		return fmt.Errorf("invalid window size %dx%d", s.Width, s.Height)
	}
	if s.Hz <= 0 {
		return fmt.Errorf("invalid frequency %v", s.Hz)
	}
	if s.LightCount < 0 {
		return fmt.Errorf("invalid light count %d", s.LightCount)
	}
	return nil
}
