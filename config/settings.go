package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Settings is the YAML-configurable part of an export run.
type Settings struct {
	// Version is the target engine generation (prime, pots, moul).
	Version string `yaml:"version"`

	// TexturesPage, when set, collects every converted bitmap into one
	// shared page of that name instead of each consumer's own page.
	TexturesPage string `yaml:"textures_page"`

	// OutputDir receives the serialized page files.
	OutputDir string `yaml:"output_dir"`

	// LogLevel: debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
	// LogFile enables rotated file logging when non-empty.
	LogFile string `yaml:"log_file"`

	parsedVersion PlasmaVersion
}

func DefaultSettings() *Settings {
	return &Settings{
		Version:      "moul",
		TexturesPage: "Textures",
		OutputDir:    "dat",
		LogLevel:     "info",
	}
}

func LoadSettings(path string) (*Settings, error) {
	s := DefaultSettings()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read settings %q", path)
	}
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, errors.Wrapf(err, "failed to parse settings %q", path)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Settings) Validate() error {
	v, err := ParseVersion(s.Version)
	if err != nil {
		return err
	}
	s.parsedVersion = v
	return nil
}

func (s *Settings) PlasmaVersion() PlasmaVersion {
	if s.parsedVersion == PVUnknown {
		if v, err := ParseVersion(s.Version); err == nil {
			s.parsedVersion = v
		}
	}
	return s.parsedVersion
}
