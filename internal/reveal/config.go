package reveal

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// CompactEducationCardDelay is the shorter card delay used by the alternate
// page script. The default keeps the longer wait so the photo animation has
// mostly finished before the card moves.
const CompactEducationCardDelay = 200 * time.Millisecond

// Config holds the per-section thresholds and timings of the page.
type Config struct {
	FrameInterval time.Duration      `yaml:"frame_interval"`
	Hero          HeroConfig         `yaml:"hero"`
	Skills        SkillsConfig       `yaml:"skills"`
	Certificates  CertificatesConfig `yaml:"certificates"`
	Education     EducationConfig    `yaml:"education"`
}

type HeroConfig struct {
	ID             string        `yaml:"id"`
	Threshold      float64       `yaml:"threshold"`
	TextOffset     float64       `yaml:"text_offset"`
	MockupOffset   float64       `yaml:"mockup_offset"`
	MockupGap      time.Duration `yaml:"mockup_gap"`
	TypingInterval time.Duration `yaml:"typing_interval"`
	Transition     string        `yaml:"transition"`
}

type SkillsConfig struct {
	ID        string        `yaml:"id"`
	Threshold float64       `yaml:"threshold"`
	Duration  time.Duration `yaml:"duration"`
	Stagger   time.Duration `yaml:"stagger"`
}

type CertificatesConfig struct {
	ID        string        `yaml:"id"`
	Threshold float64       `yaml:"threshold"`
	Stagger   time.Duration `yaml:"stagger"`
}

type EducationConfig struct {
	ID         string        `yaml:"id"`
	Threshold  float64       `yaml:"threshold"`
	PhotoDelay time.Duration `yaml:"photo_delay"`
	CardDelay  time.Duration `yaml:"card_delay"`
}

// DefaultConfig returns the timings the portfolio page ships with.
func DefaultConfig() Config {
	return Config{
		FrameInterval: DefaultFrameInterval,
		Hero: HeroConfig{
			ID:             "hero",
			Threshold:      0.35,
			TextOffset:     50,
			MockupOffset:   60,
			MockupGap:      120 * time.Millisecond,
			TypingInterval: 60 * time.Millisecond,
			Transition:     "transform .7s cubic-bezier(.2,.8,.2,1), opacity .7s",
		},
		Skills: SkillsConfig{
			ID:        "skills",
			Threshold: 0.3,
			Duration:  1200 * time.Millisecond,
			Stagger:   80 * time.Millisecond,
		},
		Certificates: CertificatesConfig{
			ID:        "certificates",
			Threshold: 0.25,
			Stagger:   260 * time.Millisecond,
		},
		Education: EducationConfig{
			ID:         "education",
			Threshold:  0.25,
			PhotoDelay: 0,
			CardDelay:  800 * time.Millisecond,
		},
	}
}

// LoadConfig reads a YAML file over DefaultConfig; keys absent from the file
// keep their defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path) //nolint:gosec // operator-supplied path
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, ErrConfigNotFound
		}
		return cfg, fmt.Errorf("read sequence config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("decode sequence config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	thresholds := map[string]float64{
		"hero":         c.Hero.Threshold,
		"skills":       c.Skills.Threshold,
		"certificates": c.Certificates.Threshold,
		"education":    c.Education.Threshold,
	}
	for _, name := range []string{"hero", "skills", "certificates", "education"} {
		if v := thresholds[name]; v <= 0 || v > 1 {
			return fmt.Errorf("%s threshold %g: %w", name, v, ErrInvalidThreshold)
		}
	}
	delays := []struct {
		name string
		d    time.Duration
	}{
		{"hero.mockup_gap", c.Hero.MockupGap},
		{"skills.stagger", c.Skills.Stagger},
		{"certificates.stagger", c.Certificates.Stagger},
		{"education.photo_delay", c.Education.PhotoDelay},
		{"education.card_delay", c.Education.CardDelay},
	}
	for _, d := range delays {
		if d.d < 0 {
			return fmt.Errorf("%s %v: %w", d.name, d.d, ErrInvalidDelay)
		}
	}
	if c.Hero.TypingInterval <= 0 {
		return fmt.Errorf("hero.typing_interval %v: %w", c.Hero.TypingInterval, ErrInvalidDuration)
	}
	if c.Skills.Duration <= 0 {
		return fmt.Errorf("skills.duration %v: %w", c.Skills.Duration, ErrInvalidDuration)
	}
	if c.FrameInterval <= 0 {
		return fmt.Errorf("frame_interval %v: %w", c.FrameInterval, ErrInvalidDuration)
	}
	return nil
}

// MarshalYAML writes durations in their string form ("800ms") so a dumped
// config loads back through LoadConfig.
func (c Config) MarshalYAML() (any, error) {
	d := func(v time.Duration) string { return v.String() }
	return map[string]any{
		"frame_interval": d(c.FrameInterval),
		"hero": map[string]any{
			"id":              c.Hero.ID,
			"threshold":       c.Hero.Threshold,
			"text_offset":     c.Hero.TextOffset,
			"mockup_offset":   c.Hero.MockupOffset,
			"mockup_gap":      d(c.Hero.MockupGap),
			"typing_interval": d(c.Hero.TypingInterval),
			"transition":      c.Hero.Transition,
		},
		"skills": map[string]any{
			"id":        c.Skills.ID,
			"threshold": c.Skills.Threshold,
			"duration":  d(c.Skills.Duration),
			"stagger":   d(c.Skills.Stagger),
		},
		"certificates": map[string]any{
			"id":        c.Certificates.ID,
			"threshold": c.Certificates.Threshold,
			"stagger":   d(c.Certificates.Stagger),
		},
		"education": map[string]any{
			"id":          c.Education.ID,
			"threshold":   c.Education.Threshold,
			"photo_delay": d(c.Education.PhotoDelay),
			"card_delay":  d(c.Education.CardDelay),
		},
	}, nil
}

// SectionManifest is the browser-facing description of one section.
type SectionManifest struct {
	ID        string           `json:"id"`
	Threshold float64          `json:"threshold"`
	DelaysMs  map[string]int64 `json:"delaysMs"`
}

// Manifest returns the config in milliseconds, ordered as the page lays
// the sections out.
func (c Config) Manifest() []SectionManifest {
	ms := func(d time.Duration) int64 { return d.Milliseconds() }
	return []SectionManifest{
		{ID: c.Hero.ID, Threshold: c.Hero.Threshold, DelaysMs: map[string]int64{
			"mockupGap": ms(c.Hero.MockupGap),
			"typing":    ms(c.Hero.TypingInterval),
		}},
		{ID: c.Skills.ID, Threshold: c.Skills.Threshold, DelaysMs: map[string]int64{
			"duration": ms(c.Skills.Duration),
			"stagger":  ms(c.Skills.Stagger),
		}},
		{ID: c.Certificates.ID, Threshold: c.Certificates.Threshold, DelaysMs: map[string]int64{
			"stagger": ms(c.Certificates.Stagger),
		}},
		{ID: c.Education.ID, Threshold: c.Education.Threshold, DelaysMs: map[string]int64{
			"photo": ms(c.Education.PhotoDelay),
			"card":  ms(c.Education.CardDelay),
		}},
	}
}
