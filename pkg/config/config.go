package config

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Config holds all configuration for a gallery build. Keys mirror the
// _config.json format so existing gallery trees keep working.
type Config struct {
	SiteTitle         string    `json:"site_title" toml:"site_title"`
	ThemeDir          string    `json:"theme_dir" toml:"theme_dir"`
	Resolution        []int     `json:"resolution" toml:"resolution"`
	JPEGQuality       int       `json:"jpeg_quality" toml:"jpeg_quality"`
	Autorotate        bool      `json:"autorotate" toml:"autorotate"`
	VideoFormats      []string  `json:"video_formats" toml:"video_formats"`
	Bitrate           []float64 `json:"bitrate" toml:"bitrate"`
	BitrateMaxRatio   float64   `json:"bitrate_maxratio" toml:"bitrate_maxratio"`
	DisableAudio      bool      `json:"disable_audio" toml:"disable_audio"`
	ExtractColors     bool      `json:"extract_colors" toml:"extract_colors"`
	PaletteBackend    string    `json:"palette_backend" toml:"palette_backend"`
	BackgroundColor   string    `json:"backgroundcolor" toml:"backgroundcolor"`
	TextColor         string    `json:"textcolor" toml:"textcolor"`
	DefaultPalette    []string  `json:"default_palette" toml:"default_palette"`
	OverrideTextColor bool      `json:"override_textcolor" toml:"override_textcolor"`
	TextToggle        bool      `json:"text_toggle" toml:"text_toggle"`
	SocialButton      bool      `json:"social_button" toml:"social_button"`
	DownloadButton    bool      `json:"download_button" toml:"download_button"`
	DownloadReadme    string    `json:"download_readme" toml:"download_readme"`
	DisqusShortname   string    `json:"disqus_shortname" toml:"disqus_shortname"`
	SequenceKeyword   string    `json:"sequence_keyword" toml:"sequence_keyword"`
	SequenceFramerate int       `json:"sequence_framerate" toml:"sequence_framerate"`
	H264EncodeSpeed   string    `json:"h264_encodespeed" toml:"h264_encodespeed"`
	VP9EncodeSpeed    int       `json:"vp9_encodespeed" toml:"vp9_encodespeed"`
	FFmpegThreads     int       `json:"ffmpeg_threads" toml:"ffmpeg_threads"`
	Markdown          bool      `json:"markdown" toml:"markdown"`
	OutputDir         string    `json:"output_dir" toml:"output_dir"`
	MetricsFile       string    `json:"metrics_file" toml:"metrics_file"`

	// Draft is set from the command line, never from a file
	Draft bool `json:"-" toml:"-"`
}

const (
	// JSONFileName is the config file read from the gallery root
	JSONFileName = "_config.json"
	// TOMLFileName is the alternative config file read from the gallery root
	TOMLFileName = "_config.toml"
)

// ErrInvalidConfig is returned when a loaded configuration cannot drive a build
var ErrInvalidConfig = errors.New("invalid configuration")

// Default returns the built-in configuration
func Default() Config {
	return Config{
		SiteTitle:         "My Awesome Photos",
		ThemeDir:          "theme1",
		Resolution:        []int{3840, 2560, 1920, 1280, 1024, 640},
		JPEGQuality:       92,
		Autorotate:        true,
		VideoFormats:      []string{"h264", "vp8"},
		Bitrate:           []float64{40, 24, 12, 7, 4, 2},
		BitrateMaxRatio:   2,
		DisableAudio:      true,
		ExtractColors:     true,
		PaletteBackend:    "imagemagick",
		BackgroundColor:   "#000000",
		TextColor:         "#ffffff",
		DefaultPalette:    []string{"#000000", "#222222", "#444444", "#666666", "#999999", "#cccccc", "#ffffff"},
		OverrideTextColor: true,
		TextToggle:        true,
		SocialButton:      true,
		DownloadButton:    false,
		DownloadReadme:    "All rights reserved",
		DisqusShortname:   "",
		SequenceKeyword:   "imagesequence",
		SequenceFramerate: 24,
		H264EncodeSpeed:   "veryslow",
		VP9EncodeSpeed:    1,
		FFmpegThreads:     0,
		Markdown:          true,
		OutputDir:         "_site",
	}
}

// Load reads the optional config file at the gallery root and overlays it on
// the defaults. Keys absent from the file keep their default; unknown keys
// are ignored. It returns the path of the file that was read, or "".
func Load(topdir string) (*Config, string, error) {
	cfg := Default()

	jsonPath := filepath.Join(topdir, JSONFileName)
	tomlPath := filepath.Join(topdir, TOMLFileName)

	var source string
	switch {
	case fileExists(jsonPath):
		data, err := os.ReadFile(jsonPath)
		if err != nil {
			return nil, "", fmt.Errorf("read config: %w", err)
		}
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, "", fmt.Errorf("parse config %s: %w", jsonPath, err)
		}
		source = jsonPath
	case fileExists(tomlPath):
		file, err := os.Open(tomlPath)
		if err != nil {
			return nil, "", fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		if err := toml.NewDecoder(file).Decode(&cfg); err != nil {
			return nil, "", fmt.Errorf("parse config %s: %w", tomlPath, err)
		}
		source = tomlPath
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return &cfg, source, nil
}

// Validate checks the values a build cannot run without
func (c *Config) Validate() error {
	if len(c.Resolution) == 0 {
		return fmt.Errorf("%w: resolution ladder is empty", ErrInvalidConfig)
	}
	for _, res := range c.Resolution {
		if res <= 0 {
			return fmt.Errorf("%w: resolution %d must be positive", ErrInvalidConfig, res)
		}
	}
	if strings.TrimSpace(c.OutputDir) == "" {
		return fmt.Errorf("%w: output_dir is empty", ErrInvalidConfig)
	}
	if strings.ContainsAny(c.OutputDir, `/\`) {
		return fmt.Errorf("%w: output_dir %q must be a single directory name", ErrInvalidConfig, c.OutputDir)
	}
	switch c.PaletteBackend {
	case "imagemagick", "builtin":
	default:
		return fmt.Errorf("%w: palette_backend %q (want imagemagick or builtin)", ErrInvalidConfig, c.PaletteBackend)
	}
	return nil
}

// ApplyDraft collapses the ladders and formats for a fast preview build
func (c *Config) ApplyDraft() {
	c.Draft = true
	c.Resolution = []int{1024}
	c.Bitrate = []float64{4}
	c.VideoFormats = []string{"h264"}
	c.DownloadButton = false
}

// SiteDir returns the output directory for a gallery root
func (c *Config) SiteDir(topdir string) string {
	return filepath.Join(topdir, c.OutputDir)
}

// ThemePath resolves theme_dir against the gallery root
func (c *Config) ThemePath(topdir string) string {
	if c.ThemeDir == "" || filepath.IsAbs(c.ThemeDir) {
		return c.ThemeDir
	}
	return filepath.Join(topdir, c.ThemeDir)
}

// MaxResolution returns the largest rung of the resolution ladder
func (c *Config) MaxResolution() int {
	largest := 0
	for _, res := range c.Resolution {
		if res > largest {
			largest = res
		}
	}
	return largest
}

// CreateSample writes the commented sample configuration to path
func CreateSample(path string) error {
	if fileExists(path) {
		return fmt.Errorf("config %s already exists", path)
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
