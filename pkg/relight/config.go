package relight

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"github.com/abworrall/olat-relight/pkg/ecolor"
)

/* Example config file ...

verbosity: 1
dataroot: ./static/demo/
manifestpath: ./static/demo/scene_manifest.yaml
tonemapper: filmic
maxpoint: 16
ambientenabled: true
ambientscale: 0.5
workers: 4
cachesize: 32
outputwidth: 1024

*/

type Config struct {
	Verbosity int

	DataRoot     string // Relative asset paths in the manifest are resolved against this
	ManifestPath string

	Tonemapper     string  // linear, reinhard, filmic
	MaxPoint       float64 // White point for reinhard
	AmbientEnabled bool
	AmbientScale   float64 // [0,3]

	Workers   int // How many goroutines the compositor may use
	CacheSize int // How many decoded images to keep around across scene switches

	OutputWidth    int    // Rescale exported frames to this width; 0 keeps native size
	OutputFilename string // If empty, "<scene>_blend.png"
}

func NewConfig() Config {
	return Config{
		DataRoot:       "./static/demo/",
		ManifestPath:   "./static/demo/scene_manifest.yaml",
		Tonemapper:     ecolor.Reinhard.String(),
		MaxPoint:       ecolor.DefaultMaxPoint,
		AmbientEnabled: true,
		AmbientScale:   0.5,
		Workers:        1,
		CacheSize:      32,
	}
}

func newConfigFromYaml(b []byte) (Config, error) {
	c := NewConfig()
	if err := yaml.Unmarshal(b, &c); err != nil {
		return c, err
	}
	return c, c.Finalize()
}

func LoadConfig(filename string) (Config, error) {
	contents, err := os.ReadFile(filename)
	if err != nil {
		return NewConfig(), fmt.Errorf("config read %s: %w", filename, err)
	}

	c, err := newConfigFromYaml(contents)
	if err != nil {
		return c, fmt.Errorf("config parse %s: %w", filename, err)
	}
	return c, nil
}

func (c Config) AsYaml() string {
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Sprintf("# can't marshal config yaml: %v\n", err)
	}
	return string(b)
}

// Finalize does sanity checks; call it again after overriding fields
// from the command line.
func (c *Config) Finalize() error {
	if _, err := ecolor.ParseToneMode(c.Tonemapper); err != nil {
		return err
	}
	if c.MaxPoint <= 0 {
		return fmt.Errorf("maxpoint must be positive, got %v", c.MaxPoint)
	}
	if c.AmbientScale < 0 || c.AmbientScale > MaxAmbientScale {
		return fmt.Errorf("ambientscale must be in [0,%v], got %v", MaxAmbientScale, c.AmbientScale)
	}
	if c.Workers < 1 {
		c.Workers = 1
	}
	if c.CacheSize < 1 {
		c.CacheSize = 1
	}
	if c.OutputWidth < 0 {
		return fmt.Errorf("outputwidth must not be negative, got %d", c.OutputWidth)
	}
	return nil
}

func (c Config) ToneMode() ecolor.ToneMode {
	m, _ := ecolor.ParseToneMode(c.Tonemapper)
	return m
}

func (c Config) RenderState() RenderState {
	return RenderState{
		ToneMode: c.ToneMode(),
		MaxPoint: c.MaxPoint,
		Workers:  c.Workers,
	}
}
