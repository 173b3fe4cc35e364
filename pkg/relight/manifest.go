package relight

import (
	"fmt"
	"path"
	"sort"

	"gopkg.in/yaml.v2"
)

/* Example scene manifest ...

scenes:
  kitchen:
    input: inputs/kitchen.jpg
    ours:
      bg: kitchen/bg.png
      olat:
        - kitchen/olat_00.exr
        - kitchen/olat_01.exr
      mask:
        - kitchen/mask_00.png
        - kitchen/mask_01.png

*/

type Manifest struct {
	Scenes map[string]SceneEntry
}

type SceneEntry struct {
	Input string // The original photo, for display alongside the relit result
	Ours  *SceneAssets
}

type SceneAssets struct {
	Bg   string
	Olat []string
	Mask []string // Parallel to Olat; may be shorter
}

// ParseManifest decodes a manifest YAML document.
func ParseManifest(b []byte) (*Manifest, error) {
	m := Manifest{}
	if err := yaml.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("manifest parse: %w", err)
	}
	if m.Scenes == nil {
		m.Scenes = map[string]SceneEntry{}
	}
	return &m, nil
}

// SceneNames is sorted; the first entry is the default selection.
func (m *Manifest) SceneNames() []string {
	names := []string{}
	for name := range m.Scenes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (m *Manifest) DefaultScene() (string, bool) {
	names := m.SceneNames()
	if len(names) == 0 {
		return "", false
	}
	return names[0], true
}

// Assets returns the scene's asset list with all paths resolved
// against dataRoot.
func (m *Manifest) Assets(name, dataRoot string) (SceneAssets, string, error) {
	entry, exists := m.Scenes[name]
	if !exists {
		return SceneAssets{}, "", fmt.Errorf("%w: %q", ErrUnknownScene, name)
	}
	if entry.Ours == nil {
		return SceneAssets{}, "", fmt.Errorf("scene %q has no 'ours' assets", name)
	}

	a := SceneAssets{Bg: ResolvePath(dataRoot, entry.Ours.Bg)}
	for _, p := range entry.Ours.Olat {
		a.Olat = append(a.Olat, ResolvePath(dataRoot, p))
	}
	for _, p := range entry.Ours.Mask {
		a.Mask = append(a.Mask, ResolvePath(dataRoot, p))
	}

	return a, ResolvePath(dataRoot, entry.Input), nil
}

// ResolvePath leaves absolute paths alone. An empty path stays empty.
func ResolvePath(dataRoot, p string) string {
	if p == "" || path.IsAbs(p) {
		return p
	}
	return path.Join(dataRoot, p)
}
