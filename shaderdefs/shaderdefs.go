// Package shaderdefs loads a human-editable table mapping named content
// and surface flags to the integer bitmasks the binary map format and the
// trace core actually operate on (§6: "shaders...metadata forwarded to the
// trace result"). The core never imports this package; it exists purely
// for authoring synthetic test worlds and for rendering a Trace's raw
// int32 flag fields back into readable names in the CLI (package cmd).
// Grounded on the teacher's project.LoadConfig (gopkg.in/yaml.v3 plus a
// project-root search), generalized from one config file to a named flag
// table.
package shaderdefs

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Flag is one named bit in a content or surface flag table.
type Flag struct {
	Name string `yaml:"name"`
	Bit  uint   `yaml:"bit"`
}

// Table is a named set of content flags and surface flags, loaded from a
// YAML file such as contentflags.yaml.
type Table struct {
	Content []Flag `yaml:"content"`
	Surface []Flag `yaml:"surface"`
}

// Load reads and parses a flag table from path.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("shaderdefs: reading %s: %w", path, err)
	}

	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("shaderdefs: parsing %s: %w", path, err)
	}
	return &t, nil
}

// Bits ORs together the bit values of every named flag in names, looked up
// against the given flag list. An unknown name is an error: a typo in a
// scenario fixture should fail loudly, not silently contribute zero bits.
func Bits(flags []Flag, names []string) (int32, error) {
	byName := make(map[string]uint, len(flags))
	for _, f := range flags {
		byName[f.Name] = f.Bit
	}

	var mask int32
	for _, name := range names {
		bit, ok := byName[name]
		if !ok {
			return 0, fmt.Errorf("shaderdefs: unknown flag %q", name)
		}
		mask |= 1 << bit
	}
	return mask, nil
}

// ContentBits resolves a list of content-flag names against t.
func (t *Table) ContentBits(names []string) (int32, error) { return Bits(t.Content, names) }

// SurfaceBits resolves a list of surface-flag names against t.
func (t *Table) SurfaceBits(names []string) (int32, error) { return Bits(t.Surface, names) }

// Describe renders mask as a "|"-joined list of matching flag names, for
// printing a Trace's raw ContentFlags/SurfaceFlags fields back to a human
// (cmd's "test" subcommand). Bits with no matching name are rendered as
// their hex value so nothing silently disappears from the output.
func Describe(flags []Flag, mask int32) string {
	if mask == 0 {
		return "none"
	}

	sorted := make([]Flag, len(flags))
	copy(sorted, flags)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Bit < sorted[j].Bit })

	var names []string
	remaining := mask
	for _, f := range sorted {
		bit := int32(1) << f.Bit
		if remaining&bit != 0 {
			names = append(names, f.Name)
			remaining &^= bit
		}
	}
	if remaining != 0 {
		names = append(names, fmt.Sprintf("0x%x", uint32(remaining)))
	}

	out := names[0]
	for _, n := range names[1:] {
		out += "|" + n
	}
	return out
}

// Default returns the standard content/surface flag table used by the
// example scenarios and tests shipped with this repository: a small,
// Quake-family-shaped set of named bits, not an exhaustive registry.
func Default() *Table {
	return &Table{
		Content: []Flag{
			{Name: "solid", Bit: 0},
			{Name: "lava", Bit: 3},
			{Name: "slime", Bit: 4},
			{Name: "water", Bit: 5},
			{Name: "playerclip", Bit: 16},
			{Name: "monsterclip", Bit: 17},
			{Name: "detail", Bit: 27},
			{Name: "structural", Bit: 28},
			{Name: "trigger", Bit: 30},
		},
		Surface: []Flag{
			{Name: "nodamage", Bit: 0},
			{Name: "slick", Bit: 1},
			{Name: "sky", Bit: 2},
			{Name: "ladder", Bit: 3},
			{Name: "nomarks", Bit: 8},
			{Name: "nosteps", Bit: 16},
			{Name: "nodraw", Bit: 19},
		},
	}
}
