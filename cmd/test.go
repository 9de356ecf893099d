package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bloodmagesoftware/collide/bspfile"
	"github.com/bloodmagesoftware/collide/geom"
	"github.com/bloodmagesoftware/collide/project"
	"github.com/bloodmagesoftware/collide/shaderdefs"
	"github.com/bloodmagesoftware/collide/trace"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var testCmd = &cobra.Command{
	Use:   "test {scenario-file}",
	Short: "Run a batch of trace scenarios described in YAML against a map",
	Long:  `Loads a YAML scenario file naming a map plus a list of start/end/mins/maxs/content traces, runs each through the solver, and prints the resulting fraction, contact plane, and flags.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runScenarios(args[0])
	},
}

func init() {
	rootCmd.AddCommand(testCmd)
}

// vec3 is the [3]float32 YAML shape used for points and extents in a
// scenario file.
type vec3 [3]float32

func (v vec3) toVec3() geom.Vec3 { return geom.Vec3{X: v[0], Y: v[1], Z: v[2]} }

// scenario is one trace request in a scenario file.
type scenario struct {
	Name    string   `yaml:"name"`
	Start   vec3     `yaml:"start"`
	End     vec3     `yaml:"end"`
	Mins    vec3     `yaml:"mins"`
	Maxs    vec3     `yaml:"maxs"`
	Content []string `yaml:"content"`
	Capsule bool     `yaml:"capsule"`
}

// scenarioFile is the top-level shape of a YAML scenario file: the map to
// load plus the scenarios to run against it.
type scenarioFile struct {
	Map       string     `yaml:"map"`
	Scenarios []scenario `yaml:"scenarios"`
}

func runScenarios(path string) error {
	if root, err := getProjectRoot(); err == nil {
		config, err := project.LoadConfig(root)
		if err != nil {
			return fmt.Errorf("loading project config: %w", err)
		}
		path = filepath.Join(root, config.ScenariosDir, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading scenario file %s: %w", path, err)
	}

	var sf scenarioFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return fmt.Errorf("parsing scenario file %s: %w", path, err)
	}

	mapPath, err := resolveMapPath(sf.Map)
	if err != nil {
		return err
	}

	loader := bspfile.NewLoader()
	model, _, err := loader.LoadMap(context.Background(), mapPath, false, readFileSource, logWarn)
	if err != nil {
		return fmt.Errorf("loading %s: %w", mapPath, err)
	}

	flags := shaderdefs.Default()

	for _, s := range sf.Scenarios {
		mask, err := flags.ContentBits(s.Content)
		if err != nil {
			return fmt.Errorf("scenario %q: %w", s.Name, err)
		}

		result := trace.BoxTrace(model, s.Start.toVec3(), s.End.toVec3(), s.Mins.toVec3(), s.Maxs.toVec3(), mask, s.Capsule)
		printResult(s.Name, result, flags)
	}

	return nil
}

func printResult(name string, t trace.Trace, flags *shaderdefs.Table) {
	fmt.Printf("%s:\n", name)
	fmt.Printf("  fraction:    %.4f\n", t.Fraction)
	fmt.Printf("  startSolid:  %v\n", t.StartSolid)
	fmt.Printf("  allSolid:    %v\n", t.AllSolid)
	fmt.Printf("  endPos:      (%.3f, %.3f, %.3f)\n", t.EndPos.X, t.EndPos.Y, t.EndPos.Z)
	if t.Fraction < 1 && !t.AllSolid {
		fmt.Printf("  plane:       n=(%.3f, %.3f, %.3f) d=%.3f\n", t.Plane.Normal.X, t.Plane.Normal.Y, t.Plane.Normal.Z, t.Plane.Dist)
	}
	fmt.Printf("  content:     %s\n", shaderdefs.Describe(flags.Content, t.ContentFlags))
	fmt.Printf("  surface:     %s\n", shaderdefs.Describe(flags.Surface, t.SurfaceFlags))
}
