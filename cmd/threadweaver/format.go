package main

import (
	"fmt"
	"io"

	"github.com/ChicagoDave/threadweaver/pkg/scene"
	"github.com/ChicagoDave/threadweaver/pkg/validation"
	"github.com/ChicagoDave/threadweaver/pkg/world"
)

func printValidationReport(w io.Writer, r *validation.Report) {
	if len(r.Errors) > 0 {
		fmt.Fprintf(w, "ERRORS (%d):\n", len(r.Errors))
		for _, e := range r.Errors {
			printResult(w, e)
		}
		fmt.Fprintln(w)
	}

	if len(r.Warnings) > 0 {
		fmt.Fprintf(w, "WARNINGS (%d):\n", len(r.Warnings))
		for _, e := range r.Warnings {
			printResult(w, e)
		}
		fmt.Fprintln(w)
	}

	if len(r.Info) > 0 {
		fmt.Fprintf(w, "INFO (%d):\n", len(r.Info))
		for _, i := range r.Info {
			fmt.Fprintf(w, "  [%s] %s\n", i.Level, i.Message)
		}
		fmt.Fprintln(w)
	}

	if r.Valid {
		fmt.Fprintf(w, "Result: VALID (%s)\n", r.Summary)
	} else {
		fmt.Fprintf(w, "Result: INVALID (%s)\n", r.Summary)
	}
}

func printResult(w io.Writer, e validation.Result) {
	fmt.Fprintf(w, "  [%s] %s\n", e.Level, e.Message)
	if e.Path != "" {
		fmt.Fprintf(w, "    -> %s = %v\n", e.Path, e.ActualValue)
	}
	if e.Expected != "" {
		fmt.Fprintf(w, "    expected: %s\n", e.Expected)
	}
	for _, s := range e.Suggestions {
		fmt.Fprintf(w, "    * %s\n", s)
	}
}

func printStats(w io.Writer, s world.Stats) {
	fmt.Fprintf(w, "World (seed %d, %s)\n", s.Seed, s.Weather)
	fmt.Fprintln(w, "=========================")
	fmt.Fprintf(w, "  %-16s %6d\n", "Structures", s.Structures)
	fmt.Fprintf(w, "  %-16s %6d\n", "Static boxes", s.StaticBoxes)
	fmt.Fprintf(w, "  %-16s %6d\n", "Physics cells", s.PhysicsCells)
	fmt.Fprintf(w, "  %-16s %6d\n", "Parks", s.Parks)
	fmt.Fprintf(w, "  %-16s %6d\n", "Trees", s.Trees)
	fmt.Fprintf(w, "  %-16s %6d\n", "Light poles", s.LightPoles)
	fmt.Fprintf(w, "  %-16s %6d\n", "Pedestrians", s.Pedestrians)
	fmt.Fprintf(w, "  %-16s %6d\n", "Vehicles", s.Vehicles)
	fmt.Fprintf(w, "  %-16s %6d\n", "Animals", s.Animals)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%-12s %8s\n", "Group", "Nodes")
	for _, g := range scene.AllGroups {
		fmt.Fprintf(w, "%-12s %8d\n", g, s.SceneNodes[g])
	}
}
