package scene

import (
	"fmt"

	"github.com/ChicagoDave/threadweaver/pkg/validation"
)

// ValidateGraph performs structural validation on a scene graph.
// It checks entity integrity, group index consistency, and dimensions.
func ValidateGraph(g *Graph) *validation.Report {
	r := validation.NewReport()

	if g == nil {
		r.AddError(validation.Result{
			Level:   validation.LevelSpatial,
			Message: "scene graph is nil",
		})
		return r
	}

	validateEntityIDs(g, r)
	validateGroupIndices(g, r)
	validateEntityDimensions(g, r)
	validateParents(g, r)

	return r
}

func validateEntityIDs(g *Graph, r *validation.Report) {
	seen := make(map[string]int, len(g.Entities))

	for i, e := range g.Entities {
		if e.ID == "" {
			r.AddError(validation.Result{
				Level:       validation.LevelSpatial,
				Message:     fmt.Sprintf("entity at index %d has empty ID", i),
				Path:        fmt.Sprintf("entities[%d].id", i),
				ActualValue: "",
				Expected:    "non-empty string",
			})
			continue
		}
		if prev, exists := seen[e.ID]; exists {
			r.AddError(validation.Result{
				Level:       validation.LevelSpatial,
				Message:     fmt.Sprintf("duplicate entity ID %q at indices %d and %d", e.ID, prev, i),
				Path:        fmt.Sprintf("entities[%d].id", i),
				ActualValue: e.ID,
			})
		}
		seen[e.ID] = i
	}
}

func validateGroupIndices(g *Graph, r *validation.Report) {
	groupOf := make(map[string]Group, len(g.Entities))
	for _, e := range g.Entities {
		groupOf[e.ID] = e.Group
	}

	listed := make(map[string]bool, len(g.Entities))
	for name, ids := range g.Groups {
		for _, id := range ids {
			actual, ok := groupOf[id]
			switch {
			case !ok:
				r.AddError(validation.Result{
					Level:       validation.LevelSpatial,
					Message:     fmt.Sprintf("group %s references non-existent entity %q", name, id),
					Path:        fmt.Sprintf("groups.%s", name),
					ActualValue: id,
					Expected:    "existing entity ID",
				})
			case actual != name:
				r.AddError(validation.Result{
					Level:       validation.LevelSpatial,
					Message:     fmt.Sprintf("entity %q is listed under %s but belongs to %s", id, name, actual),
					Path:        fmt.Sprintf("groups.%s", name),
					ActualValue: id,
				})
			}
			listed[id] = true
		}
	}

	for _, e := range g.Entities {
		if e.ID != "" && !listed[e.ID] {
			r.AddError(validation.Result{
				Level:       validation.LevelSpatial,
				Message:     fmt.Sprintf("entity %q has group %q but is not in its group index", e.ID, e.Group),
				Path:        fmt.Sprintf("groups.%s", e.Group),
				ActualValue: e.ID,
			})
		}
	}
}

func validateEntityDimensions(g *Graph, r *validation.Report) {
	for _, e := range g.Entities {
		if e.Dimensions.X <= 0 || e.Dimensions.Y <= 0 || e.Dimensions.Z <= 0 {
			r.AddError(validation.Result{
				Level:       validation.LevelSpatial,
				Message:     fmt.Sprintf("entity %q has zero or negative dimension (%.2f, %.2f, %.2f)", e.ID, e.Dimensions.X, e.Dimensions.Y, e.Dimensions.Z),
				Path:        fmt.Sprintf("entities.%s.dimensions", e.ID),
				ActualValue: fmt.Sprintf("%.2f x %.2f x %.2f", e.Dimensions.X, e.Dimensions.Y, e.Dimensions.Z),
				Expected:    "all dimensions > 0",
			})
		}
	}
}

// Roof kits and bands must not outlive their building.
func validateParents(g *Graph, r *validation.Report) {
	for _, e := range g.Entities {
		parent, ok := e.Metadata["parent"].(string)
		if !ok {
			continue
		}
		if _, exists := g.Get(parent); !exists {
			r.AddWarning(validation.Result{
				Level:       validation.LevelSpatial,
				Message:     fmt.Sprintf("entity %q references missing parent %q", e.ID, parent),
				Path:        fmt.Sprintf("entities.%s.metadata.parent", e.ID),
				ActualValue: parent,
			})
		}
	}
}
