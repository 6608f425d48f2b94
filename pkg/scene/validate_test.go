package scene

import (
	"testing"

	"github.com/ChicagoDave/threadweaver/pkg/geo"
)

func validGraph(t *testing.T) *Graph {
	t.Helper()
	g := NewGraph()
	add := func(e Entity) {
		if err := g.Add(e); err != nil {
			t.Fatalf("add %s: %v", e.ID, err)
		}
	}
	add(Entity{
		ID:         "bldg_00000",
		Type:       EntityBuilding,
		Group:      GroupBuildings,
		Position:   geo.V3(10, 0, 20),
		Dimensions: geo.V3(5, 12, 5),
	})
	add(Entity{
		ID:         "bldg_00000_ac",
		Type:       EntityRoofUnit,
		Group:      GroupBuildings,
		Position:   geo.V3(10, 12, 20),
		Dimensions: geo.V3(1, 0.4, 1),
		Metadata:   map[string]any{"parent": "bldg_00000"},
	})
	add(Entity{
		ID:         "tree_scatter_00000",
		Type:       EntityTree,
		Group:      GroupTrees,
		Position:   geo.V3(-4, 0, 3),
		Dimensions: geo.V3(1.8, 3, 1.8),
	})
	return g
}

func TestValidateGraph_Valid(t *testing.T) {
	r := ValidateGraph(validGraph(t))
	if !r.Valid {
		t.Errorf("expected valid, got %d errors", len(r.Errors))
		for _, e := range r.Errors {
			t.Logf("  error: %s", e.Message)
		}
	}
	if len(r.Warnings) != 0 {
		t.Errorf("expected no warnings, got %d", len(r.Warnings))
	}
}

func TestValidateGraph_Nil(t *testing.T) {
	r := ValidateGraph(nil)
	if r.Valid {
		t.Error("expected invalid for nil graph")
	}
}

func TestValidateGraph_DuplicateID(t *testing.T) {
	g := validGraph(t)
	g.Entities = append(g.Entities, g.Entities[0])
	r := ValidateGraph(g)
	if r.Valid {
		t.Error("expected invalid for duplicate ID")
	}
}

func TestValidateGraph_OrphanedGroupReference(t *testing.T) {
	g := validGraph(t)
	g.Groups[GroupTrees] = append(g.Groups[GroupTrees], "ghost")
	r := ValidateGraph(g)
	if r.Valid {
		t.Error("expected invalid for orphaned group reference")
	}
}

func TestValidateGraph_WrongGroup(t *testing.T) {
	g := validGraph(t)
	g.Groups[GroupNPCs] = append(g.Groups[GroupNPCs], "bldg_00000")
	r := ValidateGraph(g)
	if r.Valid {
		t.Error("expected invalid when an entity is indexed under the wrong group")
	}
}

func TestValidateGraph_Unindexed(t *testing.T) {
	g := validGraph(t)
	g.Groups[GroupTrees] = nil
	r := ValidateGraph(g)
	if r.Valid {
		t.Error("expected invalid for entity missing from its group index")
	}
}

func TestValidateGraph_ZeroDimension(t *testing.T) {
	g := validGraph(t)
	g.Entities[2].Dimensions.Y = 0
	r := ValidateGraph(g)
	if r.Valid {
		t.Error("expected invalid for zero height")
	}
}

func TestValidateGraph_MissingParent(t *testing.T) {
	g := validGraph(t)
	g.Remove("bldg_00000")
	r := ValidateGraph(g)
	if !r.Valid {
		t.Errorf("missing parent should only warn, got %d errors", len(r.Errors))
	}
	if len(r.Warnings) != 1 {
		t.Errorf("expected 1 warning, got %d", len(r.Warnings))
	}
}
