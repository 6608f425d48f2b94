package validation

import (
	"testing"

	"github.com/ChicagoDave/threadweaver/pkg/spec"
)

func TestNewReport(t *testing.T) {
	r := NewReport()
	if !r.Valid {
		t.Error("new report should be valid")
	}
	if len(r.Errors) != 0 || len(r.Warnings) != 0 || len(r.Info) != 0 {
		t.Error("new report should have empty slices")
	}
	if r.Summary != "0 errors, 0 warnings, 0 info" {
		t.Errorf("unexpected summary: %s", r.Summary)
	}
}

func TestAddError(t *testing.T) {
	r := NewReport()
	r.AddError(Result{Level: LevelConfig, Message: "bad value"})
	if r.Valid {
		t.Error("report with error should be invalid")
	}
	if len(r.Errors) != 1 {
		t.Fatalf("expected 1 error, got %d", len(r.Errors))
	}
	if r.Errors[0].Severity != SeverityError {
		t.Error("AddError should set severity to error")
	}
	if r.Summary != "1 errors, 0 warnings, 0 info" {
		t.Errorf("unexpected summary: %s", r.Summary)
	}
}

func TestWarningsAndInfoKeepReportValid(t *testing.T) {
	r := NewReport()
	r.AddWarning(Result{Level: LevelDerived, Message: "heads up"})
	r.Infof(LevelSpatial, "placed %d trees", 12)
	if !r.Valid {
		t.Error("warnings and info should not invalidate report")
	}
	if r.Info[0].Message != "placed 12 trees" {
		t.Errorf("unexpected info message %q", r.Info[0].Message)
	}
}

func TestMerge(t *testing.T) {
	a := NewReport()
	a.AddInfo(Result{Message: "a"})
	b := NewReport()
	b.AddError(Result{Message: "b"})

	a.Merge(b)
	a.Merge(nil)
	if a.Valid {
		t.Error("merging an invalid report should invalidate")
	}
	if len(a.Errors) != 1 || len(a.Info) != 1 {
		t.Errorf("unexpected merged counts: %s", a.Summary)
	}
}

func TestValidateConfigDefaults(t *testing.T) {
	c := spec.Defaults()
	r := ValidateConfig(&c)
	if !r.Valid {
		t.Fatalf("defaults should be valid: %v", r.Errors)
	}
}

func TestValidateConfigRanges(t *testing.T) {
	c := spec.Defaults()
	c.People = 2
	c.Fog = -1
	c.Accent = "blue"
	c.Weather = "sandstorm"
	r := ValidateConfig(&c)
	if r.Valid {
		t.Fatal("expected invalid report")
	}
	paths := map[string]bool{}
	for _, e := range r.Errors {
		paths[e.Path] = true
	}
	for _, p := range []string{"people", "fog", "accent", "weather"} {
		if !paths[p] {
			t.Errorf("expected error for %s", p)
		}
	}
}

func TestValidateConfigBalanceWarnings(t *testing.T) {
	c := spec.Defaults()
	c.Buildings = 0
	c.Mix = 1
	r := ValidateConfig(&c)
	if !r.Valid {
		t.Fatalf("balance issues should be warnings only: %v", r.Errors)
	}
	if len(r.Warnings) != 2 {
		t.Errorf("expected 2 warnings, got %d", len(r.Warnings))
	}
}
