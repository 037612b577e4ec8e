package domain

import (
	"errors"
	"testing"
)

func TestBuiltInTemplatesAreValid(t *testing.T) {
	all, err := Templates()
	if err != nil {
		t.Fatalf("load templates: %v", err)
	}
	if len(all) < 2 {
		t.Fatalf("expected default and services templates, got %d", len(all))
	}
	for _, tpl := range all {
		seeds := tpl.StageSeeds()
		if seeds[0].Type != StageTypeEntry {
			t.Errorf("%s: first stage type = %s, want entry", tpl.Key, seeds[0].Type)
		}
		for i, s := range seeds {
			if s.Order != i+1 {
				t.Errorf("%s: stage %q order = %d, want %d", tpl.Key, s.Name, s.Order, i+1)
			}
		}
	}
}

func TestFindTemplate(t *testing.T) {
	tpl, err := FindTemplate("default")
	if err != nil {
		t.Fatalf("find default: %v", err)
	}
	if tpl.Stages[0].SLAHours != 24 {
		t.Fatalf("sla = %d", tpl.Stages[0].SLAHours)
	}
	if _, err := FindTemplate("missing"); !errors.Is(err, ErrTemplateNotFound) {
		t.Fatalf("expected ErrTemplateNotFound, got %v", err)
	}
}

func TestTemplateValidateRequiresSingleEntry(t *testing.T) {
	tpl := Template{
		Key: "broken",
		Stages: []TemplateStage{
			{Name: "A", Type: StageTypeEntry},
			{Name: "B", Type: StageTypeEntry},
		},
	}
	if err := tpl.Validate(); err == nil {
		t.Fatal("expected error for two entry stages")
	}
	tpl.Stages = nil
	if err := tpl.Validate(); err == nil {
		t.Fatal("expected error for empty template")
	}
}
