package dsl

import (
	"errors"
	"reflect"
	"testing"

	"github.com/aretw0/fsmagent/pkg/domain"
)

func TestBuilder_SimpleFlow(t *testing.T) {
	m, err := New().
		Add("start").Go("researching").
		Add("researching").Go("writing").
		Add("writing").Go("reviewing").
		Add("reviewing").Go("writing", "end").
		Add("end").Terminal().
		Build()
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}

	if m.Current() != "start" {
		t.Errorf("Expected initial state 'start', got '%s'", m.Current())
	}

	for _, s := range []string{"researching", "writing", "reviewing"} {
		if _, err := m.Transition(s); err != nil {
			t.Fatalf("Transition(%q) failed: %v", s, err)
		}
	}

	if got := m.LegalNextStates(); !reflect.DeepEqual(got, []string{"writing", "end"}) {
		t.Errorf("Expected ordered targets [writing end], got %v", got)
	}

	if _, err := m.Transition("end"); err != nil {
		t.Fatalf("Transition(end) failed: %v", err)
	}
	if !m.IsTerminal() {
		t.Error("Expected 'end' to be terminal")
	}
}

func TestBuilder_Config(t *testing.T) {
	b := New()
	b.Add("a").Go("b", "b")
	b.Add("b").Terminal().Terminal()
	b.Start("b")

	cfg := b.Config()
	want := domain.GraphConfig{
		States:   map[string][]string{"a": {"b"}, "b": {}},
		Initial:  "b",
		Terminal: []string{"b"},
	}
	if !reflect.DeepEqual(cfg, want) {
		t.Errorf("Config() = %#v, want %#v", cfg, want)
	}
}

func TestBuilder_OpenGraphFails(t *testing.T) {
	_, err := New().Add("start").Go("nowhere").Build()
	if err == nil {
		t.Fatal("Expected Build() to fail for an undeclared target")
	}
	if !errors.Is(err, domain.ErrConfiguration) {
		t.Errorf("Expected ErrConfiguration, got %v", err)
	}
}
