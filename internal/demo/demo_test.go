package demo

import "testing"

func TestDefinition(t *testing.T) {
	def, err := Definition()
	if err != nil {
		t.Fatalf("Definition() error = %v", err)
	}
	if def.Form != "signup" {
		t.Errorf("Form = %q, want %q", def.Form, "signup")
	}
	if len(def.Fields) != 4 {
		t.Fatalf("len(Fields) = %d, want 4", len(def.Fields))
	}
	if def.Fields[0].Name != "email" || !def.Fields[0].Autofocus {
		t.Errorf("first field = %+v, want autofocused email", def.Fields[0])
	}
	if def.Fields[2].Kind != "password" {
		t.Errorf("Fields[2].Kind = %q, want %q", def.Fields[2].Kind, "password")
	}
	if def.Fields[3].Initial != "18" {
		t.Errorf("Fields[3].Initial = %v, want %q", def.Fields[3].Initial, "18")
	}
}
