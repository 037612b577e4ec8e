package validator

import "testing"

type moveRequest struct {
	Order int    `json:"order" validate:"required,min=1"`
	Color string `json:"color,omitempty" validate:"omitempty,hexcolor"`
}

func TestDetailsUsesJSONFieldNames(t *testing.T) {
	val := New()

	err := val.Struct(moveRequest{Order: 0, Color: "blue"})
	if err == nil {
		t.Fatal("expected validation error")
	}

	details := Details(err)
	if details["order"] != "required" {
		t.Errorf("order rule = %q, want required", details["order"])
	}
	if details["color"] != "hexcolor" {
		t.Errorf("color rule = %q, want hexcolor", details["color"])
	}
}

func TestStructAcceptsValidInput(t *testing.T) {
	val := New()
	if err := val.Struct(moveRequest{Order: 2, Color: "#FFFFFF"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
