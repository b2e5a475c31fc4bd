package universe

import (
	"testing"

	"QuantBoard/internal/model"
)

func TestSorted_OrdersByCodeAndDropsDuplicates(t *testing.T) {
	in := []model.Instrument{
		{Code: "600519", Name: "a"},
		{Code: "000001", Name: "b"},
		{Code: "600519", Name: "dup"},
		{Code: "", Name: "empty"},
	}
	got := Sorted(in)
	if len(got) != 2 {
		t.Fatalf("expected 2 instruments, got %d", len(got))
	}
	if got[0].Code != "000001" || got[1].Code != "600519" {
		t.Errorf("unexpected order: %v", got)
	}
	if got[1].Name != "a" {
		t.Errorf("expected first occurrence to win, got %q", got[1].Name)
	}
	if in[0].Code != "600519" {
		t.Error("Sorted must not reorder its input")
	}
}

func TestDefault_HasUniqueCodes(t *testing.T) {
	if len(Sorted(Default)) != len(Default) {
		t.Error("default universe contains duplicate codes")
	}
	if _, ok := Lookup(Default, "600519"); !ok {
		t.Error("expected 600519 in default universe")
	}
}
