package version

import "testing"

func TestStringReflectsVersionVar(t *testing.T) {
	if s := String(); s == "" {
		t.Fatalf("version string is empty")
	}
	old := Version
	defer func() { Version = old }()
	Version = "9.9.9-test"
	if got := String(); got != "9.9.9-test" {
		t.Fatalf("String() = %q after override", got)
	}
}
