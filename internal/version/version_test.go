package version

import "testing"

func TestString(t *testing.T) {
	if s := String(); s == "" {
		t.Fatalf("version string is empty")
	}

	oldVersion, oldCommit := Version, Commit
	defer func() { Version, Commit = oldVersion, oldCommit }()

	Version, Commit = "1.2.3", ""
	if got := String(); got != "1.2.3" {
		t.Fatalf("String() = %q, want 1.2.3", got)
	}
	Commit = "abc1234"
	if got := String(); got != "1.2.3+abc1234" {
		t.Fatalf("String() = %q, want 1.2.3+abc1234", got)
	}
}
