package database

import "testing"

func TestShouldMigrate(t *testing.T) {
	cases := []struct {
		mode  string
		force bool
		want  bool
	}{
		{"debug", false, true},
		{"debug", true, true},
		{"release", false, false},
		{"release", true, true},
	}

	for _, tc := range cases {
		if got := ShouldMigrate(tc.mode, tc.force); got != tc.want {
			t.Fatalf("ShouldMigrate(%q, %v) = %v, want %v", tc.mode, tc.force, got, tc.want)
		}
	}
}
