package config

import (
	"testing"
	"time"
)

func TestEnvFlag(t *testing.T) {
	cases := map[string]bool{"true": true, "1": true, "YES": true, "y": true, "false": false, "": false, "on": false}
	for in, want := range cases {
		t.Setenv("EXPORT_UNION_COLUMNS", in)
		if got := ExportUnionColumns(); got != want {
			t.Fatalf("ExportUnionColumns(%q) expected %v, got %v", in, want, got)
		}
	}
}

func TestMergeSessionTTL(t *testing.T) {
	t.Setenv("MERGE_SESSION_TTL_MINUTES", "")
	if got := MergeSessionTTL(); got != time.Hour {
		t.Fatalf("expected default 1h, got %s", got)
	}
	t.Setenv("MERGE_SESSION_TTL_MINUTES", "5")
	if got := MergeSessionTTL(); got != 5*time.Minute {
		t.Fatalf("expected 5m, got %s", got)
	}
}
