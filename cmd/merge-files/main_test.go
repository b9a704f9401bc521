package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeTemp(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile error: %v", err)
	}
	return p
}

func TestRunMerge(t *testing.T) {
	dir := t.TempDir()
	main := writeTemp(t, dir, "main.csv", "LinkedIn,Name\nhttps://www.linkedin.com/in/ana/,Ana\nhttps://linkedin.com/in/bob,Bob\n")
	sec := writeTemp(t, dir, "extra.csv", "Perfil,Phone\nlinkedin.com/in/ana?trk=x,123\n")
	out := filepath.Join(dir, "out.csv")

	summary, err := runMerge(mergeOptions{
		mainFile:      main,
		secondaries:   []string{sec},
		strategy:      "linkedin",
		keyColumn:     "LinkedIn",
		secondaryKeys: []string{"0=Perfil"},
		out:           out,
	})
	if err != nil {
		t.Fatalf("runMerge error: %v", err)
	}
	if summary.ResultRows != 2 || summary.Secondaries[0].Matched != 1 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("ReadFile error: %v", err)
	}
	want := "LinkedIn,Name,file2_Phone\nhttps://www.linkedin.com/in/ana/,Ana,123\nhttps://linkedin.com/in/bob,Bob,\n"
	if diff := cmp.Diff(want, string(got)); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestParseSecondaryKeys(t *testing.T) {
	got, err := parseSecondaryKeys([]string{"0=Email", " 2 = Nome "})
	if err != nil {
		t.Fatalf("parseSecondaryKeys error: %v", err)
	}
	if diff := cmp.Diff(map[int]string{0: "Email", 2: "Nome"}, got); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}
	for _, bad := range []string{"Email", "x=Email", "-1=Email"} {
		if _, err := parseSecondaryKeys([]string{bad}); err == nil {
			t.Fatalf("parseSecondaryKeys(%q) expected error", bad)
		}
	}
}

func TestRunMergeRejectsUnknownOutput(t *testing.T) {
	dir := t.TempDir()
	main := writeTemp(t, dir, "main.csv", "Name\nAna\n")
	sec := writeTemp(t, dir, "s.csv", "Name,Email\nAna,a@x.com\n")
	if _, err := runMerge(mergeOptions{mainFile: main, secondaries: []string{sec}, out: filepath.Join(dir, "out.pdf")}); err == nil {
		t.Fatalf("expected error for .pdf output")
	}
}
