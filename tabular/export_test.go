package tabular

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestColumns_FirstRecordVersusUnion(t *testing.T) {
	records := []*Record{
		RecordOf("name", "Ana", "company", "Acme"),
		RecordOf("name", "Bob", "company", "Zeta", "email", "b@z.com"),
	}
	if diff := cmp.Diff([]string{"name", "company"}, Columns(records, false)); diff != "" {
		t.Fatalf("first-record columns mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"name", "company", "email"}, Columns(records, true)); diff != "" {
		t.Fatalf("union columns mismatch (-want +got):\n%s", diff)
	}
	if got := Columns(nil, true); got != nil {
		t.Fatalf("expected no columns for no records, got %v", got)
	}
}

func TestWriteCSV(t *testing.T) {
	records := []*Record{
		RecordOf("name", "Ana", "score", 1.5, "note", "a, b"),
		RecordOf("name", "Bob", "score", nil),
	}
	var buf bytes.Buffer
	if err := WriteCSV(&buf, records, ExportOptions{}); err != nil {
		t.Fatalf("WriteCSV error: %v", err)
	}
	expected := "name,score,note\nAna,1.5,\"a, b\"\nBob,,\n"
	if buf.String() != expected {
		t.Fatalf("WriteCSV expected %q, got %q", expected, buf.String())
	}
}

// Exporting then re-parsing gives back the same header and cell text.
func TestExport_RoundTrip(t *testing.T) {
	src := "Nome,Empresa,Valor\nAna,Acme,10\nBob,\"Zeta, Inc\",\n"
	first, err := Parse("in.csv", strings.NewReader(src))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	for _, format := range []Format{FormatCSV, FormatXLSX} {
		var buf bytes.Buffer
		if format == FormatCSV {
			err = WriteCSV(&buf, first.Rows, ExportOptions{})
		} else {
			err = WriteXLSX(&buf, first.Rows, ExportOptions{})
		}
		if err != nil {
			t.Fatalf("%s: write error: %v", format, err)
		}
		second, err := ParseBytes("out."+string(format), format, buf.Bytes())
		if err != nil {
			t.Fatalf("%s: reparse error: %v", format, err)
		}
		if diff := cmp.Diff(first.Headers, second.Headers); diff != "" {
			t.Fatalf("%s: headers mismatch (-want +got):\n%s", format, diff)
		}
		if first.RowCount != second.RowCount {
			t.Fatalf("%s: expected %d rows, got %d", format, first.RowCount, second.RowCount)
		}
		for i := range first.Rows {
			if diff := cmp.Diff(first.Rows[i].Strings(), second.Rows[i].Strings()); diff != "" {
				t.Fatalf("%s: row %d mismatch (-want +got):\n%s", format, i, diff)
			}
		}
	}
}

func TestRecord_JSONKeepsOrder(t *testing.T) {
	r := RecordOf("z", "1", "a", 2.0, "m", true, "n", nil)
	out, err := r.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON error: %v", err)
	}
	expected := `{"z":"1","a":2,"m":true,"n":null}`
	if string(out) != expected {
		t.Fatalf("MarshalJSON expected %s, got %s", expected, out)
	}
	var back Record
	if err := back.UnmarshalJSON(out); err != nil {
		t.Fatalf("UnmarshalJSON error: %v", err)
	}
	if diff := cmp.Diff(r.Keys(), back.Keys()); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}
	if back.Get("a").Kind() != KindNumber || !back.Get("n").IsAbsent() {
		t.Fatalf("value kinds not preserved: %s", out)
	}
}
