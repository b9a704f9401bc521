package merge

import (
	"errors"
	"fmt"
	"testing"

	"github.com/barrosyan/sistema-pronto/tabular"
	"github.com/google/go-cmp/cmp"
)

func file(name string, headers []string, rows ...[]any) *tabular.ParsedFile {
	f := &tabular.ParsedFile{Name: name, Headers: headers}
	for _, cells := range rows {
		rec := tabular.NewRecord(len(headers))
		for i, h := range headers {
			if i < len(cells) {
				rec.Set(h, tabular.FromAny(cells[i]))
			} else {
				rec.Set(h, tabular.Absent())
			}
		}
		f.Rows = append(f.Rows, rec)
	}
	f.RowCount = len(f.Rows)
	return f
}

func TestLeftJoin_NormalizedNameScenario(t *testing.T) {
	main := file("main.csv", []string{"name", "company"},
		[]any{"Ana", "Acme"},
		[]any{"Bob", "Zeta"},
	)
	sec := file("emails.csv", []string{"Name", "Email"},
		[]any{"ana", "a@x.com"},
	)
	res, err := LeftJoin(main, []*tabular.ParsedFile{sec}, Options{Strategy: StrategyNormalizedName, KeyColumn: "name"})
	if err != nil {
		t.Fatalf("LeftJoin error: %v", err)
	}
	got := make([]map[string]string, len(res.Records))
	for i, r := range res.Records {
		got[i] = r.Strings()
	}
	expected := []map[string]string{
		{"name": "Ana", "company": "Acme", "file2_Email": "a@x.com"},
		{"name": "Bob", "company": "Zeta", "file2_Email": ""},
	}
	if diff := cmp.Diff(expected, got); diff != "" {
		t.Fatalf("merged records mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"name", "company", "file2_Email"}, res.Records[0].Keys()); diff != "" {
		t.Fatalf("column order mismatch (-want +got):\n%s", diff)
	}
	if res.Summary.Secondaries[0].Matched != 1 || res.Summary.ResultRows != 2 {
		t.Fatalf("unexpected summary %+v", res.Summary)
	}
}

func TestLeftJoin_UnmatchedColumnsArePresentAndEmpty(t *testing.T) {
	main := file("main.csv", []string{"Nome"}, []any{"Carla"})
	sec := file("extra.csv", []string{"Nome", "Telefone", "Cidade"}, []any{"Ana", "1", "SP"})
	res, err := LeftJoin(main, []*tabular.ParsedFile{sec}, Options{Strategy: StrategyExactName})
	if err != nil {
		t.Fatalf("LeftJoin error: %v", err)
	}
	for _, col := range []string{"file2_Telefone", "file2_Cidade"} {
		v, ok := res.Records[0].Lookup(col)
		if !ok {
			t.Fatalf("expected column %s to be present", col)
		}
		if v.Kind() != tabular.KindString || v.String() != EmptyMarker {
			t.Fatalf("expected empty marker in %s, got %s %q", col, v.Kind(), v.String())
		}
	}
}

func TestLeftJoin_MatchedAbsentCellBecomesEmptyMarker(t *testing.T) {
	main := file("main.csv", []string{"Nome"}, []any{"Ana"})
	sec := file("extra.csv", []string{"Nome", "Telefone"}, []any{"Ana"})
	res, err := LeftJoin(main, []*tabular.ParsedFile{sec}, Options{Strategy: StrategyExactName})
	if err != nil {
		t.Fatalf("LeftJoin error: %v", err)
	}
	if v := res.Records[0].Get("file2_Telefone"); v.IsAbsent() {
		t.Fatalf("matched absent cell must be the empty marker, got absent")
	}
}

func TestLeftJoin_FirstMatchWins(t *testing.T) {
	main := file("main.csv", []string{"name"}, []any{"Ana Silva"})
	sec := file("dups.csv", []string{"name", "Email"},
		[]any{"ana  silva", "first@x.com"},
		[]any{"ANA SILVA", "second@x.com"},
	)
	res, err := LeftJoin(main, []*tabular.ParsedFile{sec}, Options{Strategy: StrategyNormalizedName})
	if err != nil {
		t.Fatalf("LeftJoin error: %v", err)
	}
	if got := res.Records[0].Get("file2_Email").String(); got != "first@x.com" {
		t.Fatalf("expected first@x.com, got %q", got)
	}
	if res.Summary.Secondaries[0].DuplicateKeys != 1 {
		t.Fatalf("expected 1 duplicate key, got %d", res.Summary.Secondaries[0].DuplicateKeys)
	}
}

func TestLeftJoin_ExactNameIsCaseSensitive(t *testing.T) {
	main := file("main.csv", []string{"name"}, []any{"Ana"}, []any{"ana"})
	sec := file("s.csv", []string{"name", "Score"}, []any{"ana", 9.0})
	res, err := LeftJoin(main, []*tabular.ParsedFile{sec}, Options{Strategy: StrategyExactName})
	if err != nil {
		t.Fatalf("LeftJoin error: %v", err)
	}
	if got := res.Records[0].Get("file2_Score").String(); got != "" {
		t.Fatalf("exact match must not lowercase, got %q", got)
	}
	if got := res.Records[1].Get("file2_Score"); got.Kind() != tabular.KindNumber {
		t.Fatalf("matched numeric cell must keep its kind, got %s", got.Kind())
	}
}

func TestLeftJoin_LinkedInURL(t *testing.T) {
	main := file("main.csv", []string{"LinkedIn"},
		[]any{"https://www.linkedin.com/in/ana-silva/"},
		[]any{"linkedin.com/in/bob"},
	)
	sec := file("s.csv", []string{"Perfil LinkedIn", "Cargo"},
		[]any{"http://linkedin.com/in/Ana-Silva?utm_source=x", "CTO"},
		[]any{"https://www.linkedin.com/in/bob#about", "CEO"},
	)
	res, err := LeftJoin(main, []*tabular.ParsedFile{sec}, Options{Strategy: StrategyLinkedInURL})
	if err != nil {
		t.Fatalf("LeftJoin error: %v", err)
	}
	for i, expected := range []string{"CTO", "CEO"} {
		if got := res.Records[i].Get("file2_Cargo").String(); got != expected {
			t.Fatalf("row %d expected %s, got %q", i, expected, got)
		}
	}
}

func TestNormalizeLinkedInURL(t *testing.T) {
	cases := []struct {
		in       string
		expected string
	}{
		{"https://www.linkedin.com/in/ana/", "linkedin.com/in/ana"},
		{"HTTP://LinkedIn.com/in/Ana?x=1", "linkedin.com/in/ana"},
		{" linkedin.com/in/ana// ", "linkedin.com/in/ana"},
		{"www.linkedin.com/in/ana#top", "linkedin.com/in/ana"},
	}
	for _, tc := range cases {
		if got := NormalizeLinkedInURL(tc.in); got != tc.expected {
			t.Fatalf("NormalizeLinkedInURL(%q) expected %s, got %s", tc.in, tc.expected, got)
		}
	}
}

func TestLeftJoin_MultipleSecondariesArePrefixedByPosition(t *testing.T) {
	main := file("main.csv", []string{"name"}, []any{"Ana"})
	a := file("a.csv", []string{"name", "Email"}, []any{"Ana", "a@x.com"})
	b := file("b.csv", []string{"name", "Email"}, []any{"Ana", "a@y.com"})
	res, err := LeftJoin(main, []*tabular.ParsedFile{a, b}, Options{})
	if err != nil {
		t.Fatalf("LeftJoin error: %v", err)
	}
	expected := map[string]string{"name": "Ana", "file2_Email": "a@x.com", "file3_Email": "a@y.com"}
	if diff := cmp.Diff(expected, res.Records[0].Strings()); diff != "" {
		t.Fatalf("record mismatch (-want +got):\n%s", diff)
	}
}

func TestLeftJoin_MainColumnsWinOnCollision(t *testing.T) {
	main := file("main.csv", []string{"name", "file2_Email"}, []any{"Ana", "kept@main.com"})
	sec := file("s.csv", []string{"name", "Email"}, []any{"Ana", "other@x.com"})
	res, err := LeftJoin(main, []*tabular.ParsedFile{sec}, Options{})
	if err != nil {
		t.Fatalf("LeftJoin error: %v", err)
	}
	if got := res.Records[0].Get("file2_Email").String(); got != "kept@main.com" {
		t.Fatalf("main column must not be overwritten, got %q", got)
	}
}

func TestLeftJoin_ZeroSecondariesIsIdentity(t *testing.T) {
	main := file("main.csv", []string{"name", "company"}, []any{"Ana", "Acme"}, []any{"Bob", nil})
	res, err := LeftJoin(main, nil, Options{})
	if err != nil {
		t.Fatalf("LeftJoin error: %v", err)
	}
	if len(res.Records) != len(main.Rows) {
		t.Fatalf("expected %d records, got %d", len(main.Rows), len(res.Records))
	}
	for i := range main.Rows {
		if diff := cmp.Diff(main.Rows[i].Strings(), res.Records[i].Strings()); diff != "" {
			t.Fatalf("row %d mismatch (-want +got):\n%s", i, diff)
		}
	}
	res.Records[0].Set("name", tabular.String("changed"))
	if main.Rows[0].Get("name").String() != "Ana" {
		t.Fatalf("join must not mutate the main file")
	}
}

func TestLeftJoin_OutputLengthEqualsMainRows(t *testing.T) {
	for rows := 0; rows < 30; rows += 7 {
		main := file("main.csv", []string{"name"})
		sec := file("s.csv", []string{"name", "x"})
		for i := 0; i < rows; i++ {
			main.Rows = append(main.Rows, tabular.RecordOf("name", fmt.Sprintf("lead %d", i%3)))
			sec.Rows = append(sec.Rows, tabular.RecordOf("name", fmt.Sprintf("lead %d", i%2), "x", i))
		}
		main.RowCount, sec.RowCount = len(main.Rows), len(sec.Rows)
		res, err := LeftJoin(main, []*tabular.ParsedFile{sec, sec}, Options{})
		if err != nil {
			t.Fatalf("LeftJoin error: %v", err)
		}
		if len(res.Records) != rows {
			t.Fatalf("expected %d records, got %d", rows, len(res.Records))
		}
	}
}

func TestLeftJoin_ConfigErrors(t *testing.T) {
	main := file("main.csv", []string{"company"}, []any{"Acme"})
	sec := file("s.csv", []string{"name"}, []any{"Ana"})

	cases := []struct {
		name string
		opts Options
	}{
		{"missing requested column", Options{KeyColumn: "name"}},
		{"no candidate column", Options{}},
		{"unknown strategy", Options{Strategy: "soundex", KeyColumn: "company"}},
		{"missing secondary column", Options{KeyColumn: "company", SecondaryKeyColumns: map[int]string{0: "nope"}}},
	}
	for _, tc := range cases {
		_, err := LeftJoin(main, []*tabular.ParsedFile{sec}, tc.opts)
		var jce *JoinConfigError
		if !errors.As(err, &jce) {
			t.Fatalf("%s: expected JoinConfigError, got %v", tc.name, err)
		}
	}
}

// A bad key column is reported even for a main file that has no rows at all.
func TestLeftJoin_ConfigCheckedBeforeRows(t *testing.T) {
	main := file("main.csv", []string{"company"})
	_, err := LeftJoin(main, nil, Options{KeyColumn: "name"})
	var jce *JoinConfigError
	if !errors.As(err, &jce) || jce.Column != "name" {
		t.Fatalf("expected JoinConfigError for column name, got %v", err)
	}
}

func TestLeftJoin_SecondaryWithoutKeyContributesEmptyColumns(t *testing.T) {
	main := file("main.csv", []string{"name"}, []any{"Ana"})
	sec := file("s.csv", []string{"Email"}, []any{"a@x.com"})
	res, err := LeftJoin(main, []*tabular.ParsedFile{sec}, Options{})
	if err != nil {
		t.Fatalf("LeftJoin error: %v", err)
	}
	if v, ok := res.Records[0].Lookup("file2_Email"); !ok || v.String() != "" {
		t.Fatalf("expected empty file2_Email, got %v present=%v", v, ok)
	}
}

func TestParseStrategy(t *testing.T) {
	cases := []struct {
		in       string
		expected Strategy
	}{
		{"", StrategyNormalizedName},
		{"exact-name", StrategyExactName},
		{"Normalized-Name", StrategyNormalizedName},
		{"lead-name", StrategyNormalizedName},
		{"linkedin", StrategyLinkedInURL},
	}
	for _, tc := range cases {
		got, err := ParseStrategy(tc.in)
		if err != nil {
			t.Fatalf("ParseStrategy(%q) error: %v", tc.in, err)
		}
		if got != tc.expected {
			t.Fatalf("ParseStrategy(%q) expected %s, got %s", tc.in, tc.expected, got)
		}
	}
	if _, err := ParseStrategy("soundex"); err == nil {
		t.Fatalf("ParseStrategy(soundex) expected error")
	}
}
