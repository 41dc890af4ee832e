package table

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestParseNumeric(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"12.5", 12.5, true},
		{"0,5", 0.5, true},
		{"1.000,5", 1000.5, true},
		{"1,000.5", 1000.5, true},
		{"1,000", 1000, true},
		{"12,500", 12500, true},
		{"0,500", 0.5, true},
		{"-0,250", -0.25, true},
		{"45%", 45, true},
		{"", 0, false},
		{"NaN", 0, false},
		{"abc", 0, false},
	}
	for _, c := range cases {
		got, ok := ParseNumeric(c.in)
		if ok != c.ok {
			t.Fatalf("ParseNumeric(%q) ok=%v, want %v", c.in, ok, c.ok)
		}
		if ok && math.Abs(got-c.want) > 1e-9 {
			t.Fatalf("ParseNumeric(%q)=%v, want %v", c.in, got, c.want)
		}
	}
}

func TestFromRecordsMissingValues(t *testing.T) {
	df, err := FromRecords(
		[]string{"\ufefftime", "ec", "note"},
		[][]string{{"2025-05-01 10:00", "1.2", "a"}, {"2025-05-01 11:00", ""}, {"2025-05-01 12:00", "x", "c"}},
		[]string{"ec"},
	)
	if err != nil {
		t.Fatalf("FromRecords: %v", err)
	}
	if !HasColumn(df, "time") {
		t.Fatalf("BOM not stripped from header: %v", df.Names())
	}
	ec, ok := Floats(df, "ec")
	if !ok || len(ec) != 3 {
		t.Fatalf("ec column = %v, %v", ec, ok)
	}
	if ec[0] != 1.2 || !math.IsNaN(ec[1]) || !math.IsNaN(ec[2]) {
		t.Fatalf("unexpected ec values %v", ec)
	}
	strs, _ := Strings(df, "ec")
	if strs[0] != "1.2" || strs[1] != "" {
		t.Fatalf("unexpected rendering %q", strs)
	}
	note, _ := Strings(df, "note")
	if note[1] != "" {
		t.Fatalf("short row not padded: %q", note)
	}
	if IsFloat(df, "note") || !IsFloat(df, "ec") {
		t.Fatalf("column types wrong")
	}
}

func TestFromRecordsDuplicateHeader(t *testing.T) {
	if _, err := FromRecords([]string{"a", "a"}, nil, nil); err == nil {
		t.Fatalf("expected duplicate column error")
	}
}

func TestSortByTime(t *testing.T) {
	df, err := FromRecords(
		[]string{"time", "v"},
		[][]string{{"2025-05-01 12:00", "3"}, {"2025-05-01 10:00", "1"}, {"2025-05-01 11:00", "2"}},
		[]string{"v"},
	)
	if err != nil {
		t.Fatal(err)
	}
	sorted, ok := SortByTime(df, "time")
	if !ok {
		t.Fatalf("expected sort to apply")
	}
	v, _ := Floats(sorted, "v")
	for i, want := range []float64{1, 2, 3} {
		if v[i] != want {
			t.Fatalf("row %d = %v, want %v", i, v[i], want)
		}
	}

	bad, _ := FromRecords([]string{"time"}, [][]string{{"later"}, {"2025-05-01"}}, nil)
	if _, ok := SortByTime(bad, "time"); ok {
		t.Fatalf("unparsable timestamps must leave order unchanged")
	}
}

func TestReadCSV(t *testing.T) {
	in := "time,temperature,ec\n2025-05-01 10:00, 21.5,1.0\n\n2025-05-01 11:00,,1.1\n"
	df, err := ReadCSV(strings.NewReader(in), []string{"temperature", "ec"})
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if df.Nrow() != 2 {
		t.Fatalf("rows = %d, want 2 (blank lines skipped)", df.Nrow())
	}
	temp, _ := Floats(df, "temperature")
	if temp[0] != 21.5 || !math.IsNaN(temp[1]) {
		t.Fatalf("temperature = %v", temp)
	}
	if _, err := ReadCSV(strings.NewReader(""), nil); err == nil {
		t.Fatalf("expected error for empty input")
	}
}

func TestWorkbookRoundTrip(t *testing.T) {
	df, err := FromRecords(
		[]string{"생중량(g)", "학교"},
		[][]string{{"12.5", "송도고"}, {"", "하늘고"}},
		[]string{"생중량(g)"},
	)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := WriteWorkbook(&buf, "결과", df); err != nil {
		t.Fatalf("WriteWorkbook: %v", err)
	}
	sheets, err := ReadWorkbook(&buf, []string{"생중량(g)"})
	if err != nil {
		t.Fatalf("ReadWorkbook: %v", err)
	}
	if len(sheets) != 1 || sheets[0].Name != "결과" {
		t.Fatalf("sheets = %+v", sheets)
	}
	got := sheets[0].Frame
	w, _ := Floats(got, "생중량(g)")
	if got.Nrow() != 2 || w[0] != 12.5 || !math.IsNaN(w[1]) {
		t.Fatalf("weights = %v (rows %d)", w, got.Nrow())
	}
	labels, _ := Strings(got, "학교")
	if labels[1] != "하늘고" {
		t.Fatalf("labels = %q", labels)
	}
}

func TestReadWorkbookBlankHeader(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", "송도고"); err != nil {
		t.Fatal(err)
	}
	if _, err := f.NewSheet("하늘고"); err != nil {
		t.Fatal(err)
	}
	if _, err := f.NewSheet("빈시트"); err != nil {
		t.Fatal(err)
	}
	// 송도고 has a header; 하늘고 has data under an empty first row; 빈시트 is empty.
	if err := f.SetSheetRow("송도고", "A1", &[]any{"생중량(g)"}); err != nil {
		t.Fatal(err)
	}
	if err := f.SetSheetRow("송도고", "A2", &[]any{10.0}); err != nil {
		t.Fatal(err)
	}
	if err := f.SetSheetRow("하늘고", "A2", &[]any{30.0}); err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatal(err)
	}

	sheets, err := ReadWorkbook(&buf, []string{"생중량(g)"})
	if err != nil {
		t.Fatalf("ReadWorkbook: %v", err)
	}
	if len(sheets) != 2 || sheets[0].Name != "송도고" || sheets[1].Name != "하늘고" {
		t.Fatalf("sheets = %+v", sheets)
	}
	if n := len(sheets[1].Frame.Names()); n != 0 {
		t.Fatalf("blank-header sheet should have no columns, got %d", n)
	}
}
