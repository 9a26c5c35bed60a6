package table

import "testing"

func TestFormatAlignsColumns(t *testing.T) {
	headers := []string{"#", "Question", "Answer"}
	rows := [][]string{
		{"1", "Capital of France?", "Paris"},
		{"12", "2 + 2?", "4"},
	}

	lines := Format(headers, rows, map[int]bool{0: true})
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != " # Question           Answer" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != " 1 Capital of France? Paris" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
	if lines[2] != "12 2 + 2?             4" {
		t.Fatalf("unexpected row line: %q", lines[2])
	}
}

func TestFormatWideRunes(t *testing.T) {
	lines := Format([]string{"A", "B"}, [][]string{{"日本", "x"}}, nil)
	if lines[0] != "A    B" || lines[1] != "日本 x" {
		t.Fatalf("unexpected lines: %q", lines)
	}
}

func TestFit(t *testing.T) {
	if got := Fit("short", 10); got != "short" {
		t.Fatalf("unexpected fit: %q", got)
	}
	if got := Fit("abcdefghij", 5); got != "abcd…" {
		t.Fatalf("unexpected fit: %q", got)
	}
	if got := Fit("abcdefghij", 0); got != "abcdefghij" {
		t.Fatalf("zero width must not truncate: %q", got)
	}
}
