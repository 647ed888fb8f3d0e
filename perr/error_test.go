package perr

import (
	"errors"
	"testing"
)

func TestPositionAccessor(t *testing.T) {
	tests := []struct {
		name string
		err  ParserError
		want int
	}{
		{"Failure", &Failure{Pos: 4, Err: "boom"}, 4},
		{"UnexpectedEndOfInput", &UnexpectedEndOfInput{Pos: 7}, 7},
		{"UnknownFailure", &UnknownFailure{Pos: 2}, 2},
		{"NotConsumedAll", &NotConsumedAll{Pos: 3}, 3},
		{"AllBranchesFailed", &AllBranchesFailed{Left: &Failure{Pos: 1}, Right: &Failure{Pos: 2}}, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Position(tt.err); got != tt.want {
				t.Fatalf("Position(%T) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestAllBranchesFailedRetainsBothNoFlattening(t *testing.T) {
	left := &Failure{Pos: 1, Err: "left failed"}
	right := &Failure{Pos: 1, Err: "right failed"}
	combined := &AllBranchesFailed{Left: left, Right: right}

	if !errors.Is(combined, left) {
		t.Fatalf("expected errors.Is to find the left branch via Unwrap")
	}
	if combined.Right != right {
		t.Fatalf("right branch must remain reachable without flattening")
	}
}

func TestErrorsAsRecoversStructuredForm(t *testing.T) {
	var err error = &Failure{Pos: 9, NameChain: []string{"ip"}, Err: "bad octet"}
	var f *Failure
	if !errors.As(err, &f) {
		t.Fatalf("expected errors.As to recover *Failure")
	}
	if f.Pos != 9 || len(f.NameChain) != 1 || f.NameChain[0] != "ip" {
		t.Fatalf("recovered Failure has wrong fields: %+v", f)
	}
}
