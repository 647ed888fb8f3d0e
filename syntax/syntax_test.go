package syntax

import (
	"strconv"
	"testing"

	"github.com/coregx/pcomb/engine/printvm"
	"github.com/coregx/pcomb/engine/stackvm"
	"github.com/coregx/pcomb/internal/bitset"
	"github.com/coregx/pcomb/internal/regex"
	"github.com/coregx/pcomb/perr"
	"github.com/coregx/pcomb/target"
)

func digitRegex() regex.Regex  { return regex.AnyDigit() }
func digitsRegex() regex.Regex { return regex.Digits() }

func parse[V any](t *testing.T, s Syntax[V], input string) (V, perr.ParserError) {
	t.Helper()
	v, err, _ := stackvm.Run(s.P, input, stackvm.DefaultConfig())
	if err != nil {
		var zero V
		return zero, err
	}
	return v.(V), nil
}

func print[V any](t *testing.T, s Syntax[V], val V) (string, perr.ParserError) {
	t.Helper()
	tgt := target.NewStringTarget(0)
	if err := printvm.Print[string](s.Pr, val, tgt); err != nil {
		return "", err
	}
	return tgt.Finish(), nil
}

func TestCharInMatchesSingleChar(t *testing.T) {
	s := CharIn(bitset.FromBytes('A'), "expected A")
	v, err := parse(t, s, "A")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if v != "A" {
		t.Fatalf("value = %q, want %q", v, "A")
	}

	out, err := print(t, s, "A")
	if err != nil {
		t.Fatalf("print: %v", err)
	}
	if out != "A" {
		t.Fatalf("print output = %q", out)
	}

	if _, err := parse(t, s, "B"); err == nil {
		t.Fatalf("expected failure parsing B against charIn(A)")
	}
}

func TestRepeat1PlusEndOnTrailingJunk(t *testing.T) {
	digit := RegexString(digitRegex(), "expected digit")
	grammar := ZipLeft(AtLeast(digit, 1), End(), struct{}{})

	_, err := parse(t, grammar, "123x")
	if err == nil {
		t.Fatalf("expected failure: input not fully consumed by repeat+end")
	}
	if perr.Position(err) != 3 {
		t.Fatalf("failure position = %d, want 3", perr.Position(err))
	}

	v, err := parse(t, grammar, "123")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(v) != 3 {
		t.Fatalf("value = %v, want 3 digits", v)
	}
}

func TestOrElseLiteralBooleanRoundTrip(t *testing.T) {
	boolSyntax := OrElse(Literal("true", true, "expected true"), func() Syntax[bool] {
		return Literal("false", false, "expected false")
	})

	v, err := parse(t, boolSyntax, "false")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if v != false {
		t.Fatalf("value = %v, want false", v)
	}

	out, err := print(t, boolSyntax, false)
	if err != nil {
		t.Fatalf("print: %v", err)
	}
	if out != "false" {
		t.Fatalf("print output = %q, want %q", out, "false")
	}

	out, err = print(t, boolSyntax, true)
	if err != nil {
		t.Fatalf("print true: %v", err)
	}
	if out != "true" {
		t.Fatalf("print output = %q, want %q", out, "true")
	}
}

func TestRepeatWithSepRoundTrip(t *testing.T) {
	digit := RegexString(digitRegex(), "expected digit")
	comma := Literal(",", struct{}{}, "expected comma")
	list := RepeatWithSep(digit, comma, true)

	v, err := parse(t, list, "1,2,3")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := []string{"1", "2", "3"}
	if len(v) != len(want) {
		t.Fatalf("value = %v, want %v", v, want)
	}
	for i := range want {
		if v[i] != want[i] {
			t.Fatalf("value[%d] = %q, want %q", i, v[i], want[i])
		}
	}

	out, err := print(t, list, v)
	if err != nil {
		t.Fatalf("print: %v", err)
	}
	if out != "1,2,3" {
		t.Fatalf("print output = %q, want %q", out, "1,2,3")
	}
}

func TestNamedReportsNameChainAndPosition(t *testing.T) {
	octet := RegexString(digitRegex(), "expected digit")
	dot := Literal(".", struct{}{}, "expected dot")
	octetDot := func(next Syntax[string]) Syntax[string] {
		return ZipRight(dot, struct{}{}, next)
	}
	ip := Named(Zip(Zip(octet, octetDot(octet)), octetDot(octet)), "ip")

	_, err := parse(t, ip, "1.2.x")
	if err == nil {
		t.Fatalf("expected failure")
	}
	if perr.Position(err) != 4 {
		t.Fatalf("position = %d, want 4", perr.Position(err))
	}
	chain := perr.NameChain(err)
	if len(chain) != 1 || chain[0] != "ip" {
		t.Fatalf("name chain = %v, want [ip]", chain)
	}
}

func TestOptionalRoundTrip(t *testing.T) {
	digit := RegexString(digitRegex(), "expected digit")
	opt := Optional(digit)

	v, err := parse(t, opt, "x")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if v.Present {
		t.Fatalf("expected absent, got %+v", v)
	}
	out, err := print(t, opt, v)
	if err != nil {
		t.Fatalf("print absent: %v", err)
	}
	if out != "" {
		t.Fatalf("print absent output = %q, want empty", out)
	}

	v, err = parse(t, opt, "5")
	if err != nil {
		t.Fatalf("parse present: %v", err)
	}
	if !v.Present || v.Value != "5" {
		t.Fatalf("value = %+v, want present 5", v)
	}
	out, err = print(t, opt, v)
	if err != nil {
		t.Fatalf("print present: %v", err)
	}
	if out != "5" {
		t.Fatalf("print present output = %q, want 5", out)
	}
}

func TestTransformRoundTrip(t *testing.T) {
	digits := RegexString(digitsRegex(), "expected digits")
	num := Transform(digits,
		func(s string) (int, error) { return strconv.Atoi(s) },
		func(n int) (string, error) { return strconv.Itoa(n), nil },
		"not a number",
	)

	v, err := parse(t, num, "42")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if v != 42 {
		t.Fatalf("value = %d, want 42", v)
	}

	out, err := print(t, num, 42)
	if err != nil {
		t.Fatalf("print: %v", err)
	}
	if out != "42" {
		t.Fatalf("print output = %q, want 42", out)
	}
}

func TestZipRoundTrip(t *testing.T) {
	a := Literal("a", struct{}{}, "expected a")
	digit := RegexString(digitRegex(), "expected digit")
	s := Zip(a, digit)

	v, err := parse(t, s, "a7")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if v.Second != "7" {
		t.Fatalf("value = %+v", v)
	}

	out, err := print(t, s, v)
	if err != nil {
		t.Fatalf("print: %v", err)
	}
	if out != "a7" {
		t.Fatalf("print output = %q, want a7", out)
	}
}
