package expect

import (
	"errors"
	"regexp"
	"testing"
)

func TestCaseValidate(t *testing.T) {
	bad := []Case{
		Exact("", 1),
		Glob("", 1),
		Regexp("", 1),
		{Kind: KindCompiled},
		{Kind: Kind(42)},
	}
	for _, c := range bad {
		if _, err := arm([]Case{c}); !errors.Is(err, ErrBadCase) {
			t.Errorf("%s case accepted: %v", c.Kind, err)
		}
	}

	good := []Case{
		Exact("x", 1),
		Glob("x*", 1),
		Regexp("x+", 1),
		Compiled(regexp.MustCompile("x"), 1),
		Null(1),
		EOF(1),
		Timeout(1),
	}
	if _, err := arm(good); err != nil {
		t.Fatal(err)
	}
}

func TestCaseMatchKinds(t *testing.T) {
	buf := []byte("user@host:~$ ls\x00")
	tests := []struct {
		c          Case
		start, end int
	}{
		{Exact("host", nil), 5, 9},
		{Glob("*$ ", nil), 0, 13},
		{Regexp(`[a-z]+@[a-z]+`, nil), 0, 9},
		{Compiled(regexp.MustCompile(`~\$`), nil), 10, 12},
		{Null(nil), 15, 16},
		{Exact("nope", nil), -1, -1},
	}
	for _, tt := range tests {
		armed, err := arm([]Case{tt.c})
		if err != nil {
			t.Fatal(err)
		}
		start, end, err := armed[0].match(RegexpCompiler, buf, 0)
		if err != nil {
			t.Fatal(err)
		}
		if start != tt.start || end != tt.end {
			t.Errorf("%s %q: got (%d, %d) want (%d, %d)",
				tt.c.Kind, tt.c.Pattern, start, end, tt.start, tt.end)
		}
	}
}

func TestExactResumesFromScanCursor(t *testing.T) {
	armed, _ := arm([]Case{Exact("abc", nil)})
	// "ab" was scanned already, the pattern may still straddle the cursor
	buf := []byte("xxabc")
	start, end, _ := armed[0].match(nil, buf, 4)
	if start != 2 || end != 5 {
		t.Fatalf("got (%d, %d)", start, end)
	}
}

func TestBadRegexpIsBadCase(t *testing.T) {
	armed, err := arm([]Case{Regexp("(", nil)})
	if err != nil {
		t.Fatal(err)
	}
	_, _, err = armed[0].match(RegexpCompiler, []byte("data"), 0)
	if !errors.Is(err, ErrBadCase) {
		t.Fatalf("expected ErrBadCase, got %v", err)
	}
}
