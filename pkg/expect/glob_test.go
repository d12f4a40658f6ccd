package expect

import "testing"

func TestGlobIndex(t *testing.T) {
	tests := []struct {
		pattern    string
		input      string
		start, end int
	}{
		{"login: ", "Welcome\nlogin: ", 8, 15},
		{"a*c", "xxabbbcdc", 2, 7},
		{"a*", "xxabc", 2, 5},
		{"*", "abc", 0, 3},
		{"^ab", "xab", -1, -1},
		{"^xa", "xab", 0, 2},
		{"b$", "abab", 3, 4},
		{"h?llo", "say hello", 4, 9},
		{"[0-9][0-9]", "port 8022", 5, 7},
		{"[^a-z]", "abc1", 3, 4},
		{"[!a-z]", "abc1", 3, 4},
		{`\*`, "a*b", 1, 2},
		{`a\$`, "a$", 0, 2},
		{"[abc", "x[abc", 1, 5},
		{"[]x]", "a]", 1, 2},
		{"zzz", "abc", -1, -1},
		{"password:*", "Password: password: ", 10, 20},
	}
	for _, tt := range tests {
		start, end := globIndex(tt.pattern, []byte(tt.input))
		if start != tt.start || end != tt.end {
			t.Errorf("glob %q on %q: got (%d, %d) want (%d, %d)",
				tt.pattern, tt.input, start, end, tt.start, tt.end)
		}
	}
}
