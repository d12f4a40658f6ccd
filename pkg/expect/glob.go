package expect

// globIndex finds the first substring of s matched by the shell style
// pattern. It supports '*', '?', bracket classes with ranges and '^'
// negation, and backslash escapes. A leading '^' anchors the match at the
// start of s, a trailing unescaped '$' anchors it at the end.
//
// A '*' at the end of the pattern takes the rest of s, inner stars take as
// little as possible.
func globIndex(pattern string, s []byte) (int, int) {
	anchorStart := false
	if len(pattern) > 0 && pattern[0] == '^' {
		anchorStart = true
		pattern = pattern[1:]
	}
	anchorEnd := false
	if n := len(pattern); n > 0 && pattern[n-1] == '$' && !escaped(pattern, n-1) {
		anchorEnd = true
		pattern = pattern[:n-1]
	}

	for start := 0; start <= len(s); start++ {
		if end := globAt(pattern, s, start, anchorEnd); end >= 0 {
			return start, end
		}
		if anchorStart {
			break
		}
	}
	return -1, -1
}

// escaped reports whether pattern[i] is preceded by an odd number of
// backslashes
func escaped(pattern string, i int) bool {
	n := 0
	for j := i - 1; j >= 0 && pattern[j] == '\\'; j-- {
		n++
	}
	return n%2 == 1
}

// globAt matches pattern against s starting at i and returns the end of the
// match or -1.
func globAt(p string, s []byte, i int, anchorEnd bool) int {
	pi := 0
	starP, starS := -1, -1

	for {
		if pi == len(p) {
			if !anchorEnd || i == len(s) {
				return i
			}
		} else if p[pi] == '*' {
			for pi < len(p) && p[pi] == '*' {
				pi++
			}
			if pi == len(p) {
				return len(s)
			}
			starP, starS = pi, i
			continue
		} else if i < len(s) {
			if ok, next := globToken(p, pi, s[i]); ok {
				pi = next
				i++
				continue
			}
		}

		// backtrack: let the last star take one more byte
		if starP < 0 || starS >= len(s) {
			return -1
		}
		starS++
		pi, i = starP, starS
	}
}

// globToken tests c against the token starting at p[pi] and returns the
// index of the next token
func globToken(p string, pi int, c byte) (bool, int) {
	switch p[pi] {
	case '?':
		return true, pi + 1
	case '[':
		if ok, next, valid := globClass(p, pi, c); valid {
			return ok, next
		}
		// unterminated class: literal '['
		return c == '[', pi + 1
	case '\\':
		if pi+1 < len(p) {
			return c == p[pi+1], pi + 2
		}
		return c == '\\', pi + 1
	}
	return c == p[pi], pi + 1
}

// globClass matches a bracket expression. valid is false when the class
// has no closing bracket.
func globClass(p string, pi int, c byte) (ok bool, next int, valid bool) {
	j := pi + 1
	negate := false
	if j < len(p) && (p[j] == '^' || p[j] == '!') {
		negate = true
		j++
	}
	first := true
	for j < len(p) {
		if p[j] == ']' && !first {
			return ok != negate, j + 1, true
		}
		first = false

		lo := p[j]
		if lo == '\\' && j+1 < len(p) {
			j++
			lo = p[j]
		}
		j++
		hi := lo
		if j+1 < len(p) && p[j] == '-' && p[j+1] != ']' {
			hi = p[j+1]
			if hi == '\\' && j+2 < len(p) {
				j++
				hi = p[j+1]
			}
			j += 2
		}
		if lo > hi {
			lo, hi = hi, lo
		}
		if c >= lo && c <= hi {
			ok = true
		}
	}
	return false, 0, false
}
