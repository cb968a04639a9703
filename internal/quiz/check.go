package quiz

import (
	"log/slog"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Check reports whether a is the correct answer to q. An answer of the
// wrong shape for the question is incorrect.
func Check(q Question, a Answer) bool {
	if !Answered(a) {
		return false
	}

	switch q := q.(type) {
	case MultipleChoice:
		return checkChoice(q, a)
	case TrueFalse:
		b, ok := a.(Bool)
		return ok && bool(b) == q.Correct
	case TextInput:
		t, ok := a.(Text)
		return ok && MatchText(q.Answer, string(t), q.CaseSensitive, q.Numeric, q.Tolerance)
	case Matching:
		p, ok := a.(Pairs)
		return ok && checkPairs(q, p)
	}
	return false
}

func checkChoice(q MultipleChoice, a Answer) bool {
	if !q.Multiple {
		c, ok := a.(Choice)
		return ok && len(q.Correct) == 1 && int(c) == q.Correct[0]
	}

	var picked []int
	switch a := a.(type) {
	case Choices:
		picked = a
	case Choice:
		picked = []int{int(a)}
	default:
		return false
	}
	return sameSet(picked, q.Correct)
}

// sameSet reports whether a and b hold exactly the same members.
// Duplicate selections never match.
func sameSet(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	want := make(map[int]bool, len(b))
	for _, v := range b {
		want[v] = true
	}
	seen := make(map[int]bool, len(a))
	for _, v := range a {
		if !want[v] || seen[v] {
			return false
		}
		seen[v] = true
	}
	return len(seen) == len(want)
}

func checkPairs(q Matching, pairs Pairs) bool {
	if len(pairs) != len(q.Correct) {
		return false
	}
	seen := make(map[int]bool, len(pairs))
	for _, p := range pairs {
		if p.Left < 0 || p.Left >= len(q.Correct) || seen[p.Left] {
			return false
		}
		seen[p.Left] = true
		if q.Correct[p.Left] != p.Right {
			return false
		}
	}
	return true
}

// MatchText compares a submission against an answer key. The submission is
// trimmed. Keys of the form /pattern/ are regular expressions. Numeric keys
// compare as floats within tolerance (DefaultTolerance when tolerance <= 0).
// Otherwise the comparison ignores case unless caseSensitive is set.
func MatchText(key, submitted string, caseSensitive, numeric bool, tolerance float64) bool {
	submitted = trimSpace(submitted)

	if pattern, ok := regexKey(key); ok {
		re, err := regexp.Compile(pattern)
		if err != nil {
			slog.Warn("invalid answer pattern", "pattern", key, "error", err)
			return false
		}
		return re.MatchString(submitted)
	}

	if numeric {
		if tolerance <= 0 {
			tolerance = DefaultTolerance
		}
		got, err1 := parseNumber(submitted)
		want, err2 := parseNumber(key)
		if err1 != nil || err2 != nil {
			return false
		}
		return math.Abs(got-want) <= tolerance
	}

	if caseSensitive {
		return submitted == key
	}
	return strings.EqualFold(submitted, key)
}

func regexKey(key string) (string, bool) {
	if len(key) >= 2 && strings.HasPrefix(key, "/") && strings.HasSuffix(key, "/") {
		return key[1 : len(key)-1], true
	}
	return "", false
}

// parseNumber accepts a decimal comma as well as a decimal point.
func parseNumber(s string) (float64, error) {
	return strconv.ParseFloat(strings.Replace(trimSpace(s), ",", ".", 1), 64)
}

func trimSpace(s string) string {
	return strings.TrimSpace(s)
}
