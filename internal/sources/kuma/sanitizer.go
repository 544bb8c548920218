package kuma

import (
	"strconv"
	"strings"
	"time"
)

// Sanitize rewrites a located payload — a JavaScript object-literal
// expression, not strict JSON — into text a strict JSON parser accepts:
//
//   - bare and single-quoted object keys become double-quoted keys
//   - single-quoted string values become double-quoted, escaping embedded
//     double quotes and preserving embedded single quotes
//   - trailing commas before '}' or ']' are dropped
//   - line and block comments are stripped
//   - JS-only tokens are repaired per the token table below
//
// The whole pass is a single scanner that always knows whether it is inside a
// string literal or a comment; nothing is ever rewritten inside string
// content. The result is idempotent: sanitizing already-strict JSON is a
// no-op.
func Sanitize(in string) string {
	out := make([]byte, 0, len(in))
	i, n := 0, len(in)

	for i < n {
		c := in[i]
		switch {
		case c == '"':
			out, i = copyDoubleQuoted(in, i, out)

		case c == '\'':
			out, i = rewriteSingleQuoted(in, i, out)

		case c == '/' && i+1 < n && in[i+1] == '/':
			for i < n && in[i] != '\n' {
				i++
			}

		case c == '/' && i+1 < n && in[i+1] == '*':
			i += 2
			for i+1 < n && !(in[i] == '*' && in[i+1] == '/') {
				i++
			}
			if i+1 < n {
				i += 2
			} else {
				i = n
			}

		case c == ',':
			if j := skipInsignificant(in, i+1); j < n && (in[j] == '}' || in[j] == ']') {
				i++ // trailing comma
			} else {
				out = append(out, c)
				i++
			}

		case isIdentStart(c):
			start := i
			for i < n && isIdentPart(in[i]) {
				i++
			}
			word := in[start:i]

			// A bare identifier in key position gets quoted, whatever it is.
			// Token repair applies only in value position, otherwise a
			// repaired key would need a second pass to become valid.
			if j := skipInsignificant(in, i); j < n && in[j] == ':' && keyPosition(out) {
				out = append(out, '"')
				out = append(out, word...)
				out = append(out, '"')
				continue
			}

			if rewrite, ok := tokenRepairs[word]; ok {
				var rep string
				rep, i = rewrite(in, i)
				out = appendRepaired(out, rep)
				continue
			}

			out = append(out, word...)

		default:
			out = append(out, c)
			i++
		}
	}

	return string(out)
}

// tokenRepairs maps JS literal tokens with no JSON equivalent to a rewrite.
// The mapping is deliberately a table, not inline logic: real upstream
// payloads keep surfacing new forms and each one should land here with a test
// next to it. Current mappings, all lossy best-effort:
//
//	undefined, NaN, Infinity  -> null (a preceding sign is swallowed too)
//	new Date("<s>")           -> "<s>" (the argument string, verbatim)
//	new Date(<millis>)        -> ISO-8601 UTC string for that instant
//	new Date(<anything else>) -> null
//	Date(...), Date.now()     -> same rules as above / null
var tokenRepairs = map[string]func(src string, pos int) (string, int){
	"undefined": nullToken,
	"NaN":       nullToken,
	"Infinity":  nullToken,
	"new":       rewriteNewDate,
	"Date":      rewriteBareDate,
}

func nullToken(_ string, pos int) (string, int) {
	return "null", pos
}

// rewriteNewDate handles `new Date(<args>)`. When the following tokens do not
// form a date construction the word "new" is emitted unchanged.
func rewriteNewDate(src string, pos int) (string, int) {
	j := skipInsignificant(src, pos)
	if !strings.HasPrefix(src[j:], "Date") {
		return "new", pos
	}
	j = skipInsignificant(src, j+len("Date"))
	if j >= len(src) || src[j] != '(' {
		return "new", pos
	}
	args, end, ok := readParenGroup(src, j)
	if !ok {
		return "new", pos
	}
	return dateReplacement(args), end
}

// rewriteBareDate handles `Date(...)` and `Date.now()`.
func rewriteBareDate(src string, pos int) (string, int) {
	j := skipInsignificant(src, pos)
	if j < len(src) && src[j] == '(' {
		args, end, ok := readParenGroup(src, j)
		if !ok {
			return "Date", pos
		}
		return dateReplacement(args), end
	}
	if strings.HasPrefix(src[j:], ".") {
		k := skipInsignificant(src, j+1)
		if strings.HasPrefix(src[k:], "now") {
			k = skipInsignificant(src, k+len("now"))
			if _, end, ok := readParenGroup(src, k); ok {
				return "null", end
			}
		}
	}
	return "Date", pos
}

// dateReplacement maps date-constructor arguments to a JSON value. A single
// string argument is kept verbatim (the upstream already formats it), a
// numeric argument is taken as epoch milliseconds, anything else is null.
func dateReplacement(args string) string {
	args = strings.TrimSpace(args)
	if len(args) >= 2 && (args[0] == '"' || args[0] == '\'') && args[len(args)-1] == args[0] {
		inner := args[1 : len(args)-1]
		return strconv.Quote(inner)
	}
	if millis, err := strconv.ParseInt(args, 10, 64); err == nil {
		return strconv.Quote(time.UnixMilli(millis).UTC().Format(time.RFC3339))
	}
	return "null"
}

// readParenGroup reads a balanced, string-aware parenthesized group opening
// at src[open] == '(' and returns its inside plus the index just past ')'.
func readParenGroup(src string, open int) (inside string, end int, ok bool) {
	if open >= len(src) || src[open] != '(' {
		return "", 0, false
	}
	depth := 0
	for i := open; i < len(src); i++ {
		switch src[i] {
		case '"', '\'', '`':
			i = skipJSString(src, i) - 1
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return src[open+1 : i], i + 1, true
			}
		}
	}
	return "", 0, false
}

// appendRepaired writes a repaired token, swallowing a dangling sign in front
// of a null so `-Infinity` does not become the invalid `-null`.
func appendRepaired(out []byte, rep string) []byte {
	if rep == "null" {
		j := len(out)
		for j > 0 && isSpace(out[j-1]) {
			j--
		}
		if j > 0 && (out[j-1] == '-' || out[j-1] == '+') {
			out = out[:j-1]
		}
	}
	return append(out, rep...)
}

// copyDoubleQuoted copies a double-quoted string verbatim, escapes included.
func copyDoubleQuoted(in string, i int, out []byte) ([]byte, int) {
	n := len(in)
	out = append(out, in[i])
	i++
	for i < n {
		c := in[i]
		if c == '\\' && i+1 < n {
			out = append(out, c, in[i+1])
			i += 2
			continue
		}
		out = append(out, c)
		i++
		if c == '"' {
			break
		}
	}
	return out, i
}

// rewriteSingleQuoted converts a single-quoted JS string into a double-quoted
// JSON string: embedded double quotes gain an escape, escaped single quotes
// lose theirs.
func rewriteSingleQuoted(in string, i int, out []byte) ([]byte, int) {
	n := len(in)
	out = append(out, '"')
	i++
	for i < n {
		c := in[i]
		switch {
		case c == '\\' && i+1 < n:
			if in[i+1] == '\'' {
				out = append(out, '\'')
			} else {
				out = append(out, c, in[i+1])
			}
			i += 2
		case c == '\'':
			out = append(out, '"')
			return out, i + 1
		case c == '"':
			out = append(out, '\\', '"')
			i++
		default:
			out = append(out, c)
			i++
		}
	}
	return out, i
}

// skipInsignificant advances past whitespace and comments without emitting.
func skipInsignificant(s string, i int) int {
	n := len(s)
	for i < n {
		switch {
		case isSpace(s[i]):
			i++
		case s[i] == '/' && i+1 < n && s[i+1] == '/':
			for i < n && s[i] != '\n' {
				i++
			}
		case s[i] == '/' && i+1 < n && s[i+1] == '*':
			i += 2
			for i+1 < n && !(s[i] == '*' && s[i+1] == '/') {
				i++
			}
			if i+1 < n {
				i += 2
			} else {
				return n
			}
		default:
			return i
		}
	}
	return i
}

// keyPosition reports whether the next emitted token would sit in object-key
// position, judged by the last significant byte already written.
func keyPosition(out []byte) bool {
	for j := len(out) - 1; j >= 0; j-- {
		if isSpace(out[j]) {
			continue
		}
		return out[j] == '{' || out[j] == ','
	}
	return true
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}
