package annotation

import (
	"regexp"
	"strings"
)

const (
	tokenOpen  = "{{"
	tokenClose = "}}"
	specClose  = "]}}"
)

// headPattern matches everything up to and including the opening bracket of
// the spec literal. The literal body is scanned by hand because RE2 cannot
// express "shortest body that does not cross another token".
var headPattern = regexp.MustCompile(
	`\{\{(VARINPUT|VARTEXTAREA|VAULTPASSWORD|SELECT|RANGE|KVJSON|INPUT|TEXTAREA|PASSWORD):([A-Za-z0-9 _]+):\[`,
)

// Parse scans raw for annotation tokens. Matching is global, case sensitive
// and non-overlapping. Malformed candidates are skipped; Parse never fails.
func Parse(raw string) []Token {
	if !headPattern.MatchString(raw) {
		return nil
	}
	var tokens []Token
	pos := 0
	for pos < len(raw) {
		loc := headPattern.FindStringSubmatchIndex(raw[pos:])
		if loc == nil {
			break
		}
		start := pos + loc[0]
		bracket := pos + loc[1] - 1
		literal, end, ok := scanLiteral(raw, bracket)
		if !ok {
			pos = start + len(tokenOpen)
			continue
		}
		tokens = append(tokens, Token{
			Tag:         Tag(raw[pos+loc[2] : pos+loc[3]]),
			Label:       raw[pos+loc[4] : pos+loc[5]],
			SpecLiteral: literal,
			Start:       start,
			End:         end,
		})
		pos = end
	}
	return tokens
}

// scanLiteral reads the bracketed literal that starts at raw[bracket]. The
// literal ends at the first "]}}". A body holding "{{" or "}}" belongs to a
// neighbouring token and is rejected.
func scanLiteral(raw string, bracket int) (string, int, bool) {
	rel := strings.Index(raw[bracket:], specClose)
	if rel < 0 {
		return "", 0, false
	}
	literal := raw[bracket : bracket+rel+1]
	body := literal[1 : len(literal)-1]
	if strings.Contains(body, tokenOpen) || strings.Contains(body, tokenClose) {
		return "", 0, false
	}
	return literal, bracket + rel + len(specClose), true
}

// HasAnnotations reports whether raw carries at least one token.
func HasAnnotations(raw string) bool {
	return len(Parse(raw)) > 0
}
