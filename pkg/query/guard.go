package query

import "strings"

// CheckBlacklist rejects raw SQL whose top-level keywords include a
// blacklisted word. The scan is lexical, not a parse: it walks depth-0
// tokens outside quoted literals, so a blacklisted keyword inside a string
// literal or a parenthesized subexpression passes.
//
// An empty blacklist accepts everything.
func CheckBlacklist(sqlText string, blacklist []string) error {
	if len(blacklist) == 0 {
		return nil
	}

	banned := make(map[string]string, len(blacklist))
	for _, kw := range blacklist {
		kw = strings.TrimSpace(kw)
		if kw != "" {
			banned[strings.ToLower(kw)] = kw
		}
	}
	if len(banned) == 0 {
		return nil
	}

	for _, token := range topLevelTokens(sqlText) {
		if kw, ok := banned[token]; ok {
			return &RejectedError{Keyword: kw}
		}
	}
	return nil
}

// topLevelTokens yields lowercased word tokens at paren depth zero, skipping
// single- and double-quoted regions.
func topLevelTokens(sqlText string) []string {
	var tokens []string
	var word strings.Builder
	depth := 0
	var quote rune

	flush := func() {
		if word.Len() > 0 {
			if depth == 0 {
				tokens = append(tokens, strings.ToLower(word.String()))
			}
			word.Reset()
		}
	}

	for _, r := range sqlText {
		if quote != 0 {
			if r == quote {
				quote = 0
			}
			continue
		}
		switch {
		case r == '\'' || r == '"':
			flush()
			quote = r
		case r == '(':
			flush()
			depth++
		case r == ')':
			flush()
			if depth > 0 {
				depth--
			}
		case isWordRune(r):
			word.WriteRune(r)
		default:
			flush()
		}
	}
	flush()
	return tokens
}

func isWordRune(r rune) bool {
	return r == '_' ||
		(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}
