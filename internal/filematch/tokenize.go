package filematch

import (
	"regexp"

	"patientlink/internal/identity"
)

// tokenSplitPattern matches non-alphanumeric character sequences for tokenization.
var tokenSplitPattern = regexp.MustCompile(`[^a-z0-9]+`)

// Tokenize normalizes s and splits it into lowercase alphanumeric tokens,
// dropping empty ones. Order is preserved.
func Tokenize(s string) []string {
	normalized := identity.NormalizeText(s)
	if normalized == "" {
		return nil
	}
	raw := tokenSplitPattern.Split(normalized, -1)
	tokens := make([]string, 0, len(raw))
	for _, token := range raw {
		if token == "" {
			continue
		}
		tokens = append(tokens, token)
	}
	return tokens
}

// TokenSet returns the tokens of s as a set.
func TokenSet(s string) map[string]struct{} {
	tokens := Tokenize(s)
	set := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		set[token] = struct{}{}
	}
	return set
}
