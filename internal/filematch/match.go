package filematch

import (
	"strings"

	"patientlink/internal/identity"
)

// minNameTokenLength is the shortest name token trusted as a signal.
const minNameTokenLength = 3

// nameParticles are articles and prepositions common in Spanish, Catalan,
// Portuguese, Dutch and German surnames. They carry no identity signal.
var nameParticles = map[string]struct{}{
	"de": {}, "la": {}, "del": {}, "da": {}, "do": {}, "dos": {}, "das": {},
	"van": {}, "von": {}, "der": {}, "den": {}, "los": {}, "las": {},
}

// ContainsIdentifier reports whether filename references patientID, either
// as an exact token or as a substring delimited by non-alphanumeric
// characters or the string edges. Empty identifiers never match.
func ContainsIdentifier(filename, patientID string) bool {
	id := identity.NormalizeIdentifier(patientID)
	if id == "" {
		return false
	}
	name := identity.NormalizeText(filename)
	if _, ok := TokenSet(name)[id]; ok {
		return true
	}
	return containsDelimited(name, id)
}

func containsDelimited(haystack, needle string) bool {
	offset := 0
	for {
		idx := strings.Index(haystack[offset:], needle)
		if idx < 0 {
			return false
		}
		start := offset + idx
		end := start + len(needle)
		if (start == 0 || !isAlnum(haystack[start-1])) && (end == len(haystack) || !isAlnum(haystack[end])) {
			return true
		}
		offset = start + 1
	}
}

func isAlnum(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= '0' && b <= '9')
}

// MatchesName reports whether filename references the person called name.
// The first name token must be reliable (long enough and not a particle) or
// the match fails. When a reliable last token exists both must appear in the
// filename's tokens; otherwise the first token alone decides.
func MatchesName(filename, name string) bool {
	normalized := identity.NormalizeText(name)
	if normalized == "" {
		return false
	}
	parts := strings.Split(normalized, " ")
	first := parts[0]
	if !reliableNameToken(first) {
		return false
	}
	tokens := TokenSet(filename)
	_, hasFirst := tokens[first]
	if len(parts) > 1 {
		last := parts[len(parts)-1]
		if reliableNameToken(last) {
			_, hasLast := tokens[last]
			return hasFirst && hasLast
		}
	}
	return hasFirst
}

func reliableNameToken(token string) bool {
	if len(token) < minNameTokenLength {
		return false
	}
	_, particle := nameParticles[token]
	return !particle
}
