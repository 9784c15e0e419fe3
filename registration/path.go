package registration

import "strings"

var pathSeparators = strings.NewReplacer("[", ".", "]", ".", ",", ".")

// CanonicalPath turns a dotted or bracketed field path into its dotted form:
// "techs[1].title" and "techs.1.title" both become "techs.1.title".
func CanonicalPath(path string) string {
	parts := strings.Split(pathSeparators.Replace(strings.TrimSpace(path)), ".")
	segments := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			segments = append(segments, p)
		}
	}
	return strings.Join(segments, ".")
}

// ruleField drops index segments from a canonical path, so every techs
// entry shares the same message keys.
func ruleField(path string) string {
	parts := strings.Split(path, ".")
	named := parts[:0]
	for _, p := range parts {
		if !isIndex(p) {
			named = append(named, p)
		}
	}
	return strings.Join(named, ".")
}

func isIndex(segment string) bool {
	if segment == "" {
		return false
	}
	for _, r := range segment {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// namespacePath converts a validator namespace ("candidate.techs[1].title")
// into a canonical field path ("techs.1.title").
func namespacePath(namespace string) string {
	if idx := strings.Index(namespace, "."); idx >= 0 {
		namespace = namespace[idx+1:]
	}
	return CanonicalPath(namespace)
}
