package manifest

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/Masterminds/semver/v3"
)

// Requirement is a parsed dependency specifier: a distribution name with
// optional extras, version clauses, and an environment-marker tail.
type Requirement struct {
	Name    string
	Extras  []string
	Clauses []VersionClause
	Marker  string
}

// VersionClause is a single comparison, e.g. ">=1.2".
type VersionClause struct {
	Operator string
	Version  string
}

var clauseOperators = []string{"===", "==", "!=", ">=", "<=", "~=", ">", "<"}

// ParseRequirement parses the subset of requirement-specifier syntax the
// shipped manifest and its edited descendants use: NAME[extra,...]
// followed by optional comma-separated version clauses and an optional
// ";" marker. The marker is kept verbatim, not evaluated.
func ParseRequirement(s string) (Requirement, error) {
	var req Requirement

	raw := strings.TrimSpace(s)
	if raw == "" {
		return req, fmt.Errorf("requirement %q: empty specifier", s)
	}

	if i := strings.Index(raw, ";"); i >= 0 {
		req.Marker = strings.TrimSpace(raw[i+1:])
		if req.Marker == "" {
			return req, fmt.Errorf("requirement %q: empty environment marker", s)
		}
		raw = strings.TrimSpace(raw[:i])
	}

	if i := strings.Index(raw, "["); i >= 0 {
		j := strings.Index(raw, "]")
		if j < i {
			return req, fmt.Errorf("requirement %q: unterminated extras", s)
		}
		for _, extra := range strings.Split(raw[i+1:j], ",") {
			extra = strings.TrimSpace(extra)
			if extra == "" {
				return req, fmt.Errorf("requirement %q: empty extra", s)
			}
			req.Extras = append(req.Extras, extra)
		}
		raw = raw[:i] + raw[j+1:]
	}

	name := raw
	rest := ""
	if i := strings.IndexAny(raw, "=!<>~"); i >= 0 {
		name = strings.TrimSpace(raw[:i])
		rest = strings.TrimSpace(raw[i:])
	}

	if err := validateName(name); err != nil {
		return req, fmt.Errorf("requirement %q: %w", s, err)
	}
	req.Name = name

	if rest != "" {
		clauses, err := parseClauses(rest)
		if err != nil {
			return req, fmt.Errorf("requirement %q: %w", s, err)
		}
		req.Clauses = clauses
	}

	return req, nil
}

// String reassembles the specifier in canonical form.
func (r Requirement) String() string {
	var b strings.Builder
	b.WriteString(r.Name)
	if len(r.Extras) > 0 {
		b.WriteString("[")
		b.WriteString(strings.Join(r.Extras, ","))
		b.WriteString("]")
	}
	for i, c := range r.Clauses {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString(c.Operator)
		b.WriteString(c.Version)
	}
	if r.Marker != "" {
		b.WriteString("; ")
		b.WriteString(r.Marker)
	}
	return b.String()
}

// Pinned reports whether the requirement names an exact version.
func (r Requirement) Pinned() bool {
	for _, c := range r.Clauses {
		if c.Operator == "==" || c.Operator == "===" {
			return true
		}
	}
	return false
}

func validateName(name string) error {
	if name == "" {
		return fmt.Errorf("missing distribution name")
	}

	runes := []rune(name)
	if !isAlphanumeric(runes[0]) || !isAlphanumeric(runes[len(runes)-1]) {
		return fmt.Errorf("name %q must start and end with a letter or digit", name)
	}

	for _, r := range runes {
		if isAlphanumeric(r) || r == '.' || r == '-' || r == '_' {
			continue
		}
		return fmt.Errorf("name %q contains invalid character %q", name, r)
	}
	return nil
}

func isAlphanumeric(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func parseClauses(s string) ([]VersionClause, error) {
	var clauses []VersionClause
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			return nil, fmt.Errorf("empty version clause")
		}

		var op string
		for _, candidate := range clauseOperators {
			if strings.HasPrefix(part, candidate) {
				op = candidate
				break
			}
		}
		if op == "" {
			return nil, fmt.Errorf("clause %q has no comparison operator", part)
		}

		version := strings.TrimSpace(strings.TrimPrefix(part, op))
		if version == "" {
			return nil, fmt.Errorf("clause %q has no version", part)
		}
		if err := validateClauseVersion(version); err != nil {
			return nil, err
		}

		clauses = append(clauses, VersionClause{Operator: op, Version: version})
	}
	return clauses, nil
}

// validateClauseVersion accepts anything semver can read once short
// versions are padded; wildcard segments (1.2.*) are allowed as written.
func validateClauseVersion(v string) error {
	candidate := strings.TrimSuffix(v, ".*")
	if _, err := semver.NewVersion(padVersion(candidate)); err != nil {
		return fmt.Errorf("clause version %q: %w", v, err)
	}
	return nil
}

// padVersion extends 1- and 2-segment versions with zeros so they parse
// as semver.
func padVersion(v string) string {
	base := v
	if i := strings.IndexAny(base, "-+"); i >= 0 {
		base = base[:i]
	}
	switch strings.Count(base, ".") {
	case 0:
		return strings.Replace(v, base, base+".0.0", 1)
	case 1:
		return strings.Replace(v, base, base+".0", 1)
	default:
		return v
	}
}
