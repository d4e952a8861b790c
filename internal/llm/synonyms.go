package llm

import "strings"

// fieldSynonym maps a lowercase substring of a backend-emitted key to its
// canonical field name. Backends decorate keys freely ("Certificate Id/Sl.
// No.", "Student Name (Full)"), so matching is by substring, not equality.
type fieldSynonym struct {
	Substr    string
	Canonical string
}

// degreeSynonyms is checked in order; the first match wins. Keep this list
// data-driven: the parsing loop must not grow field-specific cases.
var degreeSynonyms = []fieldSynonym{
	{"student name", "Student Name"},
	{"university name", "University Name"},
	{"degree name", "Degree Name"},
	{"specialization", "Specialization"},
	{"grade", "Grade"},
	{"certificate id", "Certificate Id"},
	{"registration number", "Registration Number"},
	{"date of issue", "Date of Issue"},
}

// canonicalKey resolves a raw key to its canonical field name via the synonym
// table. Unmatched keys are returned trimmed but otherwise verbatim.
func canonicalKey(raw string) (string, bool) {
	key := strings.TrimSpace(raw)
	lower := strings.ToLower(key)
	for _, syn := range degreeSynonyms {
		if strings.Contains(lower, syn.Substr) {
			return syn.Canonical, true
		}
	}
	return key, false
}
