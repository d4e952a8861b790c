package llm

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/certvault/cert-extractor/constants"
	"github.com/certvault/cert-extractor/internal/common"
)

// invalidResponse classifies a reply that survived cleaning but still cannot
// be coerced into the schema. The original unstripped text rides along.
func invalidResponse(raw string, cause error) error {
	return common.NewBackendError(common.KindInvalidBackendResponse,
		"backend reply does not match the expected schema", raw, cause)
}

// lineSeparators in priority order. A line containing both " - " and ": "
// splits on " - "; splitting is on the first occurrence only, since values may
// legitimately contain the separator substring.
var lineSeparators = []string{" - ", ": ", "- "}

// CleanModelOutput strips the formatting noise backends wrap around replies:
// code-fence markers and stray backticks, at the ends and in the interior.
func CleanModelOutput(raw string) string {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.ReplaceAll(cleaned, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	cleaned = strings.ReplaceAll(cleaned, "`", "")
	return strings.TrimSpace(cleaned)
}

// NormalizeResponse parses a raw backend reply into a total Record for the
// variant: exactly the canonical field set, every value a string, absent
// values carrying the variant's sentinel.
func NormalizeResponse(raw string, v constants.SchemaVariant) (Record, error) {
	if v == constants.SchemaDegree {
		return parseLineRecord(raw), nil
	}
	return parseJSONRecord(raw)
}

// parseJSONRecord handles the strict JSON variant: clean, parse, validate
// against the variant schema, with one lenient sanitize pass (coerce scalars
// to strings, drop unknown keys and nulls) before giving up. The error always
// carries the original unstripped text.
func parseJSONRecord(raw string) (Record, error) {
	cleaned := CleanModelOutput(raw)

	var m map[string]any
	if err := json.Unmarshal([]byte(cleaned), &m); err != nil {
		return nil, invalidResponse(raw, err)
	}

	doc := []byte(cleaned)
	schema := BuildRecordJSONSchema(constants.SchemaCertificate)
	if err := ValidateJSONAgainstSchema(schema, doc); err != nil {
		sanitized, sErr := sanitizeRecordJSON(m)
		if sErr != nil {
			return nil, invalidResponse(raw, sErr)
		}
		if vErr := ValidateJSONAgainstSchema(schema, sanitized); vErr != nil {
			return nil, invalidResponse(raw, vErr)
		}
		m = nil
		if err := json.Unmarshal(sanitized, &m); err != nil {
			return nil, invalidResponse(raw, err)
		}
	}

	rec := make(Record, len(constants.CertificateFields))
	for _, f := range constants.CertificateFields {
		if v, ok := m[f].(string); ok {
			rec[f] = strings.TrimSpace(v)
		} else {
			rec[f] = ""
		}
	}
	return rec, nil
}

// sanitizeRecordJSON coerces scalar values to strings, drops nulls and keys
// outside the canonical set, and re-encodes. Mirrors the lenient pass applied
// before re-validation.
func sanitizeRecordJSON(m map[string]any) ([]byte, error) {
	allowed := make(map[string]struct{}, len(constants.CertificateFields))
	for _, f := range constants.CertificateFields {
		allowed[f] = struct{}{}
	}

	out := make(map[string]any, len(m))
	for k, v := range m {
		if _, ok := allowed[k]; !ok {
			continue
		}
		switch t := v.(type) {
		case string:
			out[k] = strings.TrimSpace(t)
		case float64:
			out[k] = strconv.FormatFloat(t, 'f', -1, 64)
		case bool:
			out[k] = strconv.FormatBool(t)
		case nil:
			// dropped; filled with the sentinel later
		default:
			// nested object/array: not coercible to a field value
		}
	}
	return json.Marshal(out)
}

// parseLineRecord handles the line-oriented variant. It is total: any input,
// including garbage, yields a record with every canonical field populated
// (with the sentinel when nothing matched).
func parseLineRecord(raw string) Record {
	parsed := map[string]string{}
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		var sep string
		for _, s := range lineSeparators {
			if strings.Contains(line, s) {
				sep = s
				break
			}
		}
		if sep == "" {
			continue
		}

		parts := strings.SplitN(line, sep, 2)
		if len(parts) != 2 {
			continue
		}
		key, _ := canonicalKey(parts[0])
		parsed[key] = strings.TrimSpace(parts[1])
	}

	// Only canonical fields surface; anything the backend invented stays behind.
	rec := make(Record, len(constants.DegreeFields))
	for _, f := range constants.DegreeFields {
		if v, ok := parsed[f]; ok && v != "" {
			rec[f] = v
		} else {
			rec[f] = constants.NotFoundSentinel
		}
	}
	return rec
}
