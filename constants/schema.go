package constants

// SchemaVariant selects which canonical field set the deployment extracts.
// The two variants reflect the two certificate layouts the service supports:
// a certificate-oriented set parsed from strict JSON replies, and a
// degree-oriented set parsed from line-oriented replies.
type SchemaVariant string

const (
	SchemaCertificate SchemaVariant = "certificate"
	SchemaDegree      SchemaVariant = "degree"
)

// CertificateFields is the canonical field set for SchemaCertificate, in
// output order. Missing values use the empty-string sentinel.
var CertificateFields = []string{
	"certificateNo",
	"dateofIssue",
	"name",
	"enrolmentNo",
	"graduationYear",
	"degree",
	"department",
}

// DegreeFields is the canonical field set for SchemaDegree, in output order.
// Missing values use the NotFoundSentinel.
var DegreeFields = []string{
	"Student Name",
	"University Name",
	"Degree Name",
	"Specialization",
	"Grade",
	"Certificate Id",
	"Registration Number",
	"Date of Issue",
}

// NotFoundSentinel marks a canonical field whose value could not be
// determined in the degree variant. The certificate variant uses "".
const NotFoundSentinel = "not found"

// ParseSchemaVariant maps a config string to a variant, defaulting to
// SchemaCertificate for unknown or empty input.
func ParseSchemaVariant(s string) SchemaVariant {
	if SchemaVariant(s) == SchemaDegree {
		return SchemaDegree
	}
	return SchemaCertificate
}

// FieldsFor returns the canonical field list for a variant.
func FieldsFor(v SchemaVariant) []string {
	if v == SchemaDegree {
		return DegreeFields
	}
	return CertificateFields
}

// SentinelFor returns the placeholder value for absent fields in a variant.
func SentinelFor(v SchemaVariant) string {
	if v == SchemaDegree {
		return NotFoundSentinel
	}
	return ""
}
