package llm

import (
	"strings"

	"github.com/certvault/cert-extractor/constants"
)

// ReplyGrammar names the reply shape a prompt template requests. The
// normalizer's accepted-input grammar is keyed off the same value, so the two
// ends of the backend contract cannot drift apart.
type ReplyGrammar string

const (
	GrammarJSON  ReplyGrammar = "json"
	GrammarLines ReplyGrammar = "lines"
)

// PromptTemplate is the versioned contract with the interpretation backend:
// the canonical field list, the extraction rules, and the reply grammar, with
// a single placeholder for the recognized text.
type PromptTemplate struct {
	Version string
	Variant constants.SchemaVariant
	Grammar ReplyGrammar
	Fields  []string
	body    string
}

const textPlaceholder = "{TEXT}"

// Render embeds the recognized text into the template.
func (t PromptTemplate) Render(ocrText string) string {
	return strings.ReplaceAll(t.body, textPlaceholder, ocrText)
}

// TemplateFor returns the current template for a schema variant.
func TemplateFor(v constants.SchemaVariant) PromptTemplate {
	if v == constants.SchemaDegree {
		return DegreePromptV1
	}
	return CertificatePromptV1
}

// CertificatePromptV1 requests a strict JSON object for the certificate field
// set. Missing values map to the empty string.
var CertificatePromptV1 = PromptTemplate{
	Version: "certificate/v1",
	Variant: constants.SchemaCertificate,
	Grammar: GrammarJSON,
	Fields:  constants.CertificateFields,
	body: `Extract and map the following fields from the provided certificate text.
Return VALID JSON ONLY - no explanation, no markdown, no comments, no extra text.

Required JSON structure:
{
  "certificateNo": "",
  "dateofIssue": "",
  "name": "",
  "enrolmentNo": "",
  "graduationYear": "",
  "degree": "",
  "department": ""
}

Extraction Rules:
- "certificateNo": Look for Certificate No, Serial No, Reg No, Roll No, or any unique identifier appearing at the top or header.
- "dateofIssue": May appear printed or handwritten. Normalize to YYYY-MM-DD. If multiple dates exist, choose the one closest to issuing authority or signature.
- "name": Student / recipient name, usually centered or emphasized.
- "enrolmentNo": Enrollment / Enrolment / Registration / Roll number unique to the student.
- "graduationYear": Year when the student completed or passed final exams.
- "degree": Degree awarded (e.g., Bachelor of Technology, B.Tech, BSc, etc.)
- "department": Field of study; may be shown as Department, Discipline, Branch, Programme, Subject, or Specialization.
- If any field is missing or unclear -> "" (empty string).
- Do NOT infer values that do not explicitly appear in the text (no hallucinations).
- All values must be strings.
- Do NOT add extra keys.

OCR TEXT:
--------------------
{TEXT}
--------------------

Return ONLY the JSON object:`,
}

// DegreePromptV1 requests line-oriented "Field - value" output for the degree
// field set. Missing values map to the "not found" sentinel.
var DegreePromptV1 = PromptTemplate{
	Version: "degree/v1",
	Variant: constants.SchemaDegree,
	Grammar: GrammarLines,
	Fields:  constants.DegreeFields,
	body: `Extract the following fields from the text. Output ONLY in this exact format, one per line:
Student Name - [name or 'not found']
University Name - [name or 'not found']
Degree Name - [degree or 'not found']
Specialization - [spec or 'not found']
Grade - [grade or 'not found']
Certificate Id - [id or 'not found']
Registration Number - [reg or 'not found']
Date of Issue - [date or 'not found']

Examples:
Text: John Doe graduated from Harvard University with a Master of Arts in History, Grade: A, Cert ID: CERT123, Reg No: REG456, Issued: 2023-05-15.
Output:
Student Name - John Doe
University Name - Harvard University
Degree Name - Master of Arts
Specialization - History
Grade - A
Certificate Id - CERT123
Registration Number - REG456
Date of Issue - 2023-05-15

Text: Alice Smith, MIT, BS in Physics, GPA 3.8, ID: PHYS-789, Reg: MIT-101, Date/Graduated Year: 2024-01-10.
Output:
Student Name - Alice Smith
University Name - MIT
Degree Name - BS
Specialization - Physics
Grade - GPA 3.8
Certificate Id - PHYS-789
Registration Number - MIT-101
Date of Issue - 2024-01-10

Text: {TEXT}`,
}
