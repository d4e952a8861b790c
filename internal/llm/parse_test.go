package llm

import (
	"errors"
	"reflect"
	"testing"

	"github.com/certvault/cert-extractor/constants"
	"github.com/certvault/cert-extractor/internal/common"
)

func TestCleanModelOutput(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `{"name": "A"}`, `{"name": "A"}`},
		{"fenced json", "```json\n{\"name\": \"A\"}\n```", `{"name": "A"}`},
		{"bare fence", "```\n{\"name\": \"A\"}\n```", `{"name": "A"}`},
		{"stray backticks", "`{\"name\": \"A\"}`", `{"name": "A"}`},
		{"surrounding whitespace", "  \n {\"name\": \"A\"} \n ", `{"name": "A"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanModelOutput(tt.in); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNormalizeResponseCertificate(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Record
	}{
		{
			name: "complete reply",
			raw: `{"certificateNo":"C-101","dateofIssue":"2019-06-12","name":"Priya Sharma",
				"enrolmentNo":"EN-44","graduationYear":"2019","degree":"B.Tech","department":"CSE"}`,
			want: Record{
				"certificateNo": "C-101", "dateofIssue": "2019-06-12", "name": "Priya Sharma",
				"enrolmentNo": "EN-44", "graduationYear": "2019", "degree": "B.Tech", "department": "CSE",
			},
		},
		{
			name: "fenced reply",
			raw:  "```json\n{\"certificateNo\": \"C-7\", \"name\": \"Ravi\"}\n```",
			want: Record{
				"certificateNo": "C-7", "dateofIssue": "", "name": "Ravi",
				"enrolmentNo": "", "graduationYear": "", "degree": "", "department": "",
			},
		},
		{
			name: "numeric year coerced",
			raw:  `{"graduationYear": 2019, "name": "Ravi"}`,
			want: Record{
				"certificateNo": "", "dateofIssue": "", "name": "Ravi",
				"enrolmentNo": "", "graduationYear": "2019", "degree": "", "department": "",
			},
		},
		{
			name: "null dropped and extra key removed",
			raw:  `{"name": "Ravi", "degree": null, "confidence": 0.93}`,
			want: Record{
				"certificateNo": "", "dateofIssue": "", "name": "Ravi",
				"enrolmentNo": "", "graduationYear": "", "degree": "", "department": "",
			},
		},
		{
			name: "nested value dropped in the lenient pass",
			raw:  `{"name": {"first": "Ravi"}, "degree": "BSc"}`,
			want: Record{
				"certificateNo": "", "dateofIssue": "", "name": "",
				"enrolmentNo": "", "graduationYear": "", "degree": "BSc", "department": "",
			},
		},
		{
			name: "values trimmed",
			raw:  `{"name": "  Ravi  "}`,
			want: Record{
				"certificateNo": "", "dateofIssue": "", "name": "Ravi",
				"enrolmentNo": "", "graduationYear": "", "degree": "", "department": "",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeResponse(tt.raw, constants.SchemaCertificate)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v\nwant %v", got, tt.want)
			}
		})
	}
}

func TestNormalizeResponseCertificateInvalid(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"prose", "I could not find any certificate data in this text."},
		{"array", `["certificateNo", "C-1"]`},
		{"empty", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NormalizeResponse(tt.raw, constants.SchemaCertificate)
			if err == nil {
				t.Fatal("expected error")
			}
			if !common.IsKind(err, common.KindInvalidBackendResponse) {
				t.Errorf("kind = %q, want INVALID_BACKEND_RESPONSE", common.KindOf(err))
			}
			var pe *common.PipelineError
			if !errors.As(err, &pe) {
				t.Fatalf("error is not a PipelineError: %v", err)
			}
			if pe.Raw != tt.raw {
				t.Errorf("raw reply not retained: %q", pe.Raw)
			}
		})
	}
}

func TestNormalizeResponseDegree(t *testing.T) {
	sent := constants.NotFoundSentinel

	tests := []struct {
		name string
		raw  string
		want Record
	}{
		{
			name: "canonical dash output",
			raw: "Student Name - John Doe\n" +
				"University Name - Harvard University\n" +
				"Degree Name - Master of Arts\n" +
				"Specialization - History\n" +
				"Grade - A\n" +
				"Certificate Id - CERT123\n" +
				"Registration Number - REG456\n" +
				"Date of Issue - 2023-05-15",
			want: Record{
				"Student Name": "John Doe", "University Name": "Harvard University",
				"Degree Name": "Master of Arts", "Specialization": "History", "Grade": "A",
				"Certificate Id": "CERT123", "Registration Number": "REG456", "Date of Issue": "2023-05-15",
			},
		},
		{
			name: "colon separator",
			raw:  "Student Name: Alice Smith\nGrade: GPA 3.8",
			want: Record{
				"Student Name": "Alice Smith", "University Name": sent,
				"Degree Name": sent, "Specialization": sent, "Grade": "GPA 3.8",
				"Certificate Id": sent, "Registration Number": sent, "Date of Issue": sent,
			},
		},
		{
			name: "dash wins over colon on the same line",
			raw:  "Grade - CGPA: 9.1",
			want: Record{
				"Student Name": sent, "University Name": sent,
				"Degree Name": sent, "Specialization": sent, "Grade": "CGPA: 9.1",
				"Certificate Id": sent, "Registration Number": sent, "Date of Issue": sent,
			},
		},
		{
			name: "tight dash separator",
			raw:  "Student Name- Bob Ray",
			want: Record{
				"Student Name": "Bob Ray", "University Name": sent,
				"Degree Name": sent, "Specialization": sent, "Grade": sent,
				"Certificate Id": sent, "Registration Number": sent, "Date of Issue": sent,
			},
		},
		{
			name: "value keeps later separators",
			raw:  "Date of Issue - 2023-05-15 - reissued",
			want: Record{
				"Student Name": sent, "University Name": sent,
				"Degree Name": sent, "Specialization": sent, "Grade": sent,
				"Certificate Id": sent, "Registration Number": sent,
				"Date of Issue": "2023-05-15 - reissued",
			},
		},
		{
			name: "decorated keys resolve through synonyms",
			raw:  "Student Name (Full) - John Doe\nCertificate Id/Sl. No. - X-99",
			want: Record{
				"Student Name": "John Doe", "University Name": sent,
				"Degree Name": sent, "Specialization": sent, "Grade": sent,
				"Certificate Id": "X-99", "Registration Number": sent, "Date of Issue": sent,
			},
		},
		{
			name: "invented fields stay behind",
			raw:  "Student Name - Jane\nHonors - summa cum laude",
			want: Record{
				"Student Name": "Jane", "University Name": sent,
				"Degree Name": sent, "Specialization": sent, "Grade": sent,
				"Certificate Id": sent, "Registration Number": sent, "Date of Issue": sent,
			},
		},
		{
			name: "empty value falls back to sentinel",
			raw:  "Student Name - ",
			want: Record{
				"Student Name": sent, "University Name": sent,
				"Degree Name": sent, "Specialization": sent, "Grade": sent,
				"Certificate Id": sent, "Registration Number": sent, "Date of Issue": sent,
			},
		},
		{
			name: "garbage yields all sentinels",
			raw:  "no structured data here\njust words",
			want: Record{
				"Student Name": sent, "University Name": sent,
				"Degree Name": sent, "Specialization": sent, "Grade": sent,
				"Certificate Id": sent, "Registration Number": sent, "Date of Issue": sent,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeResponse(tt.raw, constants.SchemaDegree)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v\nwant %v", got, tt.want)
			}
		})
	}
}

func TestCanonicalKey(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		matched bool
	}{
		{"Student Name", "Student Name", true},
		{"student name", "Student Name", true},
		{"  Student Name (Full)  ", "Student Name", true},
		{"DATE OF ISSUE", "Date of Issue", true},
		{"Honors", "Honors", false},
	}
	for _, tt := range tests {
		got, matched := canonicalKey(tt.in)
		if got != tt.want || matched != tt.matched {
			t.Errorf("canonicalKey(%q) = (%q, %v), want (%q, %v)", tt.in, got, matched, tt.want, tt.matched)
		}
	}
}
