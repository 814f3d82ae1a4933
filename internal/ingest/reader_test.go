package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeInput(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadResumes_JSONL(t *testing.T) {
	path := writeInput(t, "in.jsonl", `
{"personal_info": {"name": "A", "email": "a@example.com"}}

{"personal_info": {"name": "B"}}
not json at all
{"personal_info": {"name": "C"}}
`)
	resumes, err := ReadResumes(path)
	require.NoError(t, err)
	require.Len(t, resumes, 3, "bad lines are skipped")
	assert.Equal(t, "A", resumes[0].PersonalInfo.Name)
	assert.Equal(t, "a@example.com", resumes[0].PersonalInfo.Email)
}

func TestReadResumes_JSONArray(t *testing.T) {
	path := writeInput(t, "in.json", `[
		{"personal_info": {"name": "A"}},
		{"personal_info": {"name": "B"}}
	]`)
	resumes, err := ReadResumes(path)
	require.NoError(t, err)
	assert.Len(t, resumes, 2)
}

func TestReadResumes_NestedArraysFlattened(t *testing.T) {
	path := writeInput(t, "in.json", `[
		[{"personal_info": {"name": "A"}}],
		[[{"personal_info": {"name": "B"}}, {"personal_info": {"name": "C"}}]]
	]`)
	resumes, err := ReadResumes(path)
	require.NoError(t, err)
	require.Len(t, resumes, 3)
	assert.Equal(t, "A", resumes[0].PersonalInfo.Name)
	assert.Equal(t, "C", resumes[2].PersonalInfo.Name)
}

func TestReadResumes_SingleObject(t *testing.T) {
	path := writeInput(t, "in.json", `{"personal_info": {"name": "Solo"}}`)
	resumes, err := ReadResumes(path)
	require.NoError(t, err)
	require.Len(t, resumes, 1)
	assert.Equal(t, "Solo", resumes[0].PersonalInfo.Name)
}

func TestReadResumes_MissingFile(t *testing.T) {
	_, err := ReadResumes(filepath.Join(t.TempDir(), "nope.jsonl"))
	require.Error(t, err)
}

func TestResumeID_Precedence(t *testing.T) {
	withEmail := RawResume{PersonalInfo: RawPersonalInfo{Name: "A", Email: "a@example.com"}}
	withName := RawResume{PersonalInfo: RawPersonalInfo{Name: "A"}, raw: []byte(`{"x":1}`)}
	anonymous := RawResume{raw: []byte(`{"x":1}`)}

	emailID := withEmail.ResumeID(0)
	assert.Equal(t, emailID, withEmail.ResumeID(5), "email-based ID ignores position")

	assert.NotEqual(t, withName.ResumeID(0), withName.ResumeID(1), "name-based ID includes position")
	assert.Equal(t, anonymous.ResumeID(0), anonymous.ResumeID(1), "content hash ignores position")
	assert.NotEqual(t, emailID, withName.ResumeID(0))
}

func TestRawResume_CoreAndPII(t *testing.T) {
	raw := RawResume{
		PersonalInfo: RawPersonalInfo{
			Name:    "Jane Doe",
			Email:   "jane@example.com",
			Phone:   "+65 1234 5678",
			Summary: "Engineer. Reach me at jane@example.com.",
			Location: RawLocation{
				City:    "Singapore",
				Country: "Singapore",
			},
		},
		TotalYOE: 7,
	}

	core := raw.Core("r1", NewRedactor(&raw))
	assert.Equal(t, "r1", core.ResumeID)
	assert.Equal(t, 7, core.TotalYOE)
	assert.Equal(t, "Singapore", core.LocationCountry)
	assert.NotContains(t, core.Summary, "jane@example.com", "core summary is sanitized")

	pii := raw.PII()
	assert.Equal(t, "Jane Doe", pii.Name)
	assert.Equal(t, "jane@example.com", pii.Email)
	assert.Equal(t, "+65 1234 5678", pii.Phone)
}
