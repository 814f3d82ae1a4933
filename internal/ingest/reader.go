package ingest

import (
	"bufio"
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	sifterr "github.com/talentsift/talentsift/internal/errors"
	"github.com/talentsift/talentsift/internal/store"
)

// RawResume is a resume document as it appears in the source file,
// before PII separation.
type RawResume struct {
	PersonalInfo RawPersonalInfo     `json:"personal_info"`
	TotalYOE     int                 `json:"total_yoe,omitempty"`
	Experience   []store.Experience  `json:"experience,omitempty"`
	Projects     []store.Project     `json:"projects,omitempty"`
	Education    []store.Education   `json:"education,omitempty"`
	Skills       store.SkillsSection `json:"skills,omitempty"`

	// raw holds the original record bytes for content-hash IDs.
	raw json.RawMessage
}

// RawPersonalInfo is the source personal_info block. Everything except
// summary and location is PII and goes to the separate PII table.
type RawPersonalInfo struct {
	Name     string      `json:"name,omitempty"`
	Email    string      `json:"email,omitempty"`
	Phone    string      `json:"phone,omitempty"`
	LinkedIn string      `json:"linkedin,omitempty"`
	GitHub   string      `json:"github,omitempty"`
	Summary  string      `json:"summary,omitempty"`
	Location RawLocation `json:"location,omitempty"`
}

// RawLocation is the source location block.
type RawLocation struct {
	City             string `json:"city,omitempty"`
	Country          string `json:"country,omitempty"`
	RemotePreference string `json:"remote_preference,omitempty"`
}

// ReadResumes loads resume documents from path. The file may be a JSON
// document (an object, an array, or arbitrarily nested arrays of
// objects) or JSONL with one object per line; unparseable JSONL lines
// are skipped.
func ReadResumes(path string) ([]RawResume, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, sifterr.New(sifterr.ErrCodeFileNotFound, fmt.Sprintf("input file %s not found", path), err)
		}
		return nil, sifterr.New(sifterr.ErrCodeInternal, "reading input file", err)
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err == nil {
		var records []json.RawMessage
		flattenRecords(data, &records)
		return decodeRecords(records)
	}

	// Fall back to JSONL.
	var records []json.RawMessage
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 || !json.Valid(line) {
			continue
		}
		records = append(records, append(json.RawMessage(nil), line...))
	}
	if err := scanner.Err(); err != nil {
		return nil, sifterr.New(sifterr.ErrCodeInternal, "scanning input file", err)
	}
	return decodeRecords(records)
}

// flattenRecords walks nested arrays, collecting every object as one
// resume record.
func flattenRecords(data json.RawMessage, out *[]json.RawMessage) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return
	}
	switch trimmed[0] {
	case '{':
		*out = append(*out, trimmed)
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return
		}
		for _, item := range items {
			flattenRecords(item, out)
		}
	}
}

func decodeRecords(records []json.RawMessage) ([]RawResume, error) {
	resumes := make([]RawResume, 0, len(records))
	for _, rec := range records {
		var r RawResume
		if err := json.Unmarshal(rec, &r); err != nil {
			continue
		}
		r.raw = rec
		resumes = append(resumes, r)
	}
	return resumes, nil
}

// ResumeID derives a deterministic ID for a resume: the hash of its
// email when present, else of name plus position, else of the record
// content.
func (r *RawResume) ResumeID(idx int) string {
	if r.PersonalInfo.Email != "" {
		return md5Hex([]byte(r.PersonalInfo.Email))
	}
	if r.PersonalInfo.Name != "" {
		return md5Hex([]byte(fmt.Sprintf("%s_%d", r.PersonalInfo.Name, idx)))
	}
	return md5Hex(r.raw)
}

// Core builds the PII-free resume core stored for retrieval.
func (r *RawResume) Core(resumeID string, redactor *Redactor) *store.Resume {
	return &store.Resume{
		ResumeID:        resumeID,
		Summary:         redactor.Sanitize(r.PersonalInfo.Summary),
		LocationCountry: r.PersonalInfo.Location.Country,
		LocationCity:    r.PersonalInfo.Location.City,
		TotalYOE:        r.TotalYOE,
		Experience:      r.Experience,
		Projects:        r.Projects,
		Education:       r.Education,
		Skills:          r.Skills,
	}
}

// PII builds the personal-info record for the isolated PII table.
func (r *RawResume) PII() *store.PersonalInfo {
	return &store.PersonalInfo{
		Name:    r.PersonalInfo.Name,
		Email:   r.PersonalInfo.Email,
		Phone:   r.PersonalInfo.Phone,
		Summary: r.PersonalInfo.Summary,
	}
}

func md5Hex(data []byte) string {
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:])
}
