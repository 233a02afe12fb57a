package models

import (
	"fmt"
	"strings"
	"time"
)

// FileMetadata is the JSON sidecar stored next to every question file.
type FileMetadata struct {
	FileID         string         `json:"file_hash"`
	SourceFileName string         `json:"source_file"`
	LastUpdated    Timestamp      `json:"last_updated"`
	TotalQuestions int            `json:"total_questions"`
	Rankings       map[string]int `json:"rankings"`
}

// Timestamp marshals as RFC 3339 and also accepts the offset-less ISO-8601 form
// older sidecars were written with.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t}
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte(`""`), nil
	}
	return []byte(`"` + t.Format(time.RFC3339Nano) + `"`), nil
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("invalid timestamp %q", s)
}

func (t Timestamp) String() string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
