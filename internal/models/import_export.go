package models

// ParseWarning describes a record skipped while parsing a question file.
// Location is the 1-based line (markdown) or row (CSV/XLSX) where the record began.
type ParseWarning struct {
	FileID   string `json:"file_id"`
	Location int    `json:"location"`
	Message  string `json:"message"`
	Value    string `json:"value,omitempty"`
}

type ExportFormat string

const (
	ExportCSV  ExportFormat = "csv"
	ExportXLSX ExportFormat = "xlsx"
)

type ExportRequest struct {
	Format  ExportFormat `json:"format" form:"format" validate:"omitempty,oneof=csv xlsx"`
	FileIDs []string     `json:"file_ids" form:"file_id"`
}

// ProgressRow is one line of a progress export.
type ProgressRow struct {
	FileName     string `json:"file_name"`
	QuestionID   string `json:"question_id"`
	Rank         int    `json:"rank"`
	QuestionType string `json:"question_type"`
	Source       string `json:"source"`
	Question     string `json:"question"`
}
