package models

import "time"

type UploadFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

type BatchEntry struct {
	Filename       string `json:"filename"`
	SourceFilename string `json:"source_filename"`
	Width          int    `json:"width"`
	Height         int    `json:"height"`
	Data           []byte `json:"-"`
}

type BatchFailure struct {
	Filename string `json:"filename"`
	Reason   string `json:"reason"`
}

type BatchResult struct {
	RunID       string         `json:"run_id"`
	Entries     []BatchEntry   `json:"entries"`
	Failures    []BatchFailure `json:"failures,omitempty"`
	ProcessedAt time.Time      `json:"processed_at"`
}

// FailedFilenames lists the inputs that were left out of the archive.
func (r *BatchResult) FailedFilenames() []string {
	names := make([]string, 0, len(r.Failures))
	for _, f := range r.Failures {
		names = append(names, f.Filename)
	}
	return names
}

const (
	PolicySkip  = "skip"
	PolicyAbort = "abort"
)
