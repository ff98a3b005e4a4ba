package model

// NormalizeError records a raw line that could not be read as a bet record.
type NormalizeError struct {
	Line  int    `json:"line"`
	ID    string `json:"id,omitempty"`
	Error string `json:"error"`
}
