package model

// TxOutcome is the printable summary of a settled submission.
type TxOutcome struct {
	SubmissionID string `json:"submission_id"`
	Phase        string `json:"phase"`
	TxHash       string `json:"tx_hash,omitempty"`
	BlockNumber  uint64 `json:"block_number,omitempty"`
	GasUsed      uint64 `json:"gas_used,omitempty"`
	Fallback     bool   `json:"fallback"`
	ErrorKind    string `json:"error_kind,omitempty"`
	Error        string `json:"error,omitempty"`
}
