package txexec

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Phase is a step of the submission state machine.
type Phase string

const (
	PhaseIdle            Phase = "IDLE"
	PhaseSubmitting      Phase = "SUBMITTING"
	PhaseAwaitingReceipt Phase = "AWAITING_RECEIPT"
	PhaseSucceeded       Phase = "SUCCEEDED"
	PhaseFailed          Phase = "FAILED"
)

// Terminal reports whether no further transition can happen.
func (p Phase) Terminal() bool {
	return p == PhaseSucceeded || p == PhaseFailed
}

// Result is the settled outcome of a successful submission.
type Result struct {
	SubmissionID string
	Hash         common.Hash
	// Receipt is nil when Fallback is set.
	Receipt *types.Receipt
	// Fallback marks a success assumed because no receipt arrived in time.
	Fallback bool
}

// TransactionState is a snapshot of one submission.
type TransactionState struct {
	SubmissionID string
	Hash         common.Hash
	Phase        Phase
	Result       *Result
	Err          error
}

func (s TransactionState) clone() TransactionState {
	out := s
	if s.Result != nil {
		result := *s.Result
		out.Result = &result
	}
	return out
}
