package txexec

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/rpc"
)

// ErrorKind names the failure category surfaced to callers.
type ErrorKind string

const (
	KindSubmissionRejected ErrorKind = "submission-rejected"
	KindReceiptError       ErrorKind = "receipt-error"
)

var (
	// ErrSubmissionRejected matches any *TxError of kind submission-rejected.
	ErrSubmissionRejected = errors.New("submission rejected")
	// ErrReceiptFailed matches any *TxError of kind receipt-error.
	ErrReceiptFailed = errors.New("receipt failed")
	// ErrReverted is wrapped when the receipt reports a failed execution.
	ErrReverted = errors.New("transaction reverted")
	// ErrAlreadySubmitted is returned by a second Execute on one Executor.
	ErrAlreadySubmitted = errors.New("executor already used; create a new executor per submission")
)

// TxError is the error delivered to OnError.
type TxError struct {
	Kind    ErrorKind
	Hash    string
	Message string
	Err     error
}

func (e *TxError) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	b.WriteString(": ")
	b.WriteString(e.Message)
	if e.Hash != "" {
		b.WriteString(" (tx ")
		b.WriteString(e.Hash)
		b.WriteString(")")
	}
	if e.Err != nil && e.Err.Error() != e.Message {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *TxError) Unwrap() error {
	return e.Err
}

// Is matches the kind sentinels.
func (e *TxError) Is(target error) bool {
	switch target {
	case ErrSubmissionRejected:
		return e.Kind == KindSubmissionRejected
	case ErrReceiptFailed:
		return e.Kind == KindReceiptError
	default:
		return false
	}
}

// Rejection reasons returned by ClassifySubmissionError.
const (
	RejectionUserDenied        = "user_denied"
	RejectionInsufficientFunds = "insufficient_funds"
	RejectionNonce             = "nonce"
	RejectionTimeout           = "timeout"
	RejectionNetwork           = "network_error"
	RejectionProvider          = "provider_error"
)

// codeUserRejected is the EIP-1193 code wallets return when the user declines.
const codeUserRejected = 4001

var userRejectedCode = regexp.MustCompile(`\bcode\W{0,3}4001\b`)

// ClassifySubmissionError classifies a wallet or provider error.
func ClassifySubmissionError(err error) string {
	if err == nil {
		return ""
	}
	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) && rpcErr.ErrorCode() == codeUserRejected {
		return RejectionUserDenied
	}
	lower := strings.ToLower(err.Error())
	switch {
	case strings.Contains(lower, "user rejected") || strings.Contains(lower, "user denied") ||
		strings.Contains(lower, "rejected by user") || userRejectedCode.MatchString(lower):
		return RejectionUserDenied
	case strings.Contains(lower, "insufficient funds"):
		return RejectionInsufficientFunds
	case strings.Contains(lower, "nonce too low") || strings.Contains(lower, "replacement transaction underpriced") ||
		strings.Contains(lower, "already known"):
		return RejectionNonce
	case errors.Is(err, context.DeadlineExceeded) || strings.Contains(lower, "timeout") ||
		strings.Contains(lower, "deadline exceeded"):
		return RejectionTimeout
	case errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) ||
		strings.Contains(lower, "connection refused") || strings.Contains(lower, "connection reset") ||
		strings.Contains(lower, "no such host"):
		return RejectionNetwork
	default:
		return RejectionProvider
	}
}

func rejectionMessage(err error) string {
	switch ClassifySubmissionError(err) {
	case RejectionUserDenied:
		return "transaction was rejected in the wallet"
	case RejectionInsufficientFunds:
		return "insufficient funds for value and gas"
	case RejectionNonce:
		return "nonce conflict with a pending transaction"
	case RejectionTimeout:
		return "wallet or provider timed out"
	case RejectionNetwork:
		return "could not reach the provider"
	default:
		return fmt.Sprintf("provider error: %v", err)
	}
}

func newSubmissionError(err error) *TxError {
	return &TxError{Kind: KindSubmissionRejected, Message: rejectionMessage(err), Err: err}
}

func newReceiptError(hash string, err error) *TxError {
	msg := "could not confirm transaction"
	if errors.Is(err, ErrReverted) {
		msg = "transaction reverted"
	}
	return &TxError{Kind: KindReceiptError, Hash: hash, Message: msg, Err: err}
}
