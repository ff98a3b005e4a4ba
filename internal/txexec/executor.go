package txexec

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"betScope/internal/metrics"
	"betScope/internal/notify"
)

// DefaultFallbackTimeout is how long to wait for a receipt before assuming
// the transaction succeeded.
const DefaultFallbackTimeout = 30 * time.Second

// Submitter hands a call to a wallet or provider and returns its hash.
type Submitter interface {
	Submit(ctx context.Context, call Call) (common.Hash, error)
}

// ReceiptWatcher blocks until the receipt for hash is available or ctx ends.
type ReceiptWatcher interface {
	WaitReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error)
}

// Config holds executor settings.
type Config struct {
	FallbackTimeout time.Duration
}

// Callbacks receive the settled outcome. Exactly one of them runs per
// submission, and neither runs after teardown.
type Callbacks struct {
	OnSuccess func(Result)
	OnError   func(error)
}

type receiptResult struct {
	receipt *types.Receipt
	err     error
}

// Executor drives one contract call from submission to a settled outcome.
// An Executor is single-use.
type Executor struct {
	cfg       Config
	submitter Submitter
	watcher   ReceiptWatcher
	notifier  notify.Notifier
	logger    *zap.Logger

	mu       sync.Mutex
	state    TransactionState
	started  bool
	tornDown bool
	cancel   context.CancelFunc
}

// NewExecutor builds an Executor. A nil notifier discards notifications.
func NewExecutor(cfg Config, submitter Submitter, watcher ReceiptWatcher, notifier notify.Notifier, logger *zap.Logger) *Executor {
	if cfg.FallbackTimeout <= 0 {
		cfg.FallbackTimeout = DefaultFallbackTimeout
	}
	if notifier == nil {
		notifier = notify.Nop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{
		cfg:       cfg,
		submitter: submitter,
		watcher:   watcher,
		notifier:  notifier,
		logger:    logger,
		state: TransactionState{
			SubmissionID: uuid.NewString(),
			Phase:        PhaseIdle,
		},
	}
}

// State returns a snapshot of the submission.
func (e *Executor) State() TransactionState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.clone()
}

// Teardown abandons the submission. A pending Execute returns without
// invoking callbacks; a later Execute returns context.Canceled.
func (e *Executor) Teardown() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tornDown = true
	if e.cancel != nil {
		e.cancel()
	}
}

// Execute submits call and waits for the outcome. It returns the result or
// error that was delivered to cb, or the context error after teardown.
func (e *Executor) Execute(ctx context.Context, call Call, cb Callbacks) (Result, error) {
	if e.submitter == nil || e.watcher == nil {
		return Result{}, fmt.Errorf("executor requires a submitter and a receipt watcher")
	}

	e.mu.Lock()
	if e.started {
		e.mu.Unlock()
		return Result{}, ErrAlreadySubmitted
	}
	e.started = true
	if e.tornDown {
		e.mu.Unlock()
		return Result{}, context.Canceled
	}
	ctx, cancel := context.WithCancel(ctx)
	e.cancel = cancel
	e.state.Phase = PhaseSubmitting
	id := e.state.SubmissionID
	e.mu.Unlock()
	defer cancel()

	start := time.Now()
	logger := e.logger.With(zap.String("submission_id", id), zap.String("function", call.FunctionName))

	e.notify(ctx, notify.Notification{Status: notify.StatusSubmitting, Message: "submitting transaction"})

	hash, err := e.submitter.Submit(ctx, call)
	if err != nil {
		if ctx.Err() != nil {
			return e.abandon(ctx, logger)
		}
		logger.Warn("submission rejected", zap.String("reason", ClassifySubmissionError(err)), zap.Error(err))
		return e.fail(ctx, cb, newSubmissionError(err), start)
	}

	e.mu.Lock()
	e.state.Hash = hash
	e.state.Phase = PhaseAwaitingReceipt
	e.mu.Unlock()
	if ctx.Err() != nil {
		return e.abandon(ctx, logger)
	}

	logger = logger.With(zap.String("tx_hash", hash.Hex()))
	logger.Info("transaction submitted")
	e.notify(ctx, notify.Notification{Status: notify.StatusConfirming, Message: "waiting for confirmation", TxHash: hash.Hex()})

	watchCtx, stopWatch := context.WithCancel(ctx)
	defer stopWatch()
	done := make(chan receiptResult, 1)
	go func() {
		receipt, err := e.watcher.WaitReceipt(watchCtx, hash)
		done <- receiptResult{receipt: receipt, err: err}
	}()

	timer := time.NewTimer(e.cfg.FallbackTimeout)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		stopWatch()
		<-done
		return e.abandon(ctx, logger)

	case res := <-done:
		timer.Stop()
		if ctx.Err() != nil {
			return e.abandon(ctx, logger)
		}
		if res.err != nil {
			logger.Warn("receipt wait failed", zap.Error(res.err))
			return e.fail(ctx, cb, newReceiptError(hash.Hex(), res.err), start)
		}
		if res.receipt == nil {
			return e.fail(ctx, cb, newReceiptError(hash.Hex(), errors.New("empty receipt")), start)
		}
		if res.receipt.Status == types.ReceiptStatusFailed {
			logger.Warn("transaction reverted", zap.Uint64("gas_used", res.receipt.GasUsed))
			return e.fail(ctx, cb, newReceiptError(hash.Hex(), ErrReverted), start)
		}
		return e.succeed(ctx, cb, Result{SubmissionID: id, Hash: hash, Receipt: res.receipt}, start, logger)

	case <-timer.C:
		stopWatch()
		<-done
		if ctx.Err() != nil {
			return e.abandon(ctx, logger)
		}
		logger.Warn("no receipt before fallback timeout, assuming success", zap.Duration("timeout", e.cfg.FallbackTimeout))
		return e.succeed(ctx, cb, Result{SubmissionID: id, Hash: hash, Fallback: true}, start, logger)
	}
}

func (e *Executor) succeed(ctx context.Context, cb Callbacks, result Result, start time.Time, logger *zap.Logger) (Result, error) {
	e.mu.Lock()
	e.state.Phase = PhaseSucceeded
	stored := result
	e.state.Result = &stored
	e.mu.Unlock()

	outcome := "success"
	message := "transaction confirmed"
	if result.Fallback {
		outcome = "fallback_success"
		message = "transaction assumed confirmed"
	}
	metrics.TxOutcomesTotal.WithLabelValues(outcome).Inc()
	metrics.TxSettleDuration.Observe(time.Since(start).Seconds())

	if result.Receipt != nil {
		var blockNumber uint64
		if result.Receipt.BlockNumber != nil {
			blockNumber = result.Receipt.BlockNumber.Uint64()
		}
		logger.Info("transaction confirmed",
			zap.Uint64("block_number", blockNumber),
			zap.Uint64("gas_used", result.Receipt.GasUsed),
		)
	}

	e.notify(ctx, notify.Notification{
		Status:   notify.StatusSuccess,
		Message:  message,
		TxHash:   result.Hash.Hex(),
		Fallback: result.Fallback,
	})
	if err := e.tornDownErr(ctx); err != nil {
		logger.Info("torn down before success callback", zap.Error(err))
		return Result{}, err
	}
	if cb.OnSuccess != nil {
		cb.OnSuccess(result)
	}
	return result, nil
}

func (e *Executor) fail(ctx context.Context, cb Callbacks, txErr *TxError, start time.Time) (Result, error) {
	e.mu.Lock()
	e.state.Phase = PhaseFailed
	e.state.Err = txErr
	e.mu.Unlock()

	metrics.TxOutcomesTotal.WithLabelValues(outcomeLabel(txErr.Kind)).Inc()
	metrics.TxSettleDuration.Observe(time.Since(start).Seconds())

	e.notify(ctx, notify.Notification{Status: notify.StatusFailure, Message: txErr.Message, TxHash: txErr.Hash})
	if err := e.tornDownErr(ctx); err != nil {
		e.logger.Info("torn down before error callback", zap.String("submission_id", e.State().SubmissionID), zap.Error(err))
		return Result{}, err
	}
	if cb.OnError != nil {
		cb.OnError(txErr)
	}
	return Result{}, txErr
}

// tornDownErr reports whether callbacks must be suppressed. Notifier sinks
// may block long enough for Teardown to land after the outcome settled.
func (e *Executor) tornDownErr(ctx context.Context) error {
	e.mu.Lock()
	tornDown := e.tornDown
	e.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	if tornDown {
		return context.Canceled
	}
	return nil
}

func (e *Executor) abandon(ctx context.Context, logger *zap.Logger) (Result, error) {
	err := ctx.Err()
	if err == nil {
		err = context.Canceled
	}
	e.mu.Lock()
	e.state.Err = err
	e.mu.Unlock()

	metrics.TxOutcomesTotal.WithLabelValues("torn_down").Inc()
	logger.Info("submission abandoned", zap.Error(err))
	return Result{}, err
}

func (e *Executor) notify(ctx context.Context, n notify.Notification) {
	e.mu.Lock()
	n.SubmissionID = e.state.SubmissionID
	e.mu.Unlock()
	n.Timestamp = time.Now().Unix()

	if err := e.notifier.Notify(ctx, n); err != nil {
		e.logger.Debug("lifecycle notification failed", zap.String("status", string(n.Status)), zap.Error(err))
	}
}

func outcomeLabel(kind ErrorKind) string {
	switch kind {
	case KindSubmissionRejected:
		return "submission_rejected"
	case KindReceiptError:
		return "receipt_error"
	default:
		return string(kind)
	}
}
