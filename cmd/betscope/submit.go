package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"betScope/internal/chain"
	"betScope/internal/config"
	"betScope/internal/contract"
	"betScope/internal/model"
	"betScope/internal/notify"
	"betScope/internal/txexec"
)

func runSubmit(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadSubmit(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		return err
	}

	call, err := buildCall(cfg)
	if err != nil {
		return err
	}

	signer, err := txexec.NewKeySigner(cfg.PrivateKey)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer chainClient.Close()

	notifier := notify.NewMulti(logger).Add("log", notify.NewLogNotifier(logger))
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		notifier.Add("redis", notify.NewRedisNotifier(rdb, cfg.RedisChannel))
	}
	if cfg.NATSURL != "" {
		conn, err := nats.Connect(cfg.NATSURL, nats.Timeout(10*time.Second), nats.Name("betscope-submit"))
		if err != nil {
			return fmt.Errorf("connect nats: %w", err)
		}
		defer conn.Drain()
		notifier.Add("nats", notify.NewNATSNotifier(conn, cfg.NATSSubject))
	}

	executor := txexec.NewExecutor(
		txexec.Config{FallbackTimeout: cfg.FallbackTimeout},
		txexec.NewEthSubmitter(chainClient, signer, logger),
		txexec.NewEthReceiptWatcher(chainClient, cfg.PollInterval, cfg.MaxReceiptErrors, logger),
		notifier,
		logger,
	)

	logger.Info("submit start",
		zap.String("rpc", cfg.RPCURL),
		zap.String("from", signer.Address().Hex()),
		zap.String("contract", call.Address.Hex()),
		zap.String("function", call.FunctionName),
		zap.String("value", call.Value.String()),
		zap.Duration("fallback_timeout", cfg.FallbackTimeout),
	)

	result, execErr := executor.Execute(ctx, call, txexec.Callbacks{})
	if execErr != nil && errors.Is(execErr, context.Canceled) {
		return execErr
	}

	outcome := buildOutcome(executor.State(), result, execErr)
	encoded, err := json.MarshalIndent(outcome, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal outcome: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(encoded))

	return execErr
}

func buildCall(cfg config.SubmitConfig) (txexec.Call, error) {
	address, err := chain.ParseAddress(cfg.Contract)
	if err != nil {
		return txexec.Call{}, err
	}
	value, err := chain.ParseWei(cfg.Value)
	if err != nil {
		return txexec.Call{}, err
	}
	parsed, err := contract.LoadABI(cfg.ABIPath)
	if err != nil {
		return txexec.Call{}, err
	}
	method, ok := parsed.Methods[cfg.Function]
	if !ok {
		return txexec.Call{}, fmt.Errorf("method %q not found in abi", cfg.Function)
	}
	args, err := txexec.CoerceArgs(method, json.RawMessage(cfg.Args))
	if err != nil {
		return txexec.Call{}, err
	}
	return txexec.Call{
		Address:      address,
		ABI:          parsed,
		FunctionName: cfg.Function,
		Args:         args,
		Value:        value,
	}, nil
}

func buildOutcome(state txexec.TransactionState, result txexec.Result, execErr error) model.TxOutcome {
	outcome := model.TxOutcome{
		SubmissionID: state.SubmissionID,
		Phase:        string(state.Phase),
		Fallback:     result.Fallback,
	}
	if state.Hash != (common.Hash{}) {
		outcome.TxHash = state.Hash.Hex()
	}
	if result.Receipt != nil {
		if result.Receipt.BlockNumber != nil {
			outcome.BlockNumber = result.Receipt.BlockNumber.Uint64()
		}
		outcome.GasUsed = result.Receipt.GasUsed
	}
	if execErr != nil {
		outcome.Error = execErr.Error()
		var txErr *txexec.TxError
		if errors.As(execErr, &txErr) {
			outcome.ErrorKind = string(txErr.Kind)
		}
	}
	return outcome
}
