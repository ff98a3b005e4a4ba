package txexec

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"
)

// Signer signs transactions for one account.
type Signer interface {
	Address() common.Address
	SignTx(tx *types.Transaction, chainID *big.Int) (*types.Transaction, error)
	Name() string
}

// KeySigner signs with an in-memory private key.
type KeySigner struct {
	key     *ecdsa.PrivateKey
	address common.Address
}

// NewKeySigner parses a hex private key, with or without 0x.
func NewKeySigner(hexKey string) (*KeySigner, error) {
	hexKey = strings.TrimPrefix(strings.TrimSpace(hexKey), "0x")
	key, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	return &KeySigner{key: key, address: crypto.PubkeyToAddress(key.PublicKey)}, nil
}

func (s *KeySigner) Address() common.Address {
	return s.address
}

func (s *KeySigner) SignTx(tx *types.Transaction, chainID *big.Int) (*types.Transaction, error) {
	return types.SignTx(tx, types.LatestSignerForChainID(chainID), s.key)
}

func (s *KeySigner) Name() string {
	return "PrivateKey"
}

// SubmitBackend is the RPC surface EthSubmitter needs; *chain.Client
// satisfies it.
type SubmitBackend interface {
	ChainID(ctx context.Context) (*big.Int, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
}

// Gas price and limit are padded by these percentages over the node's
// suggestion and estimate.
const (
	gasPriceBumpPercent = 120
	gasLimitBumpPercent = 120
)

// EthSubmitter builds, signs and broadcasts legacy transactions.
type EthSubmitter struct {
	backend SubmitBackend
	signer  Signer
	logger  *zap.Logger
}

func NewEthSubmitter(backend SubmitBackend, signer Signer, logger *zap.Logger) *EthSubmitter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EthSubmitter{backend: backend, signer: signer, logger: logger}
}

// Submit implements Submitter.
func (s *EthSubmitter) Submit(ctx context.Context, call Call) (common.Hash, error) {
	data, err := call.Pack()
	if err != nil {
		return common.Hash{}, err
	}

	from := s.signer.Address()
	chainID, err := s.backend.ChainID(ctx)
	if err != nil {
		return common.Hash{}, fmt.Errorf("get chain id: %w", err)
	}
	nonce, err := s.backend.PendingNonceAt(ctx, from)
	if err != nil {
		return common.Hash{}, fmt.Errorf("get nonce: %w", err)
	}
	suggested, err := s.backend.SuggestGasPrice(ctx)
	if err != nil {
		return common.Hash{}, fmt.Errorf("suggest gas price: %w", err)
	}
	gasPrice := percentOf(suggested, gasPriceBumpPercent)

	to := call.Address
	value := call.value()
	estimate, err := s.backend.EstimateGas(ctx, ethereum.CallMsg{
		From:     from,
		To:       &to,
		GasPrice: gasPrice,
		Value:    value,
		Data:     data,
	})
	if err != nil {
		return common.Hash{}, fmt.Errorf("estimate gas: %w", err)
	}
	gasLimit := estimate * gasLimitBumpPercent / 100

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &to,
		Value:    value,
		Gas:      gasLimit,
		GasPrice: gasPrice,
		Data:     data,
	})
	signed, err := s.signer.SignTx(tx, chainID)
	if err != nil {
		return common.Hash{}, fmt.Errorf("sign transaction (%s): %w", s.signer.Name(), err)
	}

	s.logger.Debug("send transaction",
		zap.String("from", from.Hex()),
		zap.String("to", to.Hex()),
		zap.Uint64("nonce", nonce),
		zap.Uint64("gas", gasLimit),
		zap.String("gas_price", gasPrice.String()),
		zap.String("value", value.String()),
		zap.String("chain_id", chainID.String()),
	)
	if err := s.backend.SendTransaction(ctx, signed); err != nil {
		return common.Hash{}, fmt.Errorf("send transaction: %w", err)
	}
	return signed.Hash(), nil
}

func percentOf(v *big.Int, percent int64) *big.Int {
	out := new(big.Int).Mul(v, big.NewInt(percent))
	return out.Div(out, big.NewInt(100))
}

// ReceiptBackend is the RPC surface EthReceiptWatcher needs.
type ReceiptBackend interface {
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

// Receipt polling defaults.
const (
	DefaultPollInterval         = 2 * time.Second
	DefaultMaxConsecutiveErrors = 5
)

// EthReceiptWatcher polls eth_getTransactionReceipt until the receipt exists.
type EthReceiptWatcher struct {
	backend      ReceiptBackend
	pollInterval time.Duration
	maxErrors    int
	logger       *zap.Logger
}

func NewEthReceiptWatcher(backend ReceiptBackend, pollInterval time.Duration, maxConsecutiveErrors int, logger *zap.Logger) *EthReceiptWatcher {
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	if maxConsecutiveErrors <= 0 {
		maxConsecutiveErrors = DefaultMaxConsecutiveErrors
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EthReceiptWatcher{
		backend:      backend,
		pollInterval: pollInterval,
		maxErrors:    maxConsecutiveErrors,
		logger:       logger,
	}
}

// WaitReceipt implements ReceiptWatcher.
func (w *EthReceiptWatcher) WaitReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	consecutiveErrors := 0
	for {
		receipt, err := w.backend.TransactionReceipt(ctx, hash)
		switch {
		case err == nil && receipt != nil:
			return receipt, nil
		case err == nil || errors.Is(err, ethereum.NotFound):
			consecutiveErrors = 0
		default:
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			consecutiveErrors++
			w.logger.Debug("receipt poll failed", zap.String("tx_hash", hash.Hex()), zap.Int("consecutive", consecutiveErrors), zap.Error(err))
			if consecutiveErrors >= w.maxErrors {
				return nil, fmt.Errorf("receipt %s: %w", hash.Hex(), err)
			}
		}

		timer := time.NewTimer(w.pollInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}
