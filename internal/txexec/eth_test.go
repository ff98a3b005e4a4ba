package txexec

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	chainID  *big.Int
	nonce    uint64
	gasPrice *big.Int
	gas      uint64

	estimateMsg ethereum.CallMsg
	sent        *types.Transaction
	sendErr     error
}

func (f *fakeBackend) ChainID(context.Context) (*big.Int, error) { return f.chainID, nil }

func (f *fakeBackend) PendingNonceAt(context.Context, common.Address) (uint64, error) {
	return f.nonce, nil
}

func (f *fakeBackend) SuggestGasPrice(context.Context) (*big.Int, error) { return f.gasPrice, nil }

func (f *fakeBackend) EstimateGas(_ context.Context, msg ethereum.CallMsg) (uint64, error) {
	f.estimateMsg = msg
	return f.gas, nil
}

func (f *fakeBackend) SendTransaction(_ context.Context, tx *types.Transaction) error {
	f.sent = tx
	return f.sendErr
}

func newTestSigner(t *testing.T) *KeySigner {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	signer, err := NewKeySigner(hexutil.Encode(crypto.FromECDSA(key)))
	require.NoError(t, err)
	require.Equal(t, crypto.PubkeyToAddress(key.PublicKey), signer.Address())
	return signer
}

func TestKeySignerRecoversSender(t *testing.T) {
	signer := newTestSigner(t)
	chainID := big.NewInt(31337)
	to := common.HexToAddress("0x00000000000000000000000000000000000000c4")

	tx := types.NewTx(&types.LegacyTx{Nonce: 1, To: &to, Value: big.NewInt(1), Gas: 21000, GasPrice: big.NewInt(1)})
	signed, err := signer.SignTx(tx, chainID)
	require.NoError(t, err)

	sender, err := types.Sender(types.LatestSignerForChainID(chainID), signed)
	require.NoError(t, err)
	assert.Equal(t, signer.Address(), sender)
}

func TestNewKeySignerInvalid(t *testing.T) {
	_, err := NewKeySigner("0x1234")
	assert.Error(t, err)
}

func TestEthSubmitterBuildsTransaction(t *testing.T) {
	signer := newTestSigner(t)
	backend := &fakeBackend{chainID: big.NewInt(31337), nonce: 7, gasPrice: big.NewInt(100), gas: 50000}
	call := testCall(t)

	hash, err := NewEthSubmitter(backend, signer, nil).Submit(context.Background(), call)
	require.NoError(t, err)
	require.NotNil(t, backend.sent)

	sent := backend.sent
	assert.Equal(t, sent.Hash(), hash)
	assert.Equal(t, uint64(7), sent.Nonce())
	assert.Equal(t, uint64(60000), sent.Gas())
	assert.Equal(t, int64(120), sent.GasPrice().Int64())
	assert.Equal(t, int64(1000), sent.Value().Int64())
	require.NotNil(t, sent.To())
	assert.Equal(t, call.Address, *sent.To())

	data, err := call.Pack()
	require.NoError(t, err)
	assert.Equal(t, data, sent.Data())
	assert.Equal(t, data, backend.estimateMsg.Data)
	assert.Equal(t, signer.Address(), backend.estimateMsg.From)

	sender, err := types.Sender(types.LatestSignerForChainID(big.NewInt(31337)), sent)
	require.NoError(t, err)
	assert.Equal(t, signer.Address(), sender)
}

func TestEthSubmitterSendError(t *testing.T) {
	backend := &fakeBackend{chainID: big.NewInt(1), gasPrice: big.NewInt(1), gas: 21000, sendErr: errors.New("insufficient funds for gas * price + value")}

	_, err := NewEthSubmitter(backend, newTestSigner(t), nil).Submit(context.Background(), testCall(t))
	require.Error(t, err)
	assert.Equal(t, RejectionInsufficientFunds, ClassifySubmissionError(err))
}

func TestEthSubmitterUnknownMethod(t *testing.T) {
	call := testCall(t)
	call.FunctionName = "missing"
	_, err := NewEthSubmitter(&fakeBackend{}, newTestSigner(t), nil).Submit(context.Background(), call)
	assert.Error(t, err)
}

type scriptedReceipts struct {
	mu    sync.Mutex
	steps []func() (*types.Receipt, error)
	calls int
}

func (s *scriptedReceipts) TransactionReceipt(context.Context, common.Hash) (*types.Receipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	step := s.steps[len(s.steps)-1]
	if s.calls < len(s.steps) {
		step = s.steps[s.calls]
	}
	s.calls++
	return step()
}

func notFound() (*types.Receipt, error) { return nil, ethereum.NotFound }

func TestReceiptWatcherPollsUntilFound(t *testing.T) {
	backend := &scriptedReceipts{steps: []func() (*types.Receipt, error){
		notFound,
		func() (*types.Receipt, error) { return nil, errors.New("temporary") },
		notFound,
		func() (*types.Receipt, error) { return &types.Receipt{Status: 1}, nil },
	}}
	watcher := NewEthReceiptWatcher(backend, time.Millisecond, 2, nil)

	receipt, err := watcher.WaitReceipt(context.Background(), testHash)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), receipt.Status)
	assert.Equal(t, 4, backend.calls)
}

func TestReceiptWatcherErrorBudget(t *testing.T) {
	rpcErr := errors.New("bad gateway")
	backend := &scriptedReceipts{steps: []func() (*types.Receipt, error){
		func() (*types.Receipt, error) { return nil, rpcErr },
	}}
	watcher := NewEthReceiptWatcher(backend, time.Millisecond, 3, nil)

	_, err := watcher.WaitReceipt(context.Background(), testHash)
	assert.ErrorIs(t, err, rpcErr)
	assert.Equal(t, 3, backend.calls)
}

func TestReceiptWatcherStopsOnCancel(t *testing.T) {
	backend := &scriptedReceipts{steps: []func() (*types.Receipt, error){notFound}}
	watcher := NewEthReceiptWatcher(backend, 5*time.Millisecond, 3, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err := watcher.WaitReceipt(ctx, testHash)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
