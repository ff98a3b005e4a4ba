package contract

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// BetManagerABIJSON is the interface of the betting contract the product
// talks to. Only the user-facing entry points are listed.
const BetManagerABIJSON = `[
  {
    "inputs": [
      {"internalType": "string", "name": "name", "type": "string"},
      {"internalType": "string", "name": "description", "type": "string"},
      {"internalType": "string", "name": "image", "type": "string"},
      {"internalType": "string", "name": "link", "type": "string"},
      {"internalType": "string[]", "name": "options", "type": "string[]"},
      {"internalType": "uint8", "name": "betType", "type": "uint8"},
      {"internalType": "uint256", "name": "betDuration", "type": "uint256"},
      {"internalType": "bool", "name": "privateBet", "type": "bool"}
    ],
    "name": "createBet",
    "outputs": [{"internalType": "uint256", "name": "betId", "type": "uint256"}],
    "stateMutability": "nonpayable",
    "type": "function"
  },
  {
    "inputs": [
      {"internalType": "uint256", "name": "betId", "type": "uint256"},
      {"internalType": "uint256", "name": "optionIndex", "type": "uint256"}
    ],
    "name": "placeBet",
    "outputs": [],
    "stateMutability": "payable",
    "type": "function"
  },
  {
    "inputs": [
      {"internalType": "uint256", "name": "betId", "type": "uint256"},
      {"internalType": "uint256", "name": "winningOption", "type": "uint256"}
    ],
    "name": "resolveBet",
    "outputs": [],
    "stateMutability": "nonpayable",
    "type": "function"
  },
  {
    "inputs": [{"internalType": "uint256", "name": "betId", "type": "uint256"}],
    "name": "claimWinnings",
    "outputs": [],
    "stateMutability": "nonpayable",
    "type": "function"
  },
  {
    "inputs": [{"internalType": "uint256", "name": "betId", "type": "uint256"}],
    "name": "cancelBet",
    "outputs": [],
    "stateMutability": "nonpayable",
    "type": "function"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "uint256", "name": "betId", "type": "uint256"},
      {"indexed": true, "internalType": "address", "name": "owner", "type": "address"}
    ],
    "name": "BetCreated",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "uint256", "name": "betId", "type": "uint256"},
      {"indexed": true, "internalType": "address", "name": "bettor", "type": "address"},
      {"indexed": false, "internalType": "uint256", "name": "optionIndex", "type": "uint256"},
      {"indexed": false, "internalType": "uint256", "name": "amount", "type": "uint256"}
    ],
    "name": "BetPlaced",
    "type": "event"
  }
]`

var (
	betManagerABI     abi.ABI
	betManagerABIOnce sync.Once
	betManagerABIErr  error
)

// BetManagerABI returns the parsed built-in betting contract ABI.
func BetManagerABI() (abi.ABI, error) {
	betManagerABIOnce.Do(func() {
		betManagerABI, betManagerABIErr = abi.JSON(strings.NewReader(BetManagerABIJSON))
	})
	return betManagerABI, betManagerABIErr
}

// LoadABI parses an ABI JSON file. An empty path selects the built-in
// betting contract ABI.
func LoadABI(path string) (abi.ABI, error) {
	if strings.TrimSpace(path) == "" {
		return BetManagerABI()
	}
	file, err := os.Open(path)
	if err != nil {
		return abi.ABI{}, fmt.Errorf("open abi: %w", err)
	}
	defer file.Close()
	return ParseABI(file)
}

// ParseABI parses ABI JSON from r.
func ParseABI(r io.Reader) (abi.ABI, error) {
	parsed, err := abi.JSON(r)
	if err != nil {
		return abi.ABI{}, fmt.Errorf("parse abi: %w", err)
	}
	return parsed, nil
}
