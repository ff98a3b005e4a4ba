package config

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
)

// SubmitConfig holds configuration for the submit command.
type SubmitConfig struct {
	RPCURL           string
	PrivateKey       string
	Contract         string
	ABIPath          string
	Function         string
	Args             string
	Value            string
	FallbackTimeout  time.Duration
	PollInterval     time.Duration
	MaxReceiptErrors int
	RedisAddr        string
	RedisChannel     string
	NATSURL          string
	NATSSubject      string
	LogLevel         string
}

// LoadSubmit merges config file, environment variables, and flags into SubmitConfig.
func LoadSubmit(cfgFile string, flags *pflag.FlagSet) (SubmitConfig, error) {
	v, err := newViper(cfgFile, flags, map[string]interface{}{
		"args":               "[]",
		"value":              "0",
		"fallback-timeout":   30 * time.Second,
		"poll-interval":      2 * time.Second,
		"max-receipt-errors": 5,
		"redis-channel":      "betscope.tx",
		"nats-subject":       "betscope.tx",
		"log-level":          "info",
	})
	if err != nil {
		return SubmitConfig{}, err
	}

	privateKey, err := getSecret(v, "private-key")
	if err != nil {
		return SubmitConfig{}, err
	}

	return SubmitConfig{
		RPCURL:           v.GetString("rpc"),
		PrivateKey:       privateKey,
		Contract:         v.GetString("contract"),
		ABIPath:          v.GetString("abi"),
		Function:         v.GetString("function"),
		Args:             v.GetString("args"),
		Value:            v.GetString("value"),
		FallbackTimeout:  v.GetDuration("fallback-timeout"),
		PollInterval:     v.GetDuration("poll-interval"),
		MaxReceiptErrors: v.GetInt("max-receipt-errors"),
		RedisAddr:        v.GetString("redis-addr"),
		RedisChannel:     v.GetString("redis-channel"),
		NATSURL:          v.GetString("nats-url"),
		NATSSubject:      v.GetString("nats-subject"),
		LogLevel:         v.GetString("log-level"),
	}, nil
}

// Validate checks required settings.
func (c SubmitConfig) Validate() error {
	switch {
	case c.RPCURL == "":
		return fmt.Errorf("rpc url is required")
	case c.PrivateKey == "":
		return fmt.Errorf("private key is required")
	case c.Contract == "":
		return fmt.Errorf("contract address is required")
	case c.Function == "":
		return fmt.Errorf("function is required")
	case c.FallbackTimeout <= 0:
		return fmt.Errorf("fallback timeout must be positive")
	}
	return nil
}
