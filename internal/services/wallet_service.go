package services

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/novaland-labs/marketplace/internal/models"
)

// WalletRejectedError reports that the wallet layer declined to authorize a
// transaction. Code follows the EIP-1193 convention where 4001 means the
// user rejected the request.
type WalletRejectedError struct {
	Code    int
	Message string
}

func (e *WalletRejectedError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("wallet rejected request (%d): %s", e.Code, e.Message)
	}
	return fmt.Sprintf("wallet rejected request (%d)", e.Code)
}

// WalletService is the wallet provider collaborator: it answers which
// accounts are available and hands out transactors for state-changing calls.
// A decline at either step surfaces as WalletRejectedError.
type WalletService interface {
	RequestAccounts(ctx context.Context) ([]string, error)
	Address() string
	NewTransactor(ctx context.Context) (*bind.TransactOpts, error)
}

type keyedWalletService struct {
	key     *ecdsa.PrivateKey
	chainID *big.Int
	address common.Address
}

// NewKeyedWalletService builds a wallet around a hex-encoded private key.
// The key material is validated eagerly so a malformed key is a startup
// error, not a submit-time surprise.
func NewKeyedWalletService(privateKeyHex, chainID string) (WalletService, error) {
	if privateKeyHex == "" {
		return nil, fmt.Errorf("wallet private key is not configured")
	}
	key, err := crypto.HexToECDSA(privateKeyHex)
	if err != nil {
		return nil, fmt.Errorf("invalid wallet private key: %w", err)
	}

	id, ok := new(big.Int).SetString(chainID, 10)
	if !ok {
		return nil, fmt.Errorf("invalid chain id %q", chainID)
	}

	return &keyedWalletService{
		key:     key,
		chainID: id,
		address: crypto.PubkeyToAddress(key.PublicKey),
	}, nil
}

func (s *keyedWalletService) RequestAccounts(ctx context.Context) ([]string, error) {
	return []string{s.address.Hex()}, nil
}

func (s *keyedWalletService) Address() string {
	return s.address.Hex()
}

func (s *keyedWalletService) NewTransactor(ctx context.Context) (*bind.TransactOpts, error) {
	auth, err := bind.NewKeyedTransactorWithChainID(s.key, s.chainID)
	if err != nil {
		return nil, &WalletRejectedError{Code: 4001, Message: err.Error()}
	}
	auth.Context = ctx
	return auth, nil
}

type unconfiguredWalletService struct{}

// NewUnconfiguredWalletService is the wallet used when no signing key is
// set. Every transactor request fails with a ConfigurationError so the
// read-only surface keeps working without one.
func NewUnconfiguredWalletService() WalletService {
	return unconfiguredWalletService{}
}

func (unconfiguredWalletService) RequestAccounts(ctx context.Context) ([]string, error) {
	return nil, walletNotConfigured()
}

func (unconfiguredWalletService) Address() string {
	return ""
}

func (unconfiguredWalletService) NewTransactor(ctx context.Context) (*bind.TransactOpts, error) {
	return nil, walletNotConfigured()
}

func walletNotConfigured() error {
	return &models.ConfigurationError{
		Setting: "wallet private key",
		Reason:  "signing key is not set",
	}
}
