package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/novaland-labs/marketplace/internal/constants"
	"github.com/novaland-labs/marketplace/internal/models"
	"github.com/novaland-labs/marketplace/internal/utils"
)

// Config carries every runtime setting the server reads from the
// environment. Values are loaded once at startup; missing submission
// preconditions are reported through SubmissionPreconditions rather than
// failing the load, so the read-only surface stays usable.
type Config struct {
	Port            int
	RPCURL          string
	ChainID         string
	ContractAddress string
	PrivateKey      string

	PinataAPIKey    string
	PinataAPISecret string
	PinataGateway   string

	DatabasePath string
	PostgresURL  string
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:            8080,
		RPCURL:          os.Getenv("RPC_URL"),
		ChainID:         os.Getenv("CHAIN_ID"),
		ContractAddress: os.Getenv("CONTRACT_ADDRESS"),
		PrivateKey:      os.Getenv("WALLET_PRIVATE_KEY"),
		PinataAPIKey:    os.Getenv("PINATA_API_KEY"),
		PinataAPISecret: os.Getenv("PINATA_API_SECRET"),
		PinataGateway:   os.Getenv("PINATA_GATEWAY"),
		DatabasePath:    os.Getenv("DATABASE_PATH"),
		PostgresURL:     os.Getenv("POSTGRES_URL"),
	}

	if port := os.Getenv("PORT"); port != "" {
		parsed, err := strconv.Atoi(port)
		if err != nil {
			return nil, &models.ConfigurationError{Setting: "PORT", Reason: "not a number: " + port}
		}
		cfg.Port = parsed
	}
	if cfg.RPCURL == "" {
		cfg.RPCURL = "http://localhost:8545"
	}
	if cfg.ChainID == "" {
		cfg.ChainID = "1"
	}
	if cfg.PinataGateway == "" {
		cfg.PinataGateway = constants.DefaultPinataGateway
	}
	if cfg.DatabasePath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		cfg.DatabasePath = filepath.Join(home, "novaland.db")
	}
	return cfg, nil
}

// SubmissionPreconditions returns every configuration error that would make
// a property submission fail. An empty slice means submissions can be
// offered.
func (c *Config) SubmissionPreconditions() []error {
	var errs []error
	if c.ContractAddress == "" {
		errs = append(errs, &models.ConfigurationError{
			Setting: "CONTRACT_ADDRESS",
			Reason:  "registry contract address is not set",
		})
	} else if !utils.IsValidEthereumAddress(c.ContractAddress) {
		errs = append(errs, &models.ConfigurationError{
			Setting: "CONTRACT_ADDRESS",
			Reason:  "not a valid Ethereum address: " + c.ContractAddress,
		})
	}
	if c.PinataAPIKey == "" || c.PinataAPISecret == "" {
		errs = append(errs, &models.ConfigurationError{
			Setting: "PINATA_API_KEY / PINATA_API_SECRET",
			Reason:  "pinning credentials are not set",
		})
	}
	if c.PrivateKey == "" {
		errs = append(errs, &models.ConfigurationError{
			Setting: "WALLET_PRIVATE_KEY",
			Reason:  "signing key is not set",
		})
	}
	return errs
}
