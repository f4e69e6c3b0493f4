package server

import (
	"github.com/novaland-labs/marketplace/internal/config"
	"github.com/novaland-labs/marketplace/internal/pinning"
	"github.com/novaland-labs/marketplace/internal/services"
	"gorm.io/gorm"
)

func InitializeServices(cfg *config.Config, db *gorm.DB) (services.SubmissionService, services.RegistryService, services.WalletService, services.ThreadService, error) {
	registryService, err := services.NewRegistryService(cfg.RPCURL, cfg.ContractAddress)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	var walletService services.WalletService
	if cfg.PrivateKey != "" {
		walletService, err = services.NewKeyedWalletService(cfg.PrivateKey, cfg.ChainID)
		if err != nil {
			return nil, nil, nil, nil, err
		}
	} else {
		walletService = services.NewUnconfiguredWalletService()
	}

	pinner := pinning.NewClient(pinning.Config{
		APIKey:    cfg.PinataAPIKey,
		APISecret: cfg.PinataAPISecret,
		Gateway:   cfg.PinataGateway,
	})

	submissionService := services.NewSubmissionService(db, pinner, registryService, walletService)
	threadService := services.NewThreadService(db)

	return submissionService, registryService, walletService, threadService, nil
}
