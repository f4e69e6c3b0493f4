package services

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/go-playground/validator/v10"
	"github.com/novaland-labs/marketplace/internal/constants"
	"github.com/novaland-labs/marketplace/internal/models"
	"github.com/novaland-labs/marketplace/internal/utils"
)

// AddPropertyArgs are the arguments of the registration call, in the order
// the contract expects them.
type AddPropertyArgs struct {
	Owner       string   `validate:"required,eth_addr"`
	PriceWei    *big.Int `validate:"required"`
	Title       string   `validate:"required"`
	Category    string   `validate:"required"`
	Images      []string `validate:"required,min=1,max=6,dive,required"`
	Location    []string `validate:"required,len=4,dive,required"`
	Documents   []string `validate:"max=5,dive,required"`
	Description string
	NftID       string `validate:"required"`
}

// RegistryService is the fixed call interface of the deployed property
// registry contract. Read calls go through the node's call path; write
// calls return the transaction hash once the network has accepted the
// signed transaction, and WaitForConfirmation tracks it to finality.
type RegistryService interface {
	VerifyConnection(ctx context.Context) error
	FetchProperties(ctx context.Context) ([]models.Property, error)
	GetProperty(ctx context.Context, productID uint64) (*models.Property, error)
	AddProperty(ctx context.Context, auth *bind.TransactOpts, args AddPropertyArgs) (string, error)
	DelistProperty(ctx context.Context, auth *bind.TransactOpts, productID uint64) (string, error)
	PurchaseProperty(ctx context.Context, auth *bind.TransactOpts, productID uint64, priceWei *big.Int) (string, error)
	WaitForConfirmation(ctx context.Context, txHash string) (*utils.TransactionReceipt, error)
}

type registryService struct {
	address   common.Address
	contract  *bind.BoundContract
	rpc       *utils.RPCClient
	validator *validator.Validate
}

// novalandProperty mirrors the contract's Property tuple. Field order and
// names must track the ABI components.
type novalandProperty struct {
	ProductID     *big.Int
	Owner         common.Address
	Price         *big.Int
	PropertyTitle string
	Category      string
	Images        []string
	Location      []string
	Documents     []string
	Description   string
	NftId         string
	IsListed      bool
}

func NewRegistryService(rpcURL, contractAddress string) (RegistryService, error) {
	if contractAddress == "" {
		return nil, &models.ConfigurationError{
			Setting: "contract address",
			Reason:  "registry contract address is not set",
		}
	}
	if !utils.IsValidEthereumAddress(contractAddress) {
		return nil, &models.ConfigurationError{
			Setting: "contract address",
			Reason:  fmt.Sprintf("invalid contract address format: %s", contractAddress),
		}
	}

	client, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RPC endpoint: %w", err)
	}

	parsed, err := abi.JSON(strings.NewReader(constants.NovalandABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse registry ABI: %w", err)
	}

	address := common.HexToAddress(contractAddress)
	return &registryService{
		address:   address,
		contract:  bind.NewBoundContract(address, parsed, client, client, client),
		rpc:       utils.NewRPCClient(rpcURL),
		validator: validator.New(),
	}, nil
}

// VerifyConnection does a cheap read so a wrong address, ABI, or network
// shows up at startup instead of on the first submission.
func (s *registryService) VerifyConnection(ctx context.Context) error {
	var out []interface{}
	if err := s.contract.Call(&bind.CallOpts{Context: ctx}, &out, "propertyIndex"); err != nil {
		return fmt.Errorf("failed to read from registry contract: %w", err)
	}
	return nil
}

func (s *registryService) FetchProperties(ctx context.Context) ([]models.Property, error) {
	var out []interface{}
	if err := s.contract.Call(&bind.CallOpts{Context: ctx}, &out, "FetchProperties"); err != nil {
		return nil, fmt.Errorf("failed to fetch properties: %w", err)
	}

	raw := *abi.ConvertType(out[0], new([]novalandProperty)).(*[]novalandProperty)
	properties := make([]models.Property, 0, len(raw))
	for _, p := range raw {
		properties = append(properties, toProperty(p))
	}
	return properties, nil
}

func (s *registryService) GetProperty(ctx context.Context, productID uint64) (*models.Property, error) {
	properties, err := s.FetchProperties(ctx)
	if err != nil {
		return nil, err
	}
	for i := range properties {
		if properties[i].ProductID == productID {
			return &properties[i], nil
		}
	}
	return nil, fmt.Errorf("property %d not found in registry", productID)
}

func (s *registryService) AddProperty(ctx context.Context, auth *bind.TransactOpts, args AddPropertyArgs) (string, error) {
	if err := s.validator.Struct(args); err != nil {
		return "", err
	}

	auth.GasLimit = constants.RegisterGasLimit
	tx, err := s.contract.Transact(auth, "AddProperty",
		common.HexToAddress(args.Owner),
		args.PriceWei,
		strings.TrimSpace(args.Title),
		args.Category,
		args.Images,
		args.Location,
		args.Documents,
		strings.TrimSpace(args.Description),
		args.NftID,
	)
	if err != nil {
		return "", wrapChainError(err)
	}
	return tx.Hash().Hex(), nil
}

func (s *registryService) DelistProperty(ctx context.Context, auth *bind.TransactOpts, productID uint64) (string, error) {
	auth.GasLimit = constants.DelistGasLimit
	tx, err := s.contract.Transact(auth, "DelistProperty", new(big.Int).SetUint64(productID))
	if err != nil {
		return "", wrapChainError(err)
	}
	return tx.Hash().Hex(), nil
}

func (s *registryService) PurchaseProperty(ctx context.Context, auth *bind.TransactOpts, productID uint64, priceWei *big.Int) (string, error) {
	auth.GasLimit = constants.PurchaseGasLimit
	auth.Value = priceWei
	tx, err := s.contract.Transact(auth, "PurchaseProperty", new(big.Int).SetUint64(productID))
	if err != nil {
		return "", wrapChainError(err)
	}
	return tx.Hash().Hex(), nil
}

// WaitForConfirmation blocks until the transaction is mined or ctx ends. A
// mined-but-reverted transaction returns the receipt together with a
// RevertError so callers can distinguish revert from a transport failure.
func (s *registryService) WaitForConfirmation(ctx context.Context, txHash string) (*utils.TransactionReceipt, error) {
	receipt, err := s.rpc.WaitForReceipt(ctx, txHash)
	if err != nil {
		return nil, err
	}
	if !receipt.Succeeded() {
		return receipt, &RevertError{Reason: "transaction reverted on-chain"}
	}
	return receipt, nil
}

func toProperty(p novalandProperty) models.Property {
	var productID uint64
	if p.ProductID != nil {
		productID = p.ProductID.Uint64()
	}
	return models.Property{
		ProductID:   productID,
		Owner:       p.Owner.Hex(),
		PriceWei:    p.Price,
		Price:       utils.FormatPrice(p.Price),
		Title:       p.PropertyTitle,
		Category:    models.Category(p.Category),
		Images:      p.Images,
		Location:    p.Location,
		Documents:   p.Documents,
		Description: p.Description,
		NftID:       p.NftId,
		IsListed:    p.IsListed,
	}
}
