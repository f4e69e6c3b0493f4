package services

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-playground/validator/v10"
	"github.com/novaland-labs/marketplace/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testContractAddress = "0x5FbDB2315678afecb367f032d93F642f64180aa3"

func TestNewRegistryService(t *testing.T) {
	t.Run("EmptyAddress", func(t *testing.T) {
		_, err := NewRegistryService("http://localhost:8545", "")
		require.Error(t, err)
		var configErr *models.ConfigurationError
		assert.ErrorAs(t, err, &configErr)
	})

	t.Run("MalformedAddress", func(t *testing.T) {
		_, err := NewRegistryService("http://localhost:8545", "not-an-address")
		require.Error(t, err)
		var configErr *models.ConfigurationError
		assert.ErrorAs(t, err, &configErr)
	})

	t.Run("ValidAddress", func(t *testing.T) {
		svc, err := NewRegistryService("http://localhost:8545", testContractAddress)
		require.NoError(t, err)
		assert.NotNil(t, svc)
	})
}

func TestAddPropertyValidation(t *testing.T) {
	svc, err := NewRegistryService("http://localhost:8545", testContractAddress)
	require.NoError(t, err)

	valid := AddPropertyArgs{
		Owner:       "0x742d35Cc6634C0532925a3b844Bc9e7595f0bEb1",
		PriceWei:    big.NewInt(1),
		Title:       "Sea View Apartment",
		Category:    "Apartment",
		Images:      []string{"https://gateway.pinata.cloud/ipfs/a"},
		Location:    []string{"Portugal", "Lisbon", "Lisbon", "1100-148"},
		NftID:       "0xid",
		Description: "Two bedrooms",
	}

	tests := []struct {
		name   string
		mutate func(*AddPropertyArgs)
	}{
		{"missing owner", func(a *AddPropertyArgs) { a.Owner = "" }},
		{"malformed owner", func(a *AddPropertyArgs) { a.Owner = "not-an-address" }},
		{"missing title", func(a *AddPropertyArgs) { a.Title = "" }},
		{"no images", func(a *AddPropertyArgs) { a.Images = nil }},
		{"too many images", func(a *AddPropertyArgs) {
			a.Images = make([]string, 7)
			for i := range a.Images {
				a.Images[i] = "u"
			}
		}},
		{"short location tuple", func(a *AddPropertyArgs) { a.Location = []string{"Portugal"} }},
		{"missing nft id", func(a *AddPropertyArgs) { a.NftID = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := valid
			tt.mutate(&args)
			_, err := svc.AddProperty(context.Background(), nil, args)
			require.Error(t, err)
			var validationErrs validator.ValidationErrors
			assert.ErrorAs(t, err, &validationErrs)
		})
	}
}

func TestToProperty(t *testing.T) {
	price, ok := new(big.Int).SetString("1500000000000000000", 10)
	require.True(t, ok)

	raw := novalandProperty{
		ProductID:     big.NewInt(7),
		Owner:         common.HexToAddress("0x742d35Cc6634C0532925a3b844Bc9e7595f0bEb1"),
		Price:         price,
		PropertyTitle: "Sea View Apartment",
		Category:      "Apartment",
		Images:        []string{"https://gateway.pinata.cloud/ipfs/a"},
		Location:      []string{"Portugal", "Lisbon", "Lisbon", "1100-148"},
		Documents:     []string{"https://gateway.pinata.cloud/ipfs/b"},
		Description:   "Two bedrooms",
		NftId:         "0xid",
		IsListed:      true,
	}

	property := toProperty(raw)
	assert.Equal(t, uint64(7), property.ProductID)
	assert.Equal(t, "0x742d35Cc6634C0532925a3b844Bc9e7595f0bEb1", property.Owner)
	assert.Equal(t, "1.5", property.Price)
	assert.Equal(t, price, property.PriceWei)
	assert.Equal(t, models.CategoryApartment, property.Category)
	assert.Equal(t, "0xid", property.NftID)
	assert.True(t, property.IsListed)

	t.Run("NilProductID", func(t *testing.T) {
		property := toProperty(novalandProperty{})
		assert.Zero(t, property.ProductID)
	})
}
