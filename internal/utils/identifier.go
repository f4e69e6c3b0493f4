package utils

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"
)

// ErrInputIncomplete is returned when any of the four identifier inputs is
// empty.
var ErrInputIncomplete = errors.New("property identifier requires title, category, price and owner address")

// DerivePropertyID computes the deterministic identifier the registry
// contract uses as its uniqueness key ("NFT ID"). The joining delimiter and
// field order are part of the wire contract and must match what the contract
// side hashes byte for byte. Identical inputs intentionally collide: the
// contract rejects a duplicate id, which de-duplicates identical listings.
func DerivePropertyID(title, category, price, ownerAddress string) (string, error) {
	if title == "" || category == "" || price == "" || ownerAddress == "" {
		return "", ErrInputIncomplete
	}
	combined := fmt.Sprintf("%s-%s-%s-%s", title, category, price, ownerAddress)
	return crypto.Keccak256Hash([]byte(combined)).Hex(), nil
}
