package models

import "math/big"

type Category string

const (
	CategoryApartment  Category = "Apartment"
	CategoryHouse      Category = "House"
	CategoryLand       Category = "Land"
	CategoryCommercial Category = "Commercial"
)

// LocationFieldCount is the number of components in a property location
// tuple: country, state, city, postal code. The contract expects exactly
// this many entries, in this order.
const LocationFieldCount = 4

const (
	MaxImageCount    = 6
	MaxDocumentCount = 5
)

// Property is one record returned by the registry contract's FetchProperties
// call. Field order in the on-chain struct is part of the wire contract:
// productID, owner, price, propertyTitle, category, images, location,
// documents, description, nftId, isListed.
type Property struct {
	ProductID   uint64   `json:"product_id"`
	Owner       string   `json:"owner"`
	PriceWei    *big.Int `json:"-"`
	Price       string   `json:"price"` // decimal ETH string, e.g. "0.5"
	Title       string   `json:"title"`
	Category    Category `json:"category"`
	Images      []string `json:"images"`
	Location    []string `json:"location"` // [country, state, city, postal code]
	Documents   []string `json:"documents"`
	Description string   `json:"description"`
	NftID       string   `json:"nft_id"`
	IsListed    bool     `json:"is_listed"`
}

// DisplayLocation returns "city, state" when both are present, matching what
// listing views render.
func (p *Property) DisplayLocation() string {
	if len(p.Location) >= 3 && p.Location[2] != "" && p.Location[1] != "" {
		return p.Location[2] + ", " + p.Location[1]
	}
	if len(p.Location) > 0 {
		return p.Location[0]
	}
	return ""
}
