package models

import (
	"time"

	"gorm.io/gorm"
)

type ThreadStatus string

const (
	ThreadStatusOpen   ThreadStatus = "open"
	ThreadStatusClosed ThreadStatus = "closed"
)

// OfferThread is a chat/offer thread between a buyer and a property owner,
// stored in the relational store. Buyer and seller wallets are normalized to
// lowercase so offer lookups are case-insensitive.
type OfferThread struct {
	ID            uint         `gorm:"primaryKey" json:"id"`
	PropertyID    uint64       `gorm:"index;not null" json:"property_id"`
	BuyerWallet   string       `gorm:"index;not null" json:"buyer_wallet"`
	SellerWallet  string       `gorm:"not null" json:"seller_wallet"`
	PropertyTitle string       `json:"property_title"`
	Status        ThreadStatus `gorm:"default:open" json:"status"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}
