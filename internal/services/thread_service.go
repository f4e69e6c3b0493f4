package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/novaland-labs/marketplace/internal/models"
	"gorm.io/gorm"
)

// ErrOfferAlreadyOpen is returned when a buyer tries to open a second thread
// for a property they already have an open offer on.
var ErrOfferAlreadyOpen = errors.New("buyer already has an open offer for this property")

// ThreadService manages buyer/seller offer threads in the relational store.
// Wallet addresses are normalized to lowercase on every write and lookup.
type ThreadService interface {
	OpenThread(propertyID uint64, buyerWallet, sellerWallet, propertyTitle string) (*models.OfferThread, error)
	CloseThread(threadID uint) error
	HasOpenOffer(propertyID uint64, buyerWallet string) (bool, error)
	ListThreadsByBuyer(buyerWallet string) ([]models.OfferThread, error)
	ListThreadsByProperty(propertyID uint64) ([]models.OfferThread, error)
}

type threadService struct {
	db *gorm.DB
}

func NewThreadService(db *gorm.DB) ThreadService {
	return &threadService{db: db}
}

func (s *threadService) OpenThread(propertyID uint64, buyerWallet, sellerWallet, propertyTitle string) (*models.OfferThread, error) {
	buyer := strings.ToLower(strings.TrimSpace(buyerWallet))
	if buyer == "" {
		return nil, fmt.Errorf("buyer wallet is required")
	}

	open, err := s.HasOpenOffer(propertyID, buyer)
	if err != nil {
		return nil, err
	}
	if open {
		return nil, ErrOfferAlreadyOpen
	}

	thread := &models.OfferThread{
		PropertyID:    propertyID,
		BuyerWallet:   buyer,
		SellerWallet:  strings.ToLower(strings.TrimSpace(sellerWallet)),
		PropertyTitle: propertyTitle,
		Status:        models.ThreadStatusOpen,
	}
	if err := s.db.Create(thread).Error; err != nil {
		return nil, fmt.Errorf("failed to create offer thread: %w", err)
	}
	return thread, nil
}

func (s *threadService) CloseThread(threadID uint) error {
	result := s.db.Model(&models.OfferThread{}).
		Where("id = ?", threadID).
		Update("status", models.ThreadStatusClosed)
	if result.Error != nil {
		return fmt.Errorf("failed to close offer thread: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("offer thread %d not found", threadID)
	}
	return nil
}

func (s *threadService) HasOpenOffer(propertyID uint64, buyerWallet string) (bool, error) {
	var count int64
	err := s.db.Model(&models.OfferThread{}).
		Where("property_id = ? AND buyer_wallet = ? AND status = ?",
			propertyID, strings.ToLower(strings.TrimSpace(buyerWallet)), models.ThreadStatusOpen).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to query offer threads: %w", err)
	}
	return count > 0, nil
}

func (s *threadService) ListThreadsByBuyer(buyerWallet string) ([]models.OfferThread, error) {
	var threads []models.OfferThread
	err := s.db.
		Where("buyer_wallet = ?", strings.ToLower(strings.TrimSpace(buyerWallet))).
		Order("created_at DESC").
		Find(&threads).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list offer threads: %w", err)
	}
	return threads, nil
}

func (s *threadService) ListThreadsByProperty(propertyID uint64) ([]models.OfferThread, error) {
	var threads []models.OfferThread
	err := s.db.
		Where("property_id = ?", propertyID).
		Order("created_at DESC").
		Find(&threads).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list offer threads: %w", err)
	}
	return threads, nil
}
