package api

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/novaland-labs/marketplace/internal/services"
)

type OpenThreadRequest struct {
	PropertyID    uint64 `json:"property_id"`
	BuyerWallet   string `json:"buyer_wallet"`
	SellerWallet  string `json:"seller_wallet"`
	PropertyTitle string `json:"property_title"`
}

func (s *APIServer) handleOpenThread(c *fiber.Ctx) error {
	var req OpenThreadRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	thread, err := s.threads.OpenThread(req.PropertyID, req.BuyerWallet, req.SellerWallet, req.PropertyTitle)
	if err != nil {
		if errors.Is(err, services.ErrOfferAlreadyOpen) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(thread)
}

func (s *APIServer) handleCloseThread(c *fiber.Ctx) error {
	threadID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid thread id"})
	}

	if err := s.threads.CloseThread(uint(threadID)); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"status": "closed"})
}

func (s *APIServer) handleListThreads(c *fiber.Ctx) error {
	if buyer := c.Query("buyer"); buyer != "" {
		threads, err := s.threads.ListThreadsByBuyer(buyer)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(fiber.Map{"threads": threads})
	}

	if propertyID := c.Query("property_id"); propertyID != "" {
		parsed, err := strconv.ParseUint(propertyID, 10, 64)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid property id"})
		}
		threads, err := s.threads.ListThreadsByProperty(parsed)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(fiber.Map{"threads": threads})
	}

	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "buyer or property_id query parameter is required"})
}

func (s *APIServer) handleOfferStatus(c *fiber.Ctx) error {
	productID, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid property id"})
	}
	buyer := c.Query("buyer")
	if buyer == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "buyer query parameter is required"})
	}

	open, err := s.threads.HasOpenOffer(productID, buyer)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"has_open_offer": open})
}
