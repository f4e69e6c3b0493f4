package api

import (
	"errors"
	"io"
	"mime/multipart"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/novaland-labs/marketplace/internal/models"
	"github.com/novaland-labs/marketplace/internal/services"
	"github.com/novaland-labs/marketplace/internal/utils"
)

type DeriveIDRequest struct {
	Title        string `json:"title"`
	Category     string `json:"category"`
	Price        string `json:"price"`
	OwnerAddress string `json:"owner_address"`
}

func (s *APIServer) handleListProperties(c *fiber.Ctx) error {
	properties, err := s.registry.FetchProperties(c.UserContext())
	if err != nil {
		return s.sendClassifiedError(c, err)
	}

	// Delisted properties stay in the contract's array; only listed ones
	// are part of the public catalog.
	listed := make([]models.Property, 0, len(properties))
	for _, p := range properties {
		if p.IsListed {
			listed = append(listed, p)
		}
	}
	return c.JSON(fiber.Map{"properties": listed})
}

func (s *APIServer) handleGetProperty(c *fiber.Ctx) error {
	productID, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid property id"})
	}

	property, err := s.registry.GetProperty(c.UserContext(), productID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(property)
}

func (s *APIServer) handleDeriveID(c *fiber.Ctx) error {
	var req DeriveIDRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	nftID, err := utils.DerivePropertyID(req.Title, req.Category, req.Price, req.OwnerAddress)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"nft_id": nftID})
}

func (s *APIServer) handleSubmitProperty(c *fiber.Ctx) error {
	draft, err := s.draftFromForm(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	outcome, err := s.submission.Submit(c.UserContext(), draft)
	if err != nil {
		if errors.Is(err, services.ErrSubmissionInFlight) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
		}
		return s.sendClassifiedError(c, err)
	}
	return c.Status(outcomeStatus(outcome.Kind)).JSON(outcome)
}

func (s *APIServer) handleDelistProperty(c *fiber.Ctx) error {
	productID, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid property id"})
	}

	ctx := c.UserContext()
	auth, err := s.wallet.NewTransactor(ctx)
	if err != nil {
		return s.sendClassifiedError(c, err)
	}
	txHash, err := s.registry.DelistProperty(ctx, auth, productID)
	if err != nil {
		return s.sendClassifiedError(c, err)
	}
	if _, err := s.registry.WaitForConfirmation(ctx, txHash); err != nil {
		return s.sendClassifiedError(c, err)
	}
	return c.JSON(fiber.Map{"transaction_hash": txHash})
}

func (s *APIServer) handlePurchaseProperty(c *fiber.Ctx) error {
	productID, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid property id"})
	}

	ctx := c.UserContext()
	property, err := s.registry.GetProperty(ctx, productID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	if !property.IsListed {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "this property is no longer listed for sale"})
	}

	auth, err := s.wallet.NewTransactor(ctx)
	if err != nil {
		return s.sendClassifiedError(c, err)
	}
	txHash, err := s.registry.PurchaseProperty(ctx, auth, productID, property.PriceWei)
	if err != nil {
		return s.sendClassifiedError(c, err)
	}
	if _, err := s.registry.WaitForConfirmation(ctx, txHash); err != nil {
		return s.sendClassifiedError(c, err)
	}
	return c.JSON(fiber.Map{"transaction_hash": txHash})
}

func (s *APIServer) handleStatus(c *fiber.Ctx) error {
	preconditions := s.cfg.SubmissionPreconditions()
	reasons := make([]string, 0, len(preconditions))
	for _, err := range preconditions {
		reasons = append(reasons, err.Error())
	}

	return c.JSON(fiber.Map{
		"state":                s.submission.State(),
		"last_outcome":         s.submission.LastOutcome(),
		"submission_ready":     len(reasons) == 0,
		"configuration_errors": reasons,
	})
}

// draftFromForm builds a PropertyDraft from a multipart form. Field names
// follow the listing form: title, category, price, country, state, city,
// postal_code, description, owner_address, plus images and documents file
// parts.
func (s *APIServer) draftFromForm(c *fiber.Ctx) (*models.PropertyDraft, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, errors.New("expected a multipart form")
	}

	draft := &models.PropertyDraft{
		Title:        c.FormValue("title"),
		Category:     models.Category(c.FormValue("category")),
		Price:        c.FormValue("price"),
		Country:      c.FormValue("country"),
		State:        c.FormValue("state"),
		City:         c.FormValue("city"),
		PostalCode:   c.FormValue("postal_code"),
		Description:  c.FormValue("description"),
		OwnerAddress: c.FormValue("owner_address"),
	}

	draft.Images, err = readFileParts(form.File["images"], models.FileKindImage)
	if err != nil {
		return nil, err
	}
	draft.Documents, err = readFileParts(form.File["documents"], models.FileKindDocument)
	if err != nil {
		return nil, err
	}
	return draft, nil
}

func readFileParts(headers []*multipart.FileHeader, kind models.FileKind) ([]models.PendingFile, error) {
	files := make([]models.PendingFile, 0, len(headers))
	for _, header := range headers {
		f, err := header.Open()
		if err != nil {
			return nil, err
		}
		content, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, err
		}
		files = append(files, models.PendingFile{
			Name:    header.Filename,
			Kind:    kind,
			Content: content,
		})
	}
	return files, nil
}

func (s *APIServer) sendClassifiedError(c *fiber.Ctx, err error) error {
	classified := services.ClassifyError(err)
	return c.Status(categoryStatus(classified.Category)).JSON(fiber.Map{
		"error":    classified.Message,
		"category": classified.Category,
	})
}

func outcomeStatus(kind models.OutcomeKind) int {
	switch kind {
	case models.OutcomeSucceeded:
		return fiber.StatusCreated
	case models.OutcomeValidationFailed:
		return fiber.StatusBadRequest
	case models.OutcomeWalletRejected:
		return fiber.StatusConflict
	case models.OutcomeChainRejected, models.OutcomeChainReverted:
		return fiber.StatusUnprocessableEntity
	case models.OutcomeUploadFailed:
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

func categoryStatus(category services.ErrorCategory) int {
	switch category {
	case services.CategoryInvalidInput:
		return fiber.StatusBadRequest
	case services.CategoryWalletRejected:
		return fiber.StatusConflict
	case services.CategoryChainReverted:
		return fiber.StatusUnprocessableEntity
	case services.CategoryConfiguration:
		return fiber.StatusServiceUnavailable
	case services.CategoryUploadFailure:
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}
