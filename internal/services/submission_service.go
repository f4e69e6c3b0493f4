package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/novaland-labs/marketplace/internal/models"
	"github.com/novaland-labs/marketplace/internal/pinning"
	"github.com/novaland-labs/marketplace/internal/utils"
	"gorm.io/gorm"
)

// ErrSubmissionInFlight is returned by Submit while a previous run has not
// reached a terminal state yet.
var ErrSubmissionInFlight = errors.New("a submission is already in progress")

// SubmissionService drives one property draft through validation, identifier
// derivation, file pinning, on-chain registration and confirmation. A service
// instance runs at most one submission at a time.
type SubmissionService interface {
	State() models.SubmissionState
	LastOutcome() *models.SubmissionOutcome
	Submit(ctx context.Context, draft *models.PropertyDraft) (*models.SubmissionOutcome, error)
}

type submissionService struct {
	db        *gorm.DB
	pinner    pinning.Pinner
	registry  RegistryService
	wallet    WalletService
	validator *validator.Validate

	mu          sync.Mutex
	state       models.SubmissionState
	lastOutcome *models.SubmissionOutcome
}

func NewSubmissionService(db *gorm.DB, pinner pinning.Pinner, registry RegistryService, wallet WalletService) SubmissionService {
	return &submissionService{
		db:        db,
		pinner:    pinner,
		registry:  registry,
		wallet:    wallet,
		validator: validator.New(),
		state:     models.SubmissionStateIdle,
	}
}

func (s *submissionService) State() models.SubmissionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *submissionService) LastOutcome() *models.SubmissionOutcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastOutcome
}

// Submit runs the full pipeline synchronously. Expected failures come back
// as a SubmissionOutcome with a non-succeeded kind and a nil error; the
// error return is reserved for re-entrancy.
func (s *submissionService) Submit(ctx context.Context, draft *models.PropertyDraft) (*models.SubmissionOutcome, error) {
	record, err := s.begin(draft)
	if err != nil {
		return nil, err
	}

	// The snapshot keeps an in-flight run stable while the caller keeps
	// editing the live draft.
	snapshot := draft.Snapshot()
	outcome := s.run(ctx, &snapshot, record)

	s.finish(outcome, record)
	if outcome.Kind == models.OutcomeSucceeded {
		draft.Reset()
	}
	return outcome, nil
}

func (s *submissionService) begin(draft *models.PropertyDraft) (*models.SubmissionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case models.SubmissionStateValidating, models.SubmissionStateDerivingID,
		models.SubmissionStateUploading, models.SubmissionStateRegistering,
		models.SubmissionStateConfirming:
		return nil, ErrSubmissionInFlight
	}
	s.state = models.SubmissionStateValidating
	s.lastOutcome = nil

	record := &models.SubmissionRecord{
		ID:          uuid.NewString(),
		OwnerWallet: draft.OwnerAddress,
		Title:       draft.Title,
		State:       models.SubmissionStateValidating,
	}
	if s.db != nil {
		if err := s.db.Create(record).Error; err != nil {
			log.Printf("failed to persist submission record %s: %v", record.ID, err)
		}
	}
	return record, nil
}

func (s *submissionService) run(ctx context.Context, snapshot *models.PropertyDraft, record *models.SubmissionRecord) *models.SubmissionOutcome {
	if reasons := s.validateDraft(snapshot); len(reasons) > 0 {
		return &models.SubmissionOutcome{
			Kind:    models.OutcomeValidationFailed,
			Reasons: reasons,
		}
	}

	s.setState(models.SubmissionStateDerivingID, record)
	nftID := snapshot.NftID
	if nftID == "" {
		derived, err := utils.DerivePropertyID(snapshot.Title, string(snapshot.Category), snapshot.Price, snapshot.OwnerAddress)
		if err != nil {
			return &models.SubmissionOutcome{
				Kind:    models.OutcomeValidationFailed,
				Reasons: []string{err.Error()},
			}
		}
		nftID = derived
	}
	record.NftID = nftID

	s.setState(models.SubmissionStateUploading, record)
	imageURLs, documentURLs, uploadErrs, err := s.uploadFiles(ctx, snapshot)
	if err != nil {
		return s.outcomeFromError(models.SubmissionStateUploading, nftID, "", err)
	}
	if len(uploadErrs) > 0 {
		return &models.SubmissionOutcome{
			Kind:         models.OutcomeUploadFailed,
			NftID:        nftID,
			UploadErrors: uploadErrs,
			Message:      fmt.Sprintf("%d of %d files failed to upload", len(uploadErrs), len(snapshot.Images)+len(snapshot.Documents)),
		}
	}

	s.setState(models.SubmissionStateRegistering, record)
	priceWei, err := utils.ParsePrice(snapshot.Price)
	if err != nil {
		return s.outcomeFromError(models.SubmissionStateRegistering, nftID, "", err)
	}
	auth, err := s.wallet.NewTransactor(ctx)
	if err != nil {
		return s.outcomeFromError(models.SubmissionStateRegistering, nftID, "", err)
	}
	txHash, err := s.registry.AddProperty(ctx, auth, AddPropertyArgs{
		Owner:       snapshot.OwnerAddress,
		PriceWei:    priceWei,
		Title:       snapshot.Title,
		Category:    string(snapshot.Category),
		Images:      imageURLs,
		Location:    snapshot.Location(),
		Documents:   documentURLs,
		Description: snapshot.Description,
		NftID:       nftID,
	})
	if err != nil {
		return s.outcomeFromError(models.SubmissionStateRegistering, nftID, "", err)
	}
	record.TxHash = txHash

	s.setState(models.SubmissionStateConfirming, record)
	if _, err := s.registry.WaitForConfirmation(ctx, txHash); err != nil {
		return s.outcomeFromError(models.SubmissionStateConfirming, nftID, txHash, err)
	}

	return &models.SubmissionOutcome{
		Kind:            models.OutcomeSucceeded,
		TransactionHash: txHash,
		NftID:           nftID,
		Message:         "property registered on-chain",
	}
}

// validateDraft collects every problem with the draft instead of stopping at
// the first one, so the user can fix the form in a single pass.
func (s *submissionService) validateDraft(draft *models.PropertyDraft) []string {
	var reasons []string

	if err := s.validator.Struct(draft); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			for _, fe := range validationErrs {
				reasons = append(reasons, describeFieldError(fe))
			}
		} else {
			reasons = append(reasons, err.Error())
		}
	}

	if draft.Price != "" {
		if _, err := utils.ParsePrice(draft.Price); err != nil {
			reasons = append(reasons, err.Error())
		}
	}

	if len(draft.Images) == 0 {
		reasons = append(reasons, "at least one image is required")
	}
	if len(draft.Images) > models.MaxImageCount {
		reasons = append(reasons, fmt.Sprintf("a property can have at most %d images", models.MaxImageCount))
	}
	if len(draft.Documents) > models.MaxDocumentCount {
		reasons = append(reasons, fmt.Sprintf("a property can have at most %d documents", models.MaxDocumentCount))
	}
	return reasons
}

// uploadFiles pins images and documents in one batch, then splits the
// ordered results back out. Per-file failures are collected, not fatal;
// only a precondition failure (missing credentials) aborts the batch.
func (s *submissionService) uploadFiles(ctx context.Context, draft *models.PropertyDraft) (imageURLs, documentURLs []string, uploadErrs []models.UploadError, err error) {
	files := make([]models.PendingFile, 0, len(draft.Images)+len(draft.Documents))
	files = append(files, draft.Images...)
	files = append(files, draft.Documents...)

	results, err := s.pinner.UploadAll(ctx, files)
	if err != nil {
		return nil, nil, nil, err
	}

	for i, res := range results {
		if res.Err != nil {
			uploadErrs = append(uploadErrs, *res.Err)
			continue
		}
		if i < len(draft.Images) {
			imageURLs = append(imageURLs, res.URL)
		} else {
			documentURLs = append(documentURLs, res.URL)
		}
	}
	return imageURLs, documentURLs, uploadErrs, nil
}

// outcomeFromError maps a raw stage failure onto an outcome kind. A revert
// reported while sending the transaction means the node pre-rejected it; a
// revert after mining means the contract rejected it for real.
func (s *submissionService) outcomeFromError(stage models.SubmissionState, nftID, txHash string, err error) *models.SubmissionOutcome {
	classified := ClassifyError(err)
	outcome := &models.SubmissionOutcome{
		NftID:           nftID,
		TransactionHash: txHash,
		Message:         classified.Message,
		Cause:           err.Error(),
	}

	switch classified.Category {
	case CategoryConfiguration, CategoryUploadFailure:
		outcome.Kind = models.OutcomeUploadFailed
	case CategoryWalletRejected:
		outcome.Kind = models.OutcomeWalletRejected
	case CategoryInvalidInput:
		outcome.Kind = models.OutcomeValidationFailed
		outcome.Reasons = []string{classified.Message}
	case CategoryChainReverted:
		if stage == models.SubmissionStateConfirming {
			outcome.Kind = models.OutcomeChainReverted
		} else {
			outcome.Kind = models.OutcomeChainRejected
		}
	default:
		outcome.Kind = models.OutcomeUnknown
	}
	return outcome
}

func (s *submissionService) setState(state models.SubmissionState, record *models.SubmissionRecord) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()

	record.State = state
	if s.db != nil {
		if err := s.db.Model(record).Updates(map[string]interface{}{
			"state":   state,
			"nft_id":  record.NftID,
			"tx_hash": record.TxHash,
		}).Error; err != nil {
			log.Printf("failed to update submission record %s: %v", record.ID, err)
		}
	}
}

func (s *submissionService) finish(outcome *models.SubmissionOutcome, record *models.SubmissionRecord) {
	terminal := models.SubmissionStateFailed
	if outcome.Kind == models.OutcomeSucceeded {
		terminal = models.SubmissionStateSucceeded
	}

	s.mu.Lock()
	s.state = terminal
	s.lastOutcome = outcome
	s.mu.Unlock()

	record.State = terminal
	record.OutcomeKind = outcome.Kind
	if s.db != nil {
		if err := s.db.Model(record).Updates(map[string]interface{}{
			"state":        terminal,
			"outcome_kind": outcome.Kind,
			"nft_id":       record.NftID,
			"tx_hash":      record.TxHash,
		}).Error; err != nil {
			log.Printf("failed to finalize submission record %s: %v", record.ID, err)
		}
	}
}
