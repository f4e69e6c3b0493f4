package services

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/novaland-labs/marketplace/internal/models"
	"github.com/novaland-labs/marketplace/internal/utils"
)

// ErrorCategory buckets a failure by what the user can do about it.
type ErrorCategory string

const (
	CategoryConfiguration  ErrorCategory = "configuration"
	CategoryWalletRejected ErrorCategory = "wallet_rejected"
	CategoryUploadFailure  ErrorCategory = "upload_failure"
	CategoryInvalidInput   ErrorCategory = "invalid_input"
	CategoryChainReverted  ErrorCategory = "chain_reverted"
	CategoryNetworkUnknown ErrorCategory = "network_or_unknown"
)

// RevertError is a contract execution failure with the revert reason the
// node reported, or a generic reason when the receipt only carries a
// failed status.
type RevertError struct {
	Reason string
}

func (e *RevertError) Error() string {
	return "execution reverted: " + e.Reason
}

// ClassifiedError is the user-facing resolution of a raw failure.
type ClassifiedError struct {
	Category ErrorCategory
	Message  string
	Cause    error
}

func (e *ClassifiedError) Error() string {
	return e.Message
}

func (e *ClassifiedError) Unwrap() error {
	return e.Cause
}

// wrapChainError turns a node error that carries a revert reason in its
// text into a RevertError. Everything else passes through unchanged.
func wrapChainError(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	if i := strings.Index(msg, "execution reverted"); i >= 0 {
		reason := strings.TrimPrefix(msg[i:], "execution reverted")
		reason = strings.TrimSpace(strings.TrimPrefix(reason, ":"))
		if reason == "" {
			reason = "transaction reverted on-chain"
		}
		return &RevertError{Reason: reason}
	}
	return err
}

// ClassifyError maps a raw failure from any stage of the pipeline onto a
// category and a message fit to show the user. Typed errors are checked
// before text patterns so a structured cause never falls through to the
// string matching.
func ClassifyError(err error) *ClassifiedError {
	if err == nil {
		return nil
	}

	var revertErr *RevertError
	if errors.As(err, &revertErr) {
		return &ClassifiedError{
			Category: CategoryChainReverted,
			Message:  revertMessage(revertErr.Reason),
			Cause:    err,
		}
	}

	var rpcErr *utils.RPCError
	if errors.As(err, &rpcErr) {
		// Providers often bury the revert reason in the error's data
		// object rather than the top-level message.
		if reason, ok := revertReason(nestedDataMessage(rpcErr.Data)); ok {
			return &ClassifiedError{
				Category: CategoryChainReverted,
				Message:  revertMessage(reason),
				Cause:    err,
			}
		}
		if reason, ok := revertReason(rpcErr.Message); ok {
			return &ClassifiedError{
				Category: CategoryChainReverted,
				Message:  revertMessage(reason),
				Cause:    err,
			}
		}
		return &ClassifiedError{
			Category: CategoryNetworkUnknown,
			Message:  "the network returned an error: " + rpcErr.Message,
			Cause:    err,
		}
	}

	var walletErr *WalletRejectedError
	if errors.As(err, &walletErr) {
		return &ClassifiedError{
			Category: CategoryWalletRejected,
			Message:  "the transaction was rejected in the wallet",
			Cause:    err,
		}
	}

	var configErr *models.ConfigurationError
	if errors.As(err, &configErr) {
		return &ClassifiedError{
			Category: CategoryConfiguration,
			Message:  configErr.Error(),
			Cause:    err,
		}
	}

	var uploadErr *models.UploadError
	if errors.As(err, &uploadErr) {
		return &ClassifiedError{
			Category: CategoryUploadFailure,
			Message:  uploadErr.Error(),
			Cause:    err,
		}
	}

	var priceErr *utils.InvalidPriceError
	if errors.As(err, &priceErr) {
		return &ClassifiedError{
			Category: CategoryInvalidInput,
			Message:  priceErr.Error(),
			Cause:    err,
		}
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		return &ClassifiedError{
			Category: CategoryInvalidInput,
			Message:  describeValidationErrors(validationErrs),
			Cause:    err,
		}
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &ClassifiedError{
			Category: CategoryNetworkUnknown,
			Message:  "the operation was cancelled before it completed",
			Cause:    err,
		}
	}

	return classifyByText(err)
}

func classifyByText(err error) *ClassifiedError {
	msg := err.Error()
	lower := strings.ToLower(msg)

	if reason, ok := revertReason(msg); ok {
		return &ClassifiedError{
			Category: CategoryChainReverted,
			Message:  revertMessage(reason),
			Cause:    err,
		}
	}

	switch {
	case strings.Contains(lower, "user rejected") ||
		strings.Contains(lower, "user denied") ||
		strings.Contains(lower, "action_rejected"):
		return &ClassifiedError{
			Category: CategoryWalletRejected,
			Message:  "the transaction was rejected in the wallet",
			Cause:    err,
		}
	case strings.Contains(lower, "insufficient funds"):
		return &ClassifiedError{
			Category: CategoryChainReverted,
			Message:  "the wallet does not hold enough funds to cover this transaction",
			Cause:    err,
		}
	case strings.Contains(lower, "connection refused") ||
		strings.Contains(lower, "no such host") ||
		strings.Contains(lower, "timeout") ||
		strings.Contains(lower, "eof"):
		return &ClassifiedError{
			Category: CategoryNetworkUnknown,
			Message:  "could not reach the network, check the connection and try again",
			Cause:    err,
		}
	}

	return &ClassifiedError{
		Category: CategoryNetworkUnknown,
		Message:  "something went wrong: " + msg,
		Cause:    err,
	}
}

// nestedDataMessage pulls the message string out of an RPC error's data
// object when one is present.
func nestedDataMessage(data interface{}) string {
	switch v := data.(type) {
	case string:
		return v
	case map[string]interface{}:
		if msg, ok := v["message"].(string); ok {
			return msg
		}
	}
	return ""
}

func revertReason(msg string) (string, bool) {
	i := strings.Index(msg, "execution reverted")
	if i < 0 {
		return "", false
	}
	reason := strings.TrimPrefix(msg[i:], "execution reverted")
	reason = strings.TrimSpace(strings.TrimPrefix(reason, ":"))
	if reason == "" {
		reason = "transaction reverted on-chain"
	}
	return reason, true
}

// revertMessage rewrites the contract's revert reasons the user is likely
// to hit into plain language. Unknown reasons pass through verbatim.
func revertMessage(reason string) string {
	switch {
	case strings.Contains(reason, "NFT ID already exists"):
		return "a property with the same title, category, price and owner is already registered; modify the title, category or price slightly and try again"
	case strings.Contains(reason, "maximum of 6 images"):
		return "a property can have at most 6 images"
	case strings.Contains(reason, "Property is not listed for sale"):
		return "this property is no longer listed for sale"
	case strings.Contains(reason, "insufficient funds"):
		return "the wallet does not hold enough funds to cover this transaction"
	default:
		return "the registry contract rejected the transaction: " + reason
	}
}

func describeValidationErrors(errs validator.ValidationErrors) string {
	reasons := make([]string, 0, len(errs))
	for _, fe := range errs {
		reasons = append(reasons, describeFieldError(fe))
	}
	return strings.Join(reasons, "; ")
}

func describeFieldError(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "eth_addr":
		return field + " must be a valid Ethereum address"
	case "oneof":
		return field + " must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "min":
		return field + " needs at least " + fe.Param() + " entries"
	case "max":
		return field + " allows at most " + fe.Param() + " entries"
	case "len":
		return field + " must have exactly " + fe.Param() + " entries"
	default:
		return field + " is invalid"
	}
}
