package models

import "fmt"

type SubmissionState string

const (
	SubmissionStateIdle        SubmissionState = "idle"
	SubmissionStateValidating  SubmissionState = "validating"
	SubmissionStateDerivingID  SubmissionState = "deriving_id"
	SubmissionStateUploading   SubmissionState = "uploading"
	SubmissionStateRegistering SubmissionState = "registering"
	SubmissionStateConfirming  SubmissionState = "confirming"
	SubmissionStateSucceeded   SubmissionState = "succeeded"
	SubmissionStateFailed      SubmissionState = "failed"
)

type OutcomeKind string

const (
	OutcomeSucceeded        OutcomeKind = "succeeded"
	OutcomeValidationFailed OutcomeKind = "validation_failed"
	OutcomeUploadFailed     OutcomeKind = "upload_failed"
	OutcomeChainRejected    OutcomeKind = "chain_rejected"
	OutcomeChainReverted    OutcomeKind = "chain_reverted"
	OutcomeWalletRejected   OutcomeKind = "wallet_rejected"
	OutcomeUnknown          OutcomeKind = "unknown"
)

// UploadError describes one failed file upload. It is both an error and a
// value carried inside an upload result list.
type UploadError struct {
	FileName string   `json:"file_name"`
	Kind     FileKind `json:"kind"`
	Message  string   `json:"message"`
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("%s '%s': %s", e.Kind, e.FileName, e.Message)
}

// UploadResult is the per-file outcome of UploadAll. Exactly one of URL and
// Err is set, and result index i always corresponds to input file i.
type UploadResult struct {
	URL string       `json:"url,omitempty"`
	Err *UploadError `json:"error,omitempty"`
}

// SubmissionOutcome is the terminal result of one orchestration run. Expected
// failures are outcome kinds, not Go errors; a fresh outcome is produced for
// every submit.
type SubmissionOutcome struct {
	Kind            OutcomeKind   `json:"kind"`
	TransactionHash string        `json:"transaction_hash,omitempty"`
	NftID           string        `json:"nft_id,omitempty"`
	Reasons         []string      `json:"reasons,omitempty"`
	UploadErrors    []UploadError `json:"upload_errors,omitempty"`
	Message         string        `json:"message,omitempty"`
	// Cause carries the raw underlying error text for diagnostics.
	Cause string `json:"cause,omitempty"`
}

// ConfigurationError reports a missing or invalid static setting (pinning
// credentials, contract address). These are blocking preconditions and must
// be surfaced before submission is offered, not only at submit time.
type ConfigurationError struct {
	Setting string
	Reason  string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Setting, e.Reason)
}
