package models

type FileKind string

const (
	FileKindImage    FileKind = "Image"
	FileKindDocument FileKind = "Document"
)

// PendingFile is a file selected for upload but not yet pinned.
type PendingFile struct {
	Name    string
	Kind    FileKind
	Content []byte
}

// PropertyDraft is the in-progress user input for a new listing. It is owned
// by a single form session; the submission orchestrator takes an immutable
// snapshot of it at the start of a run and only mutates the original via
// Reset after a confirmed registration.
type PropertyDraft struct {
	Title        string   `validate:"required"`
	Category     Category `validate:"required,oneof=Apartment House Land Commercial"`
	Price        string   `validate:"required"` // decimal ETH string
	Country      string   `validate:"required"`
	State        string   `validate:"required"`
	City         string   `validate:"required"`
	PostalCode   string   `validate:"required"`
	Description  string
	OwnerAddress string `validate:"required,eth_addr"`
	Images       []PendingFile
	Documents    []PendingFile

	// NftID caches the identifier derived from (title, category, price,
	// owner). Cleared whenever any of those four inputs change.
	NftID string
}

// Snapshot returns a copy of the draft with its own file slices, so edits to
// the live draft cannot corrupt an in-flight submission.
func (d *PropertyDraft) Snapshot() PropertyDraft {
	snap := *d
	snap.Images = append([]PendingFile(nil), d.Images...)
	snap.Documents = append([]PendingFile(nil), d.Documents...)
	return snap
}

// Location returns the ordered 4-tuple the contract expects.
func (d *PropertyDraft) Location() []string {
	return []string{d.Country, d.State, d.City, d.PostalCode}
}

// Reset clears the draft after a successful submission, including the
// derived identifier.
func (d *PropertyDraft) Reset() {
	*d = PropertyDraft{Category: CategoryApartment}
}
