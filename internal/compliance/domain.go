package compliance

import (
	"time"

	"github.com/google/uuid"
)

// DocumentType is the closed enumeration of document kinds the back office
// collects. Unknown tokens can only come from outside (storage, requests) and
// are rejected during validation.
type DocumentType string

const (
	DocOfficialID          DocumentType = "official_id"
	DocProofOfAddress      DocumentType = "proof_of_address"
	DocIncomeProof         DocumentType = "income_proof"
	DocVehicleTitle        DocumentType = "vehicle_title"
	DocPurchaseInvoice     DocumentType = "purchase_invoice"
	DocConsignmentContract DocumentType = "consignment_contract"
	DocIncorporationAct    DocumentType = "incorporation_act"
	DocTaxRegistration     DocumentType = "tax_registration"
	DocLegalRepID          DocumentType = "legal_rep_id"
)

// Category identifies a transaction type requiring a document set.
type Category string

const (
	CategorySale        Category = "sale"
	CategoryCredit      Category = "credit"
	CategoryConsignment Category = "consignment"
	CategoryCorporate   Category = "corporate"
)

// Status is the lifecycle state of an uploaded document.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// CanTransition reports whether the status change is legal. Only
// pending -> approved and pending -> rejected are; nothing transitions back.
func (s Status) CanTransition(to Status) bool {
	return s == StatusPending && (to == StatusApproved || to == StatusRejected)
}

// DocumentRecord is one uploaded artifact tied to a back-office entity.
// Append-only apart from the single legal status transition.
type DocumentRecord struct {
	ID         uuid.UUID    `json:"id"`
	EntityID   int64        `json:"entity_id"`
	Type       DocumentType `json:"type"`
	Status     Status       `json:"status"`
	FileName   string       `json:"file_name"`
	SizeBytes  int64        `json:"size_bytes"`
	UploadedAt time.Time    `json:"uploaded_at"`
}

// CompletenessResult is the outcome of checking an entity's document set
// against a category's requirements.
type CompletenessResult struct {
	Complete bool           `json:"complete"`
	Missing  []DocumentType `json:"missing"`
	Invalid  []DocumentType `json:"invalid"`
}
