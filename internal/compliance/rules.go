package compliance

// ValidityRule constrains one document type: accepted file extensions, a size
// ceiling and, for vigency-bound types, a maximum age in months from upload.
type ValidityRule struct {
	AllowedExtensions []string
	MaxSizeBytes      int64
	Expires           bool
	MaxAgeMonths      int
}

// RuleSet is the static compliance configuration: per-type validity rules and
// per-category requirement lists. Loaded once at process start and treated as
// read-only afterwards.
type RuleSet struct {
	Rules        map[DocumentType]ValidityRule
	Requirements map[Category][]DocumentType
}

const (
	megabyte = int64(1 << 20)

	pdfOnly = ".pdf"
)

// DefaultRuleSet returns the dealership compliance tables shipped with the
// binary.
func DefaultRuleSet() RuleSet {
	imageOrPDF := []string{".pdf", ".jpg", ".jpeg", ".png"}
	return RuleSet{
		Rules: map[DocumentType]ValidityRule{
			DocOfficialID: {
				AllowedExtensions: imageOrPDF,
				MaxSizeBytes:      5 * megabyte,
			},
			DocProofOfAddress: {
				AllowedExtensions: imageOrPDF,
				MaxSizeBytes:      5 * megabyte,
				Expires:           true,
				MaxAgeMonths:      3,
			},
			DocIncomeProof: {
				AllowedExtensions: []string{pdfOnly},
				MaxSizeBytes:      10 * megabyte,
				Expires:           true,
				MaxAgeMonths:      2,
			},
			DocVehicleTitle: {
				AllowedExtensions: imageOrPDF,
				MaxSizeBytes:      10 * megabyte,
			},
			DocPurchaseInvoice: {
				AllowedExtensions: []string{pdfOnly},
				MaxSizeBytes:      10 * megabyte,
			},
			DocConsignmentContract: {
				AllowedExtensions: []string{pdfOnly},
				MaxSizeBytes:      10 * megabyte,
				Expires:           true,
				MaxAgeMonths:      12,
			},
			DocIncorporationAct: {
				AllowedExtensions: []string{pdfOnly},
				MaxSizeBytes:      20 * megabyte,
			},
			DocTaxRegistration: {
				AllowedExtensions: []string{pdfOnly},
				MaxSizeBytes:      5 * megabyte,
				Expires:           true,
				MaxAgeMonths:      12,
			},
			DocLegalRepID: {
				AllowedExtensions: imageOrPDF,
				MaxSizeBytes:      5 * megabyte,
			},
		},
		Requirements: map[Category][]DocumentType{
			CategorySale: {
				DocOfficialID,
				DocProofOfAddress,
			},
			CategoryCredit: {
				DocOfficialID,
				DocProofOfAddress,
				DocIncomeProof,
			},
			CategoryConsignment: {
				DocOfficialID,
				DocVehicleTitle,
				DocConsignmentContract,
			},
			CategoryCorporate: {
				DocIncorporationAct,
				DocTaxRegistration,
				DocLegalRepID,
				DocProofOfAddress,
			},
		},
	}
}
