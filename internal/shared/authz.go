package shared

// Back-office permissions consumed by the authorization decision point.
const (
	PermClientsView = "clients.view"
	PermClientsEdit = "clients.edit"

	PermVehiclesView = "vehicles.view"
	PermVehiclesEdit = "vehicles.edit"

	PermSalesView     = "sales.view"
	PermSalesComplete = "sales.complete"

	PermCreditsView    = "credits.view"
	PermCreditsApprove = "credits.approve"

	PermPayrollView = "payroll.view"
	PermPayrollEdit = "payroll.edit"

	PermDocumentsView   = "documents.view"
	PermDocumentsReview = "documents.review"

	PermPrincipalsView = "principals.view"
	PermPrincipalsEdit = "principals.edit"

	PermAuditView = "audit.view"
)

// Wildcard grants every permission.
const Wildcard = "*"
