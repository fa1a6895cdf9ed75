// internal/catalog/stages.go
package catalog

import (
	"marvetti-onboarding/internal/models"
)

// ==========================
// STAGE CATALOG
// ==========================

// stageDefaults is the fixed twelve-step roadmap. Only registration is
// unlocked for a fresh session; every later stage unlocks when its
// predecessor completes.
var stageDefaults = map[models.StageID]models.StageInfo{
	models.StageRegistration: {
		ID:          models.StageRegistration,
		Name:        "1. Register Company",
		Price:       "R495",
		Description: "We help you register with CIPC and get your official papers.",
		IsUnlocked:  true,
		Status:      models.StageNotStarted,
	},
	models.StageLogo: {
		ID:          models.StageLogo,
		Name:        "2. Your Logo",
		Price:       "From R70",
		Description: "Get a professional look for your new business brand.",
		Status:      models.StageNotStarted,
	},
	models.StageProfile: {
		ID:          models.StageProfile,
		Name:        "3. Business Profile",
		Price:       "Get Quote",
		Description: "A document that explains your services to customers.",
		Status:      models.StageNotStarted,
	},
	models.StagePlan: {
		ID:          models.StagePlan,
		Name:        "4. Business Plan",
		Price:       "Get Quote",
		Description: "A clear guide on how your business will grow and make money.",
		Status:      models.StageNotStarted,
	},
	models.StageCompliance: {
		ID:          models.StageCompliance,
		Name:        "5. Industry Licenses",
		Price:       "Get Quote",
		Description: "Special permits like CIDB, PSIRA, or COIDA for your work.",
		Status:      models.StageNotStarted,
	},
	models.StageWebsite: {
		ID:          models.StageWebsite,
		Name:        "6. Website Design",
		Price:       "Get Quote",
		Description: "Your own website so customers can find you online.",
		Status:      models.StageNotStarted,
	},
	models.StageSocial: {
		ID:          models.StageSocial,
		Name:        "7. Social Media",
		Price:       "Get Quote",
		Description: "Set up Facebook and Instagram to talk to customers.",
		Status:      models.StageNotStarted,
	},
	models.StageSEO: {
		ID:          models.StageSEO,
		Name:        "8. Google & Maps",
		Price:       "Get Quote",
		Description: "Show up on Google Maps when people search for your services.",
		Status:      models.StageNotStarted,
	},
	models.StageMarketing: {
		ID:          models.StageMarketing,
		Name:        "9. Find Customers",
		Price:       "Get Quote",
		Description: "Run ads to get phone calls from people who need your help.",
		Status:      models.StageNotStarted,
	},
	models.StageCRM: {
		ID:          models.StageCRM,
		Name:        "10. Sales Tools",
		Price:       "Get Quote",
		Description: "Smart tools to help you track customers and invoices.",
		Status:      models.StageNotStarted,
	},
	models.StageMaintenance: {
		ID:          models.StageMaintenance,
		Name:        "11. Annual Returns",
		Price:       "Get Quote",
		Description: "Keep your company active with yearly CIPC and Tax filings.",
		Status:      models.StageNotStarted,
	},
	models.StageRemoteAdmin: {
		ID:          models.StageRemoteAdmin,
		Name:        "12. Office Assistant",
		Price:       "Get Quote",
		Description: "A real person to help you with typing, calls, and emails.",
		Status:      models.StageNotStarted,
	},
}

// DefaultStages returns a fresh copy of the stage catalog. Callers own
// the returned map and may mutate it freely.
func DefaultStages() map[models.StageID]models.StageInfo {
	stages := make(map[models.StageID]models.StageInfo, len(stageDefaults))
	for id, info := range stageDefaults {
		stages[id] = info
	}
	return stages
}

// StageName returns the catalog display name for id, or "" when unknown.
func StageName(id models.StageID) string {
	return stageDefaults[id].Name
}

// PriceLabel resolves the effective price label for a stage. A few
// stages override the catalog label with a fee formula.
func PriceLabel(id models.StageID) string {
	switch id {
	case models.StageCompliance:
		return "Statutory Fees + 35%"
	case models.StageRemoteAdmin:
		return "R115 / Hour"
	case models.StageMaintenance:
		return "From R150 / Task"
	default:
		return stageDefaults[id].Price
	}
}
