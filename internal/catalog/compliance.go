// internal/catalog/compliance.go
package catalog

// complianceMap keys are matched exactly against the client's niche.
// No fuzzy matching, an unrecognized niche falls back to defaultChecklist.
var complianceMap = map[string][]string{
	"Security Guarding": {
		"PSIRA Registration",
		"COIDA (Letter of Good Standing)",
		"UIF & PAYE Compliance",
		"Public Liability Insurance",
	},
	"Construction & Building": {
		"CIDB Grading",
		"NHBRC Registration",
		"COIDA",
		"B-BBEE Affidavit",
	},
	"Transport & Logistics": {
		"Public Transport Permits",
		"PDP Renewals",
		"GIT Insurance",
		"Vehicle Tracking Setup",
	},
	"General Trading": {
		"CSD Registration",
		"Tax Clearance Certificate",
		"B-BBEE Certificate",
		"Import/Export License",
	},
}

var defaultChecklist = []string{
	"Tax Clearance Certificate",
	"CSD Registration",
	"UIF Registration",
	"COIDA",
}

// ComplianceChecklist returns the ordered license checklist for a niche.
// Callers own the returned slice.
func ComplianceChecklist(niche string) []string {
	items, ok := complianceMap[niche]
	if !ok {
		items = defaultChecklist
	}
	out := make([]string, len(items))
	copy(out, items)
	return out
}
