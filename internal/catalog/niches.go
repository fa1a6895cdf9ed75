// internal/catalog/niches.go
package catalog

// Niches lists the supported business categories, in display order. The
// registration form defaults to the first entry.
var Niches = []string{
	"Construction & Building",
	"Cleaning Services",
	"Security Guarding",
	"Transport & Logistics",
	"General Trading",
	"IT & Computers",
	"Consulting",
	"Farming",
	"Retail Shop",
	"Teaching & Training",
}

// Provinces lists the nine South African provinces used by address
// pickers. The registration form defaults to the first entry.
var Provinces = []string{
	"Gauteng",
	"Western Cape",
	"KwaZulu-Natal",
	"Eastern Cape",
	"Free State",
	"Limpopo",
	"Mpumalanga",
	"North West",
	"Northern Cape",
}

// DefaultNationality is the pre-filled nationality for new directors.
const DefaultNationality = "South African"

// IsKnownNiche reports whether name is one of the supported categories.
func IsKnownNiche(name string) bool {
	for _, n := range Niches {
		if n == name {
			return true
		}
	}
	return false
}

// IsKnownProvince reports whether name is a valid province.
func IsKnownProvince(name string) bool {
	for _, p := range Provinces {
		if p == name {
			return true
		}
	}
	return false
}
