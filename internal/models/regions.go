package models

import "strings"

// RegionGlobal selects the multi-region aggregate instead of a single
// country listing.
const RegionGlobal = "GLOBAL"

// DefaultRegion is used when a request omits the region or names one that
// is not in the catalog.
const DefaultRegion = "US"

// GlobalRegions is the fixed set of countries sampled for the GLOBAL
// aggregate.
var GlobalRegions = []string{"US", "GB", "IN", "JP", "BR", "CA", "DE", "FR", "AU", "KR"}

// regionCatalog lists the ISO 3166-1 alpha-2 codes accepted for single
// region requests.
var regionCatalog = map[string]bool{
	"US": true, "GB": true, "IN": true, "JP": true, "BR": true,
	"CA": true, "DE": true, "FR": true, "AU": true, "KR": true,
	"MX": true, "ES": true, "IT": true, "NL": true, "SE": true,
	"NO": true, "DK": true, "FI": true, "PL": true, "RU": true,
	"ID": true, "TH": true, "VN": true, "PH": true, "MY": true,
	"SG": true, "TW": true, "HK": true, "AR": true, "CL": true,
	"CO": true, "PE": true, "ZA": true, "EG": true, "NG": true,
	"TR": true, "SA": true, "AE": true, "IL": true, "NZ": true,
	"IE": true, "PT": true, "BE": true, "AT": true, "CH": true,
	"CZ": true, "GR": true, "HU": true, "RO": true, "UA": true,
}

// NormalizeRegion uppercases a region code and coerces anything outside the
// catalog to the default. GLOBAL passes through unchanged.
func NormalizeRegion(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == RegionGlobal {
		return RegionGlobal
	}
	if regionCatalog[code] {
		return code
	}
	return DefaultRegion
}

// IsGlobalRegion reports whether the code selects the multi-region aggregate.
func IsGlobalRegion(code string) bool {
	return strings.EqualFold(strings.TrimSpace(code), RegionGlobal)
}
