package referral

import "strings"

// ParsedCode is the structural breakdown of a referral code string.
type ParsedCode struct {
	Valid       bool   `json:"valid"`
	IssuerTag   string `json:"issuerTag,omitempty"`
	LocationTag string `json:"locationTag,omitempty"`
	StaffTag    string `json:"staffTag,omitempty"`
}

// Partner-chain issuer tags. A fixed-width code is only recognized when its
// issuer field is one of these, which is what disambiguates the two
// concatenated layouts below.
var knownIssuerTags = map[string]bool{
	"BB": true, // BrightBox Electronics
	"HN": true, // HomeNest
	"EL": true, // ElectroLane
}

// ParseCode decodes a referral code into issuer, location and staff tags.
// Three historical formats are accepted, tried newest first; the first match
// wins when a string satisfies more than one:
//
//  1. current fixed-width: issuer(2) + location(3) + staff(3 digits), "BBSYD001"
//  2. prior fixed-width:   location(3) + issuer(2) + staff(3 digits), "SYDBB001"
//  3. legacy hyphenated:   issuer-location-staff, "BB-SYD-001"
//
// Anything else comes back as ParsedCode{Valid: false}; parsing never fails
// loudly.
func ParseCode(code string) ParsedCode {
	code = strings.ToUpper(strings.TrimSpace(code))

	if parsed := parseFixedWidth(code, 0, 2, 5); parsed.Valid {
		return parsed
	}
	if parsed := parseFixedWidth(code, 3, 0, 5); parsed.Valid {
		return parsed
	}
	return parseHyphenated(code)
}

// parseFixedWidth reads an 8-character code with the issuer tag at issuerAt,
// the location tag at locationAt and the staff digits at staffAt.
func parseFixedWidth(code string, issuerAt, locationAt, staffAt int) ParsedCode {
	if len(code) != 8 {
		return ParsedCode{}
	}
	issuer := code[issuerAt : issuerAt+2]
	location := code[locationAt : locationAt+3]
	staff := code[staffAt : staffAt+3]
	if !knownIssuerTags[issuer] || !isAlpha(location) || !isDigits(staff) {
		return ParsedCode{}
	}
	return ParsedCode{Valid: true, IssuerTag: issuer, LocationTag: location, StaffTag: staff}
}

func parseHyphenated(code string) ParsedCode {
	parts := strings.Split(code, "-")
	if len(parts) != 3 {
		return ParsedCode{}
	}
	issuer, location, staff := parts[0], parts[1], parts[2]
	if len(issuer) != 2 || !knownIssuerTags[issuer] {
		return ParsedCode{}
	}
	if len(location) != 3 || !isAlpha(location) {
		return ParsedCode{}
	}
	if len(staff) != 3 || !isDigits(staff) {
		return ParsedCode{}
	}
	return ParsedCode{Valid: true, IssuerTag: issuer, LocationTag: location, StaffTag: staff}
}

func isAlpha(s string) bool {
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return len(s) > 0
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}
