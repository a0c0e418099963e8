package models

// NoAddonsKey is the sentinel addon meaning "explicitly no extras". It is
// mutually exclusive with every real addon on the same item.
const NoAddonsKey = "no-addons"

// Addon is a priced extra attached to one installation item.
type Addon struct {
	Key   string  `json:"key"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// InstallationItem is one unit of service being configured within a booking
// session, e.g. one TV's installation specifics.
type InstallationItem struct {
	ID                     string   `json:"id"`
	Label                  string   `json:"label"`
	Size                   string   `json:"size"`
	ServiceType            string   `json:"serviceType"`
	WallType               string   `json:"wallType"`
	MountType              string   `json:"mountType"`
	NeedsWallMountHardware bool     `json:"needsWallMountHardware"`
	WallMountOption        string   `json:"wallMountOption,omitempty"`
	Addons                 []Addon  `json:"addons"`
	BasePrice              *float64 `json:"basePrice,omitempty"`
}

// Contact holds the customer's details, filled in gradually during the flow.
type Contact struct {
	Name    string `json:"name,omitempty"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
}

// DirectBooking marks a session entered via a direct-provider deep link,
// bypassing open marketplace matching.
type DirectBooking struct {
	TargetProviderID string `json:"targetProviderId"`
	ProviderSummary  string `json:"providerSummary,omitempty"`
}

// ReferralSelection is the referral code attached to a session, if any.
// LedgerRecordID is the ledger's record for the validated code.
type ReferralSelection struct {
	Code            string  `json:"code"`
	DiscountPercent float64 `json:"discountPercent"`
	LedgerRecordID  string  `json:"ledgerRecordId,omitempty"`
}

// BookingConfiguration is the aggregate root for one in-progress booking
// session. It operates in one of two modes: legacy single-item (ItemCount == 1,
// steps tracked globally) and multi-item (ItemCount > 1, steps tracked per
// item index).
type BookingConfiguration struct {
	ItemCount             int                `json:"itemCount"`
	Items                 []InstallationItem `json:"items"`
	CurrentItemIndex      int                `json:"currentItemIndex"`
	CompletedStepsGlobal  StepSet            `json:"completedSteps"`
	CompletedStepsPerItem map[int]*StepSet   `json:"completedStepsPerItem,omitempty"`
	DirectBooking         *DirectBooking     `json:"directBooking,omitempty"`
	Contact               Contact            `json:"contact"`
	Referral              *ReferralSelection `json:"referral,omitempty"`
	Notes                 string             `json:"notes,omitempty"`

	// Scalar mirror fields from before multi-item support. Sessions created by
	// old clients carry these instead of Items; ComputeTotal falls back to them
	// when Items is empty.
	LegacyTotal      float64 `json:"legacyTotal,omitempty"`
	LegacyAddonTotal float64 `json:"legacyAddonTotal,omitempty"`
	LegacySize       string  `json:"legacySize,omitempty"`
	LegacyWallType   string  `json:"legacyWallType,omitempty"`
	LegacyMountType  string  `json:"legacyMountType,omitempty"`
}

// IsMultiItem reports whether the session is in multi-item mode.
func (c *BookingConfiguration) IsMultiItem() bool {
	return c.ItemCount > 1
}
