package configurator

import "mountify/models"

// ItemPatch is a partial update to one installation item, split into explicit
// field groups so that an invalid shape is rejected when the request is bound
// instead of being silently merged.
type ItemPatch struct {
	Label     *string         `json:"label,omitempty"`
	Selection *SelectionPatch `json:"selection,omitempty"`
	WallMount *WallMountPatch `json:"wallMount,omitempty"`
	Addons    *AddonsPatch    `json:"addons,omitempty"`
	BasePrice *float64        `json:"basePrice,omitempty"`
}

// SelectionPatch updates the item's domain selections. Nil fields are left
// untouched; an explicit empty string means "unselected".
type SelectionPatch struct {
	Size        *string `json:"size,omitempty"`
	ServiceType *string `json:"serviceType,omitempty"`
	WallType    *string `json:"wallType,omitempty"`
	MountType   *string `json:"mountType,omitempty"`
}

// WallMountPatch updates the wall-mount hardware choice as one unit, since
// the option field only makes sense while hardware is wanted.
type WallMountPatch struct {
	NeedsHardware bool   `json:"needsHardware"`
	Option        string `json:"option,omitempty"`
}

// AddonsPatch either toggles a single addon or replaces the whole list.
// Toggle wins when both are set.
type AddonsPatch struct {
	Toggle  *models.Addon  `json:"toggle,omitempty"`
	Replace []models.Addon `json:"replace,omitempty"`
}

func (p ItemPatch) apply(item *models.InstallationItem) {
	if p.Label != nil {
		item.Label = *p.Label
	}
	if p.Selection != nil {
		p.Selection.apply(item)
	}
	if p.WallMount != nil {
		item.NeedsWallMountHardware = p.WallMount.NeedsHardware
		item.WallMountOption = p.WallMount.Option
	}
	if p.Addons != nil {
		p.Addons.apply(item)
	}
	if p.BasePrice != nil {
		price := *p.BasePrice
		item.BasePrice = &price
	}
}

func (p *SelectionPatch) apply(item *models.InstallationItem) {
	if p.Size != nil {
		item.Size = *p.Size
	}
	if p.ServiceType != nil {
		item.ServiceType = *p.ServiceType
	}
	if p.WallType != nil {
		item.WallType = *p.WallType
	}
	if p.MountType != nil {
		item.MountType = *p.MountType
	}
}

func (p *AddonsPatch) apply(item *models.InstallationItem) {
	if p.Toggle != nil {
		toggleAddon(item, *p.Toggle)
		return
	}
	if p.Replace != nil {
		item.Addons = append([]models.Addon{}, p.Replace...)
	}
}

// toggleAddon flips one addon on or off, keeping the sentinel exclusive:
// turning the sentinel on clears every real addon, and turning a real addon on
// clears the sentinel.
func toggleAddon(item *models.InstallationItem, addon models.Addon) {
	for i, existing := range item.Addons {
		if existing.Key == addon.Key {
			item.Addons = append(item.Addons[:i], item.Addons[i+1:]...)
			return
		}
	}
	if addon.Key == models.NoAddonsKey {
		item.Addons = []models.Addon{addon}
		return
	}
	kept := item.Addons[:0]
	for _, existing := range item.Addons {
		if existing.Key != models.NoAddonsKey {
			kept = append(kept, existing)
		}
	}
	item.Addons = append(kept, addon)
}
