package configurator

import (
	"fmt"

	"mountify/models"
)

// Aggregate is the single source of truth for one session's in-progress
// booking selections. It is driven by UI event handlers, so every index-based
// operation is fail-silent on out-of-range input rather than returning an
// error: clamping and normalizing beat crashing a live form.
//
// Instances are owned by whoever owns the session (see SessionStore); there is
// no shared global.
type Aggregate struct {
	Config models.BookingConfiguration
}

// NewAggregate returns an empty aggregate in legacy single-item mode.
func NewAggregate() *Aggregate {
	return &Aggregate{Config: models.BookingConfiguration{
		ItemCount: 1,
	}}
}

func freshItem(index int) models.InstallationItem {
	return models.InstallationItem{
		ID:     fmt.Sprintf("item-%d", index+1),
		Label:  fmt.Sprintf("Item %d", index+1),
		Addons: []models.Addon{},
	}
}

// InitializeMultiItem (re)creates the item list with count fresh items and
// resets progress. Existing items are overwritten, so callers must confirm
// intent before calling this on a populated aggregate. count < 1 is a no-op.
func (a *Aggregate) InitializeMultiItem(count int) {
	if count < 1 {
		return
	}
	items := make([]models.InstallationItem, count)
	for i := range items {
		items[i] = freshItem(i)
	}
	a.Config.ItemCount = count
	a.Config.Items = items
	a.Config.CurrentItemIndex = 0
	a.Config.CompletedStepsGlobal = models.StepSet{}
	if count > 1 {
		a.Config.CompletedStepsPerItem = make(map[int]*models.StepSet)
	} else {
		a.Config.CompletedStepsPerItem = nil
	}
}

// AddItem appends one fresh item. Always succeeds. Growing a single-item
// session past one item switches it to multi-item mode; any globally tracked
// steps migrate to the first item so no progress is lost.
func (a *Aggregate) AddItem() {
	a.Config.Items = append(a.Config.Items, freshItem(len(a.Config.Items)))
	wasSingle := !a.Config.IsMultiItem()
	a.Config.ItemCount = len(a.Config.Items)
	if wasSingle && a.Config.IsMultiItem() {
		perItem := make(map[int]*models.StepSet)
		if a.Config.CompletedStepsGlobal.Len() > 0 {
			migrated := models.NewStepSet(a.Config.CompletedStepsGlobal.Values()...)
			perItem[0] = &migrated
		}
		a.Config.CompletedStepsPerItem = perItem
		a.Config.CompletedStepsGlobal = models.StepSet{}
	}
}

// RemoveItem deletes the item at index. Out-of-range indices leave the
// aggregate unchanged. When the removal collapses a multi-item session back to
// a single item, the surviving item's step set becomes the global set.
func (a *Aggregate) RemoveItem(index int) {
	if index < 0 || index >= len(a.Config.Items) {
		return
	}
	a.Config.Items = append(a.Config.Items[:index], a.Config.Items[index+1:]...)

	// Reindex per-item step tracking around the removed slot.
	if a.Config.CompletedStepsPerItem != nil {
		reindexed := make(map[int]*models.StepSet, len(a.Config.CompletedStepsPerItem))
		for i, steps := range a.Config.CompletedStepsPerItem {
			switch {
			case i < index:
				reindexed[i] = steps
			case i > index:
				reindexed[i-1] = steps
			}
		}
		a.Config.CompletedStepsPerItem = reindexed
	}

	a.Config.ItemCount = max(1, len(a.Config.Items))
	a.clampCurrentIndex()

	if !a.Config.IsMultiItem() {
		// Multi -> single collapse: migrate the survivor's steps.
		if steps, ok := a.Config.CompletedStepsPerItem[0]; ok && steps != nil {
			a.Config.CompletedStepsGlobal = models.NewStepSet(steps.Values()...)
		}
		a.Config.CompletedStepsPerItem = nil
	}
}

// UpdateItem merges patch into the item at index, then re-establishes the
// wall-mount and addon invariants. Out-of-range indices leave the aggregate
// unchanged.
func (a *Aggregate) UpdateItem(index int, patch ItemPatch) {
	if index < 0 || index >= len(a.Config.Items) {
		return
	}
	patch.apply(&a.Config.Items[index])
	normalizeItem(&a.Config.Items[index])
}

// UpdateCurrentItem is UpdateItem for the item currently being edited.
func (a *Aggregate) UpdateCurrentItem(patch ItemPatch) {
	a.UpdateItem(a.Config.CurrentItemIndex, patch)
}

// SetCurrentItem moves the editing cursor. Out-of-range indices are ignored.
func (a *Aggregate) SetCurrentItem(index int) {
	if index < 0 || index >= len(a.Config.Items) {
		return
	}
	a.Config.CurrentItemIndex = index
}

// SetDirectProvider marks the session as a direct booking. This is
// one-directional within a session; only Reset clears it.
func (a *Aggregate) SetDirectProvider(providerID, summary string) {
	if providerID == "" {
		return
	}
	a.Config.DirectBooking = &models.DirectBooking{
		TargetProviderID: providerID,
		ProviderSummary:  summary,
	}
}

// MarkStepCompleted records step as done. In multi-item mode the step is
// tracked against itemIndex, or against the current item when itemIndex is
// negative; in single-item mode itemIndex is ignored and the global set is
// used. Exactly one of the two containers is ever populated.
func (a *Aggregate) MarkStepCompleted(step models.StepID, itemIndex int) {
	if !a.Config.IsMultiItem() {
		a.Config.CompletedStepsGlobal.Add(step)
		return
	}
	idx := itemIndex
	if idx < 0 {
		idx = a.Config.CurrentItemIndex
	}
	if idx >= len(a.Config.Items) {
		return
	}
	if a.Config.CompletedStepsPerItem == nil {
		a.Config.CompletedStepsPerItem = make(map[int]*models.StepSet)
	}
	steps, ok := a.Config.CompletedStepsPerItem[idx]
	if !ok {
		steps = &models.StepSet{}
		a.Config.CompletedStepsPerItem[idx] = steps
	}
	steps.Add(step)
}

// IsStepCompleted reports whether step is done, resolved against the same
// container MarkStepCompleted would use.
func (a *Aggregate) IsStepCompleted(step models.StepID, itemIndex int) bool {
	if !a.Config.IsMultiItem() {
		return a.Config.CompletedStepsGlobal.Has(step)
	}
	idx := itemIndex
	if idx < 0 {
		idx = a.Config.CurrentItemIndex
	}
	steps, ok := a.Config.CompletedStepsPerItem[idx]
	if !ok || steps == nil {
		return false
	}
	return steps.Has(step)
}

// SetContact merges non-empty fields into the session contact. The form fills
// these in across several steps, so partial updates are the normal case.
func (a *Aggregate) SetContact(contact models.Contact) {
	if contact.Name != "" {
		a.Config.Contact.Name = contact.Name
	}
	if contact.Email != "" {
		a.Config.Contact.Email = contact.Email
	}
	if contact.Phone != "" {
		a.Config.Contact.Phone = contact.Phone
	}
	if contact.Address != "" {
		a.Config.Contact.Address = contact.Address
	}
}

// SetNotes replaces the free-form notes.
func (a *Aggregate) SetNotes(notes string) {
	a.Config.Notes = notes
}

// SetReferral attaches a validated referral code to the session.
func (a *Aggregate) SetReferral(sel *models.ReferralSelection) {
	a.Config.Referral = sel
}

// Reset returns the aggregate to its initial empty state.
func (a *Aggregate) Reset() {
	*a = *NewAggregate()
}

func (a *Aggregate) clampCurrentIndex() {
	if len(a.Config.Items) == 0 {
		a.Config.CurrentItemIndex = 0
		return
	}
	if a.Config.CurrentItemIndex < 0 {
		a.Config.CurrentItemIndex = 0
	}
	if a.Config.CurrentItemIndex >= len(a.Config.Items) {
		a.Config.CurrentItemIndex = len(a.Config.Items) - 1
	}
}

// normalizeItem re-establishes the per-item invariants after a merge:
// a wall-mount option only exists while hardware is wanted, and the
// "no-addons" sentinel never coexists with a real addon.
func normalizeItem(item *models.InstallationItem) {
	if !item.NeedsWallMountHardware {
		item.WallMountOption = ""
	}
	hasSentinel := false
	hasReal := false
	for _, ad := range item.Addons {
		if ad.Key == models.NoAddonsKey {
			hasSentinel = true
		} else {
			hasReal = true
		}
	}
	if hasSentinel && hasReal {
		// An explicit "none" beats whatever was left selected.
		item.Addons = []models.Addon{{Key: models.NoAddonsKey, Name: "No Add-ons"}}
	}
}
