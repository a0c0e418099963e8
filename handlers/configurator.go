package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	bookingRepo "mountify/database/repository/booking"
	"mountify/models"
	"mountify/services/configurator"
	"mountify/services/referral"
	"mountify/utils"
)

// ConfigStore is the session persistence surface the configurator handler
// works against; *configurator.SessionStore is the production implementation.
type ConfigStore interface {
	Load(ctx context.Context, sessionID string) (*configurator.Aggregate, error)
	Save(ctx context.Context, sessionID string, agg *configurator.Aggregate)
	Delete(ctx context.Context, sessionID string) error
}

// ConfiguratorHandler exposes the booking configuration session over HTTP.
// Each request loads the session aggregate, applies one mutation and writes it
// back; the recomputed price breakdown rides along on every response so the
// form never displays a stale total.
type ConfiguratorHandler struct {
	Store       ConfigStore
	Ledger      referral.Ledger
	BookingRepo bookingRepo.Repository
	AsynqClient *asynq.Client
	Logger      *zap.Logger
}

func NewConfiguratorHandler(store ConfigStore, ledger referral.Ledger, bookings bookingRepo.Repository, asynqClient *asynq.Client, logger *zap.Logger) *ConfiguratorHandler {
	return &ConfiguratorHandler{
		Store:       store,
		Ledger:      ledger,
		BookingRepo: bookings,
		AsynqClient: asynqClient,
		Logger:      logger,
	}
}

type sessionView struct {
	SessionID     string                      `json:"sessionId"`
	Configuration models.BookingConfiguration `json:"configuration"`
	Price         configurator.PriceBreakdown `json:"price"`
}

func (h *ConfiguratorHandler) respondSession(c *gin.Context, sessionID string, agg *configurator.Aggregate) {
	c.JSON(http.StatusOK, sessionView{
		SessionID:     sessionID,
		Configuration: agg.Config,
		Price:         agg.Breakdown(),
	})
}

// loadSession fetches the aggregate for the :sessionID route param, writing
// the error response itself when there is nothing to work on.
func (h *ConfiguratorHandler) loadSession(c *gin.Context) (string, *configurator.Aggregate, bool) {
	sessionID := c.Param("sessionID")
	agg, err := h.Store.Load(c.Request.Context(), sessionID)
	if err != nil {
		utils.JSONError(c, http.StatusServiceUnavailable, "session store unavailable", err.Error())
		return "", nil, false
	}
	if agg == nil {
		utils.JSONError(c, http.StatusNotFound, "session not found", "no session exists for this ID")
		return "", nil, false
	}
	return sessionID, agg, true
}

// CreateSession starts a new configuration session.
func (h *ConfiguratorHandler) CreateSession(c *gin.Context) {
	var input struct {
		ItemCount      int `json:"itemCount"`
		DirectProvider *struct {
			ProviderID string `json:"providerId"`
			Summary    string `json:"summary"`
		} `json:"directProvider"`
	}
	if err := c.ShouldBindJSON(&input); err != nil && c.Request.ContentLength > 0 {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	agg := configurator.NewAggregate()
	if input.ItemCount >= 1 {
		agg.InitializeMultiItem(input.ItemCount)
	}
	if input.DirectProvider != nil {
		agg.SetDirectProvider(input.DirectProvider.ProviderID, input.DirectProvider.Summary)
	}

	sessionID := uuid.New().String()
	h.Store.Save(c.Request.Context(), sessionID, agg)
	h.respondSession(c, sessionID, agg)
}

// GetSession returns the current aggregate state and price breakdown.
func (h *ConfiguratorHandler) GetSession(c *gin.Context) {
	sessionID, agg, ok := h.loadSession(c)
	if !ok {
		return
	}
	h.respondSession(c, sessionID, agg)
}

// InitializeItems re-creates the item list with a fresh item count,
// discarding existing selections. The client confirms intent before calling.
func (h *ConfiguratorHandler) InitializeItems(c *gin.Context) {
	var input struct {
		ItemCount int `json:"itemCount"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}
	sessionID, agg, ok := h.loadSession(c)
	if !ok {
		return
	}
	agg.InitializeMultiItem(input.ItemCount)
	h.Store.Save(c.Request.Context(), sessionID, agg)
	h.respondSession(c, sessionID, agg)
}

// AddItem appends one fresh installation item.
func (h *ConfiguratorHandler) AddItem(c *gin.Context) {
	sessionID, agg, ok := h.loadSession(c)
	if !ok {
		return
	}
	agg.AddItem()
	h.Store.Save(c.Request.Context(), sessionID, agg)
	h.respondSession(c, sessionID, agg)
}

// RemoveItem deletes the item at :index. An out-of-range index leaves the
// session unchanged; the response carries whatever state resulted.
func (h *ConfiguratorHandler) RemoveItem(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid item index", err.Error())
		return
	}
	sessionID, agg, ok := h.loadSession(c)
	if !ok {
		return
	}
	agg.RemoveItem(index)
	h.Store.Save(c.Request.Context(), sessionID, agg)
	h.respondSession(c, sessionID, agg)
}

// UpdateItem applies a partial update to the item at :index.
func (h *ConfiguratorHandler) UpdateItem(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid item index", err.Error())
		return
	}
	var patch configurator.ItemPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid item patch", err.Error())
		return
	}
	sessionID, agg, ok := h.loadSession(c)
	if !ok {
		return
	}
	agg.UpdateItem(index, patch)
	h.Store.Save(c.Request.Context(), sessionID, agg)
	h.respondSession(c, sessionID, agg)
}

// SetCurrentItem moves the editing cursor to another item.
func (h *ConfiguratorHandler) SetCurrentItem(c *gin.Context) {
	var input struct {
		Index int `json:"index"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}
	sessionID, agg, ok := h.loadSession(c)
	if !ok {
		return
	}
	agg.SetCurrentItem(input.Index)
	h.Store.Save(c.Request.Context(), sessionID, agg)
	h.respondSession(c, sessionID, agg)
}

// MarkStep records a wizard step as completed, globally or per item depending
// on the session mode.
func (h *ConfiguratorHandler) MarkStep(c *gin.Context) {
	var input struct {
		Step      models.StepID `json:"step" binding:"required"`
		ItemIndex *int          `json:"itemIndex"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}
	sessionID, agg, ok := h.loadSession(c)
	if !ok {
		return
	}
	itemIndex := -1
	if input.ItemIndex != nil {
		itemIndex = *input.ItemIndex
	}
	agg.MarkStepCompleted(input.Step, itemIndex)
	h.Store.Save(c.Request.Context(), sessionID, agg)
	h.respondSession(c, sessionID, agg)
}

// UpdateContact merges contact details into the session.
func (h *ConfiguratorHandler) UpdateContact(c *gin.Context) {
	var contact models.Contact
	if err := c.ShouldBindJSON(&contact); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid contact", err.Error())
		return
	}
	sessionID, agg, ok := h.loadSession(c)
	if !ok {
		return
	}
	agg.SetContact(contact)
	h.Store.Save(c.Request.Context(), sessionID, agg)
	h.respondSession(c, sessionID, agg)
}

// ApplyReferral validates a referral code against the session's current total
// and attaches it. An invalid code is a validation outcome, not an error
// status: the response says valid:false with a message the form can show.
func (h *ConfiguratorHandler) ApplyReferral(c *gin.Context) {
	var input struct {
		Code string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}
	sessionID, agg, ok := h.loadSession(c)
	if !ok {
		return
	}
	result, err := h.Ledger.ValidateAndPrice(c.Request.Context(), input.Code, agg.ComputeTotal())
	if err != nil {
		if referral.IsInvalidCode(err) {
			c.JSON(http.StatusOK, referral.DiscountResult{Valid: false, Message: "This referral code is not valid."})
			return
		}
		utils.JSONError(c, http.StatusServiceUnavailable, "could not validate code, please try again", err.Error())
		return
	}
	agg.SetReferral(&models.ReferralSelection{
		Code:            result.Code,
		DiscountPercent: result.DiscountPercent,
		LedgerRecordID:  result.CodeID,
	})
	h.Store.Save(c.Request.Context(), sessionID, agg)
	c.JSON(http.StatusOK, result)
}

// Submit finalizes the session: the aggregate's recomputed total and any
// referral discount are frozen into a booking snapshot, referral usage
// recording is queued, and the session is discarded. Checkout applies
// the returned discount to the returned total without repricing anything.
func (h *ConfiguratorHandler) Submit(c *gin.Context) {
	sessionID, agg, ok := h.loadSession(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	booking := models.Booking{
		Items:         agg.Config.Items,
		ComputedTotal: agg.ComputeTotal(),
		Contact:       agg.Config.Contact,
		Notes:         agg.Config.Notes,
	}
	if agg.Config.DirectBooking != nil {
		booking.TargetProviderID = agg.Config.DirectBooking.TargetProviderID
	}

	// Re-validate the attached code against the final total. A code that went
	// inactive mid-session drops off rather than failing the submission.
	var discount *referral.DiscountResult
	if agg.Config.Referral != nil {
		result, err := h.Ledger.ValidateAndPrice(ctx, agg.Config.Referral.Code, booking.ComputedTotal)
		switch {
		case err == nil:
			discount = result
			booking.Referral = &models.AppliedReferral{
				Code:           result.Code,
				DiscountAmount: result.DiscountAmount,
			}
		case referral.IsInvalidCode(err):
			h.Logger.Info("referral code no longer valid at submission, dropping",
				zap.String("code", agg.Config.Referral.Code), zap.String("sessionID", sessionID))
		default:
			utils.JSONError(c, http.StatusServiceUnavailable, "could not finalize booking, please try again", err.Error())
			return
		}
	}

	bookingID, err := h.BookingRepo.Create(ctx, booking)
	if err != nil {
		utils.JSONError(c, http.StatusServiceUnavailable, "could not save booking, please try again", err.Error())
		return
	}
	booking.ID = bookingID

	if discount != nil {
		h.enqueueUsage(ctx, discount, bookingID)
	}

	if err := h.Store.Delete(ctx, sessionID); err != nil {
		h.Logger.Warn("failed to discard submitted session", zap.String("sessionID", sessionID), zap.Error(err))
	}

	c.JSON(http.StatusOK, gin.H{"booking": booking})
}

// enqueueUsage hands the usage recording to the background worker so a
// storage hiccup is retried instead of lost. Recording directly is the
// fallback when no queue client is wired (tests, single-binary setups).
func (h *ConfiguratorHandler) enqueueUsage(ctx context.Context, discount *referral.DiscountResult, bookingID string) {
	payload := models.UsagePayload{
		CodeID:         discount.CodeID,
		BookingRef:     bookingID,
		DiscountAmount: discount.DiscountAmount,
		SubsidyAmount:  discount.SubsidyAmount,
	}
	if h.AsynqClient != nil {
		task, opts, err := referral.NewRecordUsageTask(payload)
		if err == nil {
			if _, err := h.AsynqClient.Enqueue(task, opts...); err == nil {
				return
			} else {
				h.Logger.Error("failed to enqueue usage task, recording inline",
					zap.Error(err), zap.String("bookingRef", bookingID))
			}
		}
	}
	if _, err := h.Ledger.RecordUsage(ctx, payload.CodeID, payload.BookingRef, payload.DiscountAmount, payload.SubsidyAmount); err != nil {
		h.Logger.Error("failed to record referral usage",
			zap.Error(err), zap.String("bookingRef", bookingID))
	}
}

// ResetSession discards the session entirely.
func (h *ConfiguratorHandler) ResetSession(c *gin.Context) {
	sessionID := c.Param("sessionID")
	if err := h.Store.Delete(c.Request.Context(), sessionID); err != nil {
		utils.JSONError(c, http.StatusServiceUnavailable, "failed to reset session", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"reset": true})
}
