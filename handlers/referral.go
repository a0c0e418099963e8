package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	referralRepo "mountify/database/repository/referral"
	"mountify/models"
	"mountify/services/referral"
	"mountify/utils"
)

// ReferralHandler exposes code validation and usage recording. Validation
// failures are plain payloads (valid:false plus a message), never error
// statuses, so the client can always tell a bad code from a transport problem.
type ReferralHandler struct {
	Ledger referral.Ledger
	Repo   referralRepo.Repository
}

func NewReferralHandler(ledger referral.Ledger, repo referralRepo.Repository) *ReferralHandler {
	return &ReferralHandler{Ledger: ledger, Repo: repo}
}

// ValidateCode prices a referral code against a booking amount.
func (h *ReferralHandler) ValidateCode(c *gin.Context) {
	var input struct {
		Code          string  `json:"code" binding:"required"`
		BookingAmount float64 `json:"bookingAmount"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	result, err := h.Ledger.ValidateAndPrice(c.Request.Context(), input.Code, input.BookingAmount)
	if err != nil {
		if referral.IsInvalidCode(err) {
			c.JSON(http.StatusOK, referral.DiscountResult{Valid: false, Message: "This referral code is not valid."})
			return
		}
		utils.JSONError(c, http.StatusServiceUnavailable, "could not validate code, please try again", err.Error())
		return
	}
	c.JSON(http.StatusOK, result)
}

// RecordUsage records one usage event for a booking. Safe to call again with
// the same bookingRef: the second call recognizes the existing row and leaves
// the counters alone.
func (h *ReferralHandler) RecordUsage(c *gin.Context) {
	var input struct {
		CodeID         string  `json:"codeId" binding:"required"`
		BookingRef     string  `json:"bookingRef" binding:"required"`
		DiscountAmount float64 `json:"discountAmount"`
		SubsidyAmount  float64 `json:"subsidyAmount"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	recorded, err := h.Ledger.RecordUsage(c.Request.Context(), input.CodeID, input.BookingRef, input.DiscountAmount, input.SubsidyAmount)
	if err != nil {
		if referral.IsInvalidCode(err) {
			utils.JSONError(c, http.StatusBadRequest, "invalid usage record", err.Error())
			return
		}
		utils.JSONError(c, http.StatusServiceUnavailable, "could not record usage, please try again", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"recorded": recorded})
}

// CreateCode registers a new referral code (back-office use).
func (h *ReferralHandler) CreateCode(c *gin.Context) {
	var input struct {
		Code            string  `json:"code" binding:"required"`
		IssuerType      string  `json:"issuerType" binding:"required"`
		DiscountPercent float64 `json:"discountPercent"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}
	if input.IssuerType != models.IssuerCustomer && input.IssuerType != models.IssuerPartnerStaff {
		utils.JSONError(c, http.StatusBadRequest, "invalid issuer type", "issuerType must be customer or partnerStaff")
		return
	}
	if input.DiscountPercent < 0 || input.DiscountPercent > 100 {
		utils.JSONError(c, http.StatusBadRequest, "invalid discount", "discountPercent must be between 0 and 100")
		return
	}
	// Partner-staff codes must carry a recognizable store/staff structure.
	if input.IssuerType == models.IssuerPartnerStaff && !referral.ParseCode(input.Code).Valid {
		utils.JSONError(c, http.StatusBadRequest, "invalid code format", "partner staff codes must follow a known code format")
		return
	}

	id, err := h.Repo.CreateCode(c.Request.Context(), models.ReferralCode{
		Code:            input.Code,
		IssuerType:      input.IssuerType,
		DiscountPercent: input.DiscountPercent,
		IsActive:        true,
	})
	if err != nil {
		getLogger(c).Error("failed to create referral code", zap.Error(err))
		utils.JSONError(c, http.StatusServiceUnavailable, "could not create code, please try again", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id})
}

// GetCode returns a code record, its cumulative counters and its parsed
// structure (back-office use).
func (h *ReferralHandler) GetCode(c *gin.Context) {
	code := c.Param("code")
	record, err := h.Repo.GetByCode(c.Request.Context(), code)
	if err != nil {
		utils.JSONError(c, http.StatusServiceUnavailable, "could not fetch code, please try again", err.Error())
		return
	}
	if record == nil {
		utils.JSONError(c, http.StatusNotFound, "code not found", "no referral code exists for this value")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"code":   record,
		"parsed": referral.ParseCode(record.Code),
	})
}
