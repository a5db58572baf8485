package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	flowRepo "staybridge/database/repository/flow"
	"staybridge/models"
	flowService "staybridge/services/flow"
	"staybridge/supplier"
	"staybridge/supplier/mappers"
	"staybridge/utils"
)

var FlowService flowService.FlowService

func actorFrom(c *gin.Context) models.Actor {
	return models.Actor{
		UserID: c.GetString("userID"),
		Role:   c.GetString("role"),
	}
}

func idemKey(c *gin.Context) string {
	return c.GetHeader("Idempotency-Key")
}

// respondFlowError maps service errors onto HTTP statuses. Supplier failures
// arrive pre-classified; raw supplier text never reaches the response.
func respondFlowError(c *gin.Context, err error) {
	var verr *mappers.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": verr.Error()})
		return
	}
	var nfe *flowService.NotFoundError
	if errors.As(err, &nfe) {
		c.JSON(http.StatusNotFound, gin.H{"error": "flow not found"})
		return
	}
	var ae *flowService.AccessError
	if errors.As(err, &ae) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not allowed"})
		return
	}
	var se *flowService.StateError
	if errors.As(err, &se) {
		c.JSON(http.StatusConflict, gin.H{"error": "invalid state for this operation", "details": se.Error()})
		return
	}
	if errors.Is(err, utils.ErrOfferTokenExpired) {
		c.JSON(http.StatusGone, gin.H{"error": "offer expired, search again"})
		return
	}
	if errors.Is(err, utils.ErrOfferTokenInvalid) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid offer token"})
		return
	}
	if errors.Is(err, flowRepo.ErrStatusConflict) {
		c.JSON(http.StatusConflict, gin.H{"error": "flow changed concurrently, reload and retry"})
		return
	}
	var cerr *flowService.ClassifiedError
	if errors.As(err, &cerr) {
		status := http.StatusUnprocessableEntity
		if cerr.Kind == supplier.KindSupplierUnavailable {
			status = http.StatusBadGateway
		}
		c.JSON(status, utils.ClassifiedErrorResponse{
			ErrorKey:    cerr.Kind,
			UserMessage: cerr.UserMessage,
			Retryable:   cerr.Retryable,
			Code:        cerr.Code,
		})
		return
	}
	utils.JSONError(c, http.StatusInternalServerError, "internal error", err.Error())
}

// StartFlow opens a new booking flow: searches the hotel and returns signed
// offers.
func StartFlow(c *gin.Context) {
	var input struct {
		SearchContext models.SearchContext `json:"searchContext"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	result, err := FlowService.Start(c.Request.Context(), actorFrom(c), input.SearchContext)
	if err != nil {
		respondFlowError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// SelectOffer pins one signed offer onto the flow.
func SelectOffer(c *gin.Context) {
	var input struct {
		OfferToken string `json:"offerToken"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	f, err := FlowService.Select(c.Request.Context(), actorFrom(c), c.Param("id"), input.OfferToken)
	if err != nil {
		respondFlowError(c, err)
		return
	}
	c.JSON(http.StatusOK, f)
}

// BlockRoom re-validates the selected rate and holds its allocation.
func BlockRoom(c *gin.Context) {
	f, err := FlowService.Block(c.Request.Context(), actorFrom(c), c.Param("id"), idemKey(c))
	if err != nil {
		respondFlowError(c, err)
		return
	}
	c.JSON(http.StatusOK, f)
}

// SaveBooking attaches guests and creates the supplier-side itinerary.
func SaveBooking(c *gin.Context) {
	var input models.SaveBookingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	f, err := FlowService.Save(c.Request.Context(), actorFrom(c), c.Param("id"), input, idemKey(c))
	if err != nil {
		respondFlowError(c, err)
		return
	}
	c.JSON(http.StatusOK, f)
}

// PriceFlow obtains the authoritative price for the saved itinerary.
func PriceFlow(c *gin.Context) {
	var input struct {
		DisplayCurrency string `json:"displayCurrency"`
	}
	// Body is optional for pricing.
	_ = c.ShouldBindJSON(&input)
	f, err := FlowService.Price(c.Request.Context(), actorFrom(c), c.Param("id"), input.DisplayCurrency, idemKey(c))
	if err != nil {
		respondFlowError(c, err)
		return
	}
	c.JSON(http.StatusOK, f)
}

// PreauthFlow authorizes payment for the priced amount.
func PreauthFlow(c *gin.Context) {
	var input struct {
		PaymentToken string `json:"paymentToken"`
	}
	_ = c.ShouldBindJSON(&input)
	f, err := FlowService.Preauth(c.Request.Context(), actorFrom(c), c.Param("id"), input.PaymentToken, idemKey(c))
	if err != nil {
		respondFlowError(c, err)
		return
	}
	c.JSON(http.StatusOK, f)
}

// ConfirmFlow finalizes the reservation.
func ConfirmFlow(c *gin.Context) {
	f, err := FlowService.Confirm(c.Request.Context(), actorFrom(c), c.Param("id"), idemKey(c))
	if err != nil {
		respondFlowError(c, err)
		return
	}
	c.JSON(http.StatusOK, f)
}

// CancelQuoteFlow quotes the penalty for cancelling now.
func CancelQuoteFlow(c *gin.Context) {
	var input struct {
		Reason string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&input)
	f, err := FlowService.CancelQuote(c.Request.Context(), actorFrom(c), c.Param("id"), input.Reason, idemKey(c))
	if err != nil {
		respondFlowError(c, err)
		return
	}
	c.JSON(http.StatusOK, f)
}

// CancelFlow commits the cancellation.
func CancelFlow(c *gin.Context) {
	var input struct {
		Reason string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&input)
	f, err := FlowService.Cancel(c.Request.Context(), actorFrom(c), c.Param("id"), input.Reason, idemKey(c))
	if err != nil {
		respondFlowError(c, err)
		return
	}
	c.JSON(http.StatusOK, f)
}

// GetFlow returns one flow.
func GetFlow(c *gin.Context) {
	f, err := FlowService.Get(c.Request.Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		respondFlowError(c, err)
		return
	}
	c.JSON(http.StatusOK, f)
}

// ListFlows returns the caller's recent flows.
func ListFlows(c *gin.Context) {
	flows, err := FlowService.ListByUser(c.Request.Context(), actorFrom(c))
	if err != nil {
		respondFlowError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"flows": flows})
}

// GetBookingDetails reads the reservation back from the supplier.
func GetBookingDetails(c *gin.Context) {
	details, err := FlowService.BookingDetails(c.Request.Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		respondFlowError(c, err)
		return
	}
	c.JSON(http.StatusOK, details)
}
