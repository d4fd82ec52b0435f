package api

import (
	"errors"
	"net/http"
	"strconv"

	reqdto "wasteops/internal/handler/dto/request"
	resdto "wasteops/internal/handler/dto/response"
	"wasteops/internal/handler/httperr"
	"wasteops/internal/handler/middleware"
	"wasteops/internal/usecase/commands"
	"wasteops/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type RequestHandler struct {
	commands commands.RequestCommands
	queries  queries.RequestQueries
}

func NewRequestHandler(cmds commands.RequestCommands, qs queries.RequestQueries) *RequestHandler {
	return &RequestHandler{
		commands: cmds,
		queries:  qs,
	}
}

// @Summary Submit wizard step
// @Description Validate and apply one step of the service request wizard
// @Tags requests
// @Accept json
// @Produce json
// @Param step path int true "Step number (1-3)"
// @Param X-Guest-Key header string false "Guest key when not authenticated"
// @Param request body reqdto.SubmitStepRequest true "Step payload"
// @Success 200 {object} resdto.StepResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 422 {object} httperr.Response
// @Failure 428 {object} httperr.Response
// @Router /requests/steps/{step} [post]
func (h *RequestHandler) SubmitStep(c *gin.Context) {
	actor := middleware.GetActor(c)
	if actor.UserID == nil && actor.GuestKey == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Guest key or authentication required",
		})
		return
	}

	step, err := strconv.Atoi(c.Param("step"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid step number",
		})
		return
	}

	var req reqdto.SubmitStepRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	result, err := h.commands.SubmitStep(c.Request.Context(), step, req, actor)
	if err != nil {
		h.abortCommandError(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.FromStepResult(result))
}

// @Summary Capture contact details
// @Description Provide contact details for a submission parked on identity capture
// @Tags requests
// @Accept json
// @Produce json
// @Param id path string true "Request ID"
// @Param request body reqdto.CaptureContactRequest true "Contact details"
// @Success 200 {object} resdto.StepResponse
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 422 {object} httperr.Response
// @Router /requests/{id}/contact [post]
func (h *RequestHandler) CaptureContact(c *gin.Context) {
	requestID, ok := h.requestID(c)
	if !ok {
		return
	}

	var req reqdto.CaptureContactRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	result, err := h.commands.CaptureContact(c.Request.Context(), requestID, req, middleware.GetActor(c))
	if err != nil {
		h.abortCommandError(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.FromStepResult(result))
}

// @Summary Select forecast price
// @Description Record a forecast cell choice on the draft
// @Tags requests
// @Accept json
// @Produce json
// @Param id path string true "Request ID"
// @Param request body reqdto.SelectPriceRequest true "Selected cell"
// @Success 200 {object} resdto.StepResponse
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 422 {object} httperr.Response
// @Router /requests/{id}/selection [post]
func (h *RequestHandler) SelectPrice(c *gin.Context) {
	requestID, ok := h.requestID(c)
	if !ok {
		return
	}

	var req reqdto.SelectPriceRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	result, err := h.commands.SelectPrice(c.Request.Context(), requestID, req, middleware.GetActor(c))
	if err != nil {
		h.abortCommandError(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.FromStepResult(result))
}

// @Summary Discard forecast
// @Description Drop the forecast and return to the schedule step, keeping the request id
// @Tags requests
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} resdto.StepResponse
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /requests/{id}/selection [delete]
func (h *RequestHandler) DiscardForecast(c *gin.Context) {
	requestID, ok := h.requestID(c)
	if !ok {
		return
	}

	result, err := h.commands.DiscardForecast(c.Request.Context(), requestID, middleware.GetActor(c))
	if err != nil {
		h.abortCommandError(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.FromStepResult(result))
}

// @Summary Confirm booking
// @Description Finalize the booking for the selected forecast cell
// @Tags requests
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} resdto.ConfirmResponse
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /requests/{id}/confirm [post]
func (h *RequestHandler) Confirm(c *gin.Context) {
	requestID, ok := h.requestID(c)
	if !ok {
		return
	}

	result, err := h.commands.Confirm(c.Request.Context(), requestID, middleware.GetActor(c))
	if err != nil {
		h.abortCommandError(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.FromConfirmResult(result))
}

// @Summary Get request
// @Description Get the full request state, owner only
// @Tags requests
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} queries.RequestView
// @Failure 404 {object} map[string]string
// @Router /requests/{id} [get]
func (h *RequestHandler) GetRequest(c *gin.Context) {
	requestID, ok := h.requestID(c)
	if !ok {
		return
	}

	actor := middleware.GetActor(c)
	view, err := h.queries.GetRequest(c.Request.Context(), requestID, actor.UserID, actor.GuestKey)
	if err != nil {
		if errors.Is(err, queries.ErrRequestNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Request not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	c.JSON(http.StatusOK, view)
}

// @Summary List my requests
// @Description List the authenticated user's service requests
// @Tags requests
// @Security BearerAuth
// @Produce json
// @Success 200 {array} queries.RequestListItem
// @Failure 401 {object} map[string]string
// @Router /requests [get]
func (h *RequestHandler) ListRequests(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated",
		})
		return
	}

	items, err := h.queries.GetUserRequests(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}
	if items == nil {
		items = []*queries.RequestListItem{}
	}

	c.JSON(http.StatusOK, items)
}

func (h *RequestHandler) requestID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request ID",
		})
		return uuid.Nil, false
	}
	return id, true
}

func (h *RequestHandler) abortCommandError(c *gin.Context, err error) {
	var validationErr *commands.ValidationError
	if errors.As(err, &validationErr) {
		httperr.AbortWithError(c, http.StatusUnprocessableEntity, err, "Validation failed", validationErr.Fields)
		return
	}

	switch {
	case errors.Is(err, commands.ErrContactDetailsRequired):
		httperr.AbortWithCode(c, http.StatusPreconditionRequired, err,
			"contact_details_required", "Contact details required to continue", nil)
	case errors.Is(err, commands.ErrRequestNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Request not found",
		})
	case errors.Is(err, commands.ErrRequestIDRequired),
		errors.Is(err, commands.ErrUnknownStep):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
	case errors.Is(err, commands.ErrStepOutOfOrder):
		c.JSON(http.StatusConflict, gin.H{
			"error": "Earlier steps must be completed first",
		})
	case errors.Is(err, commands.ErrSubmissionInFlight):
		c.JSON(http.StatusConflict, gin.H{
			"error": "A submission is already being processed",
		})
	case errors.Is(err, commands.ErrContactCapturePending):
		c.JSON(http.StatusConflict, gin.H{
			"error": "Contact capture is pending for this request",
		})
	case errors.Is(err, commands.ErrNoCapturePending):
		c.JSON(http.StatusConflict, gin.H{
			"error": "No contact capture is pending",
		})
	case errors.Is(err, commands.ErrSelectionInvalid):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": "Selection does not match the current forecast",
		})
	case errors.Is(err, commands.ErrForecastUnavailable):
		c.JSON(http.StatusBadGateway, gin.H{
			"error": "Price forecast is unavailable",
		})
	case errors.Is(err, commands.ErrIllegalState):
		c.JSON(http.StatusConflict, gin.H{
			"error": "Operation not allowed in the current state",
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
	}
}
