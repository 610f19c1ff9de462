package balance

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/fairshare-app/fairshare/pkg/response"
)

// Handler handles HTTP requests for balance and settlement operations
type Handler struct {
	service *Service
}

// NewHandler creates a new balance handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for balance endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/user/{userId}/group/{groupId}", h.UserSummary)
	r.Get("/group/{groupId}", h.GroupBalances)
	r.Post("/settle", h.Settle)
	r.Get("/settlements/group/{groupId}", h.History)

	return r
}

// UserSummary handles GET /balances/user/{userId}/group/{groupId}
// @Summary      Get a user's balance summary in a group
// @Description  What the user owes, what they are owed, and their net balance
// @Tags         balances
// @Produce      json
// @Param        userId path int true "User ID"
// @Param        groupId path int true "Group ID"
// @Success      200 {object} response.APIResponse{data=ledger.Summary}
// @Router       /balances/user/{userId}/group/{groupId} [get]
func (h *Handler) UserSummary(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userId"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid user ID")
		return
	}
	groupID, err := strconv.ParseInt(chi.URLParam(r, "groupId"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid group ID")
		return
	}

	summary, err := h.service.UserSummary(r.Context(), groupID, userID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, summary)
}

// GroupBalances handles GET /balances/group/{groupId}
// @Summary      Get all balances in a group
// @Description  Every user's balances plus the simplified payoff transactions
// @Tags         balances
// @Produce      json
// @Param        groupId path int true "Group ID"
// @Success      200 {object} response.APIResponse{data=GroupBalancesResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /balances/group/{groupId} [get]
func (h *Handler) GroupBalances(w http.ResponseWriter, r *http.Request) {
	groupID, err := strconv.ParseInt(chi.URLParam(r, "groupId"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid group ID")
		return
	}

	balances, err := h.service.GroupBalances(r.Context(), groupID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, balances)
}

// Settle handles POST /balances/settle
// @Summary      Settle a debt between two users
// @Description  Pay down an existing debt; the payment may not exceed the owed amount or invert the debt
// @Tags         balances
// @Accept       json
// @Produce      json
// @Param        request body SettleRequest true "Settlement request"
// @Success      200 {object} response.APIResponse{data=SettleResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /balances/settle [post]
func (h *Handler) Settle(w http.ResponseWriter, r *http.Request) {
	var req SettleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if req.GroupID == 0 || req.PayerID == 0 || req.PayeeID == 0 {
		response.BadRequest(w, "group_id, payer_id, and payee_id are required")
		return
	}

	resp, err := h.service.Settle(r.Context(), &req)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, resp)
}

// History handles GET /balances/settlements/group/{groupId}
// @Summary      Get settlement history for a group
// @Tags         balances
// @Produce      json
// @Param        groupId path int true "Group ID"
// @Success      200 {object} response.APIResponse{data=[]SettlementRecord}
// @Failure      404 {object} response.APIResponse
// @Router       /balances/settlements/group/{groupId} [get]
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	groupID, err := strconv.ParseInt(chi.URLParam(r, "groupId"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid group ID")
		return
	}

	records, err := h.service.History(r.Context(), groupID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, records)
}
