package handlers

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/yungbote/vowbridge-backend/internal/http/response"
	registrymod "github.com/yungbote/vowbridge-backend/internal/modules/registry"
	"github.com/yungbote/vowbridge-backend/internal/platform/logger"
)

const maxWebhookBytes = 1 << 20

type RegistryHandler struct {
	log      *logger.Logger
	registry registrymod.Usecases
}

func NewRegistryHandler(log *logger.Logger, registry registrymod.Usecases) *RegistryHandler {
	return &RegistryHandler{log: log.With("handler", "RegistryHandler"), registry: registry}
}

type createItemRequest struct {
	EventID      uuid.UUID       `json:"eventId"`
	ProductID    uuid.UUID       `json:"productId"`
	TargetAmount decimal.Decimal `json:"targetAmount"`
	Priority     string          `json:"priority"`
	IsPublic     *bool           `json:"isPublic"`
}

// POST /api/registry-items
func (h *RegistryHandler) CreateItem(c *gin.Context) {
	userID, ok := requireCaller(c)
	if !ok {
		return
	}
	var req createItemRequest
	if !bindJSON(c, &req) {
		return
	}
	view, err := h.registry.CreateItem(c.Request.Context(), registrymod.CreateItemInput{
		OwnerID:      userID,
		EventID:      req.EventID,
		ProductID:    req.ProductID,
		TargetAmount: req.TargetAmount,
		Priority:     req.Priority,
		IsPublic:     req.IsPublic,
	})
	if err != nil {
		respondErr(c, err, "create_registry_item_failed")
		return
	}
	response.RespondCreated(c, view)
}

type updateItemRequest struct {
	TargetAmount *decimal.Decimal `json:"targetAmount"`
	Priority     *string          `json:"priority"`
	IsPublic     *bool            `json:"isPublic"`
	IsPurchased  *bool            `json:"isPurchased"`
}

// PATCH /api/registry-items/:id
func (h *RegistryHandler) UpdateItem(c *gin.Context) {
	userID, ok := requireCaller(c)
	if !ok {
		return
	}
	itemID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req updateItemRequest
	if !bindJSON(c, &req) {
		return
	}
	view, err := h.registry.UpdateItem(c.Request.Context(), registrymod.UpdateItemInput{
		OwnerID:      userID,
		ItemID:       itemID,
		TargetAmount: req.TargetAmount,
		Priority:     req.Priority,
		IsPublic:     req.IsPublic,
		IsPurchased:  req.IsPurchased,
	})
	if err != nil {
		respondErr(c, err, "update_registry_item_failed")
		return
	}
	response.RespondOK(c, view)
}

// GET /api/events/:id/registry
func (h *RegistryHandler) ListRegistry(c *gin.Context) {
	eventID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	rows, err := h.registry.ListRegistry(c.Request.Context(), eventID)
	if err != nil {
		respondErr(c, err, "list_registry_failed")
		return
	}
	response.RespondOK(c, rows)
}

// GET /api/registry-items/:id
func (h *RegistryHandler) GetItem(c *gin.Context) {
	itemID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	view, err := h.registry.GetItem(c.Request.Context(), callerID(c), itemID)
	if err != nil {
		respondErr(c, err, "load_registry_item_failed")
		return
	}
	response.RespondOK(c, view)
}

type contributeRequest struct {
	RegistryItemID   uuid.UUID       `json:"registryItemId"`
	Amount           decimal.Decimal `json:"amount"`
	ContributorEmail string          `json:"contributorEmail"`
	ContributorName  string          `json:"contributorName"`
	Message          string          `json:"message"`
	IsAnonymous      bool            `json:"isAnonymous"`
}

// POST /api/contributions
func (h *RegistryHandler) Contribute(c *gin.Context) {
	var req contributeRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.registry.Contribute(c.Request.Context(), registrymod.ContributeInput{
		ItemID:         req.RegistryItemID,
		Amount:         req.Amount,
		Email:          req.ContributorEmail,
		Name:           req.ContributorName,
		Message:        req.Message,
		IsAnonymous:    req.IsAnonymous,
		IdempotencyKey: c.GetHeader("Idempotency-Key"),
	})
	if err != nil {
		respondErr(c, err, "contribute_failed")
		return
	}
	status := http.StatusCreated
	if res.Replayed {
		status = http.StatusOK
	}
	c.JSON(status, res)
}

// GET /api/registry-items/:id/contributions
func (h *RegistryHandler) ListContributions(c *gin.Context) {
	itemID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	rows, err := h.registry.ListContributions(c.Request.Context(), callerID(c), itemID)
	if err != nil {
		respondErr(c, err, "list_contributions_failed")
		return
	}
	response.RespondOK(c, rows)
}

type paymentIntentRequest struct {
	Amount      decimal.Decimal   `json:"amount"`
	Email       string            `json:"email"`
	Description string            `json:"description"`
	Metadata    map[string]string `json:"metadata"`
}

// POST /api/create-payment-intent
func (h *RegistryHandler) CreatePaymentIntent(c *gin.Context) {
	var req paymentIntentRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.registry.CreatePaymentIntent(c.Request.Context(), registrymod.PaymentIntentInput{
		Amount:         req.Amount,
		Email:          req.Email,
		Description:    req.Description,
		IdempotencyKey: c.GetHeader("Idempotency-Key"),
		Metadata:       req.Metadata,
	})
	if err != nil {
		respondErr(c, err, "create_payment_intent_failed")
		return
	}
	response.RespondOK(c, res)
}

// POST /api/webhooks/stripe
func (h *RegistryHandler) StripeWebhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBytes))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	res, err := h.registry.HandleWebhook(c.Request.Context(), payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		respondErr(c, err, "webhook_failed")
		return
	}
	response.RespondOK(c, res)
}

// GET /api/events/:id/registry/qr?size=
func (h *RegistryHandler) RegistryQR(c *gin.Context) {
	eventID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	size, _ := strconv.Atoi(c.Query("size"))
	png, err := h.registry.RegistryQR(c.Request.Context(), eventID, size)
	if err != nil {
		respondErr(c, err, "render_qr_failed")
		return
	}
	c.Header("Cache-Control", "public, max-age=3600")
	c.Data(http.StatusOK, "image/png", png)
}

// GET /api/events/:id/registry/card
func (h *RegistryHandler) RegistryCard(c *gin.Context) {
	eventID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	png, err := h.registry.RegistryCard(c.Request.Context(), eventID)
	if err != nil {
		respondErr(c, err, "render_card_failed")
		return
	}
	c.Header("Cache-Control", "public, max-age=600")
	c.Data(http.StatusOK, "image/png", png)
}
