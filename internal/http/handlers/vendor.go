package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/yungbote/vowbridge-backend/internal/http/response"
	vendorsmod "github.com/yungbote/vowbridge-backend/internal/modules/vendors"
	"github.com/yungbote/vowbridge-backend/internal/platform/logger"
)

type VendorHandler struct {
	log     *logger.Logger
	vendors vendorsmod.Usecases
}

func NewVendorHandler(log *logger.Logger, vendors vendorsmod.Usecases) *VendorHandler {
	return &VendorHandler{log: log.With("handler", "VendorHandler"), vendors: vendors}
}

type createVendorRequest struct {
	BusinessName  string           `json:"businessName"`
	Description   string           `json:"description"`
	Category      string           `json:"category"`
	Location      string           `json:"location"`
	Website       string           `json:"website"`
	Phone         string           `json:"phone"`
	StartingPrice *decimal.Decimal `json:"startingPrice"`
}

// POST /api/vendors
func (h *VendorHandler) CreateVendor(c *gin.Context) {
	userID, ok := requireCaller(c)
	if !ok {
		return
	}
	var req createVendorRequest
	if !bindJSON(c, &req) {
		return
	}
	v, err := h.vendors.CreateVendor(c.Request.Context(), vendorsmod.CreateVendorInput{
		UserID:        userID,
		BusinessName:  req.BusinessName,
		Description:   req.Description,
		Category:      req.Category,
		Location:      req.Location,
		Website:       req.Website,
		Phone:         req.Phone,
		StartingPrice: req.StartingPrice,
	})
	if err != nil {
		respondErr(c, err, "create_vendor_failed")
		return
	}
	response.RespondCreated(c, v)
}

// GET /api/vendors?category=&location=
func (h *VendorHandler) ListVendors(c *gin.Context) {
	rows, err := h.vendors.ListVendors(c.Request.Context(), vendorsmod.VendorQuery{
		Category: c.Query("category"),
		Location: c.Query("location"),
	})
	if err != nil {
		respondErr(c, err, "list_vendors_failed")
		return
	}
	response.RespondOK(c, rows)
}

// GET /api/vendors/:id
func (h *VendorHandler) GetVendor(c *gin.Context) {
	vendorID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	v, err := h.vendors.GetVendor(c.Request.Context(), vendorID)
	if err != nil {
		respondErr(c, err, "load_vendor_failed")
		return
	}
	response.RespondOK(c, v)
}

// GET /api/my-vendor
func (h *VendorHandler) MyVendor(c *gin.Context) {
	userID, ok := requireCaller(c)
	if !ok {
		return
	}
	v, err := h.vendors.MyVendor(c.Request.Context(), userID)
	if err != nil {
		respondErr(c, err, "load_vendor_failed")
		return
	}
	response.RespondOK(c, v)
}

type reviewRequest struct {
	EventID *uuid.UUID `json:"eventId"`
	Rating  int        `json:"rating"`
	Title   string     `json:"title"`
	Comment string     `json:"comment"`
}

// POST /api/vendors/:id/reviews
func (h *VendorHandler) AddReview(c *gin.Context) {
	userID, ok := requireCaller(c)
	if !ok {
		return
	}
	vendorID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req reviewRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.vendors.AddReview(c.Request.Context(), vendorsmod.AddReviewInput{
		UserID:   userID,
		VendorID: vendorID,
		EventID:  req.EventID,
		Rating:   req.Rating,
		Title:    req.Title,
		Comment:  req.Comment,
	})
	if err != nil {
		respondErr(c, err, "add_review_failed")
		return
	}
	response.RespondCreated(c, res)
}

// GET /api/vendors/:id/reviews
func (h *VendorHandler) ListReviews(c *gin.Context) {
	vendorID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	rows, err := h.vendors.ListReviews(c.Request.Context(), vendorID)
	if err != nil {
		respondErr(c, err, "list_reviews_failed")
		return
	}
	response.RespondOK(c, rows)
}

// POST /api/vendors/:id/portfolio (multipart: image, caption)
func (h *VendorHandler) AddPortfolioItem(c *gin.Context) {
	userID, ok := requireCaller(c)
	if !ok {
		return
	}
	vendorID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	limit := h.vendors.MaxUploadBytes()
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit+(1<<20))

	fh, err := c.FormFile("image")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			response.RespondError(c, http.StatusBadRequest, "image_too_large", fmt.Errorf("image must be at most %d bytes", limit))
			return
		}
		response.RespondError(c, http.StatusBadRequest, "missing_image", errors.New("multipart field \"image\" is required"))
		return
	}
	if fh.Size > limit {
		response.RespondError(c, http.StatusBadRequest, "image_too_large", fmt.Errorf("image must be at most %d bytes", limit))
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_image", err)
		return
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_image", err)
		return
	}

	item, err := h.vendors.AddPortfolioItem(c.Request.Context(), vendorsmod.AddPortfolioInput{
		UserID:      userID,
		VendorID:    vendorID,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
		Caption:     c.PostForm("caption"),
	})
	if err != nil {
		respondErr(c, err, "add_portfolio_item_failed")
		return
	}
	response.RespondCreated(c, item)
}

// GET /api/vendors/:id/portfolio
func (h *VendorHandler) ListPortfolio(c *gin.Context) {
	vendorID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	rows, err := h.vendors.ListPortfolio(c.Request.Context(), vendorID)
	if err != nil {
		respondErr(c, err, "list_portfolio_failed")
		return
	}
	response.RespondOK(c, rows)
}

type bookingRequest struct {
	EventID     uuid.UUID `json:"eventId"`
	ServiceDate string    `json:"serviceDate"`
	Duration    *int      `json:"duration"`
	Notes       string    `json:"notes"`
}

// POST /api/vendors/:id/bookings
func (h *VendorHandler) CreateBooking(c *gin.Context) {
	userID, ok := requireCaller(c)
	if !ok {
		return
	}
	vendorID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req bookingRequest
	if !bindJSON(c, &req) {
		return
	}
	date, err := parseTime(req.ServiceDate)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_service_date", err)
		return
	}
	b, err := h.vendors.CreateBooking(c.Request.Context(), vendorsmod.CreateBookingInput{
		UserID:      userID,
		VendorID:    vendorID,
		EventID:     req.EventID,
		ServiceDate: date,
		Duration:    req.Duration,
		Notes:       req.Notes,
	})
	if err != nil {
		respondErr(c, err, "create_booking_failed")
		return
	}
	response.RespondCreated(c, b)
}

// GET /api/my-bookings
func (h *VendorHandler) MyBookings(c *gin.Context) {
	userID, ok := requireCaller(c)
	if !ok {
		return
	}
	rows, err := h.vendors.MyBookings(c.Request.Context(), userID)
	if err != nil {
		respondErr(c, err, "list_bookings_failed")
		return
	}
	response.RespondOK(c, rows)
}

type bookingStatusRequest struct {
	Status         string           `json:"status"`
	ExpectedStatus string           `json:"expectedStatus"`
	Price          *decimal.Decimal `json:"price"`
}

// PATCH /api/bookings/:id/status
func (h *VendorHandler) UpdateBookingStatus(c *gin.Context) {
	userID, ok := requireCaller(c)
	if !ok {
		return
	}
	bookingID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req bookingStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	b, err := h.vendors.UpdateBookingStatus(c.Request.Context(), vendorsmod.UpdateBookingStatusInput{
		UserID:         userID,
		BookingID:      bookingID,
		Status:         req.Status,
		ExpectedStatus: req.ExpectedStatus,
		Price:          req.Price,
	})
	if err != nil {
		respondErr(c, err, "update_booking_status_failed")
		return
	}
	response.RespondOK(c, b)
}
