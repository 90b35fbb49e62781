package petshopserver

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	orderhttpmapper "github.com/Apurer/petshop-orders-api/internal/domains/orders/adapters/http/mapper"
	"github.com/Apurer/petshop-orders-api/internal/domains/orders/domain"
	orderports "github.com/Apurer/petshop-orders-api/internal/domains/orders/ports"
	apierrors "github.com/Apurer/petshop-orders-api/internal/shared/errors"
	"github.com/Apurer/petshop-orders-api/internal/shared/pagination"
)

// IdempotencyKeyHeader carries the client's retry key on order submission.
const IdempotencyKeyHeader = "Idempotency-Key"

// OrderAPI implements the order endpoints.
type OrderAPI struct {
	service   orderports.Service
	placement orderports.PlacementOrchestrator
	now       func() time.Time
}

// NewOrderAPI wires dependencies. Creation goes through placement so it can
// run as a durable workflow.
func NewOrderAPI(service orderports.Service, placement orderports.PlacementOrchestrator) OrderAPI {
	return OrderAPI{service: service, placement: placement, now: time.Now}
}

// Post /api/orders
func (api *OrderAPI) CreateOrder(c *gin.Context) {
	var payload orderhttpmapper.CreateOrderRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondProblem(c, apierrors.ErrBadRequest.WithDetail(err.Error()))
		return
	}
	input := orderhttpmapper.ToCreateOrderInput(payload)
	input.IdempotencyKey = strings.TrimSpace(c.GetHeader(IdempotencyKeyHeader))
	order, err := api.placement.PlaceOrder(c.Request.Context(), input)
	if err != nil {
		if errors.Is(err, orderports.ErrIdempotencyConflict) {
			respondProblem(c, apierrors.ErrConflict.
				WithDetail("idempotency key was already used with a different request").
				WithExtension("idempotencyKey", input.IdempotencyKey))
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, orderhttpmapper.FromDomainOrder(order))
}

// Get /api/orders
func (api *OrderAPI) ListOrders(c *gin.Context) {
	filter, ok := parseListFilter(c)
	if !ok {
		return
	}
	page, err := api.service.ListOrders(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromOrderPage(page))
}

// Get /api/orders/my
func (api *OrderAPI) MyOrders(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		respondProblem(c, apierrors.ErrUnauthorized)
		return
	}
	filter, ok := parseListFilter(c)
	if !ok {
		return
	}
	filter.CustomerID = user.ID
	page, err := api.service.ListOrders(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromOrderPage(page))
}

// Get /api/orders/:id
func (api *OrderAPI) GetOrder(c *gin.Context) {
	id := c.Param("id")
	order, err := api.service.GetOrder(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, orderports.ErrNotFound) {
			respondProblem(c, apierrors.NewNotFoundProblem("order", id))
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromDomainOrder(order))
}

// Put /api/orders/:id/status
func (api *OrderAPI) UpdateStatus(c *gin.Context) {
	var payload orderhttpmapper.UpdateStatusRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondProblem(c, apierrors.ErrBadRequest.WithDetail(err.Error()))
		return
	}
	if strings.TrimSpace(payload.Status) == "" {
		respondProblem(c, apierrors.NewValidationProblem(map[string]string{"status": "is required"}))
		return
	}
	order, err := api.service.UpdateStatus(c.Request.Context(), c.Param("id"), domain.Status(payload.Status))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromDomainOrder(order))
}

// Put /api/orders/:id/payment
func (api *OrderAPI) UpdatePayment(c *gin.Context) {
	var payload orderhttpmapper.UpdatePaymentRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondProblem(c, apierrors.ErrBadRequest.WithDetail(err.Error()))
		return
	}
	order, err := api.service.UpdatePayment(c.Request.Context(), c.Param("id"), orderhttpmapper.ToUpdatePaymentInput(payload))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromDomainOrder(order))
}

// Get /api/orders/revenue
func (api *OrderAPI) Revenue(c *gin.Context) {
	now := api.now()
	year := now.Year()
	if raw := strings.TrimSpace(c.Query("year")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 9999 {
			respondProblem(c, apierrors.NewValidationProblem(map[string]string{"year": "must be a calendar year"}))
			return
		}
		year = parsed
	}
	ctx := c.Request.Context()
	months, err := api.service.MonthlyRevenue(ctx, year)
	if err != nil {
		respondError(c, err)
		return
	}
	change, err := api.service.MonthOverMonth(ctx, now)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromRevenue(year, months, change))
}

// Get /api/orders/stats
func (api *OrderAPI) Stats(c *gin.Context) {
	stats, err := api.service.Stats(c.Request.Context(), api.now())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromStats(stats))
}

// parseListFilter reads status, paymentStatus, page and limit. On a malformed
// value it writes the 400 itself and reports false.
func parseListFilter(c *gin.Context) (orderports.ListFilter, bool) {
	var filter orderports.ListFilter
	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		status := domain.Status(strings.ToLower(raw))
		filter.Status = &status
	}
	if raw := strings.TrimSpace(c.Query("paymentStatus")); raw != "" {
		payment := domain.PaymentStatus(strings.ToLower(raw))
		filter.PaymentStatus = &payment
	}
	fields := map[string]string{}
	filter.Page = queryInt(c, "page", fields)
	filter.PageSize = queryInt(c, "limit", fields)
	if len(fields) > 0 {
		respondProblem(c, apierrors.NewValidationProblem(fields))
		return orderports.ListFilter{}, false
	}
	filter.Request = filter.Request.Normalize()
	return filter, true
}

func queryInt(c *gin.Context, key string, fields map[string]string) int {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return 0
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		fields[key] = fmt.Sprintf("must be a positive integer, got %q", raw)
		return 0
	}
	if key == "limit" && v > pagination.MaxPageSize {
		return pagination.MaxPageSize
	}
	return v
}
