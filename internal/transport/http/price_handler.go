package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/light-bringer/pricing-service/internal/app/price/domain"
	"github.com/light-bringer/pricing-service/internal/app/price/queries/get_effective_price"
	"github.com/light-bringer/pricing-service/internal/app/price/queries/list_price_changes"
	"github.com/light-bringer/pricing-service/internal/app/price/queries/list_price_timeline"
	"github.com/light-bringer/pricing-service/internal/app/price/usecases/cancel_future_price"
	"github.com/light-bringer/pricing-service/internal/app/price/usecases/sync_price"
	"github.com/light-bringer/pricing-service/internal/app/price/usecases/validate_price"
	"github.com/light-bringer/pricing-service/internal/pkg/logger"
)

// UserIDHeader carries the acting user on write requests.
const UserIDHeader = "X-User-ID"

// Use case and query ports the handler depends on.
type (
	SyncPrice interface {
		Execute(ctx context.Context, req *sync_price.Request) (*sync_price.Result, error)
	}
	ValidatePrice interface {
		Execute(ctx context.Context, req *validate_price.Request) (*validate_price.Result, error)
	}
	CancelFuturePrice interface {
		Execute(ctx context.Context, req *cancel_future_price.Request) (*cancel_future_price.Result, error)
	}
	GetEffectivePrice interface {
		Execute(ctx context.Context, req *get_effective_price.Request) (*get_effective_price.Result, error)
	}
	ListPriceTimeline interface {
		Execute(ctx context.Context, req *list_price_timeline.Request) (*list_price_timeline.Result, error)
	}
	ListPriceChanges interface {
		Execute(ctx context.Context, req *list_price_changes.Request) ([]domain.ChangeLogEntry, error)
	}
)

// PriceHandler serves the price API.
type PriceHandler struct {
	sync      SyncPrice
	validate  ValidatePrice
	cancel    CancelFuturePrice
	effective GetEffectivePrice
	timeline  ListPriceTimeline
	changes   ListPriceChanges
}

// NewPriceHandler creates a new price handler.
func NewPriceHandler(
	sync SyncPrice,
	validate ValidatePrice,
	cancel CancelFuturePrice,
	effective GetEffectivePrice,
	timeline ListPriceTimeline,
	changes ListPriceChanges,
) *PriceHandler {
	return &PriceHandler{
		sync:      sync,
		validate:  validate,
		cancel:    cancel,
		effective: effective,
		timeline:  timeline,
		changes:   changes,
	}
}

// RegisterRoutes mounts the price routes under /products/:product_id.
func (h *PriceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	products := rg.Group("/products/:product_id")
	products.POST("/prices", h.SyncPrice)
	products.POST("/prices/validate", h.ValidatePrice)
	products.DELETE("/prices/future", h.CancelFuturePrice)
	products.GET("/prices/effective", h.GetEffectivePrice)
	products.GET("/prices", h.ListPriceTimeline)
	products.GET("/price-changes", h.ListPriceChanges)
}

// SyncPrice handles POST /products/:product_id/prices.
func (h *PriceHandler) SyncPrice(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var body SyncPriceRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		respondBindError(c, err)
		return
	}
	fields, err := toFields(body.Fields)
	if err != nil {
		respondError(c, err)
		return
	}

	res, err := h.sync.Execute(c.Request.Context(), &sync_price.Request{
		ProductID:       c.Param("product_id"),
		OrganizationID:  body.OrganizationID,
		Fields:          fields,
		ExchangeRate:    body.ExchangeRate,
		EffectiveFrom:   body.EffectiveFrom,
		ChangeReason:    body.ChangeReason,
		ChangedBy:       actor,
		Source:          body.Source,
		ExpectedVersion: body.ExpectedVersion,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	status := http.StatusCreated
	if res.NoOp {
		status = http.StatusOK
	}
	c.JSON(status, Response{Success: true, Data: toSyncResponse(res)})
}

// ValidatePrice handles POST /products/:product_id/prices/validate.
func (h *PriceHandler) ValidatePrice(c *gin.Context) {
	var body ValidatePriceRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		respondBindError(c, err)
		return
	}
	fields, err := toFields(body.Fields)
	if err != nil {
		respondError(c, err)
		return
	}

	res, err := h.validate.Execute(c.Request.Context(), &validate_price.Request{
		ProductID:      c.Param("product_id"),
		OrganizationID: body.OrganizationID,
		Fields:         fields,
		ExchangeRate:   body.ExchangeRate,
		EffectiveFrom:  body.EffectiveFrom,
		ChangeReason:   body.ChangeReason,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: &ValidatePriceResponse{
		IsValid:       res.IsValid,
		Errors:        res.Errors,
		Warnings:      res.Warnings,
		EffectiveFrom: res.EffectiveFrom,
		Bootstrapped:  res.Bootstrapped,
		Version:       res.Version,
	}})
}

// CancelFuturePrice handles DELETE /products/:product_id/prices/future.
func (h *PriceHandler) CancelFuturePrice(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var q CancelFutureQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindError(c, err)
		return
	}

	if _, err := h.cancel.Execute(c.Request.Context(), &cancel_future_price.Request{
		ProductID:       c.Param("product_id"),
		OrganizationID:  optionalString(q.OrganizationID),
		CancelledBy:     actor,
		Reason:          q.Reason,
		ExpectedVersion: q.ExpectedVersion,
	}); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetEffectivePrice handles GET /products/:product_id/prices/effective.
func (h *PriceHandler) GetEffectivePrice(c *gin.Context) {
	var q EffectivePriceQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindError(c, err)
		return
	}
	req := &get_effective_price.Request{
		ProductID:      c.Param("product_id"),
		OrganizationID: optionalString(q.OrganizationID),
	}
	if q.At != "" {
		at, err := time.Parse(time.RFC3339Nano, q.At)
		if err != nil {
			respondBindError(c, err)
			return
		}
		req.At = &at
	}

	res, err := h.effective.Execute(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: &EffectivePriceResponse{
		At:       res.At,
		Interval: toIntervalResponse(res.Interval),
	}})
}

// ListPriceTimeline handles GET /products/:product_id/prices.
func (h *PriceHandler) ListPriceTimeline(c *gin.Context) {
	var q ScopeQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindError(c, err)
		return
	}

	res, err := h.timeline.Execute(c.Request.Context(), &list_price_timeline.Request{
		ProductID:      c.Param("product_id"),
		OrganizationID: optionalString(q.OrganizationID),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	resp := &TimelineResponse{
		ProductID:      res.Scope.ProductID(),
		OrganizationID: res.Scope.OrganizationIDPtr(),
		Intervals:      make([]*PriceIntervalResponse, 0, len(res.Intervals)),
	}
	for _, iv := range res.Intervals {
		resp.Intervals = append(resp.Intervals, toIntervalResponse(iv))
	}
	if res.Current != nil {
		resp.CurrentID = res.Current.ID
	}
	if res.Pending != nil {
		resp.PendingID = res.Pending.ID
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: resp})
}

// ListPriceChanges handles GET /products/:product_id/price-changes.
func (h *PriceHandler) ListPriceChanges(c *gin.Context) {
	var q ChangeLogQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindError(c, err)
		return
	}

	entries, err := h.changes.Execute(c.Request.Context(), &list_price_changes.Request{
		ProductID: c.Param("product_id"),
		Limit:     q.Limit,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: toChangeLogResponses(entries)})
}

func requireActor(c *gin.Context) (string, bool) {
	actor := strings.TrimSpace(c.GetHeader(UserIDHeader))
	if actor == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, Response{
			Success: false,
			Error: &ErrorInfo{
				Code:    ErrCodeBadRequest,
				Message: UserIDHeader + " header is required",
			},
			RequestID: logger.RequestID(c.Request.Context()),
		})
		return "", false
	}
	return actor, true
}
