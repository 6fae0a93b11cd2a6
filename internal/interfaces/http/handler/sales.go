package handler

import (
	"github.com/gin-gonic/gin"
	appsales "github.com/hortifruti/backend/internal/application/sales"
)

// IdempotencyKeyHeader carries the client generated key of a checkout
const IdempotencyKeyHeader = "Idempotency-Key"

// maxIdempotencyKeyLength bounds the key stored per sale
const maxIdempotencyKeyLength = 255

// SaleHandler handles sale endpoints
type SaleHandler struct {
	BaseHandler
	recorder *appsales.Recorder
}

// NewSaleHandler creates a new SaleHandler
func NewSaleHandler(recorder *appsales.Recorder) *SaleHandler {
	return &SaleHandler{recorder: recorder}
}

// Record godoc
// @Summary      Record a completed checkout
// @Description  A repeated Idempotency-Key answers 200 with the sale of the first request
// @Tags         sales
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key header string false "Client generated key"
// @Param        request body appsales.RecordSaleRequest true "Cart"
// @Success      201 {object} dto.Response
// @Success      200 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Router       /sales [post]
func (h *SaleHandler) Record(c *gin.Context) {
	key := c.GetHeader(IdempotencyKeyHeader)
	if len(key) > maxIdempotencyKeyLength {
		h.BadRequest(c, "Idempotency-Key is too long")
		return
	}

	var req appsales.RecordSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.recorder.Record(c.Request.Context(), req, key)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if resp.Replayed {
		h.Success(c, resp)
		return
	}
	h.Created(c, resp)
}

// Get godoc
// @Summary      Get a sale
// @Tags         sales
// @Produce      json
// @Param        id path string true "Sale ID"
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Router       /sales/{id} [get]
func (h *SaleHandler) Get(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	resp, err := h.recorder.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// List godoc
// @Summary      List sales
// @Tags         sales
// @Produce      json
// @Param        from query string false "From date (YYYY-MM-DD)"
// @Param        to query string false "To date (YYYY-MM-DD)"
// @Success      200 {object} dto.Response
// @Router       /sales [get]
func (h *SaleHandler) List(c *gin.Context) {
	var req appsales.ListSalesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindError(c, err)
		return
	}
	items, total, err := h.recorder.List(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, items, total, req.Page, req.PageSize)
}
