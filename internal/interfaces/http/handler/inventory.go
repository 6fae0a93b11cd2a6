package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	appinv "github.com/hortifruti/backend/internal/application/inventory"
)

// InventoryHandler handles stock batch endpoints
type InventoryHandler struct {
	BaseHandler
	store    *appinv.BatchStore
	deductor *appinv.FIFODeductor
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(store *appinv.BatchStore, deductor *appinv.FIFODeductor) *InventoryHandler {
	return &InventoryHandler{store: store, deductor: deductor}
}

// ListBatches godoc
// @Summary      List batches with stock
// @Description  Earliest expiry first, batches without expiry last
// @Tags         inventory
// @Produce      json
// @Success      200 {object} dto.Response
// @Router       /inventory/batches [get]
func (h *InventoryHandler) ListBatches(c *gin.Context) {
	batches, err := h.store.ListBatches(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, batches)
}

// AddBatch godoc
// @Summary      Add a stock batch
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        request body appinv.AddBatchRequest true "Batch"
// @Success      201 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Router       /inventory/batches [post]
func (h *InventoryHandler) AddBatch(c *gin.Context) {
	var req appinv.AddBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	batch, err := h.store.AddBatch(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, batch)
}

// SetBatchQuantity godoc
// @Summary      Overwrite a batch quantity
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        id path string true "Batch ID"
// @Param        request body appinv.SetQuantityRequest true "Quantity"
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Router       /inventory/batches/{id}/quantity [put]
func (h *InventoryHandler) SetBatchQuantity(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req appinv.SetQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	batch, err := h.store.SetBatchQuantity(c.Request.Context(), id, req.Quantity)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, batch)
}

// ExpiringBatches godoc
// @Summary      Batches expiring soon
// @Tags         inventory
// @Produce      json
// @Param        days query int false "Window in days" default(3)
// @Success      200 {object} dto.Response
// @Router       /inventory/batches/expiring [get]
func (h *InventoryHandler) ExpiringBatches(c *gin.Context) {
	days := 3
	if raw := c.Query("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			h.BadRequest(c, "days must be an integer")
			return
		}
		days = n
	}

	batches, err := h.store.ExpiringWithin(c.Request.Context(), days)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, batches)
}

// ProductBatches godoc
// @Summary      Batches of a product in FIFO order
// @Tags         inventory
// @Produce      json
// @Param        id path string true "Product ID"
// @Success      200 {object} dto.Response
// @Router       /inventory/products/{id}/batches [get]
func (h *InventoryHandler) ProductBatches(c *gin.Context) {
	productID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	batches, err := h.store.BatchesForProduct(c.Request.Context(), productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, batches)
}

// ProductStock godoc
// @Summary      Total stock of a product
// @Tags         inventory
// @Produce      json
// @Param        id path string true "Product ID"
// @Success      200 {object} dto.Response
// @Router       /inventory/products/{id}/stock [get]
func (h *InventoryHandler) ProductStock(c *gin.Context) {
	productID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	stock, err := h.store.TotalStock(c.Request.Context(), productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stock)
}

// Deduct godoc
// @Summary      Deduct stock oldest batch first
// @Description  Answers 200 with satisfied=false when stock runs out
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        id path string true "Product ID"
// @Param        request body appinv.DeductRequest true "Quantity"
// @Success      200 {object} dto.Response
// @Router       /inventory/products/{id}/deduct [post]
func (h *InventoryHandler) Deduct(c *gin.Context) {
	productID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req appinv.DeductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.deductor.Deduct(c.Request.Context(), productID, req.Quantity)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
