package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	apppurchasing "github.com/hortifruti/backend/internal/application/purchasing"
	"github.com/hortifruti/backend/internal/infrastructure/export"
)

// ClosingHandler handles the receiving and closing screen of purchase orders
type ClosingHandler struct {
	BaseHandler
	service *apppurchasing.ClosingService
}

// NewClosingHandler creates a new ClosingHandler
func NewClosingHandler(service *apppurchasing.ClosingService) *ClosingHandler {
	return &ClosingHandler{service: service}
}

// bind reads the order ID and the closing inputs. An empty body is a
// preview with the order values.
func (h *ClosingHandler) bind(c *gin.Context) (uuid.UUID, apppurchasing.ClosingRequest, bool) {
	var req apppurchasing.ClosingRequest
	id, ok := h.ParseID(c, "id")
	if !ok {
		return uuid.Nil, req, false
	}
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BindError(c, err)
			return uuid.Nil, req, false
		}
	}
	return id, req, true
}

// Preview godoc
// @Summary      Compute the closing sheet without persisting it
// @Tags         purchase-orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Purchase order ID"
// @Param        request body apppurchasing.ClosingRequest false "Receiving inputs"
// @Success      200 {object} dto.Response
// @Router       /purchase-orders/{id}/closing/preview [post]
func (h *ClosingHandler) Preview(c *gin.Context) {
	id, req, ok := h.bind(c)
	if !ok {
		return
	}
	sheet, err := h.service.Preview(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sheet)
}

// Approve godoc
// @Summary      Approve the receipt
// @Description  Persists received quantities, reprices products, creates batches and closes the order
// @Tags         purchase-orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Purchase order ID"
// @Param        request body apppurchasing.ClosingRequest false "Receiving inputs"
// @Success      200 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Router       /purchase-orders/{id}/closing/approve [post]
func (h *ClosingHandler) Approve(c *gin.Context) {
	id, req, ok := h.bind(c)
	if !ok {
		return
	}
	resp, err := h.service.Approve(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// PDF godoc
// @Summary      Closing sheet as PDF
// @Tags         purchase-orders
// @Accept       json
// @Produce      application/pdf
// @Param        id path string true "Purchase order ID"
// @Success      200 {file} binary
// @Router       /purchase-orders/{id}/closing/pdf [post]
func (h *ClosingHandler) PDF(c *gin.Context) {
	id, req, ok := h.bind(c)
	if !ok {
		return
	}
	data, err := h.service.ExportPDF(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`inline; filename="fechamento-%s.pdf"`, id))
	c.Data(http.StatusOK, export.PDFContentType, data)
}

// WhatsApp godoc
// @Summary      Closing summary as a WhatsApp message
// @Tags         purchase-orders
// @Accept       json
// @Produce      text/plain
// @Param        id path string true "Purchase order ID"
// @Success      200 {string} string
// @Router       /purchase-orders/{id}/closing/whatsapp [post]
func (h *ClosingHandler) WhatsApp(c *gin.Context) {
	id, req, ok := h.bind(c)
	if !ok {
		return
	}
	text, err := h.service.WhatsAppText(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.String(http.StatusOK, text)
}
