package handler

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	appbreakage "github.com/hortifruti/backend/internal/application/breakage"
	"github.com/hortifruti/backend/internal/infrastructure/export"
)

// photoField is the multipart field carrying the breakage photo
const photoField = "photo"

// BreakageHandler handles breakage endpoints
type BreakageHandler struct {
	BaseHandler
	recorder       *appbreakage.Recorder
	maxUploadBytes int64
}

// NewBreakageHandler creates a new BreakageHandler. maxUploadBytes bounds
// the photo size; zero means 10 MiB.
func NewBreakageHandler(recorder *appbreakage.Recorder, maxUploadBytes int64) *BreakageHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 10 << 20
	}
	return &BreakageHandler{recorder: recorder, maxUploadBytes: maxUploadBytes}
}

// Record godoc
// @Summary      Record a breakage
// @Description  Without batch_id the loss is costed from the oldest batch of the product
// @Tags         breakages
// @Accept       json
// @Produce      json
// @Param        request body appbreakage.RecordBreakageRequest true "Breakage"
// @Success      201 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Router       /breakages [post]
func (h *BreakageHandler) Record(c *gin.Context) {
	var req appbreakage.RecordBreakageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.recorder.Record(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// List godoc
// @Summary      List breakages
// @Tags         breakages
// @Produce      json
// @Param        product_id query string false "Product ID"
// @Param        reason query string false "Reason"
// @Param        from query string false "From date (YYYY-MM-DD)"
// @Param        to query string false "To date (YYYY-MM-DD)"
// @Success      200 {object} dto.Response
// @Router       /breakages [get]
func (h *BreakageHandler) List(c *gin.Context) {
	var req appbreakage.ListBreakagesRequest
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

// Export godoc
// @Summary      Export breakages as a spreadsheet
// @Tags         breakages
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success      200 {file} binary
// @Router       /breakages/export [get]
func (h *BreakageHandler) Export(c *gin.Context) {
	var req appbreakage.ListBreakagesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindError(c, err)
		return
	}

	data, err := h.recorder.ExportXLSX(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	filename := fmt.Sprintf("quebras-%s.xlsx", time.Now().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, export.XLSXContentType, data)
}

// UploadPhoto godoc
// @Summary      Attach a photo to a breakage
// @Tags         breakages
// @Accept       multipart/form-data
// @Produce      json
// @Param        id path string true "Breakage ID"
// @Param        photo formData file true "Photo"
// @Success      201 {object} dto.Response
// @Failure      503 {object} dto.Response
// @Router       /breakages/{id}/photo [post]
func (h *BreakageHandler) UploadPhoto(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	header, err := c.FormFile(photoField)
	if err != nil {
		h.BadRequest(c, "Missing photo file")
		return
	}
	if header.Size > h.maxUploadBytes {
		h.Error(c, http.StatusRequestEntityTooLarge, "REQUEST_TOO_LARGE", "Photo exceeds maximum allowed size")
		return
	}

	file, err := header.Open()
	if err != nil {
		h.BadRequest(c, "Unreadable photo file")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxUploadBytes))
	if err != nil {
		h.BadRequest(c, "Unreadable photo file")
		return
	}

	resp, err := h.recorder.AttachPhoto(c.Request.Context(), id, data)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}
