package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mesikahq/spitalverse/internal/audit"
	"github.com/mesikahq/spitalverse/internal/store"
)

// maxImportSize bounds an uploaded export. Documents are embedded as data
// URLs, so a full vault can be large.
const maxImportSize = 256 << 20

func (h *Handler) Export(c *gin.Context) {
	data, err := h.store.Export()
	if err != nil {
		h.fail(c, err)
		return
	}

	filename := store.ExportFilename(h.store.Now())
	if h.audit != nil {
		event := &audit.AuditEvent{
			Timestamp: h.store.Now(),
			EventType: audit.EventExport,
			Action:    "export",
			Resource:  store.CollectionAll,
			RequestID: audit.RequestIDFrom(c.Request.Context()),
			Status:    "success",
		}
		if err := h.audit.LogEvent(c.Request.Context(), event); err != nil {
			h.logger.Warn("failed to record export", zap.Error(err))
		}
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename=%q`, filename))
	c.Data(http.StatusOK, "application/json", data)
}

func (h *Handler) Import(c *gin.Context) {
	data, err := io.ReadAll(io.LimitReader(c.Request.Body, maxImportSize))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.store.Import(c.Request.Context(), data); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, h.store.Snapshot())
}

type ClearRequest struct {
	Confirmation string `json:"confirmation"`
}

func (h *Handler) Clear(c *gin.Context) {
	var req ClearRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !strings.EqualFold(req.Confirmation, ClearConfirmation) {
		h.fail(c, ErrInvalidConfirmation)
		return
	}
	if err := h.store.Clear(c.Request.Context()); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, h.store.Snapshot())
}

var auditFilterParams = []string{"resource", "resource_id", "event_type", "action", "status", "request_id"}

func (h *Handler) QueryAuditEvents(c *gin.Context) {
	if h.audit == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": audit.ErrSearchUnavailable.Error()})
		return
	}

	filters := make(map[string]interface{})
	for _, key := range auditFilterParams {
		if v := c.Query(key); v != "" {
			filters[key] = v
		}
	}

	from, err := strconv.Atoi(c.DefaultQuery("from", "0"))
	if err != nil || from < 0 {
		h.fail(c, fmt.Errorf("%w: from", ErrInvalidQuery))
		return
	}
	size, err := strconv.Atoi(c.DefaultQuery("size", "20"))
	if err != nil || size <= 0 || size > 100 {
		h.fail(c, fmt.Errorf("%w: size must be 1-100", ErrInvalidQuery))
		return
	}

	events, err := h.audit.QueryEvents(c.Request.Context(), filters, from, size)
	if errors.Is(err, audit.ErrSearchUnavailable) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events, "from": from, "size": size})
}
