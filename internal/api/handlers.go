package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mesikahq/spitalverse/internal/assistant"
	"github.com/mesikahq/spitalverse/internal/audit"
	"github.com/mesikahq/spitalverse/internal/labs"
	"github.com/mesikahq/spitalverse/internal/middleware"
	"github.com/mesikahq/spitalverse/internal/record"
	"github.com/mesikahq/spitalverse/internal/store"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrInvalidConfirmation = errors.New(`confirmation must be "delete my data"`)
	ErrInvalidQuery        = errors.New("invalid query parameter")
	ErrDocumentTooLarge    = errors.New("document exceeds 10 MB")
)

// ClearConfirmation must be typed (any case) to wipe all data.
const ClearConfirmation = "delete my data"

// MaxDocumentSize matches the upload limit of the document vault.
const MaxDocumentSize = 10 << 20

type Handler struct {
	store     *store.Store
	assistant assistant.Service
	gateway   assistant.Gateway
	catalog   *labs.Catalog
	audit     audit.Service
	logger    *zap.Logger
}

func NewHandler(
	store *store.Store,
	assistantService assistant.Service,
	gateway assistant.Gateway,
	catalog *labs.Catalog,
	auditService audit.Service,
	logger *zap.Logger,
) *Handler {
	if catalog == nil {
		catalog = labs.DefaultCatalog()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		store:     store,
		assistant: assistantService,
		gateway:   gateway,
		catalog:   catalog,
		audit:     auditService,
		logger:    logger,
	}
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// statusFor maps domain errors to HTTP status codes. Anything unknown is a
// persistence or internal failure.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, record.ErrAlreadyCompleted):
		return http.StatusConflict
	case errors.Is(err, ErrDocumentTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, record.ErrMissingField),
		errors.Is(err, record.ErrInvalidDate),
		errors.Is(err, record.ErrInvalidTime),
		errors.Is(err, record.ErrInvalidStatus),
		errors.Is(err, record.ErrInvalidCategory),
		errors.Is(err, record.ErrInvalidFileType),
		errors.Is(err, record.ErrInvalidSex),
		errors.Is(err, record.ErrInvalidBloodGroup),
		errors.Is(err, record.ErrEndBeforeStart),
		errors.Is(err, record.ErrInvalidDataURL),
		errors.Is(err, labs.ErrInvalidRange),
		errors.Is(err, labs.ErrEmptyReport),
		errors.Is(err, labs.ErrPlaceholderValue),
		errors.Is(err, labs.ErrDuplicateTest),
		errors.Is(err, labs.ErrMissingReportName),
		errors.Is(err, assistant.ErrEmptySymptoms),
		errors.Is(err, assistant.ErrInvalidSeverity),
		errors.Is(err, store.ErrInvalidExport),
		errors.Is(err, ErrInvalidConfirmation),
		errors.Is(err, ErrInvalidQuery):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (h *Handler) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.String("request_id", c.GetString(middleware.RequestIDKey)),
			zap.Error(err),
		)
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
