package api

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mesikahq/spitalverse/internal/labs"
	"github.com/mesikahq/spitalverse/internal/record"
)

// Profile

func (h *Handler) GetProfile(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Profile())
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	var patch record.ProfilePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if patch.Photo != nil && *patch.Photo != "" && !strings.HasPrefix(*patch.Photo, "data:image/") {
		h.fail(c, fmt.Errorf("%w: photo must be an image data url", record.ErrInvalidDataURL))
		return
	}
	if err := patch.Apply(h.store.Profile()).Validate(); err != nil {
		h.fail(c, err)
		return
	}

	profile, err := h.store.UpdateProfile(c.Request.Context(), patch)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// Medications

func (h *Handler) ListMedications(c *gin.Context) {
	meds := h.store.Snapshot().Medications
	status := record.MedicationStatus(c.Query("status"))
	if status == "" {
		c.JSON(http.StatusOK, meds)
		return
	}
	if !status.Valid() {
		h.fail(c, fmt.Errorf("%w: status %q", ErrInvalidQuery, status))
		return
	}
	out := []record.Medication{}
	for _, m := range meds {
		if m.Status == status {
			out = append(out, m)
		}
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) CreateMedication(c *gin.Context) {
	var med record.Medication
	if err := c.ShouldBindJSON(&med); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	med.ID = ""
	if med.Status == "" {
		med.Status = record.StatusActive
	}
	if err := med.Validate(); err != nil {
		h.fail(c, err)
		return
	}

	created, err := h.store.AddMedication(c.Request.Context(), med)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *Handler) UpdateMedication(c *gin.Context) {
	id := c.Param("id")
	var patch record.MedicationPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	current, ok := h.store.Medication(id)
	if !ok {
		h.fail(c, fmt.Errorf("medication %s: %w", id, ErrNotFound))
		return
	}
	next, err := patch.ApplyAt(current, h.store.Now())
	if err != nil {
		h.fail(c, err)
		return
	}
	if err := next.Validate(); err != nil {
		h.fail(c, err)
		return
	}

	updated, found, err := h.store.UpdateMedication(c.Request.Context(), id, patch)
	if err != nil {
		h.fail(c, err)
		return
	}
	if !found {
		h.fail(c, fmt.Errorf("medication %s: %w", id, ErrNotFound))
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *Handler) CompleteMedication(c *gin.Context) {
	id := c.Param("id")
	completed, found, err := h.store.CompleteMedication(c.Request.Context(), id)
	if !found && err == nil {
		h.fail(c, fmt.Errorf("medication %s: %w", id, ErrNotFound))
		return
	}
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, completed)
}

func (h *Handler) DeleteMedication(c *gin.Context) {
	if err := h.store.DeleteMedication(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Lab reports

func (h *Handler) GetLabCatalog(c *gin.Context) {
	if q := strings.TrimSpace(c.Query("q")); q != "" {
		c.JSON(http.StatusOK, gin.H{"tests": h.catalog.Search(q)})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"categories": h.catalog.Categories(),
		"popular":    h.catalog.Popular(),
	})
}

// LabValueInput is one submitted value. Unit and range may be omitted for
// tests in the catalog.
type LabValueInput struct {
	Name        string        `json:"name"`
	Value       float64       `json:"value"`
	Unit        string        `json:"unit"`
	NormalRange *record.Range `json:"normalRange"`
}

type CreateLabReportRequest struct {
	Name       string          `json:"name"`
	Date       string          `json:"date"`
	DocumentID string          `json:"documentId"`
	Values     []LabValueInput `json:"values"`
}

// LabReportView is a stored report with interpretations of its abnormal
// values keyed by test name.
type LabReportView struct {
	record.LabReport
	Interpretations map[string]string `json:"interpretations,omitempty"`
}

func viewOf(r record.LabReport) LabReportView {
	v := LabReportView{LabReport: r}
	for _, lv := range r.Values {
		if text, ok := labs.Interpret(lv.Name, lv.Trend); ok {
			if v.Interpretations == nil {
				v.Interpretations = make(map[string]string)
			}
			v.Interpretations[lv.Name] = text
		}
	}
	return v
}

func (h *Handler) ListLabReports(c *gin.Context) {
	reports := h.store.Snapshot().LabReports
	out := make([]LabReportView, 0, len(reports))
	for _, r := range reports {
		out = append(out, viewOf(r))
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) CreateLabReport(c *gin.Context) {
	var req CreateLabReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	drafts := make([]labs.Draft, 0, len(req.Values))
	for _, v := range req.Values {
		if v.NormalRange == nil {
			d, ok := h.catalog.DraftFromCatalog(v.Name, v.Value)
			if !ok {
				h.fail(c, fmt.Errorf("%w: normalRange for %q", record.ErrMissingField, v.Name))
				return
			}
			if v.Unit != "" {
				d.Unit = v.Unit
			}
			drafts = append(drafts, d)
			continue
		}
		rng, err := labs.NewRange(v.NormalRange.Min, v.NormalRange.Max)
		if err != nil {
			h.fail(c, fmt.Errorf("%s: %w", v.Name, err))
			return
		}
		drafts = append(drafts, labs.Draft{Name: v.Name, Value: v.Value, Unit: v.Unit, NormalRange: rng})
	}

	report, err := labs.BuildReport(req.Name, req.Date, drafts)
	if err != nil {
		h.fail(c, err)
		return
	}
	report.DocumentID = req.DocumentID

	created, err := h.store.AddLabReport(c.Request.Context(), report)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, viewOf(created))
}

func (h *Handler) DeleteLabReport(c *gin.Context) {
	if err := h.store.DeleteLabReport(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Appointments

func (h *Handler) ListAppointments(c *gin.Context) {
	appts := h.store.Snapshot().Appointments
	now := h.store.Now()

	switch c.Query("when") {
	case "upcoming":
		appts = record.Upcoming(appts, now)
	case "past":
		appts = record.Past(appts, now)
	case "":
		for i := range appts {
			appts[i].IsUpcoming = appts[i].UpcomingAt(now)
		}
	default:
		h.fail(c, fmt.Errorf("%w: when must be upcoming or past", ErrInvalidQuery))
		return
	}
	if appts == nil {
		appts = []record.Appointment{}
	}
	c.JSON(http.StatusOK, appts)
}

func (h *Handler) CreateAppointment(c *gin.Context) {
	var appt record.Appointment
	if err := c.ShouldBindJSON(&appt); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	appt.ID = ""
	if err := appt.Validate(); err != nil {
		h.fail(c, err)
		return
	}

	created, err := h.store.AddAppointment(c.Request.Context(), appt)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *Handler) UpdateAppointment(c *gin.Context) {
	id := c.Param("id")
	var patch record.AppointmentPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	current, ok := h.store.Appointment(id)
	if !ok {
		h.fail(c, fmt.Errorf("appointment %s: %w", id, ErrNotFound))
		return
	}
	if err := patch.Apply(current).Validate(); err != nil {
		h.fail(c, err)
		return
	}

	updated, found, err := h.store.UpdateAppointment(c.Request.Context(), id, patch)
	if err != nil {
		h.fail(c, err)
		return
	}
	if !found {
		h.fail(c, fmt.Errorf("appointment %s: %w", id, ErrNotFound))
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *Handler) DeleteAppointment(c *gin.Context) {
	if err := h.store.DeleteAppointment(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Documents

func (h *Handler) ListDocuments(c *gin.Context) {
	category := record.DocumentCategory(c.Query("category"))
	if category != "" && !category.Valid() {
		h.fail(c, fmt.Errorf("%w: %q", record.ErrInvalidCategory, category))
		return
	}
	c.JSON(http.StatusOK, record.FilterDocuments(h.store.Snapshot().Documents, category))
}

// Request body limits for uploads. Base64 inflates the payload by 4/3.
const (
	maxMultipartDocumentBody = MaxDocumentSize + 1<<20
	maxJSONDocumentBody      = MaxDocumentSize*4/3 + 64<<10
)

// badBody answers 413 when the body hit its size limit and 400 otherwise.
func (h *Handler) badBody(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		h.fail(c, ErrDocumentTooLarge)
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

// DocumentUpload is the JSON form of an upload. FileURL is a data URL.
type DocumentUpload struct {
	Name     string                  `json:"name"`
	Category record.DocumentCategory `json:"category"`
	FileURL  string                  `json:"fileUrl"`
}

func (h *Handler) CreateDocument(c *gin.Context) {
	var (
		name        string
		category    record.DocumentCategory
		contentType string
		content     []byte
	)

	mediaType, _, _ := mime.ParseMediaType(c.GetHeader("Content-Type"))
	if mediaType == "multipart/form-data" {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxMultipartDocumentBody)
		fh, err := c.FormFile("file")
		if err != nil {
			h.badBody(c, err)
			return
		}
		if fh.Size > MaxDocumentSize {
			h.fail(c, ErrDocumentTooLarge)
			return
		}
		f, err := fh.Open()
		if err != nil {
			h.fail(c, err)
			return
		}
		defer f.Close()
		content, err = io.ReadAll(f)
		if err != nil {
			h.fail(c, err)
			return
		}

		name = c.PostForm("name")
		if name == "" {
			name = fh.Filename
		}
		category = record.DocumentCategory(c.PostForm("category"))
		contentType = fh.Header.Get("Content-Type")
		if contentType == "" || contentType == "application/octet-stream" {
			contentType = http.DetectContentType(content)
		}
	} else {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxJSONDocumentBody)
		var req DocumentUpload
		if err := c.ShouldBindJSON(&req); err != nil {
			h.badBody(c, err)
			return
		}
		var err error
		contentType, content, err = record.MedicalDocument{FileURL: req.FileURL}.Content()
		if err != nil {
			h.fail(c, err)
			return
		}
		name, category = req.Name, req.Category
	}

	if len(content) > MaxDocumentSize {
		h.fail(c, ErrDocumentTooLarge)
		return
	}
	doc, err := record.NewDocument(name, category, contentType, content, h.store.Now())
	if err != nil {
		h.fail(c, err)
		return
	}

	created, err := h.store.AddDocument(c.Request.Context(), doc)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *Handler) GetDocumentContent(c *gin.Context) {
	id := c.Param("id")
	doc, ok := h.store.Document(id)
	if !ok {
		h.fail(c, fmt.Errorf("document %s: %w", id, ErrNotFound))
		return
	}
	mediaType, content, err := doc.Content()
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Header("Content-Disposition", mime.FormatMediaType("inline", map[string]string{"filename": doc.Name}))
	c.Data(http.StatusOK, mediaType, content)
}

func (h *Handler) DeleteDocument(c *gin.Context) {
	if err := h.store.DeleteDocument(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
