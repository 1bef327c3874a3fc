package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mesikahq/spitalverse/internal/assistant"
	"github.com/mesikahq/spitalverse/internal/insight"
	"github.com/mesikahq/spitalverse/internal/metrics"
	"github.com/mesikahq/spitalverse/internal/record"
)

func sourceOf(status assistant.Status) string {
	if status == assistant.StatusOK {
		return string(assistant.SourceAI)
	}
	return string(assistant.SourceFallback)
}

// Stateless endpoints. The caller sends the health data in the body and
// nothing is read from or written to the store.

func (h *Handler) GenerateSummaryStateless(c *gin.Context) {
	var req assistant.SummaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res := h.gateway.Summary(c.Request.Context(), req)
	metrics.RecordAssistantOutcome(assistant.KindSummary, string(res.Status), sourceOf(res.Status))

	status := http.StatusOK
	if res.Status == assistant.StatusError {
		status = http.StatusInternalServerError
	}
	c.JSON(status, res)
}

func (h *Handler) HealthTipsStateless(c *gin.Context) {
	var req assistant.TipsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res := h.gateway.Tips(c.Request.Context(), req)
	metrics.RecordAssistantOutcome(assistant.KindTips, string(res.Status), sourceOf(res.Status))
	c.JSON(http.StatusOK, res)
}

func (h *Handler) SymptomCheckerStateless(c *gin.Context) {
	var req assistant.SymptomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Severity == "" {
		req.Severity = insight.SeverityMild
	}
	if !req.Severity.Valid() {
		h.fail(c, assistant.ErrInvalidSeverity)
		return
	}

	res := h.gateway.Symptoms(c.Request.Context(), req)
	metrics.RecordAssistantOutcome(assistant.KindSymptoms, string(res.Status), sourceOf(res.Status))
	c.JSON(http.StatusOK, res)
}

// Store-backed flows.

func (h *Handler) ListSummaries(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Snapshot().HealthSummaries)
}

func (h *Handler) GenerateSummary(c *gin.Context) {
	out, err := h.assistant.GenerateSummary(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	status := http.StatusCreated
	if !out.Applied {
		status = http.StatusOK
	}
	c.JSON(status, out)
}

func (h *Handler) HealthTips(c *gin.Context) {
	c.JSON(http.StatusOK, h.assistant.HealthTips(c.Request.Context()))
}

type SymptomCheckRequest struct {
	Symptoms string           `json:"symptoms"`
	Duration string           `json:"duration"`
	Severity insight.Severity `json:"severity"`
}

func (h *Handler) CheckSymptoms(c *gin.Context) {
	var req SymptomCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Severity == "" {
		req.Severity = insight.SeverityMild
	}

	res, err := h.assistant.CheckSymptoms(c.Request.Context(), req.Symptoms, req.Duration, req.Severity)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

type DashboardCounts struct {
	Documents         int `json:"documents"`
	ActiveMedications int `json:"activeMedications"`
	LabReports        int `json:"labReports"`
	Upcoming          int `json:"upcomingAppointments"`
}

type Dashboard struct {
	Profile          record.PatientProfile `json:"profile"`
	Counts           DashboardCounts       `json:"counts"`
	NextAppointments []record.Appointment  `json:"nextAppointments"`
	AbnormalValues   []record.LabValue     `json:"abnormalValues"`
	LatestSummary    *record.HealthSummary `json:"latestSummary,omitempty"`
	Reminders        []record.Reminder     `json:"reminders"`
}

const dashboardAppointments = 2

// ListReminders returns the appointment and medication reminder feed.
func (h *Handler) ListReminders(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"reminders": record.Reminders(h.store.Snapshot(), h.store.Now())})
}

func (h *Handler) GetDashboard(c *gin.Context) {
	st := h.store.Snapshot()
	upcoming := record.Upcoming(st.Appointments, h.store.Now())

	next := upcoming
	if len(next) > dashboardAppointments {
		next = next[:dashboardAppointments]
	}
	if next == nil {
		next = []record.Appointment{}
	}
	abnormal := st.AbnormalValues()
	if abnormal == nil {
		abnormal = []record.LabValue{}
	}

	d := Dashboard{
		Profile: st.Profile,
		Counts: DashboardCounts{
			Documents:         len(st.Documents),
			ActiveMedications: len(st.ActiveMedications()),
			LabReports:        len(st.LabReports),
			Upcoming:          len(upcoming),
		},
		NextAppointments: next,
		AbnormalValues:   abnormal,
		Reminders:        record.Reminders(st, h.store.Now()),
	}
	if len(st.HealthSummaries) > 0 {
		latest := st.HealthSummaries[0]
		d.LatestSummary = &latest
	}
	c.JSON(http.StatusOK, d)
}
