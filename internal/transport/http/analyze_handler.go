// Package http exposes the analytics pipeline over a thin JSON boundary.
// The dashboard (or any other caller) posts parsed tabular records and
// receives the AnalyticsResult verbatim; no rendering concerns live here.
package http

import (
	stderrors "errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	apierrors "retailpulse/internal/errors"
	"retailpulse/internal/middleware"
	"retailpulse/internal/pipeline"
	"retailpulse/pkg/contracts/domain"
)

// AnalyzeRequest is the POST /api/v1/analyze body.
type AnalyzeRequest struct {
	Records []domain.RawRecord `json:"records"`
	Config  pipeline.Config    `json:"config"`
}

// AnalyzeResponse wraps the pipeline result with request metadata.
type AnalyzeResponse struct {
	Success     bool                    `json:"success"`
	RequestID   string                  `json:"request_id,omitempty"`
	GeneratedAt time.Time               `json:"generated_at"`
	Valid       int                     `json:"valid_records"`
	Rejected    int                     `json:"rejected_records"`
	Result      *domain.AnalyticsResult `json:"result"`
}

// AnalyzeHandler runs the analytics pipeline for uploaded record sets.
type AnalyzeHandler struct {
	defaults pipeline.Config
	logger   *slog.Logger
}

// NewAnalyzeHandler creates the handler with server-side config defaults
// applied to requests that do not override them.
func NewAnalyzeHandler(defaults pipeline.Config, logger *slog.Logger) *AnalyzeHandler {
	return &AnalyzeHandler{defaults: defaults, logger: logger}
}

// ServeHTTP handles POST /api/v1/analyze.
func (h *AnalyzeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req AnalyzeRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.logger.WarnContext(ctx, "malformed analyze request", "error", err)
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			render.Render(w, r, apierrors.NewErrorResponse(apierrors.ErrPayloadTooLarge))
			return
		}
		render.Render(w, r, apierrors.NewErrorResponse(apierrors.ErrInvalidRequest))
		return
	}
	if len(req.Records) == 0 {
		render.Render(w, r, apierrors.NewErrorResponse(
			apierrors.NewAPIError(http.StatusBadRequest, "INVALID_REQUEST", "records must not be empty")))
		return
	}

	pl, err := pipeline.New(mergeConfig(req.Config, h.defaults), h.logger)
	if err != nil {
		render.Render(w, r, apierrors.NewErrorResponse(apierrors.FromPipeline(err)))
		return
	}

	records, rejected, err := pl.Normalize(req.Records)
	if err != nil {
		render.Render(w, r, apierrors.NewErrorResponse(apierrors.FromPipeline(err)))
		return
	}

	result, err := pl.Process(ctx, records, rejected)
	if err != nil {
		render.Render(w, r, apierrors.NewErrorResponse(apierrors.FromPipeline(err)))
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, AnalyzeResponse{
		Success:     true,
		RequestID:   middleware.GetRequestID(ctx),
		GeneratedAt: time.Now().UTC(),
		Valid:       len(records),
		Rejected:    rejected,
		Result:      result,
	})
}

// mergeConfig overlays request options onto the server defaults: any field
// the request leaves at zero inherits the server's value, and whatever is
// still zero afterward picks up the package defaults inside pipeline.New.
func mergeConfig(req, defaults pipeline.Config) pipeline.Config {
	if req.Mode == "" {
		req.Mode = defaults.Mode
	}
	if req.MovingAverageWindow == 0 {
		req.MovingAverageWindow = defaults.MovingAverageWindow
	}
	if req.SmoothingAlpha == 0 {
		req.SmoothingAlpha = defaults.SmoothingAlpha
	}
	if req.ForecastHorizonDays == 0 {
		req.ForecastHorizonDays = defaults.ForecastHorizonDays
	}
	if req.ServiceLevelZ == 0 {
		req.ServiceLevelZ = defaults.ServiceLevelZ
	}
	if req.ABCThresholdA == 0 {
		req.ABCThresholdA = defaults.ABCThresholdA
	}
	if req.ABCThresholdB == 0 {
		req.ABCThresholdB = defaults.ABCThresholdB
	}
	if req.OrderCost == 0 {
		req.OrderCost = defaults.OrderCost
	}
	if req.HoldingCost == 0 {
		req.HoldingCost = defaults.HoldingCost
	}
	if req.RFMRecencyMaxDays == 0 {
		req.RFMRecencyMaxDays = defaults.RFMRecencyMaxDays
	}
	if req.RFMFrequencyMax == 0 {
		req.RFMFrequencyMax = defaults.RFMFrequencyMax
	}
	if req.RFMMonetaryMax == 0 {
		req.RFMMonetaryMax = defaults.RFMMonetaryMax
	}
	if req.SalesZThreshold == 0 {
		req.SalesZThreshold = defaults.SalesZThreshold
	}
	if req.PriceZThreshold == 0 {
		req.PriceZThreshold = defaults.PriceZThreshold
	}
	if req.MinSupport == 0 {
		req.MinSupport = defaults.MinSupport
	}
	if req.MinConfidence == 0 {
		req.MinConfidence = defaults.MinConfidence
	}
	if req.MaxRejectionRate == 0 {
		req.MaxRejectionRate = defaults.MaxRejectionRate
	}
	if req.TopProductsLimit == 0 {
		req.TopProductsLimit = defaults.TopProductsLimit
	}
	if req.LeadTimeFallback == 0 {
		req.LeadTimeFallback = defaults.LeadTimeFallback
	}
	if req.EvaluationDate.IsZero() {
		req.EvaluationDate = defaults.EvaluationDate
	}
	return req
}
