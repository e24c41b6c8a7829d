// internal/app/features/dashboard/handler.go
package dashboardfeature

import (
	"context"
	"net/http"
	"time"

	apikeystore "github.com/Sherifrax/speakup-sub001/internal/app/store/apikeys"
	speakupstore "github.com/Sherifrax/speakup-sub001/internal/app/store/speakup"
	"github.com/Sherifrax/speakup-sub001/internal/app/store/usage"
	"github.com/Sherifrax/speakup-sub001/internal/app/system/jsonutil"
	"github.com/Sherifrax/speakup-sub001/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// defaultUsageWindow is how far back the usage chart reaches when the
// request names no range.
const defaultUsageWindow = 7 * 24 * time.Hour

// Handler serves the admin dashboard's analytics endpoints.
type Handler struct {
	DB  *mongo.Database
	Log *zap.Logger
}

// NewHandler creates a new dashboard handler.
func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{DB: db, Log: logger}
}

// UsagePoint is one chart point: a bucket with its derived average.
type UsagePoint struct {
	Bucket   time.Time      `json:"bucket"`
	StatType usage.StatType `json:"statType"`
	Requests int64          `json:"requests"`
	Errors   int64          `json:"errors"`
	AvgMs    float64        `json:"avgMs"`
	MinMs    int64          `json:"minMs"`
	MaxMs    int64          `json:"maxMs"`
}

// UsageResponse is the body of GET dashboard/usage.
type UsageResponse struct {
	From   time.Time    `json:"from"`
	To     time.Time    `json:"to"`
	Points []UsagePoint `json:"points"`
}

// HandleUsage handles GET dashboard/usage - time-bucketed request counts
// for the usage charts. Optional query params: from, to (RFC 3339),
// statType, bucket (a duration string such as "1h").
func (h *Handler) HandleUsage(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	to := time.Now().UTC()
	from := to.Add(-defaultUsageWindow)
	if v := r.URL.Query().Get("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			jsonutil.BadRequest(w, "invalid from timestamp")
			return
		}
		from = t
	}
	if v := r.URL.Query().Get("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			jsonutil.BadRequest(w, "invalid to timestamp")
			return
		}
		to = t
	}
	if !from.Before(to) {
		jsonutil.BadRequest(w, "from must be before to")
		return
	}
	bucket := r.URL.Query().Get("bucket")

	store := usage.New(h.DB)
	var (
		buckets []usage.Bucket
		err     error
	)
	if statType := r.URL.Query().Get("statType"); statType != "" {
		buckets, err = store.GetRange(ctx, usage.StatType(statType), from, to, bucket)
	} else {
		buckets, err = store.GetRangeAllTypes(ctx, from, to, bucket)
	}
	if err != nil {
		h.Log.Error("usage query failed", zap.Error(err))
		jsonutil.InternalError(w, "usage unavailable")
		return
	}

	points := make([]UsagePoint, 0, len(buckets))
	for _, b := range buckets {
		points = append(points, UsagePoint{
			Bucket:   b.Bucket,
			StatType: b.StatType,
			Requests: b.Requests,
			Errors:   b.Errors,
			AvgMs:    b.AvgMs(),
			MinMs:    b.MinMs,
			MaxMs:    b.MaxMs,
		})
	}
	jsonutil.OK(w, UsageResponse{From: from, To: to, Points: points})
}

// SummaryResponse is the body of GET dashboard/summary.
type SummaryResponse struct {
	APIKeys struct {
		Total  int64 `json:"total"`
		Active int64 `json:"active"`
	} `json:"apiKeys"`
	SpeakUp struct {
		ByStatus map[string]int64 `json:"byStatus"`
		ByType   map[int]int64    `json:"byType"`
	} `json:"speakUp"`
}

// HandleSummary handles GET dashboard/summary - headline counts for the
// dashboard's landing tiles.
func (h *Handler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	var resp SummaryResponse

	keys := apikeystore.New(h.DB)
	total, err := keys.Count(ctx)
	if err != nil {
		h.Log.Error("summary api key count failed", zap.Error(err))
		jsonutil.InternalError(w, "summary unavailable")
		return
	}
	active, err := keys.CountActive(ctx)
	if err != nil {
		h.Log.Error("summary active key count failed", zap.Error(err))
		jsonutil.InternalError(w, "summary unavailable")
		return
	}
	resp.APIKeys.Total = total
	resp.APIKeys.Active = active

	entries := speakupstore.New(h.DB)
	byStatus, err := entries.CountByStatus(ctx, speakupstore.AdminScope())
	if err != nil {
		h.Log.Error("summary status counts failed", zap.Error(err))
		jsonutil.InternalError(w, "summary unavailable")
		return
	}
	byType, err := entries.CountByType(ctx, speakupstore.AdminScope())
	if err != nil {
		h.Log.Error("summary type counts failed", zap.Error(err))
		jsonutil.InternalError(w, "summary unavailable")
		return
	}
	resp.SpeakUp.ByStatus = byStatus
	resp.SpeakUp.ByType = byType

	jsonutil.OK(w, resp)
}
