// internal/app/features/speakup/export.go
package speakupfeature

import (
	"context"
	"fmt"
	"net/http"
	"time"

	speakupstore "github.com/Sherifrax/speakup-sub001/internal/app/store/speakup"
	"github.com/Sherifrax/speakup-sub001/internal/app/system/jsonutil"
	"github.com/Sherifrax/speakup-sub001/internal/app/system/timeouts"
	"github.com/Sherifrax/speakup-sub001/internal/listquery"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const exportSheet = "Speak Up"

var exportHeader = []string{"ID", "Type", "Message", "Anonymous", "Status", "Created", "Submitted", "Closed"}

// HandleExport handles POST speakup/export - the current filtered list as a
// .xlsx workbook. The body is the same search request the list uses, minus
// pagination: the export always covers every matching row.
func (h *Handler) HandleExport(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	sc, ok := scope(r)
	if !ok {
		jsonutil.Unauthorized(w, "authentication required")
		return
	}

	req := listquery.Request[SearchFilters]{Search: defaultFilters()}
	if err := jsonutil.Decode(r, &req); err != nil {
		jsonutil.BadRequest(w, "invalid request body")
		return
	}
	sortOrder := req.Pagination.SortOrder
	if sortOrder == "" {
		sortOrder = listquery.SortDesc
	}

	store := speakupstore.New(h.DB)
	entries, err := store.FindAll(ctx, sc, req.Search.toStore(), req.Pagination.SortBy, sortOrder)
	if err != nil {
		h.Log.Error("speakup export query failed", zap.Error(err))
		jsonutil.InternalError(w, "export failed")
		return
	}

	typeNames, err := h.typeNames(ctx)
	if err != nil {
		h.Log.Error("speakup export lookup failed", zap.Error(err))
		jsonutil.InternalError(w, "export failed")
		return
	}

	f := excelize.NewFile()
	defer f.Close()
	f.SetSheetName("Sheet1", exportSheet)

	for col, title := range exportHeader {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue(exportSheet, cell, title)
	}

	for i, e := range entries {
		row := i + 2
		typeName := typeNames[e.TypeID]
		if typeName == "" {
			typeName = "-"
		}
		values := []any{
			e.Seq,
			typeName,
			e.Message,
			e.IsAnonymous,
			e.Status,
			e.CreatedAt.Format(time.RFC3339),
			formatOptional(e.SubmittedAt),
			formatOptional(e.ClosedAt),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			f.SetCellValue(exportSheet, cell, v)
		}
	}

	filename := fmt.Sprintf("speakup-%s.xlsx", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	if err := f.Write(w); err != nil {
		h.Log.Warn("speakup export stream interrupted", zap.Error(err))
	}
}

func formatOptional(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}

// typeNames maps type ids to their display values for the export.
func (h *Handler) typeNames(ctx context.Context) (map[int]string, error) {
	lookups, err := h.lookupTypes(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[int]string, len(lookups))
	for _, item := range lookups {
		names[item.ID] = item.Value
	}
	return names, nil
}
