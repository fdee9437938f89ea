package download

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"class-panel/internal/export"
	"class-panel/internal/lecture"
	"class-panel/internal/service"
	"class-panel/pkg/response"
	"class-panel/pkg/sl"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type RosterExporter interface {
	ExportRoster(ctx context.Context) (*service.Export, error)
}

// New serves the attendance roster as a CSV (default) or XLSX download.
func New(log *slog.Logger, exporter RosterExporter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.roster.download.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		format, err := export.ParseFormat(r.URL.Query().Get("format"))
		if err != nil {
			log.Warn("Unsupported format", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "format must be csv or xlsx"))
			return
		}

		exp, err := exporter.ExportRoster(r.Context())

		if errors.Is(err, lecture.ErrEmptyRoster) {
			log.Warn("Roster is empty, nothing to export")
			render.Status(r, http.StatusConflict)
			render.JSON(w, r, response.Error(string(response.EMPTY_EXPORT), "no students on the roster"))
			return
		}

		if errors.Is(err, response.ErrUnavailable) {
			log.Warn("Session loop is stopped")
			render.Status(r, http.StatusServiceUnavailable)
			render.JSON(w, r, response.Error(string(response.UNAVAILABLE), "panel is shutting down"))
			return
		}

		if err != nil {
			log.Error("Failed to export roster", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to export roster"))
			return
		}

		name := export.FileName("attendance", exp.Info.Course, exp.Info.Date, format)
		w.Header().Set("Content-Type", format.ContentType())
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))

		if err := export.Write(w, format, "Attendance", exp.Table); err != nil {
			log.Error("Failed to write export", sl.Err(err))
			return
		}

		log.Info("Roster exported", slog.String("file", name), slog.Int("rows", len(exp.Table.Rows)))
	}
}
