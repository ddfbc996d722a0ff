package dashboard

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/couchcryptid/haiti-crisis-monitor/internal/domain"
	"github.com/xuri/excelize/v2"
)

const (
	exportBaseName = "haiti_crisis_filtered"
	exportSheet    = "Reports"
	xlsxMIME       = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// exportColumns mirrors the reports table.
var exportColumns = []string{
	"id", "timestamp", "title", "raw_text", "event_type", "location_text",
	"location_coords", "latitude", "longitude", "location_metadata",
	"source_name", "content_type", "severity", "report_url", "created_date",
}

func exportRow(r domain.Report) []string {
	var lat, lon string
	if r.Geo != nil {
		lat = strconv.FormatFloat(r.Geo.Lat, 'f', -1, 64)
		lon = strconv.FormatFloat(r.Geo.Lon, 'f', -1, 64)
	}
	meta, _ := r.MetadataJSON()
	return []string{
		strconv.FormatInt(r.ID, 10),
		r.Timestamp.UTC().Format(time.RFC3339),
		r.Title,
		r.RawText,
		r.EventType,
		r.LocationText,
		r.LocationCoords(),
		lat,
		lon,
		meta,
		r.SourceName,
		r.ContentType,
		strconv.Itoa(r.Severity),
		r.URL,
		r.CreatedDate,
	}
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	reports, err := s.filtered(r.Context(), r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := writeCSV(&buf, reports); err != nil {
		s.writeError(w, r, err)
		return
	}
	attach(w, "text/csv; charset=utf-8", exportBaseName+".csv")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	reports, err := s.filtered(r.Context(), r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	data, err := buildXLSX(reports)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	attach(w, xlsxMIME, exportBaseName+".xlsx")
	_, _ = w.Write(data)
}

func attach(w http.ResponseWriter, contentType, filename string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
}

func writeCSV(buf *bytes.Buffer, reports []domain.Report) error {
	cw := csv.NewWriter(buf)
	if err := cw.Write(exportColumns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range reports {
		if err := cw.Write(exportRow(r)); err != nil {
			return fmt.Errorf("write csv row %d: %w", r.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// buildXLSX renders reports as a single sheet with a bold, frozen header row.
func buildXLSX(reports []domain.Report) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if _, err := f.NewSheet(exportSheet); err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("delete default sheet: %w", err)
	}
	index, err := f.GetSheetIndex(exportSheet)
	if err != nil {
		return nil, fmt.Errorf("find sheet: %w", err)
	}
	f.SetActiveSheet(index)

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	for col, name := range exportColumns {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(exportSheet, cell, name); err != nil {
			return nil, fmt.Errorf("set header %s: %w", cell, err)
		}
		if err := f.SetCellStyle(exportSheet, cell, cell, header); err != nil {
			return nil, fmt.Errorf("style header %s: %w", cell, err)
		}
	}
	if err := f.SetColWidth(exportSheet, "C", "D", 60); err != nil {
		return nil, fmt.Errorf("set column width: %w", err)
	}

	for i, r := range reports {
		row := i + 2
		for col, value := range exportRow(r) {
			if value == "" {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return nil, err
			}
			var v any = value
			switch exportColumns[col] {
			case "id":
				v = r.ID
			case "severity":
				v = r.Severity
			case "latitude":
				v = r.Geo.Lat
			case "longitude":
				v = r.Geo.Lon
			}
			if err := f.SetCellValue(exportSheet, cell, v); err != nil {
				return nil, fmt.Errorf("set cell %s: %w", cell, err)
			}
		}
	}

	if err := f.SetPanes(exportSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, fmt.Errorf("freeze header: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
