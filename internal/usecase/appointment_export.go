package usecase

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strings"
	"time"

	"talentlink-appointments/internal/domain"
	"talentlink-appointments/pkg/apperror"
	"talentlink-appointments/pkg/logger"

	"github.com/xuri/excelize/v2"
)

const exportDateLayout = "2006-01-02 15:04"

var exportHeaderNames = map[string]string{
	"id":               "APPOINTMENT ID",
	"candidate_id":     "CANDIDATE ID",
	"offer_id":         "OFFER ID",
	"position_title":   "POSITION",
	"company_name":     "COMPANY",
	"status":           "STATUS",
	"proposed_slots":   "PROPOSED SLOTS (UTC)",
	"chosen_datetime":  "CHOSEN DATETIME (UTC)",
	"mode":             "MODE",
	"location_details": "LOCATION / LINK",
	"additional_notes": "NOTES",
	"created_at":       "CREATED AT (UTC)",
}

// ExportForRecruiter renders the recruiter's appointments as an Excel or CSV file
func (u *appointmentUsecase) ExportForRecruiter(ctx context.Context, req domain.AppointmentExportRequest) ([]byte, string, error) {
	columns, err := normalizeExportColumns(req.Columns)
	if err != nil {
		return nil, "", apperror.BadRequest(err.Error())
	}

	format := strings.ToLower(req.Format)
	if format != "" && format != "xlsx" && format != "csv" {
		return nil, "", apperror.BadRequest(fmt.Sprintf("unsupported export format: %s", req.Format))
	}

	appointments, err := u.appointments.ListByRecruiter(ctx, req.RecruiterID)
	if err != nil {
		logger.Log.ErrorContext(ctx, "failed to fetch appointments for export", "recruiter_id", req.RecruiterID, "error", err)
		return nil, "", apperror.Internal(err)
	}

	var (
		data     []byte
		filename string
	)
	if format == "csv" {
		data, filename, err = exportAppointmentsCSV(appointments, columns)
	} else {
		data, filename, err = exportAppointmentsExcel(appointments, columns)
	}
	if err != nil {
		return nil, "", apperror.Internal(err)
	}
	return data, filename, nil
}

// normalizeExportColumns defaults to every column, drops duplicates and rejects unknown names
func normalizeExportColumns(columns []string) ([]string, error) {
	if len(columns) == 0 {
		return domain.ExportableAppointmentColumns, nil
	}

	valid := make(map[string]bool, len(domain.ExportableAppointmentColumns))
	for _, col := range domain.ExportableAppointmentColumns {
		valid[col] = true
	}

	seen := make(map[string]bool)
	out := make([]string, 0, len(columns))
	for _, col := range columns {
		col = strings.TrimSpace(col)
		if !valid[col] {
			return nil, fmt.Errorf("invalid export column: %s", col)
		}
		if !seen[col] {
			seen[col] = true
			out = append(out, col)
		}
	}
	return out, nil
}

func exportAppointmentsExcel(appointments []domain.Appointment, columns []string) ([]byte, string, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Appointments"
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, "", err
	}

	for i, col := range columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, exportHeaderNames[col])
	}

	// Dark blue header, white bold text
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#1E3A5F"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	endCell, _ := excelize.CoordinatesToCellName(len(columns), 1)
	f.SetCellStyle(sheetName, "A1", endCell, headerStyle)

	for rowIdx, appt := range appointments {
		for colIdx, col := range columns {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			f.SetCellValue(sheetName, cell, appointmentFieldValue(appt, col))
		}
	}

	for i := range columns {
		colName, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheetName, colName, colName, 22)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, "", fmt.Errorf("failed to write Excel file: %w", err)
	}

	filename := fmt.Sprintf("appointments_%s.xlsx", time.Now().Format("20060102_150405"))
	return buf.Bytes(), filename, nil
}

func exportAppointmentsCSV(appointments []domain.Appointment, columns []string) ([]byte, string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(columns); err != nil {
		return nil, "", err
	}
	for _, appt := range appointments {
		record := make([]string, len(columns))
		for i, col := range columns {
			record[i] = fmt.Sprintf("%v", appointmentFieldValue(appt, col))
		}
		if err := w.Write(record); err != nil {
			return nil, "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, "", fmt.Errorf("failed to write CSV file: %w", err)
	}

	filename := fmt.Sprintf("appointments_%s.csv", time.Now().Format("20060102_150405"))
	return buf.Bytes(), filename, nil
}

func appointmentFieldValue(a domain.Appointment, field string) interface{} {
	switch field {
	case "id":
		return a.ID
	case "candidate_id":
		return a.CandidateID
	case "offer_id":
		return a.OfferID
	case "position_title":
		return a.PositionTitle
	case "company_name":
		return a.CompanyName
	case "status":
		return strings.ToUpper(string(a.Status))
	case "proposed_slots":
		slots := make([]string, 0, len(a.ProposedSlots))
		for _, s := range a.ProposedSlots {
			slots = append(slots, s.ProposedDatetime.UTC().Format(exportDateLayout))
		}
		return strings.Join(slots, "; ")
	case "chosen_datetime":
		if a.ChosenDatetime != nil {
			return a.ChosenDatetime.UTC().Format(exportDateLayout)
		}
		return ""
	case "mode":
		if a.Mode != nil {
			return a.Mode.Label()
		}
		return ""
	case "location_details":
		if a.LocationDetails != nil {
			return *a.LocationDetails
		}
		return ""
	case "additional_notes":
		if a.AdditionalNotes != nil {
			return *a.AdditionalNotes
		}
		return ""
	case "created_at":
		return a.CreatedAt.UTC().Format(exportDateLayout)
	default:
		return ""
	}
}
