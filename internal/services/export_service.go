package services

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/alimgiray/lotdesk/internal/hours"
	"github.com/alimgiray/lotdesk/internal/models"
	"github.com/xuri/excelize/v2"
)

const (
	weeklyHoursSheet = "Weekly Hours"
	exceptionsSheet  = "Exceptions"
	statusClosed     = "Closed"
	statusOpen       = "Open"
)

var ErrMissingHoursSheet = errors.New(`workbook has no "Weekly Hours" sheet`)

type ExportService struct {
	orgContentService    *OrgContentService
	exceptionDateService *ExceptionDateService
}

func NewExportService(orgContentService *OrgContentService, exceptionDateService *ExceptionDateService) *ExportService {
	return &ExportService{
		orgContentService:    orgContentService,
		exceptionDateService: exceptionDateService,
	}
}

// ExportSchedule writes the weekly hours and exception dates as an xlsx workbook
func (s *ExportService) ExportSchedule(orgID string, w io.Writer) error {
	setting, err := s.orgContentService.GetSchedule(orgID)
	if err != nil {
		return err
	}
	exceptions, err := s.exceptionDateService.List(orgID)
	if err != nil {
		return err
	}

	file := excelize.NewFile()
	defer file.Close()

	if err := file.SetSheetName("Sheet1", weeklyHoursSheet); err != nil {
		return err
	}

	schedule := setting.Effective()
	maxRanges := 1
	for _, d := range hours.Days {
		if n := len(schedule.Day(d).Ranges); n > maxRanges {
			maxRanges = n
		}
	}

	header := []interface{}{"Day", "Status"}
	for i := 1; i <= maxRanges; i++ {
		header = append(header, fmt.Sprintf("Range %d", i))
	}
	if err := writeRow(file, weeklyHoursSheet, 1, header); err != nil {
		return err
	}
	for i, d := range hours.Days {
		if err := writeRow(file, weeklyHoursSheet, i+2, dayRow(d.String(), schedule.Day(d))); err != nil {
			return err
		}
	}
	boldHeader(file, weeklyHoursSheet, len(header))

	if _, err := file.NewSheet(exceptionsSheet); err != nil {
		return fmt.Errorf("create sheet %s: %w", exceptionsSheet, err)
	}
	if err := writeRow(file, exceptionsSheet, 1, []interface{}{"Date", "Hours"}); err != nil {
		return err
	}
	for i, exception := range exceptions {
		if err := writeRow(file, exceptionsSheet, i+2, []interface{}{exception.Date, exception.Hours}); err != nil {
			return err
		}
	}
	boldHeader(file, exceptionsSheet, 2)

	return file.Write(w)
}

// ImportSchedule reads a workbook in the export layout and saves its weekly hours.
// Rows with an unknown day are skipped and days without a row keep the default.
func (s *ExportService) ImportSchedule(orgID, userID string, r io.Reader) (string, error) {
	file, err := excelize.OpenReader(r)
	if err != nil {
		return "", &models.ValidationError{Field: "file", Message: "not a readable xlsx workbook"}
	}
	defer func() { _ = file.Close() }()

	rows, err := file.GetRows(weeklyHoursSheet)
	if err != nil {
		return "", &models.ValidationError{Field: "file", Message: ErrMissingHoursSheet.Error()}
	}

	schedule := hours.DefaultSchedule()
	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		day, ok := hours.LookupWeekday(row[0])
		if !ok {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(row[1]), statusClosed) {
			schedule.Set(day, hours.ClosedDay())
			continue
		}
		if h, ok := hours.ParseDay(strings.Join(nonBlank(row[2:]), ", ")); ok {
			schedule.Set(day, h)
		}
	}

	return s.orgContentService.SaveSchedule(orgID, userID, schedule)
}

func dayRow(label string, h hours.DayHours) []interface{} {
	if h.Closed {
		return []interface{}{label, statusClosed}
	}
	row := []interface{}{label, statusOpen}
	for _, r := range h.Ranges {
		row = append(row, r.Display())
	}
	return row
}

func writeRow(file *excelize.File, sheet string, rowNum int, values []interface{}) error {
	for i, val := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, rowNum)
		if err != nil {
			return err
		}
		if err := file.SetCellValue(sheet, cell, val); err != nil {
			return err
		}
	}
	return nil
}

func boldHeader(file *excelize.File, sheet string, columns int) {
	style, err := file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return
	}
	endCell, _ := excelize.CoordinatesToCellName(columns, 1)
	_ = file.SetCellStyle(sheet, "A1", endCell, style)
}

func nonBlank(cells []string) []string {
	out := make([]string, 0, len(cells))
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			out = append(out, c)
		}
	}
	return out
}
