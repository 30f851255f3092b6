package services

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/triple-g/buildhub-backend/internal/models"
	"github.com/triple-g/buildhub-backend/internal/storage"
)

// ProjectReport aggregates diary activity for a project over a date range
type ProjectReport struct {
	ProjectID       uint      `json:"project_id"`
	ProjectName     string    `json:"project_name"`
	From            time.Time `json:"from"`
	To              time.Time `json:"to"`
	EntryCount      int       `json:"entry_count"`
	ApprovedEntries int       `json:"approved_entries"`
	TotalLaborHours float64   `json:"total_labor_hours"`
	TotalLaborCost  float64   `json:"total_labor_cost"`
	TotalMaterial   float64   `json:"total_material_cost"`
	EquipmentHours  float64   `json:"total_equipment_hours"`
	EquipmentCost   float64   `json:"total_equipment_cost"`
	DelayHours      float64   `json:"total_delay_hours"`
	DelayCost       float64   `json:"total_delay_cost"`
	VisitorCount    int       `json:"visitor_count"`
	LatestProgress  float64   `json:"latest_progress_percentage"`
}

// ReportService builds diary reports and CSV exports
type ReportService struct {
	store storage.Store
}

func NewReportService(store storage.Store) *ReportService {
	return &ReportService{store: store}
}

// BuildProjectReport aggregates all diary entries for the project between
// start and end (inclusive).
func (r *ReportService) BuildProjectReport(projectID uint, start, end time.Time) (*ProjectReport, error) {
	project, err := r.store.GetSiteProject(projectID)
	if err != nil {
		return nil, err
	}

	entries, err := r.store.GetDiaryEntriesInDateRange(projectID, start, end)
	if err != nil {
		return nil, err
	}

	report := &ProjectReport{
		ProjectID:   project.ID,
		ProjectName: project.Name,
		From:        start,
		To:          end,
		EntryCount:  len(entries),
	}

	for _, entry := range entries {
		if entry.Approved {
			report.ApprovedEntries++
		}
		// Entries arrive ordered by date, so the last one wins
		report.LatestProgress = entry.ProgressPercentage

		for _, l := range entry.LaborEntries {
			report.TotalLaborHours += float64(l.WorkersCount) * (l.HoursWorked + l.OvertimeHours)
			report.TotalLaborCost += l.TotalCost()
		}
		for _, mat := range entry.MaterialEntries {
			report.TotalMaterial += mat.QuantityUsed * mat.UnitCost
		}
		for _, eq := range entry.EquipmentEntries {
			report.EquipmentHours += eq.HoursOperated
			report.EquipmentCost += eq.HoursOperated * eq.RentalCostPerHour
		}
		for _, d := range entry.DelayEntries {
			report.DelayHours += d.DurationHours
			report.DelayCost += d.CostImpact
		}
		report.VisitorCount += len(entry.VisitorEntries)
	}

	return report, nil
}

// WriteEntriesCSV streams one row per diary entry with per-day totals
func (r *ReportService) WriteEntriesCSV(w io.Writer, entries []*models.DiaryEntry) error {
	cw := csv.NewWriter(w)
	header := []string{
		"entry_date", "weather", "progress_pct", "work_description",
		"labor_hours", "labor_cost", "material_cost", "equipment_hours",
		"delay_hours", "delay_cost", "visitors", "approved",
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, entry := range entries {
		var laborHours, laborCost, materialCost, equipmentHours, delayHours, delayCost float64
		for _, l := range entry.LaborEntries {
			laborHours += float64(l.WorkersCount) * (l.HoursWorked + l.OvertimeHours)
			laborCost += l.TotalCost()
		}
		for _, mat := range entry.MaterialEntries {
			materialCost += mat.QuantityUsed * mat.UnitCost
		}
		for _, eq := range entry.EquipmentEntries {
			equipmentHours += eq.HoursOperated
		}
		for _, d := range entry.DelayEntries {
			delayHours += d.DurationHours
			delayCost += d.CostImpact
		}

		row := []string{
			entry.EntryDate.Format("2006-01-02"),
			entry.WeatherCondition,
			fmt.Sprintf("%.1f", entry.ProgressPercentage),
			entry.WorkDescription,
			fmt.Sprintf("%.1f", laborHours),
			fmt.Sprintf("%.2f", laborCost),
			fmt.Sprintf("%.2f", materialCost),
			fmt.Sprintf("%.1f", equipmentHours),
			fmt.Sprintf("%.1f", delayHours),
			fmt.Sprintf("%.2f", delayCost),
			fmt.Sprintf("%d", len(entry.VisitorEntries)),
			fmt.Sprintf("%t", entry.Approved),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
