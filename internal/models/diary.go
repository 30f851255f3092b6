package models

import (
	"time"

	"gorm.io/gorm"
)

// Site project status values
const (
	ProjectPlanning  = "planning"
	ProjectActive    = "active"
	ProjectOnHold    = "on_hold"
	ProjectCompleted = "completed"
	ProjectCancelled = "cancelled"
)

// SiteProject is an ongoing construction project tracked by the site diary
type SiteProject struct {
	gorm.Model
	Name            string     `json:"name" gorm:"not null"`
	Description     string     `json:"description"`
	ClientName      string     `json:"client_name"`
	ManagerID       uint       `json:"manager_id" gorm:"index"`
	ArchitectID     *uint      `json:"architect_id"`
	Location        string     `json:"location"`
	StartDate       time.Time  `json:"start_date"`
	ExpectedEndDate *time.Time `json:"expected_end_date"`
	Budget          float64    `json:"budget"`
	Status          string     `json:"status" gorm:"default:'planning'"` // planning, active, on_hold, completed, cancelled
}

// DiaryEntry records one day of site activity for a project.
// One entry per project per calendar date.
type DiaryEntry struct {
	gorm.Model
	SiteProjectID      uint       `json:"site_project_id" gorm:"index;uniqueIndex:idx_project_date;not null"`
	EntryDate          time.Time  `json:"entry_date" gorm:"uniqueIndex:idx_project_date;not null"`
	CreatedByID        uint       `json:"created_by_id" gorm:"index"`
	WeatherCondition   string     `json:"weather_condition"` // sunny, cloudy, rainy, stormy, snowy
	TemperatureHigh    float64    `json:"temperature_high"`
	TemperatureLow     float64    `json:"temperature_low"`
	Humidity           int        `json:"humidity"`
	WindSpeed          float64    `json:"wind_speed"`
	WorkDescription    string     `json:"work_description"`
	ProgressPercentage float64    `json:"progress_percentage"`
	QualityIssues      string     `json:"quality_issues"`
	SafetyIncidents    string     `json:"safety_incidents"`
	GeneralNotes       string     `json:"general_notes"`
	PhotosTaken        bool       `json:"photos_taken" gorm:"default:false"`
	Approved           bool       `json:"approved" gorm:"default:false"`
	ApprovedByID       *uint      `json:"approved_by_id"`
	ApprovedAt         *time.Time `json:"approved_at"`

	LaborEntries     []LaborEntry     `json:"labor_entries,omitempty" gorm:"foreignKey:DiaryEntryID"`
	MaterialEntries  []MaterialEntry  `json:"material_entries,omitempty" gorm:"foreignKey:DiaryEntryID"`
	EquipmentEntries []EquipmentEntry `json:"equipment_entries,omitempty" gorm:"foreignKey:DiaryEntryID"`
	DelayEntries     []DelayEntry     `json:"delay_entries,omitempty" gorm:"foreignKey:DiaryEntryID"`
	VisitorEntries   []VisitorEntry   `json:"visitor_entries,omitempty" gorm:"foreignKey:DiaryEntryID"`
}

// LaborEntry tracks a crew working on site for the day
type LaborEntry struct {
	gorm.Model
	DiaryEntryID     uint    `json:"diary_entry_id" gorm:"index;not null"`
	LaborType        string  `json:"labor_type"` // skilled, unskilled, supervisor
	TradeDescription string  `json:"trade_description"`
	WorkersCount     int     `json:"workers_count"`
	HoursWorked      float64 `json:"hours_worked"`
	HourlyRate       float64 `json:"hourly_rate"`
	OvertimeHours    float64 `json:"overtime_hours"`
	WorkArea         string  `json:"work_area"`
	Notes            string  `json:"notes"`
}

// TotalCost is regular plus overtime (at 1.5x) labor cost for the crew
func (l *LaborEntry) TotalCost() float64 {
	regular := float64(l.WorkersCount) * l.HoursWorked * l.HourlyRate
	overtime := float64(l.WorkersCount) * l.OvertimeHours * l.HourlyRate * 1.5
	return regular + overtime
}

// MaterialEntry tracks material deliveries and consumption
type MaterialEntry struct {
	gorm.Model
	DiaryEntryID      uint    `json:"diary_entry_id" gorm:"index;not null"`
	MaterialName      string  `json:"material_name"`
	QuantityDelivered float64 `json:"quantity_delivered"`
	QuantityUsed      float64 `json:"quantity_used"`
	Unit              string  `json:"unit"` // m3, kg, ton, pcs, bags
	UnitCost          float64 `json:"unit_cost"`
	Supplier          string  `json:"supplier"`
	DeliveryTime      string  `json:"delivery_time"`
	QualityCheck      bool    `json:"quality_check" gorm:"default:false"`
	StorageLocation   string  `json:"storage_location"`
	Notes             string  `json:"notes"`
}

// EquipmentEntry tracks machinery used on site for the day
type EquipmentEntry struct {
	gorm.Model
	DiaryEntryID      uint    `json:"diary_entry_id" gorm:"index;not null"`
	EquipmentName     string  `json:"equipment_name"`
	EquipmentType     string  `json:"equipment_type"`
	OperatorName      string  `json:"operator_name"`
	HoursOperated     float64 `json:"hours_operated"`
	FuelConsumption   float64 `json:"fuel_consumption"`
	Status            string  `json:"status" gorm:"default:'operational'"` // operational, maintenance, breakdown, idle
	RentalCostPerHour float64 `json:"rental_cost_per_hour"`
	WorkArea          string  `json:"work_area"`
}

// DelayEntry records a work stoppage and its impact
type DelayEntry struct {
	gorm.Model
	DiaryEntryID       uint    `json:"diary_entry_id" gorm:"index;not null"`
	Category           string  `json:"category"` // weather, material, equipment, labor, design, permit, other
	Description        string  `json:"description"`
	StartTime          string  `json:"start_time"`
	EndTime            string  `json:"end_time"`
	DurationHours      float64 `json:"duration_hours"`
	ImpactLevel        string  `json:"impact_level"` // low, medium, high, critical
	AffectedActivities string  `json:"affected_activities"`
	MitigationActions  string  `json:"mitigation_actions"`
	ResponsibleParty   string  `json:"responsible_party"`
	CostImpact         float64 `json:"cost_impact"`
}

// VisitorEntry records a third party visiting the site
type VisitorEntry struct {
	gorm.Model
	DiaryEntryID   uint   `json:"diary_entry_id" gorm:"index;not null"`
	VisitorName    string `json:"visitor_name"`
	Company        string `json:"company"`
	VisitorType    string `json:"visitor_type"` // inspector, client, consultant, supplier, official, other
	ArrivalTime    string `json:"arrival_time"`
	DepartureTime  string `json:"departure_time"`
	PurposeOfVisit string `json:"purpose_of_visit"`
	AreasVisited   string `json:"areas_visited"`
	AccompaniedBy  string `json:"accompanied_by"`
	Notes          string `json:"notes"`
}
