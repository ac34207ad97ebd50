package attendance

import (
	"math"
	"sort"
	"time"

	"github.com/wfo-tracker/attendance-backend-go/internal/domain/category"
	"github.com/wfo-tracker/attendance-backend-go/internal/pkg/validator"
)

// MonthlyStats is the WFO progress of one user in one calendar month.
type MonthlyStats struct {
	UserID             int64   `json:"-"`
	Year               int     `json:"year"`
	Month              int     `json:"month"`
	TotalDays          int     `json:"totalDays"`
	WFOGoalPercentage  int     `json:"wfoGoalPercentage"`
	WFOCount           int     `json:"wfoCount"`
	WFHCount           int     `json:"wfhCount"`
	AbsenceCount       int     `json:"absenceCount"`
	TotalRecorded      int     `json:"totalRecorded"`
	AchievedPercentage float64 `json:"achievedPercentage"`
	RequiredWFODays    int     `json:"requiredWfoDays"`
	RemainingWFODays   int     `json:"remainingWfoDays"`
}

// MonthRange returns the first and last calendar day of (year, month), both at
// midnight UTC.
func MonthRange(year, month int) (start, end time.Time, err error) {
	if month < 1 || month > 12 {
		return time.Time{}, time.Time{}, ErrInvalidMonth
	}
	start = time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	// Day 0 of the next month normalizes to the last day of this one.
	end = time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC)
	return start, end, nil
}

// DaysInMonth returns the number of calendar days of (year, month).
func DaysInMonth(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ComputeMonthlyStats derives the monthly statistics from the per-category counts
// of the month. Only WFO, WFH and Absence are tracked; other names are ignored.
// month must already be validated.
func ComputeMonthlyStats(year, month, goalPercentage int, counts map[string]int) MonthlyStats {
	totalDays := DaysInMonth(year, month)

	wfo := counts[category.NameWFO]
	wfh := counts[category.NameWFH]
	absence := counts[category.NameAbsence]

	effectiveDays := max(0, totalDays-absence)

	achieved := 0.0
	if effectiveDays > 0 {
		achieved = round2(float64(wfo) * 100.0 / float64(effectiveDays))
	}

	required := int(math.Ceil(float64(effectiveDays*goalPercentage) / 100.0))

	return MonthlyStats{
		Year:               year,
		Month:              month,
		TotalDays:          totalDays,
		WFOGoalPercentage:  goalPercentage,
		WFOCount:           wfo,
		WFHCount:           wfh,
		AbsenceCount:       absence,
		TotalRecorded:      wfo + wfh + absence,
		AchievedPercentage: achieved,
		RequiredWFODays:    required,
		RemainingWFODays:   max(0, required-wfo),
	}
}

// UntrackedCategories returns the sorted names in counts that ComputeMonthlyStats ignores.
func UntrackedCategories(counts map[string]int) []string {
	var names []string
	for name := range counts {
		if !validator.IsInSlice(name, category.CanonicalNames) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// round2 rounds half-up to two decimal places.
func round2(v float64) float64 {
	return math.Floor(v*100+0.5) / 100
}
