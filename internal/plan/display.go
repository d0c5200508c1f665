package plan

import (
	"sort"
	"strings"
)

// weekdayOrder puts the prep days (Saturday, Sunday) first so the batch-prep
// instructions lead the week view.
var weekdayOrder = []string{"周六", "周日", "周一", "周二", "周三", "周四", "周五"}

// DisplayMenu returns a copy of the menu sorted for display: weekend prep days
// first, then Monday through Friday. The stored menu order is left untouched.
func DisplayMenu(menu []DailyMenu) []DailyMenu {
	sorted := make([]DailyMenu, len(menu))
	copy(sorted, menu)
	sort.SliceStable(sorted, func(a, b int) bool {
		return dayRank(sorted[a].Day) < dayRank(sorted[b].Day)
	})
	return sorted
}

// IsPrepDay reports whether the day label names a weekend prep day.
func IsPrepDay(day string) bool {
	return strings.Contains(day, "周六") || strings.Contains(day, "周日")
}

func dayRank(day string) int {
	for i, label := range weekdayOrder {
		if strings.Contains(day, label) {
			return i
		}
	}
	// Unrecognized labels sink to the end instead of hijacking the front.
	return len(weekdayOrder)
}
