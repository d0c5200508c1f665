package plan

import "time"

// seasonByMonth maps calendar months to the fixed quarter labels used in
// recommendation prompts: Dec-Feb winter, Mar-May spring, Jun-Aug summer,
// Sep-Nov autumn.
var seasonByMonth = map[time.Month]string{
	time.December: "冬季", time.January: "冬季", time.February: "冬季",
	time.March: "春季", time.April: "春季", time.May: "春季",
	time.June: "夏季", time.July: "夏季", time.August: "夏季",
	time.September: "秋季", time.October: "秋季", time.November: "秋季",
}

// SeasonFor returns the season label for the given date.
func SeasonFor(t time.Time) string {
	return seasonByMonth[t.Month()]
}
