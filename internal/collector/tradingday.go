package collector

import "time"

// KST is the exchange's time zone.
var KST = time.FixedZone("KST", 9*60*60)

// Daily data for a session is published after this hour (KST).
const publishHour = 16

// LatestTradingDay returns the most recent session whose data should be
// published at now. Weekends roll back to Friday; holidays are not known.
func LatestTradingDay(now time.Time) time.Time {
	d := now.In(KST)
	if d.Hour() < publishHour {
		d = d.AddDate(0, 0, -1)
	}
	switch d.Weekday() {
	case time.Sunday:
		d = d.AddDate(0, 0, -2)
	case time.Saturday:
		d = d.AddDate(0, 0, -1)
	}
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, KST)
}

// FormatBaseDate renders a day as the feed's basDt parameter (YYYYMMDD).
func FormatBaseDate(t time.Time) string {
	return t.In(KST).Format("20060102")
}
