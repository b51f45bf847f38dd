package period

import "time"

// LabelLayout is the layout of month bucket labels, e.g. "Jan 2024".
const LabelLayout = "Jan 2006"

// MonthLabel returns the bucket label of t. It is the join key between a
// transaction and its bucket.
func MonthLabel(t time.Time) string {
	return t.Format(LabelLayout)
}

// MonthBuckets returns the month labels from start to end inclusive, oldest
// first. If start's month is after end's month only end's month is returned.
func MonthBuckets(start, end time.Time) []string {
	first := firstOfMonth(start.In(end.Location()))
	last := firstOfMonth(end)
	if first.After(last) {
		return []string{MonthLabel(last)}
	}

	var labels []string
	for m := first; !m.After(last); m = m.AddDate(0, 1, 0) {
		labels = append(labels, MonthLabel(m))
	}
	return labels
}

func firstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}
