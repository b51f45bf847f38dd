package format

import "time"

// LongDateLayout matches the long date style used in transaction lists.
const LongDateLayout = "January 2, 2006"

// LongDate formats t as "January 2, 2006".
func LongDate(t time.Time) string {
	return t.Format(LongDateLayout)
}
