package core

import "time"

// MonthSection is the transactions of one "Jan 2006" bucket and their total.
type MonthSection struct {
	Label        string
	Transactions []Transaction
	Total        float64
}

// ContactLine is a contact with its balance and last activity.
type ContactLine struct {
	Contact      Contact
	Total        float64
	LastActivity time.Time // zero when the contact has no transactions
	Project      string
}

// ProjectLine is a project with the summed balance of its members.
type ProjectLine struct {
	Project Project
	Total   float64
	Members int
}
