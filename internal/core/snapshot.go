package core

import "time"

// Snapshot is an immutable view of the whole record set, taken once per
// aggregation pass. Inverse relations (a contact's transactions, a contact's
// project) are answered from indexes built at construction time.
type Snapshot struct {
	contacts     []Contact
	transactions []Transaction
	projects     []Project

	contactByID   map[string]int
	contactByName map[string]int
	txnsByContact map[string][]int
	projectByID   map[string]int
	projectOf     map[string]int
}

// NewSnapshot copies the given records and indexes them. Input slices are in
// creation order.
func NewSnapshot(contacts []Contact, txns []Transaction, projects []Project) *Snapshot {
	s := &Snapshot{
		contacts:      append([]Contact(nil), contacts...),
		transactions:  append([]Transaction(nil), txns...),
		projects:      make([]Project, len(projects)),
		contactByID:   make(map[string]int, len(contacts)),
		contactByName: make(map[string]int, len(contacts)),
		txnsByContact: make(map[string][]int, len(contacts)),
		projectByID:   make(map[string]int, len(projects)),
		projectOf:     make(map[string]int),
	}
	for i, c := range s.contacts {
		s.contactByID[c.ID] = i
		s.contactByName[NameKey(c.Name)] = i
	}
	for i, t := range s.transactions {
		s.txnsByContact[t.ContactID] = append(s.txnsByContact[t.ContactID], i)
	}
	for i, p := range projects {
		s.projects[i] = p.Clone()
		s.projectByID[p.ID] = i
		for _, id := range p.ContactIDs {
			s.projectOf[id] = i
		}
	}
	return s
}

// Contacts returns all contacts in creation order.
func (s *Snapshot) Contacts() []Contact {
	return append([]Contact(nil), s.contacts...)
}

// Transactions returns all transactions in insertion order.
func (s *Snapshot) Transactions() []Transaction {
	return append([]Transaction(nil), s.transactions...)
}

// Projects returns all projects in creation order.
func (s *Snapshot) Projects() []Project {
	out := make([]Project, len(s.projects))
	for i, p := range s.projects {
		out[i] = p.Clone()
	}
	return out
}

func (s *Snapshot) Contact(id string) (Contact, bool) {
	i, ok := s.contactByID[id]
	if !ok {
		return Contact{}, false
	}
	return s.contacts[i], true
}

// ContactByName looks a contact up ignoring case.
func (s *Snapshot) ContactByName(name string) (Contact, bool) {
	i, ok := s.contactByName[NameKey(name)]
	if !ok {
		return Contact{}, false
	}
	return s.contacts[i], true
}

// TransactionsOf returns the contact's transactions in insertion order.
func (s *Snapshot) TransactionsOf(contactID string) []Transaction {
	idx := s.txnsByContact[contactID]
	out := make([]Transaction, len(idx))
	for i, j := range idx {
		out[i] = s.transactions[j]
	}
	return out
}

// LastActivity returns the CurrentDate of the contact's most recently
// inserted transaction.
func (s *Snapshot) LastActivity(contactID string) (time.Time, bool) {
	idx := s.txnsByContact[contactID]
	if len(idx) == 0 {
		return time.Time{}, false
	}
	return s.transactions[idx[len(idx)-1]].CurrentDate, true
}

func (s *Snapshot) Transaction(id string) (Transaction, bool) {
	for _, t := range s.transactions {
		if t.ID == id {
			return t, true
		}
	}
	return Transaction{}, false
}

func (s *Snapshot) Project(id string) (Project, bool) {
	i, ok := s.projectByID[id]
	if !ok {
		return Project{}, false
	}
	return s.projects[i].Clone(), true
}

// ProjectByName returns the first project with the given name, ignoring case.
// Project names are not unique.
func (s *Snapshot) ProjectByName(name string) (Project, bool) {
	key := NameKey(name)
	for _, p := range s.projects {
		if NameKey(p.Name) == key {
			return p.Clone(), true
		}
	}
	return Project{}, false
}

// ProjectOf returns the project the contact belongs to, if any.
func (s *Snapshot) ProjectOf(contactID string) (Project, bool) {
	i, ok := s.projectOf[contactID]
	if !ok {
		return Project{}, false
	}
	return s.projects[i].Clone(), true
}

// Members returns the project's contacts in member order.
func (s *Snapshot) Members(projectID string) []Contact {
	i, ok := s.projectByID[projectID]
	if !ok {
		return nil
	}
	out := make([]Contact, 0, len(s.projects[i].ContactIDs))
	for _, id := range s.projects[i].ContactIDs {
		if c, ok := s.Contact(id); ok {
			out = append(out, c)
		}
	}
	return out
}
