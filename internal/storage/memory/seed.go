package memory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"ledger/internal/core"
)

// Seed is the YAML fixture format. Records refer to contacts by name.
type Seed struct {
	Contacts     []string          `yaml:"contacts"`
	Projects     []SeedProject     `yaml:"projects"`
	Transactions []SeedTransaction `yaml:"transactions"`
}

type SeedProject struct {
	Name    string   `yaml:"name"`
	Members []string `yaml:"members"`
}

type SeedTransaction struct {
	Person string  `yaml:"person"`
	Title  string  `yaml:"title"`
	Amount float64 `yaml:"amount"`
	Date   string  `yaml:"date"`
}

// NewFromFile returns a store seeded from the YAML file at path. A missing
// file yields an empty store.
func NewFromFile(path string) (*Store, error) {
	s := New()
	if path == "" {
		return s, nil
	}
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()

	if err := s.Load(context.Background(), f, time.Now()); err != nil {
		return nil, fmt.Errorf("seed %s: %w", path, err)
	}
	return s, nil
}

// Load adds the records of a YAML seed. Contacts named by transactions or
// projects are created when missing. now stamps creation times.
func (s *Store) Load(ctx context.Context, r io.Reader, now time.Time) error {
	var seed Seed
	if err := yaml.NewDecoder(r).Decode(&seed); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode seed: %w", err)
	}

	ids := map[string]string{}
	contact := func(name string) (string, error) {
		key := core.NameKey(name)
		if id, ok := ids[key]; ok {
			return id, nil
		}
		c := core.Contact{ID: uuid.NewString(), Name: strings.TrimSpace(name), CreatedAt: now}
		if err := s.CreateContact(ctx, c); err != nil {
			var dup *core.DuplicateNameError
			if !errors.As(err, &dup) {
				return "", err
			}
			c = dup.Existing
		}
		ids[key] = c.ID
		return c.ID, nil
	}

	for _, name := range seed.Contacts {
		if _, err := contact(name); err != nil {
			return err
		}
	}
	for i, st := range seed.Transactions {
		contactID, err := contact(st.Person)
		if err != nil {
			return fmt.Errorf("transaction %d: %w", i, err)
		}
		date, err := parseSeedDate(st.Date, now)
		if err != nil {
			return fmt.Errorf("transaction %d: %w", i, err)
		}
		t := core.Transaction{
			ID:          uuid.NewString(),
			ContactID:   contactID,
			Title:       st.Title,
			Amount:      st.Amount,
			Date:        date,
			CurrentDate: now.Add(time.Duration(i) * time.Millisecond),
		}
		if err := s.CreateTransaction(ctx, t, nil); err != nil {
			return fmt.Errorf("transaction %d: %w", i, err)
		}
	}
	for _, sp := range seed.Projects {
		p := core.Project{ID: uuid.NewString(), Name: sp.Name, CreatedAt: now}
		for _, m := range sp.Members {
			id, err := contact(m)
			if err != nil {
				return fmt.Errorf("project %q: %w", sp.Name, err)
			}
			p.ContactIDs = append(p.ContactIDs, id)
		}
		if err := s.CreateProject(ctx, p); err != nil {
			return fmt.Errorf("project %q: %w", sp.Name, err)
		}
	}
	return nil
}

func parseSeedDate(s string, now time.Time) (time.Time, error) {
	if s == "" {
		return now, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation("2006-01-02", s, now.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q: %w", s, err)
	}
	return t, nil
}
