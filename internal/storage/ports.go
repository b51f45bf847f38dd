package storage

import (
	"context"

	"ledger/internal/core"
)

// Ports implemented by every record store. Each mutation is atomic: when it
// returns an error nothing it attempted is observable.
type (
	ContactWriter interface {
		// CreateContact fails with *core.DuplicateNameError when the name
		// clashes, ignoring case, with an existing contact.
		CreateContact(ctx context.Context, c core.Contact) error
		// DeleteContact removes the contact, its transactions and its
		// project membership.
		DeleteContact(ctx context.Context, id string) error
	}

	TransactionWriter interface {
		// CreateTransaction stores t. When created is non-nil the contact is
		// inserted first, in the same unit of work.
		CreateTransaction(ctx context.Context, t core.Transaction, created *core.Contact) error
		DeleteTransaction(ctx context.Context, id string) error
	}

	ProjectWriter interface {
		// CreateProject stores p. Listed members leave any previous project.
		CreateProject(ctx context.Context, p core.Project) error
		// AssignContact moves a contact into a project, appending it to the
		// member order. An empty projectID removes the contact from its project.
		AssignContact(ctx context.Context, contactID, projectID string) error
		// DeleteProject removes the project. Member contacts are kept.
		DeleteProject(ctx context.Context, id string) error
	}

	SnapshotReader interface {
		Snapshot(ctx context.Context) (*core.Snapshot, error)
	}

	// SettingsStore persists small UI flags such as the onboarding page.
	SettingsStore interface {
		Setting(ctx context.Context, key string) (value string, ok bool, err error)
		PutSetting(ctx context.Context, key, value string) error
	}

	Store interface {
		ContactWriter
		TransactionWriter
		ProjectWriter
		SnapshotReader
		SettingsStore
		Close() error
	}
)
