package sessions

// Repo materializes the single session record to and from durable storage.
// It holds no copy of its own; the lifecycle manager owns the in-memory session.
type Repo interface {
	// Load returns nil, nil when no record exists.
	Load() (*Session, error)

	// Save fully replaces any existing record.
	Save(session Session) error

	// Clear removes the record. Clearing an absent record is not an error.
	Clear() error

	// Exists reports whether a record is present without parsing it.
	Exists() (bool, error)
}
