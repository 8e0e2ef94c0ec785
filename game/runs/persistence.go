package runs

// Persistence defines the interface for storing run records.
type Persistence interface {
	// Save persists a record to storage.
	Save(rec *Record) error

	// Load retrieves a record from storage by run ID.
	Load(id string) (*Record, error)

	// Delete removes a record from storage.
	Delete(id string) error

	// ListAll returns all persisted run IDs.
	ListAll() ([]string, error)

	// Exists checks if a record exists in storage.
	Exists(id string) bool
}
