package artifact

import (
	"time"

	"github.com/lorekeep/lorekeep/internal/platform/timeutil"
)

// SchemaVersion is the schema revision written into new artifacts.
const SchemaVersion = "1.0"

// Metadata identifies and versions a persisted artifact.
type Metadata struct {
	ID            string        `yaml:"id"`
	CreatedAt     timeutil.Time `yaml:"created_at"`
	UpdatedAt     timeutil.Time `yaml:"updated_at"`
	Version       int           `yaml:"version"`
	SchemaVersion string        `yaml:"schema_version"`
}

// NewMetadata builds metadata for a freshly created artifact.
func NewMetadata(id string, now time.Time) Metadata {
	created := timeutil.New(now)
	return Metadata{
		ID:            id,
		CreatedAt:     created,
		UpdatedAt:     created,
		Version:       1,
		SchemaVersion: SchemaVersion,
	}
}

// Touch records a mutation: it refreshes UpdatedAt and bumps the version.
func (m *Metadata) Touch(now time.Time) {
	m.UpdatedAt = timeutil.New(now)
	m.Version++
}
