package types

import (
	"database/sql/driver"
	"fmt"

	"github.com/google/uuid"
)

// ID is a UUID string used for every entity key
type ID string

// seedNamespace anchors deterministic IDs for reference data such as districts
var seedNamespace = uuid.MustParse("3f1e7c52-8a4d-5b0e-9c61-4d2a7f8e1b90")

// NewID generates a new random ID
func NewID() ID {
	return ID(uuid.New().String())
}

// NewDeterministicID returns the same ID for the same kind+key pair,
// so reseeding reference data never duplicates rows.
func NewDeterministicID(kind, key string) ID {
	return ID(uuid.NewSHA1(seedNamespace, []byte(kind+":"+key)).String())
}

// ParseID parses a string into an ID
func ParseID(s string) (ID, error) {
	if _, err := uuid.Parse(s); err != nil {
		return "", fmt.Errorf("invalid ID: %w", err)
	}
	return ID(s), nil
}

// ParseOptionalID parses s, returning nil for an empty string
func ParseOptionalID(s string) (*ID, error) {
	if s == "" {
		return nil, nil
	}
	id, err := ParseID(s)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func (id ID) String() string {
	return string(id)
}

// IsZero checks if the ID is empty
func (id ID) IsZero() bool {
	return id == ""
}

// Ptr returns a pointer to a copy of id
func (id ID) Ptr() *ID {
	return &id
}

// SameID reports whether two optional IDs are both set and equal
func SameID(a, b *ID) bool {
	return a != nil && b != nil && *a == *b
}

// Value implements driver.Valuer for database serialization
func (id ID) Value() (driver.Value, error) {
	if id.IsZero() {
		return nil, nil
	}
	return string(id), nil
}

// Scan implements sql.Scanner for database deserialization
func (id *ID) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*id = ""
	case string:
		*id = ID(v)
	case []byte:
		*id = ID(string(v))
	case [16]byte:
		*id = ID(uuid.UUID(v).String())
	default:
		return fmt.Errorf("cannot scan %T into ID", value)
	}
	return nil
}
