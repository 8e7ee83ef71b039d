package csapi

import (
	"bytes"
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// Resource represents the server-managed fields every entity carries.
type Resource struct {
	ID        int       `json:"id"         yaml:"id"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
}

// GetID returns the server-assigned identifier, or zero for an entity that was never created.
func (r Resource) GetID() int {
	return r.ID
}

// Identifiable is implemented by every entity type.
type Identifiable interface {
	GetID() int
}

// Properties is a free-form attribute mapping attached to storages, sections and items.
type Properties map[string]interface{}

// Date is a calendar date encoded as "YYYY-MM-DD". The zero value encodes as null.
type Date struct {
	time.Time
}

// NewDate returns the given calendar date in UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a "YYYY-MM-DD" string.
func ParseDate(value string) (Date, error) {
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return Date{}, fmt.Errorf("parsing date %q: %w", value, err)
	}

	return Date{Time: t}, nil
}

// String implements fmt.Stringer.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}

	return d.Format(dateLayout)
}

// MarshalJSON implements json.Marshaler.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}

	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler. Full RFC 3339 timestamps are accepted too.
func (d *Date) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		d.Time = time.Time{}

		return nil
	}

	value := strings.Trim(string(data), `"`)
	if value == "" {
		d.Time = time.Time{}

		return nil
	}

	t, err := time.Parse(dateLayout, value)
	if err != nil {
		t, err = time.Parse(time.RFC3339, value)
		if err != nil {
			return fmt.Errorf("parsing date %q: %w", value, err)
		}
	}

	d.Time = t

	return nil
}

// MarshalYAML renders the date the same way it travels on the wire.
func (d Date) MarshalYAML() (interface{}, error) {
	if d.IsZero() {
		return nil, nil
	}

	return d.Format(dateLayout), nil
}

// Pagination is the page metadata carried by every collection envelope.
type Pagination struct {
	Total      int  `json:"total"       yaml:"total"`
	Page       int  `json:"page"        yaml:"page"`
	PageSize   int  `json:"page_size"   yaml:"page_size"`
	TotalPages int  `json:"total_pages" yaml:"total_pages"`
	HasNext    bool `json:"has_next"    yaml:"has_next"`
	HasPrev    bool `json:"has_prev"    yaml:"has_prev"`
}

// ListResponse represents one decoded page of a collection.
type ListResponse[T any] struct {
	Pagination `yaml:",inline"`

	Data []T `json:"data" yaml:"data"`
}

// LaboratoriesList represents a page of Laboratory resources.
type LaboratoriesList = ListResponse[Laboratory]

// StoragesList represents a page of Storage resources.
type StoragesList = ListResponse[Storage]

// SectionsList represents a page of Section resources.
type SectionsList = ListResponse[Section]

// ItemsList represents a page of Item resources.
type ItemsList = ListResponse[Item]

// MovementsList represents a page of Movement resources.
type MovementsList = ListResponse[Movement]

// UsersList represents a page of User resources.
type UsersList = ListResponse[User]
