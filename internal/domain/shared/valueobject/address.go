package valueobject

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// DefaultCountry is applied when no country is supplied
const DefaultCountry = "UK"

// Address is a value object representing a shipping address
// It is immutable - all operations return new Address instances
type Address struct {
	line1      string
	city       string
	postalCode string
	country    string
}

// AddressOption is a functional option for configuring Address
type AddressOption func(*Address)

// WithCountry sets the country for the address
func WithCountry(country string) AddressOption {
	return func(a *Address) {
		a.country = strings.TrimSpace(country)
	}
}

// NewAddress creates a new Address. Fields may be partially filled while a
// buyer is still typing; completeness is checked separately via IsComplete.
func NewAddress(line1, city, postalCode string, opts ...AddressOption) (Address, error) {
	line1 = strings.TrimSpace(line1)
	city = strings.TrimSpace(city)
	postalCode = strings.TrimSpace(postalCode)

	if len(line1) > 200 {
		return Address{}, fmt.Errorf("address cannot exceed 200 characters")
	}
	if len(city) > 100 {
		return Address{}, fmt.Errorf("city cannot exceed 100 characters")
	}
	if len(postalCode) > 20 {
		return Address{}, fmt.Errorf("postal code cannot exceed 20 characters")
	}

	addr := Address{
		line1:      line1,
		city:       city,
		postalCode: postalCode,
		country:    DefaultCountry,
	}

	for _, opt := range opts {
		opt(&addr)
	}

	if len(addr.country) > 100 {
		return Address{}, fmt.Errorf("country cannot exceed 100 characters")
	}

	return addr, nil
}

// NewAddressFull creates a new Address with all fields set
func NewAddressFull(line1, city, postalCode, country string) (Address, error) {
	return NewAddress(line1, city, postalCode, WithCountry(country))
}

// MustNewAddress creates a new Address, panics on error
func MustNewAddress(line1, city, postalCode string, opts ...AddressOption) Address {
	addr, err := NewAddress(line1, city, postalCode, opts...)
	if err != nil {
		panic(err)
	}
	return addr
}

// EmptyAddress returns an empty address (for carts without one yet)
func EmptyAddress() Address {
	return Address{}
}

// Line1 returns the street address
func (a Address) Line1() string {
	return a.line1
}

// City returns the city
func (a Address) City() string {
	return a.city
}

// PostalCode returns the postal code
func (a Address) PostalCode() string {
	return a.postalCode
}

// Country returns the country
func (a Address) Country() string {
	return a.country
}

// IsEmpty returns true if all fields are blank
func (a Address) IsEmpty() bool {
	return a.line1 == "" && a.city == "" && a.postalCode == "" && a.country == ""
}

// IsComplete returns true when every field a courier needs is filled in
func (a Address) IsComplete() bool {
	return a.line1 != "" && a.city != "" && a.postalCode != "" && a.country != ""
}

// FullAddress returns the complete formatted address string
func (a Address) FullAddress() string {
	if a.IsEmpty() {
		return ""
	}

	parts := make([]string, 0, 4)
	if a.line1 != "" {
		parts = append(parts, a.line1)
	}
	if a.city != "" {
		parts = append(parts, a.city)
	}
	if a.postalCode != "" {
		parts = append(parts, a.postalCode)
	}
	if a.country != "" {
		parts = append(parts, a.country)
	}
	return strings.Join(parts, ", ")
}

// String returns a string representation of the address
func (a Address) String() string {
	return a.FullAddress()
}

// Equals returns true if both addresses are equal
func (a Address) Equals(other Address) bool {
	return a.line1 == other.line1 &&
		a.city == other.city &&
		a.postalCode == other.postalCode &&
		a.country == other.country
}

// addressJSON is used for JSON marshaling/unmarshaling.
// The key names match the shape carts were historically persisted with.
type addressJSON struct {
	Line1      string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

// MarshalJSON implements json.Marshaler
func (a Address) MarshalJSON() ([]byte, error) {
	return json.Marshal(addressJSON{
		Line1:      a.line1,
		City:       a.city,
		PostalCode: a.postalCode,
		Country:    a.country,
	})
}

// UnmarshalJSON implements json.Unmarshaler. An all-blank payload produces
// EmptyAddress; anything else goes through the validating factory.
func (a *Address) UnmarshalJSON(data []byte) error {
	var v addressJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}

	if v.Line1 == "" && v.City == "" && v.PostalCode == "" && v.Country == "" {
		*a = EmptyAddress()
		return nil
	}

	addr, err := NewAddressFull(v.Line1, v.City, v.PostalCode, v.Country)
	if err != nil {
		return err
	}
	*a = addr
	return nil
}

// Value implements driver.Valuer so Address can be stored as a JSON column
func (a Address) Value() (driver.Value, error) {
	if a.IsEmpty() {
		return nil, nil
	}
	b, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner for database retrieval
func (a *Address) Scan(value any) error {
	if value == nil {
		*a = EmptyAddress()
		return nil
	}

	var b []byte
	switch v := value.(type) {
	case string:
		b = []byte(v)
	case []byte:
		b = v
	default:
		return fmt.Errorf("cannot scan %T into Address", value)
	}

	return a.UnmarshalJSON(b)
}
