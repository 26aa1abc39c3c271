package profile

import (
	"fmt"
	"time"
)

// UserProfile is one saved set of autofill values.
type UserProfile struct {
	// ID is assigned at creation by GenerateID and never changes
	ID string `json:"id"`

	// Name is the user-supplied label; must be non-empty to be saved
	Name string `json:"name"`

	// Data holds the field values filled into forms
	Data FormData `json:"data"`

	// CreatedAt is set once when the draft is created
	CreatedAt time.Time `json:"createdAt"`

	// LastUsed is refreshed whenever the profile is used to fill a form
	LastUsed time.Time `json:"lastUsed"`
}

// FormData holds the field values inside a profile. All values are plain
// strings, dates included.
type FormData struct {
	// Personal
	FullName  string `json:"fullName"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`

	// Address
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
	Country string `json:"country"`

	// Work
	Company   string `json:"company"`
	JobTitle  string `json:"jobTitle"`
	WorkEmail string `json:"workEmail"`
	WorkPhone string `json:"workPhone"`

	// Other
	DateOfBirth string `json:"dateOfBirth"`
	Gender      string `json:"gender"`
	Website     string `json:"website"`

	// CustomFields holds arbitrary extra key/value pairs
	CustomFields map[string]string `json:"customFields"`
}

// FieldKeys lists the JSON keys of the fixed FormData fields, in form order.
var FieldKeys = []string{
	"fullName", "firstName", "lastName", "email", "phone",
	"address", "city", "state", "zipCode", "country",
	"company", "jobTitle", "workEmail", "workPhone",
	"dateOfBirth", "gender", "website",
}

// field returns a pointer to the fixed field with the given JSON key.
func (d *FormData) field(key string) (*string, bool) {
	switch key {
	case "fullName":
		return &d.FullName, true
	case "firstName":
		return &d.FirstName, true
	case "lastName":
		return &d.LastName, true
	case "email":
		return &d.Email, true
	case "phone":
		return &d.Phone, true
	case "address":
		return &d.Address, true
	case "city":
		return &d.City, true
	case "state":
		return &d.State, true
	case "zipCode":
		return &d.ZipCode, true
	case "country":
		return &d.Country, true
	case "company":
		return &d.Company, true
	case "jobTitle":
		return &d.JobTitle, true
	case "workEmail":
		return &d.WorkEmail, true
	case "workPhone":
		return &d.WorkPhone, true
	case "dateOfBirth":
		return &d.DateOfBirth, true
	case "gender":
		return &d.Gender, true
	case "website":
		return &d.Website, true
	}
	return nil, false
}

// Get returns the value of the fixed field with the given JSON key.
func (d *FormData) Get(key string) (string, bool) {
	p, ok := d.field(key)
	if !ok {
		return "", false
	}
	return *p, true
}

// Set assigns a fixed field by its JSON key. Unknown keys are an error;
// use SetCustom for free-form fields.
func (d *FormData) Set(key, value string) error {
	p, ok := d.field(key)
	if !ok {
		return fmt.Errorf("unknown field %q", key)
	}
	*p = value
	return nil
}

// SetCustom assigns a custom field, allocating the map if needed.
func (d *FormData) SetCustom(key, value string) {
	if d.CustomFields == nil {
		d.CustomFields = make(map[string]string)
	}
	d.CustomFields[key] = value
}

// NewProfile returns an empty draft: fresh id, empty name and fields,
// CreatedAt and LastUsed set to now.
func NewProfile(now time.Time) UserProfile {
	return UserProfile{
		ID:   GenerateID(),
		Data: FormData{CustomFields: map[string]string{}},

		CreatedAt: now,
		LastUsed:  now,
	}
}

// DisplayName returns the name shown in lists.
func (p UserProfile) DisplayName() string {
	if p.Name == "" {
		return "Unnamed Profile"
	}
	return p.Name
}
