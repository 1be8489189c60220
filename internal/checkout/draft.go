package checkout

import (
	"regexp"
	"strings"
)

// Draft carries the contact and address fields entered at checkout. Phone
// and the second address line are optional; everything else is required.
type Draft struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone,omitempty"`
	AddressLine1 string `json:"address_line1"`
	AddressLine2 string `json:"address_line2,omitempty"`
	City         string `json:"city"`
	State        string `json:"state"`
	Pincode      string `json:"pincode"`
}

var pincodeRe = regexp.MustCompile(`^[0-9]{6}$`)

// Validate reports the first field that blocks submission. No collaborator
// call is made for an invalid draft.
func (d Draft) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if strings.TrimSpace(d.Email) == "" || !strings.Contains(d.Email, "@") {
		return &ValidationError{Field: "email", Reason: "must be a valid email address"}
	}
	if strings.TrimSpace(d.AddressLine1) == "" {
		return &ValidationError{Field: "address_line1", Reason: "must not be empty"}
	}
	if strings.TrimSpace(d.City) == "" {
		return &ValidationError{Field: "city", Reason: "must not be empty"}
	}
	if strings.TrimSpace(d.State) == "" {
		return &ValidationError{Field: "state", Reason: "must not be empty"}
	}
	if !pincodeRe.MatchString(d.Pincode) {
		return &ValidationError{Field: "pincode", Reason: "must be exactly 6 digits"}
	}
	return nil
}

// FullAddress joins the non-empty address parts into the single formatted
// string persisted on the order.
func (d Draft) FullAddress() string {
	parts := make([]string, 0, 5)
	for _, part := range []string{d.AddressLine1, d.AddressLine2, d.City, d.State, d.Pincode} {
		if strings.TrimSpace(part) != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, ", ")
}
