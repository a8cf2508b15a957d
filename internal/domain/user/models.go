package user

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var ErrEmptyProfile = errors.New("user profile is empty")

// Profile is the signed-in user's identity snapshot as returned by the
// ledger at login. It is replaced wholesale, never edited.
type Profile struct {
	UID         string   `json:"uid"`
	Username    string   `json:"username"`
	FirstName   string   `json:"firstName"`
	LastName    string   `json:"lastName"`
	DOB         Scalar   `json:"dob,omitempty"`
	PhoneNumber Scalar   `json:"phoneNumber,omitempty"`
	Tag         string   `json:"tag,omitempty"`
	Gender      string   `json:"gender,omitempty"`
	Roles       []string `json:"roles,omitempty"`
	CreatedAt   string   `json:"createdAt,omitempty"`
	UpdatedAt   string   `json:"updatedAt,omitempty"`

	raw json.RawMessage
}

// ParseProfile decodes the ledger's user JSON, keeping the original bytes so
// fields this client does not model survive a save/load cycle.
func ParseProfile(data []byte) (*Profile, error) {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" || trimmed == "{}" {
		return nil, ErrEmptyProfile
	}

	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to decode user profile: %w", err)
	}
	p.raw = append(json.RawMessage(nil), data...)
	return &p, nil
}

// Raw returns the JSON the profile was parsed from, or a fresh encoding
// when it was built in code.
func (p *Profile) Raw() (json.RawMessage, error) {
	if len(p.raw) > 0 {
		return p.raw, nil
	}
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to encode user profile: %w", err)
	}
	return data, nil
}

func (p *Profile) DisplayName() string {
	name := strings.TrimSpace(p.FirstName + " " + p.LastName)
	if name == "" {
		return p.Username
	}
	return name
}

func (p *Profile) HasRole(role string) bool {
	for _, r := range p.Roles {
		if strings.EqualFold(r, role) {
			return true
		}
	}
	return false
}

// Scalar keeps a JSON string or number as text. The ledger sends some
// profile fields (phone number, date of birth) as numbers.
type Scalar string

func (s *Scalar) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = Scalar(str)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", data)
	}
	*s = Scalar(n.String())
	return nil
}
