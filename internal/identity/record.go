package identity

import (
	"encoding/json"
	"strings"
)

// Role names produced by sources that classify users.
const (
	RoleTeacher = "teacher"
	RoleStudent = "student"
)

// RoleAssignment is one role a user holds in a school.
// A user may hold several, in the same or in different schools.
type RoleAssignment struct {
	School       string `json:"school"`
	Role         string `json:"role"`
	Group        string `json:"group"`
	Municipality string `json:"municipality"`
}

// Attribute is an opaque key/value pair attached to a user.
type Attribute struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Record is the canonical, source independent user shape.
type Record struct {
	Username   string           `json:"username"`
	FirstName  string           `json:"first_name"`
	LastName   string           `json:"last_name"`
	Roles      []RoleAssignment `json:"roles"`
	Attributes []Attribute      `json:"attributes"`
}

// AddAttribute appends an attribute, keeping insertion order.
func (r *Record) AddAttribute(name, value string) {
	r.Attributes = append(r.Attributes, Attribute{Name: name, Value: value})
}

// MarshalJSON renders nil role and attribute lists as empty lists.
func (r Record) MarshalJSON() ([]byte, error) {
	type plain Record

	out := plain(r)
	if out.Roles == nil {
		out.Roles = []RoleAssignment{}
	}

	if out.Attributes == nil {
		out.Attributes = []Attribute{}
	}

	return json.Marshal(out)
}

// UserList is the listing envelope. Next and Previous are always nil.
type UserList struct {
	Count    int      `json:"count"`
	Next     *string  `json:"next"`
	Previous *string  `json:"previous"`
	Results  []Record `json:"results"`
}

// NewUserList wraps records in a single, unpaginated page.
func NewUserList(records []Record) *UserList {
	if records == nil {
		records = []Record{}
	}

	return &UserList{
		Count:   len(records),
		Results: records,
	}
}

// EmptyUserList returns a well formed list without results.
func EmptyUserList() *UserList {
	return NewUserList(nil)
}

// Filter holds the recognized listing filters. Unrecognized keys are dropped
// by FilterFromQuery.
type Filter struct {
	Municipality string
	School       string
	Group        string
	Username     string
	ChangedAt    string
}

// FilterFromQuery picks the recognized keys out of a flat query map.
func FilterFromQuery(q map[string]string) Filter {
	return Filter{
		Municipality: strings.TrimSpace(q["municipality"]),
		School:       strings.TrimSpace(q["school"]),
		Group:        strings.TrimSpace(q["group"]),
		Username:     strings.TrimSpace(q["username"]),
		ChangedAt:    strings.TrimSpace(q["changed_at"]),
	}
}

// Clone returns a deep copy, so callers may append attributes without
// touching a record shared with other requests.
func (r *Record) Clone() *Record {
	out := *r
	out.Roles = append([]RoleAssignment(nil), r.Roles...)
	out.Attributes = append([]Attribute(nil), r.Attributes...)

	return &out
}
