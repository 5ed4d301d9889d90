package dreamschool

import (
	"strconv"
	"strings"

	"github.com/authdata/authdata/internal/identity"
)

// classGroupType marks the user groups that are school classes.
const classGroupType = "classgroup"

type listing struct {
	Objects []user `json:"objects"`
}

type user struct {
	ID         int64       `json:"id"`
	Username   string      `json:"username"`
	FirstName  string      `json:"first_name"`
	LastName   string      `json:"last_name"`
	Roles      []role      `json:"roles"`
	UserGroups []userGroup `json:"user_groups"`
}

type role struct {
	Permissions  []permission `json:"permissions"`
	Organisation organisation `json:"organisation"`
}

type permission struct {
	Code string `json:"code"`
}

type organisation struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
}

type userGroup struct {
	Title        string       `json:"title"`
	FilterType   string       `json:"filter_type"`
	Organisation organisation `json:"organisation"`
}

// extractor maps API users onto the canonical shape. Each role entry of a
// user becomes one role assignment.
type extractor struct {
	teacherPermission string
	organisations     organisationMap
	// municipality is the municipality the request was filtered by, if any.
	municipality string
}

func (x extractor) ExternalID(u user) string {
	return strconv.FormatInt(u.ID, 10)
}

func (x extractor) Username(u user) string {
	return u.Username
}

func (x extractor) FirstName(u user) string {
	return u.FirstName
}

func (x extractor) LastName(u user) string {
	return u.LastName
}

func (x extractor) RoleEntries(u user) []role {
	return u.Roles
}

func (x extractor) School(_ user, r role) string {
	return r.Organisation.Title
}

// Role classifies by permission: teacher when the teacher permission is
// granted, student otherwise.
func (x extractor) Role(_ user, r role) string {
	for _, p := range r.Permissions {
		if p.Code == x.teacherPermission {
			return identity.RoleTeacher
		}
	}

	return identity.RoleStudent
}

// Group is the first class group of the user in the role's organisation.
func (x extractor) Group(u user, r role) string {
	for _, g := range u.UserGroups {
		if g.FilterType == classGroupType && g.Organisation.ID == r.Organisation.ID {
			return g.Title
		}
	}

	return ""
}

func (x extractor) Municipality(_ user, r role) string {
	municipality, ok := x.organisations.municipalityOf(r.Organisation.ID)
	if !ok {
		return ""
	}

	if x.municipality != "" && strings.EqualFold(x.municipality, municipality) {
		return x.municipality
	}

	return municipality
}

// organisationMap maps municipality -> school display name -> organisation id.
type organisationMap map[string]map[string]int

// lookup finds the organisation id of a school, ignoring case.
func (m organisationMap) lookup(municipality, school string) (int, bool) {
	for name, schools := range m {
		if municipality != "" && !strings.EqualFold(name, municipality) {
			continue
		}

		for title, id := range schools {
			if strings.EqualFold(strings.TrimSpace(title), strings.TrimSpace(school)) {
				return id, true
			}
		}
	}

	return 0, false
}

// municipalityOf returns the municipality an organisation id belongs to.
func (m organisationMap) municipalityOf(id int) (string, bool) {
	for name, schools := range m {
		for _, orgID := range schools {
			if orgID == id {
				return name, true
			}
		}
	}

	return "", false
}
