package ldapsource

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/go-ldap/ldap/v3"

	"github.com/authdata/authdata/internal/config"
	"github.com/authdata/authdata/internal/source"
)

const valuePlaceholder = "{value}"

// userFilter substitutes the escaped query value into the user filter template.
// Base64 encoded values are decoded and every byte is hex escaped, so binary
// identifiers such as objectGUID can be matched.
func userFilter(cfg config.LDAP, value string) (string, error) {
	escaped := ldap.EscapeFilter(value)

	if cfg.ValueEncoding == encodingBase64 {
		raw, err := base64.StdEncoding.DecodeString(value)
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrInvalidValue, err)
		}

		escaped = escapeBinary(raw)
	}

	return strings.ReplaceAll(cfg.UserFilter, valuePlaceholder, escaped), nil
}

func escapeBinary(raw []byte) string {
	var b strings.Builder

	b.Grow(len(raw) * 3)

	for _, c := range raw {
		fmt.Fprintf(&b, "\\%02x", c)
	}

	return b.String()
}

// wrap makes sure a filter is enclosed in parentheses.
func wrap(filter string) string {
	filter = strings.TrimSpace(filter)
	if strings.HasPrefix(filter, "(") {
		return filter
	}

	return "(" + filter + ")"
}

// and appends an equality clause to the filter.
func and(filter, attribute, value string) string {
	return fmt.Sprintf("(&(%s=%s)%s)", attribute, ldap.EscapeFilter(value), wrap(filter))
}

// checkSchoolDN makes sure a school read from the DN sits directly below
// the base DN, the listing search base is built from that assumption.
func checkSchoolDN(cfg config.LDAP) error {
	if cfg.SchoolAttr != "" || !cfg.SchoolDN.IsSet() {
		return nil
	}

	base, err := ldap.ParseDN(cfg.BaseDN)
	if err != nil {
		return fmt.Errorf("%w: base DN %q: %w", source.ErrInvalidConfig, cfg.BaseDN, err)
	}

	nesting := 0

	for _, rdn := range base.RDNs {
		for _, atv := range rdn.Attributes {
			if strings.EqualFold(atv.Type, cfg.SchoolDN.Type) {
				nesting++
			}
		}
	}

	if cfg.SchoolDN.Depth != nesting {
		return fmt.Errorf("%w: school DN component %s at depth %d is not directly below base DN %q (depth %d)",
			source.ErrInvalidConfig, cfg.SchoolDN.Type, cfg.SchoolDN.Depth, cfg.BaseDN, nesting)
	}

	return nil
}

// listQuery builds the search base and filter of a listing.
// The school narrows the search base when the school is read from the DN,
// otherwise it is matched on the school attribute. The group is always an
// additional clause.
func listQuery(cfg config.LDAP, school, group string) (baseDN, filter string) {
	baseDN = cfg.BaseDN
	filter = wrap(cfg.ListFilter)

	if school != "" {
		switch {
		case cfg.SchoolAttr != "":
			filter = and(filter, cfg.SchoolAttr, school)
		case cfg.SchoolDN.IsSet():
			baseDN = fmt.Sprintf("%s=%s,%s", cfg.SchoolDN.Type, ldap.EscapeDN(school), cfg.BaseDN)
		}
	}

	if group != "" && cfg.GroupAttr != "" {
		filter = and(filter, cfg.GroupAttr, group)
	}

	return baseDN, filter
}
