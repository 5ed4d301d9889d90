package ldapsource

import (
	"encoding/base64"
	"strings"

	"github.com/go-ldap/ldap/v3"
	"github.com/rs/zerolog/log"

	"github.com/authdata/authdata/internal/config"
)

// entryRole is the single role an LDAP entry carries.
type entryRole struct{}

// extractor reads canonical fields from an LDAP entry according to the
// configured attribute names.
type extractor struct {
	cfg config.LDAP
}

func (x extractor) raw(entry *ldap.Entry, attribute string) string {
	if attribute == "" {
		return ""
	}

	return string(entry.GetRawAttributeValue(attribute))
}

func (x extractor) ExternalID(entry *ldap.Entry) string {
	if x.cfg.ValueEncoding == encodingBase64 {
		raw := entry.GetRawAttributeValue(x.cfg.ExternalIDAttr)
		if len(raw) == 0 {
			return ""
		}

		return base64.StdEncoding.EncodeToString(raw)
	}

	return x.raw(entry, x.cfg.ExternalIDAttr)
}

// Username returns the raw attribute value, binary values included, since
// the OID is derived from the exact bytes.
func (x extractor) Username(entry *ldap.Entry) string {
	return x.raw(entry, x.cfg.UsernameAttr)
}

func (x extractor) FirstName(entry *ldap.Entry) string {
	return x.raw(entry, x.cfg.FirstNameAttr)
}

func (x extractor) LastName(entry *ldap.Entry) string {
	return x.raw(entry, x.cfg.LastNameAttr)
}

func (x extractor) RoleEntries(*ldap.Entry) []entryRole {
	return []entryRole{{}}
}

func (x extractor) School(entry *ldap.Entry, _ entryRole) string {
	if x.cfg.SchoolAttr != "" {
		return x.raw(entry, x.cfg.SchoolAttr)
	}

	return dnComponent(entry.DN, x.cfg.SchoolDN)
}

func (x extractor) Role(entry *ldap.Entry, _ entryRole) string {
	return x.raw(entry, x.cfg.RoleAttr)
}

func (x extractor) Group(entry *ldap.Entry, _ entryRole) string {
	return x.raw(entry, x.cfg.GroupAttr)
}

func (x extractor) Municipality(entry *ldap.Entry, _ entryRole) string {
	switch {
	case x.cfg.Municipality != "":
		return x.cfg.Municipality
	case x.cfg.MunicipalityAttr != "":
		return x.raw(entry, x.cfg.MunicipalityAttr)
	default:
		return dnComponent(entry.DN, x.cfg.MunicipalityDN)
	}
}

// attributes lists the attributes a search has to return.
func (x extractor) attributes() []string {
	var attrs []string

	for _, a := range []string{
		x.cfg.ExternalIDAttr, x.cfg.UsernameAttr, x.cfg.FirstNameAttr, x.cfg.LastNameAttr,
		x.cfg.RoleAttr, x.cfg.GroupAttr, x.cfg.SchoolAttr, x.cfg.MunicipalityAttr,
	} {
		if a != "" && !contains(attrs, a) {
			attrs = append(attrs, a)
		}
	}

	return attrs
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}

	return false
}

// dnComponent returns the value of the Depth-th RDN of the given type,
// counted from the root of the DN. Deeper entries below the selected
// component do not shift the result.
func dnComponent(dn string, c config.DNComponent) string {
	if !c.IsSet() {
		return ""
	}

	parsed, err := ldap.ParseDN(dn)
	if err != nil {
		log.Warn().Err(err).Str("event", "ldap.dn_component_missing").Str("dn", dn).Msg("can't parse DN")

		return ""
	}

	var values []string

	// RDNs are ordered leaf first
	for i := len(parsed.RDNs) - 1; i >= 0; i-- {
		for _, atv := range parsed.RDNs[i].Attributes {
			if strings.EqualFold(atv.Type, c.Type) {
				values = append(values, atv.Value)
			}
		}
	}

	if c.Depth >= len(values) {
		log.Debug().
			Str("event", "ldap.dn_component_missing").
			Str("dn", dn).
			Str("type", c.Type).
			Int("depth", c.Depth).
			Msg("DN has no such component")

		return ""
	}

	return values[c.Depth]
}
