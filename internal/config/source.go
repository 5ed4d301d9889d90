package config

// Source configures one external source instance.
//
// Kind selects the adapter implementation; the remaining fields are the
// adapter's constructor arguments. Only the section matching the kind's
// family (LDAP or HTTP) is read.
type Source struct {
	Kind string
	OID  OID
	LDAP LDAP
	HTTP HTTP

	// SchoolCodes maps a school display name to its official code.
	SchoolCodes map[string]string
	// MunicipalityCodes maps a municipality display name to its official code.
	MunicipalityCodes map[string]string
	// RoleNames maps a source role title to a canonical role name.
	RoleNames map[string]string
}

// OID configures the pseudo identifier generation of a source.
type OID struct {
	Salt      string
	MaxLength int
}

// LDAP holds the directory settings of an LDAP source.
type LDAP struct {
	// Host is an ldap:// or ldaps:// URL, or a bare host name.
	Host     string `validate:"required"`
	Username string
	Password string
	BaseDN   string `validate:"required"`

	// UserFilter finds one user. {value} is replaced with the escaped query value.
	UserFilter string `validate:"required,contains={value}"`
	// ListFilter selects all users when listing.
	ListFilter string `validate:"required"`

	StartTLS   bool
	SkipVerify bool
	CACertFile string
	Timeout    int `validate:"gte=0"`

	// ValueEncoding is "" for plain query values or "base64" for binary ones (objectGUID).
	ValueEncoding string `validate:"omitempty,oneof=base64"`

	ExternalIDAttr   string `validate:"required"`
	UsernameAttr     string `validate:"required"`
	FirstNameAttr    string
	LastNameAttr     string
	RoleAttr         string
	GroupAttr        string
	SchoolAttr       string
	MunicipalityAttr string

	// SchoolDN and MunicipalityDN read the value from a DN component when no attribute is set.
	SchoolDN       DNComponent
	MunicipalityDN DNComponent

	// Municipality is a fixed municipality name for single municipality directories.
	Municipality string

	// SchoolCodeDigits derives the school code from the digits in the school
	// name, zero padded to this width, instead of using SchoolCodes.
	SchoolCodeDigits int `validate:"gte=0"`
}

// DNComponent selects one RDN value of an entry DN. Depth counts the RDNs of
// the given Type starting from the root of the DN, so directory depth below
// the selected component does not shift it.
type DNComponent struct {
	Type  string
	Depth int `validate:"gte=0"`
}

// IsSet reports whether the component is configured.
func (c DNComponent) IsSet() bool {
	return c.Type != ""
}

// HTTP holds the settings of an HTTP API source.
type HTTP struct {
	APIURL   string `validate:"required,url"`
	Username string
	Password string
	Timeout  int `validate:"gte=0"`

	// TeacherPermission is the permission code that classifies a role as teacher.
	TeacherPermission string `validate:"required"`
	// OrganisationMap maps municipality -> school display name -> organisation id.
	OrganisationMap map[string]map[string]int
}
