package ldapsource

import (
	"github.com/authdata/authdata/internal/config"
	"github.com/authdata/authdata/internal/identity"
	"github.com/authdata/authdata/internal/source"
)

// Kind names registered by this package.
const (
	KindLDAP = "ldap"
	KindTest = "ldap_test"
	KindOulu = "ad_oulu"
)

// oidMaxLength keeps directory OIDs within the username width of the
// deployments that issued them first.
const oidMaxLength = 30

// Kinds returns the directory kinds. A nil dial connects with Dial.
func Kinds(dial Dialer) []source.Kind {
	return []source.Kind{
		newKind(KindLDAP, nil, dial),
		newKind(KindTest, testDefaults, dial),
		newKind(KindOulu, ouluDefaults, dial),
	}
}

func newKind(name string, defaults func(config.Source) config.Source, dial Dialer) source.Kind {
	return source.Kind{
		Name: name,
		Prepare: func(cfg config.Source) (config.Source, error) {
			if defaults != nil {
				cfg = defaults(cfg)
			}

			if err := source.Validate(cfg.LDAP); err != nil {
				return cfg, err
			}

			if err := checkSchoolDN(cfg.LDAP); err != nil {
				return cfg, err
			}

			_, err := identity.NewOIDGenerator(cfg.OID.Salt, cfg.OID.MaxLength)

			return cfg, err
		},
		New: func(bindingName string, cfg config.Source, env source.Env) (source.Source, error) {
			oid, err := identity.NewOIDGenerator(cfg.OID.Salt, cfg.OID.MaxLength)
			if err != nil {
				return nil, err
			}

			return New(source.NewBase(bindingName, oid, env.Provisioner), cfg.LDAP, codes(cfg), dial), nil
		},
	}
}

func codes(cfg config.Source) source.Codes {
	c := source.Codes{
		School:       source.NewCodeTable(cfg.SchoolCodes),
		Municipality: source.NewCodeTable(cfg.MunicipalityCodes),
		Role:         source.NewCodeTable(cfg.RoleNames),
	}

	if cfg.LDAP.SchoolCodeDigits > 0 {
		c.School = source.DigitCode{Width: cfg.LDAP.SchoolCodeDigits}
	}

	return c
}

func orDefault[T comparable](v *T, def T) {
	var zero T
	if *v == zero {
		*v = def
	}
}

func withTable(builtin, configured map[string]string) map[string]string {
	out := make(map[string]string, len(builtin)+len(configured))
	for k, v := range builtin {
		out[k] = v
	}

	for k, v := range configured {
		out[k] = v
	}

	return out
}

// testDefaults describes the inetOrgPerson test directory. Users live in
// ou=<role>,ou=People,ou=<school>,ou=<municipality>,<base>.
func testDefaults(cfg config.Source) config.Source {
	l := &cfg.LDAP

	orDefault(&l.BaseDN, "ou=KuntaYksi,dc=mpass-test,dc=csc,dc=fi")
	orDefault(&l.UserFilter, "(&(uid={value})(objectclass=inetOrgPerson))")
	orDefault(&l.ListFilter, "(objectclass=inetOrgPerson)")
	orDefault(&l.ExternalIDAttr, "uid")
	orDefault(&l.UsernameAttr, "cn")
	orDefault(&l.FirstNameAttr, "givenName")
	orDefault(&l.LastNameAttr, "sn")
	orDefault(&l.RoleAttr, "title")
	orDefault(&l.GroupAttr, "departmentNumber")
	orDefault(&l.SchoolDN, config.DNComponent{Type: "ou", Depth: 1})
	orDefault(&l.MunicipalityDN, config.DNComponent{Type: "ou", Depth: 0})
	orDefault(&l.SchoolCodeDigits, 5) //nolint:mnd
	l.SkipVerify = true

	orDefault(&cfg.OID.Salt, KindTest)
	orDefault(&cfg.OID.MaxLength, oidMaxLength)

	cfg.MunicipalityCodes = withTable(map[string]string{"KuntaYksi": "1234567-8"}, cfg.MunicipalityCodes)

	return cfg
}

// ouluDefaults describes the Oulu Active Directory. Users are looked up by
// their base64 encoded objectGUID over StartTLS.
func ouluDefaults(cfg config.Source) config.Source {
	l := &cfg.LDAP

	orDefault(&l.UserFilter, "(objectGUID={value})")
	orDefault(&l.ListFilter, "(&(objectCategory=person)(objectClass=user))")
	orDefault(&l.CACertFile, "oulu_certificate")
	orDefault(&l.ValueEncoding, encodingBase64)
	orDefault(&l.ExternalIDAttr, "objectGUID")
	orDefault(&l.UsernameAttr, "objectGUID")
	orDefault(&l.FirstNameAttr, "givenName")
	orDefault(&l.LastNameAttr, "sn")
	orDefault(&l.SchoolAttr, "physicalDeliveryOfficeName")
	orDefault(&l.RoleAttr, "title")
	orDefault(&l.GroupAttr, "department")
	orDefault(&l.Municipality, "Oulu")
	l.StartTLS = true

	orDefault(&cfg.OID.Salt, KindOulu)
	orDefault(&cfg.OID.MaxLength, oidMaxLength)

	cfg.SchoolCodes = withTable(ouluSchools, cfg.SchoolCodes)
	cfg.MunicipalityCodes = withTable(map[string]string{"Oulu": "0187690-1"}, cfg.MunicipalityCodes)

	return cfg
}

//nolint:gochecknoglobals
var ouluSchools = map[string]string{
	"Herukan koulu":                  "06347",
	"Hintan koulu":                   "06329",
	"Hönttämäen koulu":               "03367",
	"Kaakkurin koulu":                "03748",
	"Karjasillan yläaste":            "06315",
	"Kastellin koulu":                "06316",
	"Kaukovainion koulu":             "06330",
	"Knuutilankankaan koulu":         "03515",
	"Korvensuoran koulu":             "06334",
	"Koskelan koulu":                 "06335",
	"Kuivasjärven ala-aste":          "06336",
	"Laanilan yläaste":               "06318",
	"Lintulammen koulu":              "06339",
	"Madekosken ala-aste":            "06337",
	"Maikkulan koulu":                "03600",
	"Merikosken yläaste":             "06320",
	"Metsokankaan koulu":             "03780",
	"Myllyojan koulu":                "03262",
	"Myllytullin koulu":              "06322",
	"Nuottasaaren koulu":             "06340",
	"Oulujoen koulu":                 "06341",
	"Oulun kansainvälinen koulu":     "03735",
	"Oulunlahden koulu":              "06332",
	"Pateniemen yläaste":             "06323",
	"Paulaharjun koulu":              "06344",
	"Pikkaralan ala-aste":            "06345",
	"Pohjankartanon yläaste":         "06847",
	"Pöllönkankaan koulu":            "06319",
	"Rajakylän koulu":                "06346",
	"Ritaharjun koulu":               "03802",
	"Terva-Toppilan koulu":           "06324",
	"Teuvo Pakkalan koulu":           "06348",
	"Tuiran ala-aste":                "06350",
	"Vesalan koulu":                  "06446",
	"Ylikiimingin koulu":             "06437",
	"Heinätorin koulu":               "06327",
	"Kajaanintullin koulu":           "08858",
	"Karjasillan lukio":              "00265",
	"Kastellin lukio":                "00603",
	"Laanilan lukio":                 "00401",
	"Madetojan musiikkilukio":        "00604",
	"Merikosken lukio":               "00831",
	"Oulun Suom. Yhteiskoulun lukio": "00601",
	"Oulun aikuislukio":              "00548",
	"Oulun lyseon lukio":             "00598",
	"Pateniemen lukio":               "00674",
	"Oulun konservatorio":            "01968",
	"Oulu-opisto":                    "02246",
}
