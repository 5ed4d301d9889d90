// Package builtin assembles the registry of all source kinds shipped with authdata.
package builtin

import (
	"github.com/authdata/authdata/internal/source"
	"github.com/authdata/authdata/internal/source/dreamschool"
	"github.com/authdata/authdata/internal/source/ldapsource"
)

// Registry returns a registry holding every built-in kind.
func Registry() *source.Registry {
	r := source.NewRegistry()

	kinds := append(ldapsource.Kinds(nil), dreamschool.NewKind())
	if err := r.Register(kinds...); err != nil {
		// kind names are constants of this module
		panic(err)
	}

	return r
}
