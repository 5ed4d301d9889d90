package source

import (
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/authdata/authdata/internal/config"
)

//nolint:gochecknoglobals
var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the validate struct tags of a kind specific configuration section.
func Validate(section any) error {
	if err := validate.Struct(section); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	return nil
}

// Env carries the collaborators handed to every factory.
type Env struct {
	Provisioner Provisioner
	// HTTPClient is used by HTTP sources. Nil means a client per source.
	HTTPClient *http.Client
}

// Factory builds a fresh source for the binding name.
type Factory func(name string, cfg config.Source, env Env) (Source, error)

// Kind is one registered adapter implementation.
type Kind struct {
	Name string
	// Prepare applies the kind defaults and validates the configuration.
	// It runs once at startup. Optional.
	Prepare func(cfg config.Source) (config.Source, error)
	New     Factory
}

// Registry maps kind names to adapter implementations.
type Registry struct {
	kinds map[string]Kind
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{kinds: make(map[string]Kind)}
}

// Register adds kinds to the registry.
func (r *Registry) Register(kinds ...Kind) error {
	for _, k := range kinds {
		name := strings.ToLower(k.Name)
		if _, exists := r.kinds[name]; exists {
			return fmt.Errorf("%w: %s", ErrKindRegistered, name)
		}

		r.kinds[name] = k
	}

	return nil
}

// Kinds returns the registered kind names, sorted.
func (r *Registry) Kinds() []string {
	names := make([]string, 0, len(r.kinds))
	for name := range r.kinds {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

type binding struct {
	kind Kind
	cfg  config.Source
}

// Bindings are the validated sources of one configuration.
type Bindings struct {
	sources        map[string]binding
	attributes     map[string]string
	municipalities map[string]string
	env            Env
}

// Bind resolves and validates every configured source and binding.
// Each source is built once, so misconfiguration fails here and not on the
// first request. No network connection is made.
func (r *Registry) Bind(cfg *config.Config, env Env) (*Bindings, error) {
	b := &Bindings{
		sources:        make(map[string]binding, len(cfg.Sources)),
		attributes:     lowerMap(cfg.Bindings.Attributes),
		municipalities: lowerMap(cfg.Bindings.Municipalities),
		env:            env,
	}

	for rawName, sourceCfg := range cfg.Sources {
		name := strings.ToLower(rawName)

		kind, ok := r.kinds[strings.ToLower(sourceCfg.Kind)]
		if !ok {
			return nil, fmt.Errorf("source %s: %w: %q", name, ErrUnknownKind, sourceCfg.Kind)
		}

		if kind.Prepare != nil {
			prepared, err := kind.Prepare(sourceCfg)
			if err != nil {
				return nil, fmt.Errorf("source %s: %w", name, err)
			}

			sourceCfg = prepared
		}

		probe, err := kind.New(name, sourceCfg, env)
		if err != nil {
			return nil, fmt.Errorf("source %s: %w", name, err)
		}

		closeSource(probe)

		b.sources[name] = binding{kind: kind, cfg: sourceCfg}
	}

	for _, bound := range []map[string]string{b.attributes, b.municipalities} {
		for key, name := range bound {
			if _, ok := b.sources[name]; !ok {
				return nil, fmt.Errorf("binding %s -> %s: %w", key, name, ErrUnboundSource)
			}
		}
	}

	return b, nil
}

// Open builds a fresh source for the binding name.
func (b *Bindings) Open(name string) (Source, error) {
	bound, ok := b.sources[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: source %s", ErrUnboundSource, name)
	}

	s, err := bound.kind.New(strings.ToLower(name), bound.cfg, b.env)
	if err != nil {
		return nil, fmt.Errorf("open source %s: %w", name, err)
	}

	return instrumented{Source: s}, nil
}

// Has reports whether a source is bound under name.
func (b *Bindings) Has(name string) bool {
	_, ok := b.sources[strings.ToLower(name)]

	return ok
}

// AttributeSource returns the binding name of the source bound to a query attribute.
func (b *Bindings) AttributeSource(attribute string) (string, error) {
	name, ok := b.attributes[strings.ToLower(attribute)]
	if !ok {
		return "", fmt.Errorf("%w: attribute %s", ErrUnboundSource, attribute)
	}

	return name, nil
}

// ForAttribute opens the source bound to a query attribute.
func (b *Bindings) ForAttribute(attribute string) (Source, error) {
	name, err := b.AttributeSource(attribute)
	if err != nil {
		return nil, err
	}

	return b.Open(name)
}

// ForMunicipality opens the source bound to a municipality name.
func (b *Bindings) ForMunicipality(municipality string) (Source, error) {
	name, ok := b.municipalities[strings.ToLower(strings.TrimSpace(municipality))]
	if !ok {
		return nil, fmt.Errorf("%w: municipality %s", ErrUnboundSource, municipality)
	}

	return b.Open(name)
}

// Names returns the bound source names, sorted.
func (b *Bindings) Names() []string {
	names := make([]string, 0, len(b.sources))
	for name := range b.sources {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// Kind returns the kind of a bound source.
func (b *Bindings) Kind(name string) string {
	return b.sources[strings.ToLower(name)].kind.Name
}

// Attributes returns a copy of the attribute bindings.
func (b *Bindings) Attributes() map[string]string {
	return copyMap(b.attributes)
}

// Municipalities returns a copy of the municipality bindings.
func (b *Bindings) Municipalities() map[string]string {
	return copyMap(b.municipalities)
}

// Close releases a source if it holds resources. Errors are only logged.
func Close(s Source) {
	closeSource(s)
}

func closeSource(s Source) {
	c, ok := s.(io.Closer)
	if !ok {
		return
	}

	if err := c.Close(); err != nil {
		log.Warn().Err(err).Str("source", s.Name()).Msg("failed to close source")
	}
}

func lowerMap(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[strings.ToLower(strings.TrimSpace(k))] = strings.ToLower(strings.TrimSpace(v))
	}

	return out
}

func copyMap(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}

	return out
}
