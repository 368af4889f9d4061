package trials

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/exp/maps"
	"gopkg.in/yaml.v3"
)

// LoadProtocol decodes a single stimulus protocol from YAML, resolves its
// kind and validates it.
func LoadProtocol(r io.Reader) (StimulusProtocol, error) {
	var protocol StimulusProtocol
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&protocol); err != nil {
		return StimulusProtocol{}, fmt.Errorf("decode stimulus yaml: %w", err)
	}
	if err := protocol.Resolve(); err != nil {
		return StimulusProtocol{}, err
	}
	if err := protocol.Validate(); err != nil {
		return StimulusProtocol{}, err
	}
	return protocol, nil
}

func LoadProtocolFile(path string) (StimulusProtocol, error) {
	f, err := os.Open(path)
	if err != nil {
		return StimulusProtocol{}, fmt.Errorf("open stimulus file %q: %w", path, err)
	}
	defer f.Close()

	protocol, err := LoadProtocol(f)
	if err != nil {
		return StimulusProtocol{}, fmt.Errorf("stimulus file %q: %w", path, err)
	}
	return protocol, nil
}

// ProtocolLibrary holds every stimulus protocol known to a conversion run,
// indexed by name and alias.
type ProtocolLibrary struct {
	protocols map[string]StimulusProtocol
	aliases   map[string]string
}

func NewProtocolLibrary(protocols ...StimulusProtocol) (*ProtocolLibrary, error) {
	lib := &ProtocolLibrary{
		protocols: make(map[string]StimulusProtocol),
		aliases:   make(map[string]string),
	}
	var errs []error
	for _, p := range protocols {
		if err := lib.add(p); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return lib, nil
}

func (l *ProtocolLibrary) add(p StimulusProtocol) error {
	if _, ok := l.protocols[p.Name]; ok {
		return fmt.Errorf("duplicate stimulus protocol %q", p.Name)
	}
	if target, ok := l.aliases[p.Name]; ok {
		return fmt.Errorf("stimulus protocol %q is already an alias of %q", p.Name, target)
	}
	l.protocols[p.Name] = p
	for _, alias := range p.Aliases {
		if target, ok := l.aliases[alias]; ok && target != p.Name {
			return fmt.Errorf("alias %q of %q is already used by %q", alias, p.Name, target)
		}
		l.aliases[alias] = p.Name
	}
	return nil
}

// LoadProtocolLibrary reads every *.yaml / *.yml file in dir.
func LoadProtocolLibrary(dir string) (*ProtocolLibrary, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read stimulus library %q: %w", dir, err)
	}

	protocols := make([]StimulusProtocol, 0, len(entries))
	var errs []error
	for _, entry := range entries {
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if entry.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		p, err := LoadProtocolFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			errs = append(errs, err)
			continue
		}
		protocols = append(protocols, p)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return NewProtocolLibrary(protocols...)
}

// Lookup returns the protocol registered under name, following aliases.
func (l *ProtocolLibrary) Lookup(name string) (StimulusProtocol, error) {
	if p, ok := l.protocols[name]; ok {
		return p, nil
	}
	if target, ok := l.aliases[name]; ok {
		return l.protocols[target], nil
	}
	return StimulusProtocol{}, &ErrUnknownProtocol{Name: name}
}

// Names returns the sorted protocol names.
func (l *ProtocolLibrary) Names() []string {
	names := make([]string, 0, len(l.protocols))
	for name := range l.protocols {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Protocols returns a copy of the registered protocols keyed by name.
func (l *ProtocolLibrary) Protocols() map[string]StimulusProtocol {
	return maps.Clone(l.protocols)
}
