package schemaregistry

import (
	"fmt"
	"sync/atomic"
)

// Serializer turns values into wire format payloads for one subject. The
// schema resolves lazily on the first Serialize call and the resolved id is
// kept for the serializer's whole life; a failed resolution leaves it
// unresolved so the next call retries. A Serializer is safe for unrestricted
// concurrent use, producer tasks share one instance by reference.
type Serializer struct {
	cache   *schemaCache
	details SchemaDetails
	schema  string

	resolved atomic.Pointer[cacheEntry]
}

// Serialize encodes the value under the serializer's schema and prepends the
// wire header carrying the schema's registry id.
func (s *Serializer) Serialize(v interface{}) ([]byte, error) {
	entry, err := s.resolve()
	if err != nil {
		return nil, err
	}

	m, err := s.cache.marshaller(s.details.Format)
	if err != nil {
		return nil, err
	}

	body, err := m.Marshall(entry.Compiled, v)
	if err != nil {
		return nil, &EncodeError{SchemaID: entry.ID, Err: err}
	}

	return append(encodePrefix(entry.ID), body...), nil
}

// SchemaID returns the resolved registry id, false while unresolved.
func (s *Serializer) SchemaID() (int, bool) {
	if entry := s.resolved.Load(); entry != nil {
		return entry.ID, true
	}

	return 0, false
}

// Subject returns the subject the serializer is bound to.
func (s *Serializer) Subject() string {
	return s.details.SubjectName()
}

func (s *Serializer) resolve() (*cacheEntry, error) {
	if entry := s.resolved.Load(); entry != nil {
		return entry, nil
	}

	var entry *cacheEntry
	var err error
	if s.schema != `` {
		entry, err = s.cache.ResolveOrRegister(s.details.SubjectName(), RawSchema{
			Schema:     s.schema,
			Format:     s.details.Format,
			References: s.details.References,
		})
	} else {
		entry, err = s.cache.ResolveBySubjectVersion(s.details.SubjectName(), s.details.Version)
	}
	if err != nil {
		return nil, err
	}

	if entry.Raw.Format != s.details.Format {
		return nil, fmt.Errorf(`%w: subject [%s] holds a [%s] schema, serializer expects [%s]`,
			ErrFormatMismatch, s.details.SubjectName(), entry.Raw.Format, s.details.Format)
	}

	// resolution is permanent, the first successful one wins
	if !s.resolved.CompareAndSwap(nil, entry) {
		return s.resolved.Load(), nil
	}

	return entry, nil
}
