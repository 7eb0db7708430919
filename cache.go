package schemaregistry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/tryfix/errors"
	"github.com/tryfix/log"
	"golang.org/x/sync/singleflight"
)

// cacheEntry is one completed schema resolution. An entry binds a registry
// id to its compiled schema; the binding is immutable for the life of the
// registry so entries are shared freely and never copied or replaced.
type cacheEntry struct {
	ID       int
	Subject  string
	Version  int
	Raw      RawSchema
	Compiled CompiledSchema
}

// schemaCache deduplicates registration and lookup traffic against the
// registry. Completed resolutions live in three append-only tables while
// in-progress ones are coalesced through a singleflight group, so at most
// one network call is ever outstanding for a given key no matter how many
// callers request it concurrently. A failed call is never cached, the next
// caller retries from scratch.
type schemaCache struct {
	transport   Transport
	marshallers map[Format]Marshaller
	logger      log.Logger

	group singleflight.Group

	mu               sync.RWMutex
	byID             map[int]*cacheEntry
	bySubjectSchema  map[string]*cacheEntry
	bySubjectVersion map[string]*cacheEntry
}

func newSchemaCache(transport Transport, marshallers map[Format]Marshaller, logger log.Logger) *schemaCache {
	return &schemaCache{
		transport:        transport,
		marshallers:      marshallers,
		logger:           logger,
		byID:             make(map[int]*cacheEntry),
		bySubjectSchema:  make(map[string]*cacheEntry),
		bySubjectVersion: make(map[string]*cacheEntry),
	}
}

func (c *schemaCache) marshaller(format Format) (Marshaller, error) {
	m, ok := c.marshallers[format]
	if !ok {
		return nil, errors.New(fmt.Sprintf(`marshaller does not exist for format [%s]`, format))
	}

	return m, nil
}

func subjectSchemaKey(subject string, compiled CompiledSchema) string {
	// canonical content keeps textually different but semantically identical
	// schemas on one key
	return subject + "\x00" + compiled.Canonical()
}

func subjectVersionKey(subject string, version int) string {
	if version <= int(VersionLatest) {
		return subject + "\x00latest"
	}
	return fmt.Sprintf("%s\x00%d", subject, version)
}

// ResolveOrRegister returns the id the schema is registered under for the
// subject, registering it on first sight. Identical concurrent calls share
// one registration call and one outcome.
func (c *schemaCache) ResolveOrRegister(subject string, raw RawSchema) (*cacheEntry, error) {
	m, err := c.marshaller(raw.Format)
	if err != nil {
		return nil, err
	}

	compiled, err := m.Parse(raw.Schema)
	if err != nil {
		return nil, err
	}

	key := subjectSchemaKey(subject, compiled)
	if entry, ok := c.lookupSubjectSchema(key); ok {
		return entry, nil
	}

	v, err, _ := c.group.Do(`register/`+key, func() (interface{}, error) {
		// a previous flight may have completed between the miss and here
		if entry, ok := c.lookupSubjectSchema(key); ok {
			return entry, nil
		}

		id, err := c.transport.Register(subject, raw)
		if err != nil {
			return nil, err
		}

		entry := c.store(&cacheEntry{
			ID:       id,
			Subject:  subject,
			Raw:      raw,
			Compiled: compiled,
		}, key, ``)

		c.logger.Info(`schemaregistry.cache`,
			fmt.Sprintf(`schema [%d] registered for subject [%s]`, id, subject))

		return entry, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*cacheEntry), nil
}

// ResolveByID returns the compiled schema registered under the global id,
// fetching it on first sight. Concurrent calls for one unseen id share one
// fetch.
func (c *schemaCache) ResolveByID(id int) (*cacheEntry, error) {
	c.mu.RLock()
	entry, ok := c.byID[id]
	c.mu.RUnlock()
	if ok {
		return entry, nil
	}

	v, err, _ := c.group.Do(fmt.Sprintf(`id/%d`, id), func() (interface{}, error) {
		c.mu.RLock()
		entry, ok := c.byID[id]
		c.mu.RUnlock()
		if ok {
			return entry, nil
		}

		raw, err := c.transport.FetchByID(id)
		if err != nil {
			return nil, err
		}

		compiled, err := c.parse(raw)
		if err != nil {
			return nil, err
		}

		entry = c.store(&cacheEntry{ID: id, Raw: raw, Compiled: compiled}, ``, ``)

		c.logger.Info(`schemaregistry.cache`, fmt.Sprintf(`schema [%d] fetched`, id))

		return entry, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*cacheEntry), nil
}

// ResolveBySubjectVersion returns the schema registered under the subject
// and version, VersionLatest resolving the latest version once and pinning
// it for the life of the cache.
func (c *schemaCache) ResolveBySubjectVersion(subject string, version int) (*cacheEntry, error) {
	key := subjectVersionKey(subject, version)
	c.mu.RLock()
	entry, ok := c.bySubjectVersion[key]
	c.mu.RUnlock()
	if ok {
		return entry, nil
	}

	v, err, _ := c.group.Do(`version/`+key, func() (interface{}, error) {
		c.mu.RLock()
		entry, ok := c.bySubjectVersion[key]
		c.mu.RUnlock()
		if ok {
			return entry, nil
		}

		id, fetchedVersion, raw, err := c.transport.FetchBySubjectVersion(subject, version)
		if err != nil {
			return nil, err
		}

		compiled, err := c.parse(raw)
		if err != nil {
			return nil, err
		}

		entry = c.store(&cacheEntry{
			ID:       id,
			Subject:  subject,
			Version:  fetchedVersion,
			Raw:      raw,
			Compiled: compiled,
		}, subjectSchemaKey(subject, compiled), key)

		c.logger.Info(`schemaregistry.cache`,
			fmt.Sprintf(`schema [%d] fetched for subject [%s][%s]`, id, subject, Version(version)))

		return entry, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*cacheEntry), nil
}

// refreshLatest fetches the latest version of the subject and appends it to
// the cache if its id has not been seen. It reports whether a new entry was
// added. Existing entries are never touched.
func (c *schemaCache) refreshLatest(subject string) (bool, error) {
	id, version, raw, err := c.transport.FetchBySubjectVersion(subject, int(VersionLatest))
	if err != nil {
		return false, err
	}

	c.mu.RLock()
	_, seen := c.byID[id]
	c.mu.RUnlock()
	if seen {
		return false, nil
	}

	compiled, err := c.parse(raw)
	if err != nil {
		return false, err
	}

	c.store(&cacheEntry{
		ID:       id,
		Subject:  subject,
		Version:  version,
		Raw:      raw,
		Compiled: compiled,
	}, subjectSchemaKey(subject, compiled), subjectVersionKey(subject, version))

	return true, nil
}

func (c *schemaCache) parse(raw RawSchema) (CompiledSchema, error) {
	m, err := c.marshaller(raw.Format)
	if err != nil {
		return nil, err
	}

	return m.Parse(raw.Schema)
}

func (c *schemaCache) lookupSubjectSchema(key string) (*cacheEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.bySubjectSchema[key]
	return entry, ok
}

// store inserts the entry into the completed tables. All tables are
// append-only, an id that is already bound keeps its original entry so every
// caller observes one compiled schema per id forever.
func (c *schemaCache) store(entry *cacheEntry, schemaKey, versionKey string) *cacheEntry {
	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.byID[entry.ID]; ok {
		entry = existing
	} else {
		c.byID[entry.ID] = entry
	}

	if schemaKey != `` {
		if _, ok := c.bySubjectSchema[schemaKey]; !ok {
			c.bySubjectSchema[schemaKey] = entry
		}
	}

	if versionKey != `` {
		if _, ok := c.bySubjectVersion[versionKey]; !ok {
			c.bySubjectVersion[versionKey] = entry
		}
	}

	return entry
}

// subjects returns the distinct subjects the cache has resolved schemas for.
func (c *schemaCache) subjects() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	seen := make(map[string]bool)
	var subjects []string
	for _, entry := range c.byID {
		if entry.Subject == `` || seen[entry.Subject] {
			continue
		}
		seen[entry.Subject] = true
		subjects = append(subjects, entry.Subject)
	}

	sort.Strings(subjects)
	return subjects
}

// entries returns every cached schema ordered by id.
func (c *schemaCache) entries() []*cacheEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entries := make([]*cacheEntry, 0, len(c.byID))
	for _, entry := range c.byID {
		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })
	return entries
}
