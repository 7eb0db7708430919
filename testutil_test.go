package schemaregistry

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/tryfix/errors"
)

// fakeTransport is an in-memory Transport that counts every network call, so
// tests can assert the cache's single-flight and idempotence guarantees.
type fakeTransport struct {
	registerCalls     atomic.Int32
	fetchByIDCalls    atomic.Int32
	fetchVersionCalls atomic.Int32

	// delay holds every call open so concurrent callers overlap with the
	// in-flight one
	delay time.Duration

	failRegister error
	failFetch    error

	mu       sync.Mutex
	nextID   int
	schemas  map[int]RawSchema
	ids      map[string]int
	versions map[string]map[int]int
	latest   map[string]int
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		nextID:   1,
		schemas:  make(map[int]RawSchema),
		ids:      make(map[string]int),
		versions: make(map[string]map[int]int),
		latest:   make(map[string]int),
	}
}

func (t *fakeTransport) Register(subject string, schema RawSchema) (int, error) {
	t.registerCalls.Add(1)
	if t.delay > 0 {
		time.Sleep(t.delay)
	}

	if t.failRegister != nil {
		return 0, &RegistryError{Op: `register`, Subject: subject, Err: t.failRegister}
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	key := subject + `|` + schema.Schema
	if id, ok := t.ids[key]; ok {
		return id, nil
	}

	id := t.nextID
	t.nextID++
	t.ids[key] = id
	t.schemas[id] = schema

	if t.versions[subject] == nil {
		t.versions[subject] = make(map[int]int)
	}
	version := len(t.versions[subject]) + 1
	t.versions[subject][version] = id
	t.latest[subject] = version

	return id, nil
}

func (t *fakeTransport) FetchByID(id int) (RawSchema, error) {
	t.fetchByIDCalls.Add(1)
	if t.delay > 0 {
		time.Sleep(t.delay)
	}

	if t.failFetch != nil {
		return RawSchema{}, &RegistryError{Op: `fetch-by-id`, SchemaID: id, Err: t.failFetch}
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	schema, ok := t.schemas[id]
	if !ok {
		return RawSchema{}, &RegistryError{Op: `fetch-by-id`, SchemaID: id, Err: errors.New(`schema not found`)}
	}

	return schema, nil
}

func (t *fakeTransport) FetchBySubjectVersion(subject string, version int) (int, int, RawSchema, error) {
	t.fetchVersionCalls.Add(1)
	if t.delay > 0 {
		time.Sleep(t.delay)
	}

	if t.failFetch != nil {
		return 0, 0, RawSchema{}, &RegistryError{Op: `fetch-by-version`, Subject: subject, Version: version, Err: t.failFetch}
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if version <= int(VersionLatest) {
		version = t.latest[subject]
	}

	id, ok := t.versions[subject][version]
	if !ok {
		return 0, 0, RawSchema{}, &RegistryError{Op: `fetch-by-version`, Subject: subject, Version: version,
			Err: errors.New(`subject or version not found`)}
	}

	return id, version, t.schemas[id], nil
}

const testAvroSchema = `{"type":"record","name":"test","fields":[{"name":"a","type":"long"},{"name":"b","type":"string"}]}`

const testAvroSchemaV2 = `{"type":"record","name":"test","fields":[{"name":"a","type":"long"},{"name":"b","type":"string"},{"name":"c","type":"string","default":""}]}`

const testJsonSchema = `{"type":"object","title":"test","properties":{"a":{"type":"integer"},"b":{"type":"string"}},"required":["a","b"],"additionalProperties":false}`

type testRecord struct {
	A int64  `avro:"a" json:"a"`
	B string `avro:"b" json:"b"`
}

func newTestRegistry(transport Transport) *Registry {
	reg, err := NewRegistry(`mock`, WithTransport(transport))
	if err != nil {
		panic(err)
	}

	return reg
}
