package schemaregistry

import (
	"bytes"
	"fmt"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/riferrei/srclient"
	"github.com/tryfix/errors"
	"github.com/tryfix/log"
)

type options struct {
	logger       log.Logger
	client       srclient.ISchemaRegistryClient
	transport    Transport
	marshallers  map[Format]Marshaller
	bgSync       bool
	syncInterval time.Duration
}

// Option is a type to host NewRegistry configurations
type Option func(*options)

// WithLogger returns a configuration to create a NewRegistry with the given
// logger
func WithLogger(logger log.Logger) Option {
	return func(options *options) {
		options.logger = logger
	}
}

// WithClient returns a configuration to create a NewRegistry on an existing
// schema registry client, srclient's mock client included
func WithClient(client srclient.ISchemaRegistryClient) Option {
	return func(options *options) {
		options.client = client
	}
}

// WithTransport returns a configuration to create a NewRegistry on a custom
// Transport, bypassing srclient entirely
func WithTransport(transport Transport) Option {
	return func(options *options) {
		options.transport = transport
	}
}

// WithBackgroundSync returns a configuration to create a NewRegistry which,
// once Sync is called, polls the registry on the given interval and caches
// newly published schema versions so deserializers never miss on them
func WithBackgroundSync(syncInterval time.Duration) Option {
	return func(options *options) {
		options.bgSync = true
		options.syncInterval = syncInterval
	}
}

// WithMarshaller returns a configuration to create a NewRegistry with a
// custom marshaller for the format, replacing the built-in one
func WithMarshaller(format Format, marshaller Marshaller) Option {
	return func(options *options) {
		options.marshallers[format] = marshaller
	}
}

// Registry is the long-lived facade an application holds once. It owns the
// schema cache and the registry transport; every Serializer and Deserializer
// it hands out shares both by reference.
type Registry struct {
	cache   *schemaCache
	options *options
	logger  log.Logger
	bgSync  *backgroundSync
}

// NewRegistry returns a pointer to a connected registry with the given
// options. Construction performs no network I/O, schemas resolve lazily.
func NewRegistry(url string, opts ...Option) (*Registry, error) {
	options := &options{
		marshallers: defaultMarshallers(),
	}
	for _, opt := range opts {
		opt(options)
	}

	if options.logger == nil {
		options.logger = log.NewNoopLogger()
	}

	if options.transport == nil {
		if options.client == nil {
			if url == `` {
				return nil, errors.New(`schemaregistry.registry: registry url is required`)
			}
			options.client = srclient.NewSchemaRegistryClient(url)
		}
		options.transport = NewTransport(options.client)
	}

	r := &Registry{
		cache:   newSchemaCache(options.transport, options.marshallers, options.logger),
		options: options,
		logger:  options.logger,
	}

	return r, nil
}

// SchemaEntry pairs a raw schema definition with the details it should be
// registered under.
type SchemaEntry struct {
	Schema  string
	Details SchemaDetails
}

// PostSchemas idempotently registers the given schemas and returns their
// registry ids, aligned with the entries. Already cached schemas cost
// nothing, so calling this repeatedly, or from many tasks at once, issues at
// most one registration call per distinct schema. Processing stops at the
// first failing entry; the returned error names its subject.
func (r *Registry) PostSchemas(entries ...SchemaEntry) ([]int, error) {
	ids := make([]int, 0, len(entries))
	for _, entry := range entries {
		subject := entry.Details.SubjectName()
		cached, err := r.cache.ResolveOrRegister(subject, RawSchema{
			Schema:     entry.Schema,
			Format:     entry.Details.Format,
			References: entry.Details.References,
		})
		if err != nil {
			return ids, err
		}

		ids = append(ids, cached.ID)
	}

	return ids, nil
}

// Serializer returns a serializer bound to the subject derived from the
// details. When schema text is given the serializer registers it on first
// use; when it is empty the schema is fetched by subject and version
// instead. Construction performs no network I/O.
func (r *Registry) Serializer(schema string, details SchemaDetails) (*Serializer, error) {
	if _, err := r.cache.marshaller(details.Format); err != nil {
		return nil, err
	}

	if schema == `` && details.SubjectName() == `` {
		return nil, errors.New(`schemaregistry.registry: either a schema or a subject is required`)
	}

	return &Serializer{
		cache:   r.cache,
		details: details,
		schema:  schema,
	}, nil
}

// Deserializer returns an unbound deserializer. A single instance decodes
// payloads referencing any schema id, fetching and caching unseen ones on
// demand.
func (r *Registry) Deserializer() *Deserializer {
	return &Deserializer{cache: r.cache}
}

// Sync starts the background schema sync when the registry was created with
// WithBackgroundSync.
//
// Newly published schema versions will be cached in the background and the
// application does not require any restart
func (r *Registry) Sync() error {
	if r.options.bgSync {
		if r.bgSync != nil {
			return errors.New(`schemaregistry.sync: background sync already running`)
		}

		r.bgSync = newSync(r.options.syncInterval, r.cache, r.logger)
		r.bgSync.start()
	}

	return nil
}

// Close stops the background sync if one is running.
func (r *Registry) Close() {
	if r.bgSync != nil {
		r.bgSync.stop()
		r.bgSync = nil
	}
}

// Print logs a table of every cached schema.
func (r *Registry) Print() {
	b := new(bytes.Buffer)
	table := tablewriter.NewWriter(b)
	table.SetHeader([]string{`Schema Id`, `Subject`, `Version`, `Format`})
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT})
	table.SetAutoFormatHeaders(true)

	for _, entry := range r.cache.entries() {
		version := fmt.Sprint(entry.Version)
		if entry.Version == 0 {
			// register responses carry no version
			version = `-`
		}
		table.Append([]string{
			fmt.Sprint(entry.ID),
			entry.Subject,
			version,
			entry.Raw.Format.String(),
		})
	}
	table.Render()

	r.logger.Info(`schemaregistry.registry`, fmt.Sprintf("schemas\n%s", b.String()))
}
