/*
Package schemaregistry implements a concurrency-safe client for a Confluent
style schema registry.

It registers and resolves schemas through a shared, append-only schema cache
and wraps payloads in the registry wire format, a magic byte and a four byte
big-endian schema id prepended to every message so any consumer can look up
the exact schema a payload was produced with.

Schema resolution is single-flight: no matter how many producer or consumer
tasks reference the same uncached schema concurrently, the registry is
called at most once per key and every caller shares the one outcome. Failed
calls are never cached, so the application stays in control of retries.

Avro, Protobuf and JSON Schema payloads are supported out of the box, other
formats plug in through the Marshaller interface.

Schema registry API : https://docs.confluent.io/platform/current/schema-registry/develop/api.html

See the format specifications for an understanding of how encoding works.

Avro: http://avro.apache.org/docs/current/

Protobuf: https://protobuf.dev/programming-guides/encoding/

JSON Schema: https://json-schema.org/specification
*/

package schemaregistry
