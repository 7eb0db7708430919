/**
 * Copyright 2024 OpenStream Engineering.
 * All rights reserved.
 */

package main

import (
	"fmt"
	"time"

	"github.com/riferrei/srclient"
	"github.com/tryfix/log"

	"github.com/openstream/schemaregistry"
)

type Order struct {
	ID     int64  `avro:"id"`
	Status string `avro:"status"`
}

const orderSchema = `{"type":"record","name":"order","fields":[
	{"name":"id","type":"long"},
	{"name":"status","type":"string"}]}`

func main() {
	logger := log.NewLog().Log(log.WithLevel(log.INFO))

	// init a new schema registry instance and connect. The mock client keeps
	// the example self contained, drop WithClient to talk to a real registry.
	registry, err := schemaregistry.NewRegistry(`http://localhost:8081`,
		schemaregistry.WithLogger(logger),
		schemaregistry.WithBackgroundSync(5*time.Second),
		schemaregistry.WithClient(srclient.CreateMockSchemaRegistryClient(`http://localhost:8081`)),
	)
	if err != nil {
		log.Fatal(err)
	}

	if err := registry.Sync(); err != nil {
		log.Fatal(err)
	}
	defer registry.Close()

	details := schemaregistry.SchemaDetails{
		Topic:  `orders`,
		Format: schemaregistry.Avro,
	}

	ids, err := registry.PostSchemas(schemaregistry.SchemaEntry{Schema: orderSchema, Details: details})
	if err != nil {
		log.Fatal(err)
	}
	log.Info(fmt.Sprintf(`order schema registered with id %d`, ids[0]))

	serializer, err := registry.Serializer(orderSchema, details)
	if err != nil {
		log.Fatal(err)
	}

	payload, err := serializer.Serialize(Order{ID: 1001, Status: `created`})
	if err != nil {
		log.Fatal(err)
	}

	var order Order
	if err := registry.Deserializer().DeserializeInto(payload, schemaregistry.Avro, &order); err != nil {
		log.Fatal(err)
	}

	log.Info(fmt.Sprintf(`order round-tripped through the wire format: %+v`, order))
	registry.Print()
}
