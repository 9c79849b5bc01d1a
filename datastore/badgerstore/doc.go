/*
Package badgerstore provides an embedded Badger implementation of the RegistryStore interface.

It mirrors the DynamoDB table layout on a single key space:

	entry\x00<pk>\x00<sk>          -> JSON encoded RegistryEntry
	idx\x00<gsi1_pk>\x00<gsi1_sk>  -> destination bucket ARN

Preconditions are checked and applied inside one read-write transaction, so
concurrent writers for the same id conflict and one of them fails.

Use an in-memory database for local runs and tests:

	store, err := badgerstore.New(badgerstore.Options{InMemory: true})
*/
package badgerstore
