/*
Package datastore defines the registry store interface used by the lifecycle
handler and the replication dispatcher.

	type RegistryStore interface {
	    Put(ctx context.Context, entry storagemodels.RegistryEntry, precondition storagemodels.Precondition) error
	    GetOne(ctx context.Context, id string) (*storagemodels.RegistryEntry, error)
	    Delete(ctx context.Context, id string) error
	    ListDestinations(ctx context.Context, opts ...storagemodels.StreamOption) <-chan storagemodels.StreamResult[string]
	}

Implementations:
  - ddb: DynamoDB single-table implementation (production)
  - badgerstore: embedded Badger implementation for local runs
  - mock: in-memory implementation with error injection for testing

Writes are single-entry conditional puts; the precondition on the entry id is
the only concurrency control.
*/
package datastore
