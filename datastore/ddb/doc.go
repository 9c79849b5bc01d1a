/*
Package ddb provides a DynamoDB implementation of the RegistryStore interface.

The RegistryStore supports:
  - Single-table design with macro-based key expansion from the index map
  - Existence-guarded writes (attribute_not_exists / attribute_exists on pk)
  - Unconditional, idempotent deletes
  - Paginated destination listing on the gsi1 index

Table Layout:

	pk       sk        gsi1_pk                  gsi1_sk        id   bucketArn  accountId  region
	ABC123   Primary   ReplicateBuildArtifact   Bucket|ABC123  ...

Streaming:
Destinations are streamed page by page and can be tuned with options:

	for res := range store.ListDestinations(ctx,
	    storagemodels.WithPageSize(25),
	    storagemodels.WithProgressHandler(func(p storagemodels.StreamProgress) {
	        log.Printf("Processed %d destinations", p.ItemsProcessed)
	    }),
	) {
	    ...
	}

Failed queries are reported on the stream and never retried.
*/
package ddb
