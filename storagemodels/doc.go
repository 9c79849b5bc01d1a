/*
Package storagemodels defines the data structures shared by the registry and
the replication pipeline.

Key Types:

RegistryEntry:
A registered replication destination. Its key attributes are derived from
RegistryEntryIndexMap:

	pk      = {id}
	sk      = Primary
	gsi1_pk = ReplicateBuildArtifact
	gsi1_sk = Bucket|{id}

LifecycleEvent / LifecycleResult:
Custom-resource requests that create, update or delete registry entries.

StorageChangeBatch:
Object-created notifications that trigger replication. Keys arrive plus-and-percent
encoded and are decoded by the copier.

StreamResult:
Items of a lazily listed sequence, with metadata:

	for res := range store.ListDestinations(ctx, WithPageSize(25)) {
	    if res.Error != nil {
	        return res.Error
	    }
	    fmt.Println(res.Item)
	}
*/
package storagemodels
