/*
Package registry manages key templates for entities persisted in the registry table.

Index Map Registry:
Associates Go types with single-table key patterns:

	indexMap := map[string]string{
	    "pk":      "{id}",
	    "sk":      "Primary",
	    "gsi1_pk": "ReplicateBuildArtifact",
	    "gsi1_sk": "Bucket|{id}",
	}
	registry.RegisterIndexMap[RegistryEntry](indexMap)

	keys := registry.ExpandKeys(indexMap, map[string]string{"id": "ABC"})
	// keys["gsi1_sk"] == "Bucket|ABC"

The registry is thread-safe and should be populated during initialization,
typically in init() functions.
*/
package registry
