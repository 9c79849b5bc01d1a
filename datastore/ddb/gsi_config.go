/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

const (
	// PrimaryKeyName is the table partition key attribute.
	PrimaryKeyName = "pk"
	// SortKeyName is the table sort key attribute.
	SortKeyName = "sk"
	// DefaultIndexName is the index used to list destinations.
	DefaultIndexName = "gsi1"
)

// GSIConfig holds the configuration for GSI key mappings
type GSIConfig struct {
	// IndexName is the actual GSI name in DynamoDB (e.g., "gsi1")
	IndexName string
	// PartitionKeyName is the actual partition key attribute name in the GSI (e.g., "gsi1_pk")
	PartitionKeyName string
	// SortKeyName is the actual sort key attribute name in the GSI (e.g., "gsi1_sk")
	SortKeyName string
}

// DefaultGSIConfigs holds the default GSI configurations
var DefaultGSIConfigs = map[string]GSIConfig{
	DefaultIndexName: {
		IndexName:        DefaultIndexName,
		PartitionKeyName: "gsi1_pk",
		SortKeyName:      "gsi1_sk",
	},
}

// GetGSIConfig returns the GSI configuration for a given index name
func GetGSIConfig(indexName string) (GSIConfig, bool) {
	config, ok := DefaultGSIConfigs[indexName]
	return config, ok
}
