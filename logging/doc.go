// Package logging builds the zerolog loggers shared by the replication components.
package logging
