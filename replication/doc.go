/*
Package replication dispatches storage change notifications to every
registered destination.

For each batch the Dispatcher reads the current destination set, builds the
full cross product of records and destinations, and runs the copies on a
bounded worker pool. It waits for every copy and reports each outcome:

	report, err := dispatcher.Dispatch(ctx, batch)
	for _, res := range report.Failed() {
	    log.Printf("%s -> %s: %v", res.Task.SourceKey, res.Task.DestinationRef, res.Err)
	}

err is non-nil when any copy failed and combines all failures; use
multierr.Errors to split it.
*/
package replication
