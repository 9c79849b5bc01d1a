/*
Package lifecycle applies resource lifecycle events to the destination registry.

Create writes a new entry guarded by a must-not-exist precondition, Update
overwrites an existing one guarded by must-exist, and Delete removes the entry
unconditionally. Create events without a physical id get one from the
configured IDGenerator.

Handle never fails: every fault is logged and reported as a FAILED result
with the fixed reason "Error registering.".
*/
package lifecycle
