// Package inference owns the loaded-model lifecycle: a single resident
// model behind one mutex, idle eviction after a fixed window of disuse, and
// runtime variant selection for the native engine payload.
package inference
