// Package services defines the shared error taxonomy and context annotations
// used across curator's components. Sentinel errors classify failures for the
// CLI boundary; Wrap attaches component and operation context while keeping
// the sentinel reachable through errors.Is.
package services
