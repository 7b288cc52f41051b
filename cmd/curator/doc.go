// Command curator plans and applies media library renames using a locally
// downloaded model and manages the model and runtime downloads it depends
// on.
package main
