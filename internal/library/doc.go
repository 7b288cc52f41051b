// Package library defines the collaborator contract that supplies media items
// and a JSON manifest implementation of it.
package library
