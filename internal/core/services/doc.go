// Package services implements the driving ports on top of the driven ones.
//
// The clustering pipeline is BuildGraph, then ConnectedComponents at a
// threshold, then Materialize into named clusters. Reduce applies one
// editor Action to an EditorState. These four are pure; the service types
// around them do the loading, locking and saving.
package services
