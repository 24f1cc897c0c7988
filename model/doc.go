// Package model defines the identity types shared by every layer of recgo.
//
// # Identity Types
//
//   - RID: record identifier, (bucket id, position) address of a stored record
//   - Null: the "no reference" sentinel used for optional graph pointers
//
// # Record Types
//
//   - RecordType: first byte of every encoded record (document, vertex, edge, edge chunk)
//   - Direction: OUT or IN side of a vertex adjacency
//
// RIDs are plain comparable values and can be used as map keys:
//
//	rid := model.NewRID(3, 42)
//	fmt.Println(rid) // #3:42
//
//	parsed, err := model.ParseRID("#3:42")
package model
