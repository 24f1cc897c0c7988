// Package schema holds type definitions: the record kind of each type, its
// class hierarchy, its buckets and the expected kind of its properties.
//
// The record codec consults a Registry only to emit warnings. Schema
// violations never change what is stored.
package schema
