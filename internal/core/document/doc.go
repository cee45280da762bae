// Package document provides path addressing over configuration documents.
//
// A document is a tree of map[string]any (mappings), []any (sequences) and
// scalars, as produced by decoding YAML, JSON or TOML. Nodes are located by
// `/`-delimited paths; a path is either absolute (anchored at the root) or
// relative to a reference directory such as the location of the value that
// mentions it. All functions are pure apart from in-place mutation of the
// document they are handed.
//
// # Functions
//
//   - Split, Abs: normalize a path (optionally relative to a reference)
//   - Get, Set, SetDefault, Pop, Append: read and mutate a document by path
//   - Walk: rebuild a document by applying a function to every leaf
//   - Stringify: render a scalar the way it appears in substituted strings
//
// # Usage
//
//	doc := map[string]any{}
//	_ = document.Set(doc, "/run/image", "alpine:3", "")
//	v, err := document.Get(doc, "image", "/run")
package document
