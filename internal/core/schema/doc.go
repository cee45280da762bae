// Package schema combines plugin schema fragments and applies them to documents.
//
// Fragments are JSON-Schema (draft 4) objects owned by independent plugins.
// They are folded into one aggregate schema with Merge, which refuses to let
// two fragments silently disagree on a shared leaf. The aggregate schema is
// then used to populate document defaults and, once every plugin has run, to
// validate the document.
//
// # Functions
//
//   - Merge, MergeAll: conflict-checked deep merge of fragments
//   - PopulateDefaults: write `default` values into a document
//   - Property: the sub-schema describing a document path
//   - Validate: JSON-Schema validation of a document
package schema

// Schema is a JSON-Schema object decoded into generic Go values.
type Schema = map[string]any
