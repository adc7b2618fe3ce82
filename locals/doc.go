// Package locals builds template data contexts. Contexts are plain trees
// of map[string]any, []any and scalars decoded from JSON or multi-document
// YAML files, deep-merged in order, then adjusted by PATH=VALUE
// assignments addressed with JSON Pointers.
package locals
