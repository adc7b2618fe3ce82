// Package tctemplate implements TC templates, a small markup interpolation
// language with bracketed tags:
//
//	[=/path]                      escaped interpolation
//	[-/path]                      raw interpolation
//	[comment] ... [/comment]      suppressed block, nestable
//	[if /path] ... [/if]          rendered only when the value is boolean true
//	[for /item in /list] ... [/for]
//	                              rendered once per element of /list, with
//	                              /item bound to the element
//
// Paths are RFC 6901 JSON Pointers resolved against the locals passed to
// Render. Tag keywords are case-insensitive. Any other text is copied to
// the output unchanged.
//
// A Template is parsed once into a node tree and is safe for concurrent
// use. Rendering writes loop bindings into the caller's locals and leaves
// the last bound element in place after Render returns, so concurrent
// renders of a template that loops must not share one locals tree.
// Recursion depth follows the loop nesting of the template; output size is
// bounded only by the data.
package tctemplate
