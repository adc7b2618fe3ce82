// Package templating renders TC template files. The Engine type holds
// configuration (stamp info files, locals files, logger) and renders
// templates via the Expand method, which builds a data context from stamps,
// locals files, PATH=VALUE assignments and rendered partial imports, renders
// the template against it and writes the result atomically.
package templating
