// Package views serves TC templates from a views directory.
//
// A Registry maps view names to parsed templates. Names are
// reduced to their base name before lookup, so a view can never
// be read from outside the directory. Templates are parsed on
// first use and cached until invalidated; Watch keeps the cache
// coherent with the directory by dropping entries whose files
// change.
//
// WatchFiles is the lower-level loop behind Watch and the
// tcrender watch command: it reports debounced batches of
// changed files.
package views
