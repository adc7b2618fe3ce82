// Package stamper reads workspace status ("stamp") files. LoadStamps
// merges "KEY VALUE" lines from one or more files into a Stamps set;
// Expand fills single-brace {KEY} placeholders in assignment values and
// imported partials, and Locals hands the values to a template context,
// where the render pipeline exposes them under /stamps.
package stamper
