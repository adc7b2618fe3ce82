// Package pointer resolves RFC 6901 JSON Pointers against trees of maps,
// slices and scalars. Reads tolerate missing intermediate nodes and report
// them as not found; writes create intermediate map nodes on demand and can
// append to slices with the "-" token or an index equal to the length.
package pointer
