// Package digester calculates SHA256 digests of files and file
// sets. Watchers compare digests to tell a real content change from
// an editor touching a file.
package digester
