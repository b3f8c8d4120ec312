// Package source locates planner traces on disk and opens them as line
// streams.
//
// A trace may be a plain log, a bzip2-compressed log or a member of a zip
// archive. Every Trace carries a problem id derived from its directory or
// file name; ids are NFC-normalized so the same problem name always maps to
// the same CSV key and database row regardless of how the filesystem
// encoded it.
//
// Two layouts are recognized by Discover:
//
//	data/prob01/...vhpop-log.bz2     one problem per directory
//	data/prob01.vhpop-log.bz2        flat directory of logs or zips
package source
