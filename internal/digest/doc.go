// Package digest computes hex-encoded file digests, optionally keyed with
// HMAC. Files are streamed through a fixed-size buffer so memory use does not
// grow with file size. Reads can be throttled to a byte rate so verification
// of large archives does not starve other disk users.
package digest
