// Package hash provides the checksum used to verify persisted segments.
package hash
