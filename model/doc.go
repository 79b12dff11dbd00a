// Package model defines the value types shared by the index and its storage
// collaborators.
package model
