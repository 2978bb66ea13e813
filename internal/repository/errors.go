// Package repository implements MySQL persistence for users, shows and
// episodes. Sentinel errors let handlers map storage failures onto HTTP
// responses without inspecting driver internals.
package repository

import (
	"encoding/json"
	"errors"
	"strings"
)

// ErrNotFound is returned when the requested row does not exist. Handlers
// translate it into HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrEmailExists signals a registration attempt with an already-used email.
var ErrEmailExists = errors.New("email already exists")

// ErrTitleExists signals a show whose title (or derived slug) collides with
// an existing one. Both columns carry unique indexes.
var ErrTitleExists = errors.New("show title already exists")

// isDuplicate reports whether err is a MySQL duplicate-key violation
// (error 1062).
func isDuplicate(err error) bool {
	return err != nil && strings.Contains(err.Error(), "1062")
}

// packList serializes a string slice into the JSON TEXT columns used for
// genres and tags. nil becomes an empty array so reads never yield null.
func packList(v []string) string {
	if v == nil {
		v = []string{}
	}
	b, _ := json.Marshal(v)
	return string(b)
}

// unpackList is the inverse of packList; malformed or empty column values
// come back as an empty slice.
func unpackList(s string) []string {
	var v []string
	if err := json.Unmarshal([]byte(s), &v); err != nil || v == nil {
		return []string{}
	}
	return v
}
