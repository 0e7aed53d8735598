// Package shortcut maintains the user's pinned folders.
//
// The List keeps paths sorted case-insensitively, the same order the
// navigation list expects when it merges shortcuts, and announces every
// change as an observable.Permuted event carrying the sorted snapshot.
//
// A List can be backed by a Store so shortcuts survive restarts. Two
// backends are provided: FileStore writes a JSON state file and SQLiteStore
// keeps the shortcuts in an SQLite database.
package shortcut
