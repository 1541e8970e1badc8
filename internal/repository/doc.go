// Package repository defines storage for the local alias database.
//
// The alias database maps a user-chosen alias to the connection details of a device and also
// keeps the loan service session. It is read and written as a whole snapshot; there are no
// partial updates. The implementation is in the sqlite subpackage.
package repository
