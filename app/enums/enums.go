// Package enums provides type-safe enumeration types shared by the tracker and the remote protocol.
//
// The enum types are defined as unexported integer types in this file, and the go:generate
// directives invoke go-pkgz/enum to create the corresponding exported types in *_enum.go files.
//
// For each enum type the generator creates:
//   - an exported struct type (e.g. Mode) with name and value fields
//   - String() method
//   - Parse functions (e.g. ParseMode) for string-to-enum conversion
//   - Scan/Value for SQL and MarshalText/UnmarshalText for JSON
//   - exported values (e.g. ModeLocal, ModeRemote) and Values/Names slices
//
// To regenerate:
//
//	go generate ./app/enums
package enums

//go:generate go run github.com/go-pkgz/enum@latest -type mode -lower
//go:generate go run github.com/go-pkgz/enum@latest -type action -lower

// mode is the persistence backend selected by the connection configuration.
// Use the exported Mode type.
type mode int

const (
	modeLocal mode = iota
	modeRemote
)

// action is the request tag of the remote protocol.
// Use the exported Action type.
type action int

const (
	actionRead action = iota
	actionCreate
	actionUpdate
	actionDelete
)
