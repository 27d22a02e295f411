package utils

import "errors"

var ErrorRecordNotFound = errors.New("record not found")

// ErrorDuplicateKey is returned by storage helpers when a unique index rejects
// a create. Callers recover by re-reading the existing row.
var ErrorDuplicateKey = errors.New("duplicate key")

func ErrorPanic(err error) {
	if err != nil {
		panic(err)
	}
}
