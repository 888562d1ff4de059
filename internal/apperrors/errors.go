package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrFormatUnrecognized indicates that no statement format detector cleared the
// minimum confidence threshold for the given content.
var ErrFormatUnrecognized = errors.New("statement format not recognized")

// ErrEncoding indicates that no member of the fallback encoding chain could
// decode the statement content.
var ErrEncoding = errors.New("statement content could not be decoded")

// ErrParse indicates that a statement file was wholly unparsable in the
// selected format. Individual malformed rows are recovered as warnings and do
// not produce this error.
var ErrParse = errors.New("statement could not be parsed")

// ErrTerminalState indicates an attempt to transition a match candidate out of
// a terminal (accepted/rejected) state.
var ErrTerminalState = errors.New("match candidate is already resolved")

// ErrAlreadyClaimed indicates that committing a match would link an expense or
// transaction that an accepted match already claims.
var ErrAlreadyClaimed = errors.New("expense or transaction already claimed by an accepted match")
