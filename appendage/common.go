package appendage

import "encoding/hex"

// OneQBR mirrors tx.OneQBR (the minor-unit scale of the native coin). It is
// redeclared here, rather than imported, to keep this package independent
// of package tx and avoid an import cycle (tx depends on appendage to
// drive parsing and fee accumulation, not the other way around).
const OneQBR = 100_000_000

func hexString(b []byte) string { return hex.EncodeToString(b) }

type appendageError struct{ msg string }

func (e *appendageError) Error() string { return e.msg }

func errAppendage(msg string) error { return &appendageError{msg: msg} }
