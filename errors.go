package mirage

import "errors"

// Synthesis-time errors, surfaced during setup or proving.
var (
	ErrPolynomialDegreeTooLarge = errors.New("mirage: polynomial degree exceeds evaluation domain's 2-adicity")
	ErrAssignmentMissing        = errors.New("mirage: variable allocated without a value at proof time")
	ErrUnexpectedIdentity       = errors.New("mirage: trapdoor element is unexpectedly the group identity")
	ErrAuxBlockCountMismatch    = errors.New("mirage: circuit's NumAuxBlocks() does not match its actual EndAuxBlock calls")
	ErrShapeMismatch            = errors.New("mirage: circuit's synthesized shape does not match the proving key it was generated against")
)

// Verification-time errors. Verification never panics on ill-shaped input;
// it always returns one of these instead.
var (
	ErrInvalidVerifyingKey = errors.New("mirage: verifying key shape does not match the supplied proof or public inputs")
	ErrInvalidProof        = errors.New("mirage: proof failed the pairing check")
)

// I/O errors from the serialization layer.
var (
	ErrShortRead        = errors.New("mirage: unexpected end of input while decoding")
	ErrInvalidEncoding  = errors.New("mirage: malformed group element encoding")
	ErrPointAtInfinity  = errors.New("mirage: point at infinity not allowed here")
	ErrNotInSubgroup    = errors.New("mirage: point is not in the prime-order subgroup")
	ErrFormatVersion    = errors.New("mirage: serialized artifact format version is incompatible")
)
