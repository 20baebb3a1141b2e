package mx

import "errors"

var (
	ErrInvalidConstant     = errors.New("mx: invalid constant")
	ErrInvalidVariableName = errors.New("mx: invalid variable name")
	ErrDivisionByZero      = errors.New("mx: division by zero")
	ErrInvalidExponent     = errors.New("mx: exponent is not a number")
	ErrInvalidDomain       = errors.New("mx: argument outside domain")
	ErrNotDifferentiable   = errors.New("mx: not differentiable")
	ErrInvalidCoercion     = errors.New("mx: cannot coerce value to an expression")
	ErrNilExpr             = errors.New("mx: nil expression")

	ErrInvalidDimensions = errors.New("mx: invalid matrix dimensions")
	ErrIndexOutOfBounds  = errors.New("mx: matrix index out of bounds")
	ErrIncompatibleShape = errors.New("mx: incompatible matrix shape")
	ErrNotAVector        = errors.New("mx: not a vector")
	ErrDimensionMismatch = errors.New("mx: matrix dimension mismatch")

	// ErrUndetermined is returned by helpers that need a definite number
	// where an expression still has unbound variables.
	ErrUndetermined = errors.New("mx: value is undetermined")
)
