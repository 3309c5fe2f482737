package word

import (
	"bytes"
	"math/bits"
	"strconv"
	"unicode/utf8"

	"github.com/cockroachdb/errors"
)

// ErrConversion matches every *ConversionError with errors.Is.
var ErrConversion = errors.New("conversion failed")

// errInvalidUTF8 is the cause reported for strings that are not UTF-8.
var errInvalidUTF8 = errors.New("invalid UTF-8")

// Converter turns a Word into a typed value.
type Converter[T any] func(Word) (T, error)

// ConversionError reports a word that could not be converted.
type ConversionError struct {
	// Text is the offending input.
	Text string
	// Target names the requested type, e.g. "int64".
	Target string
	// Err is the underlying cause.
	Err error
}

func (e *ConversionError) Error() string {
	return "invalid value '" + e.Text + "' for " + e.Target + ": " + e.Err.Error()
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}

// Is makes every conversion failure match ErrConversion.
func (e *ConversionError) Is(target error) bool {
	return target == ErrConversion
}

func conversionError(w Word, target string, err error) error {
	var numErr *strconv.NumError
	if errors.As(err, &numErr) {
		err = numErr.Err
	}
	return &ConversionError{Text: w.String(), Target: target, Err: err}
}

// String converts a word to a string, failing when it is not valid UTF-8.
func String(w Word) (string, error) {
	if !utf8.Valid(w.b) {
		return "", conversionError(w, "string", errInvalidUTF8)
	}
	return string(w.b), nil
}

// OSString converts a word to a string without validating its encoding.
// It never fails.
func OSString(w Word) (string, error) {
	return string(w.b), nil
}

// Path converts a word to a filesystem path. It never fails.
func Path(w Word) (string, error) {
	return string(w.b), nil
}

// Bytes returns an owned copy of the word. It never fails.
func Bytes(w Word) ([]byte, error) {
	return bytes.Clone(w.b), nil
}

// Bool parses the word with the strconv.ParseBool grammar.
func Bool(w Word) (bool, error) {
	v, err := strconv.ParseBool(string(w.b))
	if err != nil {
		return false, conversionError(w, "bool", err)
	}
	return v, nil
}

// Float64 parses a decimal floating point number.
func Float64(w Word) (float64, error) {
	v, err := strconv.ParseFloat(string(w.b), 64)
	if err != nil {
		return 0, conversionError(w, "float64", err)
	}
	return v, nil
}

func signed[T ~int | ~int8 | ~int16 | ~int32 | ~int64](size int, target string) Converter[T] {
	return func(w Word) (T, error) {
		v, err := strconv.ParseInt(string(w.b), 10, size)
		if err != nil {
			return 0, conversionError(w, target, err)
		}
		return T(v), nil
	}
}

func unsigned[T ~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64](size int, target string) Converter[T] {
	return func(w Word) (T, error) {
		text := w.b
		// ParseUint rejects a leading plus sign, the integer parsers do not.
		if len(text) > 1 && text[0] == '+' {
			text = text[1:]
		}
		v, err := strconv.ParseUint(string(text), 10, size)
		if err != nil {
			return 0, conversionError(w, target, err)
		}
		return T(v), nil
	}
}

// Integer converters. All of them detect overflow.
var (
	Int    = signed[int](bits.UintSize, "int")
	Int8   = signed[int8](8, "int8")
	Int16  = signed[int16](16, "int16")
	Int32  = signed[int32](32, "int32")
	Int64  = signed[int64](64, "int64")
	Uint   = unsigned[uint](bits.UintSize, "uint")
	Uint8  = unsigned[uint8](8, "uint8")
	Uint16 = unsigned[uint16](16, "uint16")
	Uint32 = unsigned[uint32](32, "uint32")
	Uint64 = unsigned[uint64](64, "uint64")
)

// Optional wraps c so an empty word produces nil instead of a conversion.
func Optional[T any](c Converter[T]) Converter[*T] {
	return func(w Word) (*T, error) {
		if w.IsEmpty() {
			return nil, nil
		}
		v, err := c(w)
		if err != nil {
			return nil, err
		}
		return &v, nil
	}
}

// Convert applies c to w. It exists so call sites read left to right.
func Convert[T any](w Word, c Converter[T]) (T, error) {
	return c(w)
}
