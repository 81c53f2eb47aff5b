package emulator

import (
	"errors"

	"github.com/ezrec/uavr/translate"
)

var f = translate.From

var (
	ErrImageOdd  = errors.New(f("image has an odd number of bytes"))
	ErrImageSize = errors.New(f("image larger than flash"))
)

// ErrPcRange is a control transfer outside of the flash.
type ErrPcRange uint16

func (err ErrPcRange) Error() string {
	return f("program counter %#04x outside of flash", uint16(err))
}

func (err ErrPcRange) Is(target error) (ok bool) {
	_, ok = target.(ErrPcRange)
	return
}

// ErrRuntime indicates the location of a runtime error.
type ErrRuntime struct {
	LineNo int
	Err    error
}

func (err *ErrRuntime) Error() string {
	return f("line %d %v", err.LineNo, err.Err)
}

func (err *ErrRuntime) Unwrap() error {
	return err.Err
}
