package optional

import (
	"fmt"

	"github.com/Blackdeer1524/lrukpool/src/pkg/assert"
)

type optionalTagT int

const (
	optionalNoneTag optionalTagT = iota
	optionalSomeTag
)

// Optional carries a value that may be absent. The zero value is None.
type Optional[T any] struct {
	tag   optionalTagT
	value T
}

func Some[T any](value T) Optional[T] {
	return Optional[T]{
		tag:   optionalSomeTag,
		value: value,
	}
}

func None[T any]() Optional[T] {
	return Optional[T]{}
}

func (opt Optional[T]) Expect(msg string) T {
	assert.Assert(opt.tag != optionalNoneTag, msg)
	return opt.value
}

func (opt Optional[T]) Unwrap() T {
	assert.Assert(opt.tag != optionalNoneTag, "unwrap of an empty optional")
	return opt.value
}

// Get is the comma-ok form of Unwrap.
func (opt Optional[T]) Get() (T, bool) {
	return opt.value, opt.tag == optionalSomeTag
}

func (opt Optional[T]) IsNone() bool {
	return opt.tag == optionalNoneTag
}

func (opt Optional[T]) IsSome() bool {
	return opt.tag != optionalNoneTag
}

func (opt Optional[T]) String() string {
	if opt.tag == optionalNoneTag {
		return "None"
	}
	return fmt.Sprintf("Some(%v)", opt.value)
}
