package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapf(t *testing.T) {
	original := New("original")
	wrapped := Wrapf(original, "row %d", 4)

	assert.Contains(t, wrapped.Error(), "row 4")
	assert.Contains(t, wrapped.Error(), "original")
	assert.True(t, Is(wrapped, original))
}

type customError struct {
	msg string
}

func (e *customError) Error() string {
	return e.msg
}

func TestAs(t *testing.T) {
	original := &customError{msg: "custom"}
	wrapped := Wrap(original, "wrapped")

	var target *customError
	require.True(t, As(wrapped, &target))
	assert.Equal(t, "custom", target.msg)
}

func TestWithHint(t *testing.T) {
	err := WithHint(New("error"), "check the table delimiter")

	hints := GetAllHints(err)
	require.Len(t, hints, 1)
	assert.Equal(t, "check the table delimiter", hints[0])
}

func TestStackTrace(t *testing.T) {
	err := New("with stack")

	detailed := fmt.Sprintf("%+v", err)
	assert.Contains(t, detailed, "errors_test.go")
}

func TestNilHandling(t *testing.T) {
	assert.Nil(t, Wrap(nil, "context"))
	assert.Nil(t, Wrapf(nil, "context %d", 1))
	assert.Nil(t, WithHint(nil, "hint"))
	assert.False(t, IsDomainError(nil))
	assert.False(t, IsRowParseError(nil))
	assert.False(t, IsNotFoundError(nil))
}

func TestSentinels(t *testing.T) {
	t.Run("domain error keeps its class through wrapping", func(t *testing.T) {
		err := NewDomainError("column %g is not positive", -1.0)
		err = Wrap(err, "sum components")

		assert.True(t, IsDomainError(err))
		assert.False(t, IsRowParseError(err))
		assert.Contains(t, err.Error(), "column -1 is not positive")
	})

	t.Run("not found covers store misses", func(t *testing.T) {
		assert.True(t, IsNotFoundError(Wrap(ErrKeyNotFound, "Si IV")))
		assert.True(t, IsNotFoundError(NewNotFoundError("system %q", "PHL1811_z0.081")))
		assert.False(t, IsNotFoundError(ErrDuplicateIon))
	})

	t.Run("sentinels are distinct", func(t *testing.T) {
		all := []error{ErrDomain, ErrDuplicateIon, ErrKeyNotFound, ErrRowParse, ErrUnknownIon, ErrNotFound}
		for i, a := range all {
			for j, b := range all {
				assert.Equal(t, i == j, Is(a, b), "%v vs %v", a, b)
			}
		}
	})
}

func ExampleWrap() {
	err := Wrap(ErrUnknownIon, "Xx II")
	fmt.Println(err)
	// Output: Xx II: unknown ion
}
