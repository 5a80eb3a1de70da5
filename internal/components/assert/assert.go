// Package assert holds preconditions on values a caller is required to
// provide, a failed assertion is a programming error and panics.
package assert

func NotNil(value any) {
	if value == nil {
		panic("expected value to be not nil")
	}
}

func NotEmptyStr(str string) {
	if str == "" {
		panic("expected string to be non-empty")
	}
}
