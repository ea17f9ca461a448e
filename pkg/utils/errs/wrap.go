package errs

import "fmt"

func Wrap(base, ext error) error {
	return fmt.Errorf("%w: %w", base, ext)
}

func Wrapf(base error, format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{base}, args...)...)
}
