package sqlite

import (
	"errors"
	"fmt"
)

// withStorage opens a Storage for the duration of fn and closes it after.
func withStorage(path string, opts []Option, fn func(*Storage) error) error {
	s := NewStorage(path, opts...)
	err := fn(s)
	if closeErr := s.CloseConnection(); closeErr != nil && !errors.Is(closeErr, ErrNotOpen) && err == nil {
		err = closeErr
	}
	return err
}

func asString(v any) (string, error) {
	switch s := v.(type) {
	case nil:
		return "", nil
	case string:
		return s, nil
	case []byte:
		return string(s), nil
	default:
		return "", fmt.Errorf("unexpected text value of type %T", v)
	}
}

func asInt64(v any) (int64, error) {
	switch n := v.(type) {
	case nil:
		return 0, nil
	case int64:
		return n, nil
	case float64:
		return int64(n), nil
	case bool:
		if n {
			return 1, nil
		}
		return 0, nil
	default:
		return 0, fmt.Errorf("unexpected integer value of type %T", v)
	}
}

func asNullInt64(v any) (*int64, error) {
	if v == nil {
		return nil, nil
	}
	n, err := asInt64(v)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func nullable(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}
