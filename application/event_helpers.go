package application

import (
	"fmt"
	"reflect"

	"lotto/domain/events"
)

// AssertEventType asserts an event to a concrete type with a descriptive error
func AssertEventType[T events.Event](event interface{}, expectedTypeName string) (T, error) {
	var zero T

	if e, ok := event.(T); ok {
		return e, nil
	}

	errMsg := fmt.Sprintf("event type assertion failed: expected %s, got %T", expectedTypeName, event)
	if e, ok := event.(events.Event); ok {
		errMsg += fmt.Sprintf(" (event.Type()=%s)", e.Type())
	}

	if v := reflect.ValueOf(event); v.Kind() == reflect.Ptr {
		if v.IsNil() {
			errMsg += " (event is nil)"
		} else {
			errMsg += fmt.Sprintf(" (pointer to %s)", v.Type().Elem())
		}
	}

	return zero, fmt.Errorf("%s", errMsg)
}
