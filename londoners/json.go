package londoners

// JSON is a dynamically shaped upstream response body. The Guesty API has
// shipped several schema versions for the same resources, so readers take
// ordered field chains and return the first present value.
type JSON map[string]interface{}

// Get walks a path of object keys and array indexes and returns the value,
// or nil when any step is absent.
func (j JSON) Get(path ...interface{}) interface{} {
	var current interface{} = map[string]interface{}(j)
	for _, step := range path {
		switch key := step.(type) {
		case string:
			object, ok := current.(map[string]interface{})
			if !ok {
				return nil
			}
			current = object[key]
		case int:
			array, ok := current.([]interface{})
			if !ok || key < 0 || key >= len(array) {
				return nil
			}
			current = array[key]
		default:
			return nil
		}
	}
	return current
}

// Text returns the string at path, or false when absent or empty.
func (j JSON) Text(path ...interface{}) (string, bool) {
	value, ok := j.Get(path...).(string)
	return value, ok && value != ""
}

// Number returns the number at path, or false when absent.
func (j JSON) Number(path ...interface{}) (float64, bool) {
	value, ok := j.Get(path...).(float64)
	return value, ok
}

// Object returns the nested object at path, or false when absent.
func (j JSON) Object(path ...interface{}) (JSON, bool) {
	value, ok := j.Get(path...).(map[string]interface{})
	return JSON(value), ok
}

// Array returns the array at path, or false when absent.
func (j JSON) Array(path ...interface{}) ([]interface{}, bool) {
	value, ok := j.Get(path...).([]interface{})
	return value, ok
}

// TextChain evaluates field paths left to right and returns the first
// present non-empty string, or the default.
func (j JSON) TextChain(def string, paths ...[]interface{}) string {
	for _, path := range paths {
		if value, ok := j.Text(path...); ok {
			return value
		}
	}
	return def
}

// NumberChain evaluates field paths left to right and returns the first
// present number, or the default.
func (j JSON) NumberChain(def float64, paths ...[]interface{}) float64 {
	for _, path := range paths {
		if value, ok := j.Number(path...); ok {
			return value
		}
	}
	return def
}
