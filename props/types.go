package props

// Kind the kind of a props value
type Kind uint8

const (
	// Null the null value
	Null Kind = iota

	// String a string value
	String

	// Number a float64 value
	Number

	// Bool a boolean value
	Bool

	// Array a list of values
	Array

	// Object a string keyed map of values
	Object
)

// Value the props passed to a renderer, a JSON like tagged value
type Value struct {
	kind    Kind
	str     string
	num     float64
	boolean bool
	array   []Value
	object  map[string]Value
}
