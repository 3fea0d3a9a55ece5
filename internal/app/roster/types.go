package roster

// Optional is a tri-state field used to distinguish:
// - unspecified (omitted)
// - specified as null
// - specified with a value
type Optional[T any] struct {
	specified bool
	isNull    bool
	value     T
}

func Unspecified[T any]() Optional[T] { return Optional[T]{} }
func Null[T any]() Optional[T]        { return Optional[T]{specified: true, isNull: true} }
func Some[T any](v T) Optional[T]     { return Optional[T]{specified: true, value: v} }

func (o Optional[T]) IsSpecified() bool { return o.specified }
func (o Optional[T]) IsNull() bool      { return o.specified && o.isNull }
func (o Optional[T]) Value() T          { return o.value }

// ScoutForm is the raw add/edit form input. Every field arrives as text;
// blank optional fields become null when persisted.
type ScoutForm struct {
	Name  string
	Troop string
	Age   string
	Email string
}

// ScoutPatch updates only the specified fields. Null or blank clears an optional
// field; Name cannot be cleared.
type ScoutPatch struct {
	Name  Optional[string]
	Troop Optional[string]
	Age   Optional[string]
	Email Optional[string]
}
