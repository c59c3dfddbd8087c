package types

// Field is a named member of an object type.
//
// Whether a field is required is derived from its type: a field is optional
// exactly when its type is option<_>, so the two can never disagree.
type Field struct {
	Name string
	Type Type
}

// NewField returns a field with the given name and type.
func NewField(name string, t Type) Field {
	return Field{Name: name, Type: t}
}

// IsRequired reports whether the field must be present in object content.
func (f Field) IsRequired() bool {
	return !f.Type.IsOption()
}

// Object is an ordered list of fields. Table definitions and the current-row
// type are Objects.
type Object struct {
	Fields []Field
}

// Field looks up a field by name.
func (o Object) Field(name string) (Field, bool) {
	for _, f := range o.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// With returns a copy of o with f set. An existing field of the same name is
// replaced in place; otherwise f is appended.
func (o Object) With(f Field) Object {
	out := o.Clone()
	for i := range out.Fields {
		if out.Fields[i].Name == f.Name {
			out.Fields[i] = f
			return out
		}
	}
	out.Fields = append(out.Fields, f)
	return out
}

// Clone returns a copy whose field slice can be modified independently.
func (o Object) Clone() Object {
	fields := make([]Field, len(o.Fields))
	copy(fields, o.Fields)
	return Object{Fields: fields}
}

// Type returns o as an object type.
func (o Object) Type() Type {
	return ObjectOf(o.Clone().Fields...)
}

// Names returns field names in declaration order.
func (o Object) Names() []string {
	names := make([]string, len(o.Fields))
	for i, f := range o.Fields {
		names[i] = f.Name
	}
	return names
}

// RequiredNames returns the names of required fields in declaration order.
func (o Object) RequiredNames() []string {
	var names []string
	for _, f := range o.Fields {
		if f.IsRequired() {
			names = append(names, f.Name)
		}
	}
	return names
}
