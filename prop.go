package datastoreflex

// Property is a name/value pair of one entity field.
type Property struct {
	Name    string
	Value   interface{}
	NoIndex bool
}

// PropertyList is the schemaless representation of an entity's fields.
type PropertyList []Property

// Value returns the value of the named property and whether it is present.
func (l PropertyList) Value(name string) (interface{}, bool) {
	for _, p := range l {
		if p.Name == name {
			return p.Value, true
		}
	}
	return nil, false
}

// Has reports whether the named property is present.
func (l PropertyList) Has(name string) bool {
	_, ok := l.Value(name)
	return ok
}

// Set replaces the named property value in place, appending when absent.
func (l *PropertyList) Set(name string, value interface{}, noIndex bool) {
	for idx := range *l {
		if (*l)[idx].Name == name {
			(*l)[idx].Value = value
			(*l)[idx].NoIndex = noIndex
			return
		}
	}
	*l = append(*l, Property{Name: name, Value: value, NoIndex: noIndex})
}

// Entity is one datastore record, a mapping from field name to value.
type Entity struct {
	Key        Key
	Properties PropertyList
}

// Property returns the value of the named field and whether it is present.
func (e *Entity) Property(name string) (interface{}, bool) {
	return e.Properties.Value(name)
}

// SetProperty replaces the named field value in place.
func (e *Entity) SetProperty(name string, value interface{}) {
	e.Properties.Set(name, value, false)
}
