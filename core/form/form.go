package form

// Field declares one named input of a form: its ordered rule list and the
// sibling fields whose changes must trigger its re-validation (the canonical
// example: confirmPassword depends on password).
type Field struct {
	Name      string
	Rules     []Rule
	DependsOn []string
}

// Schema is the ordered field list of one form.
type Schema []Field

func (s Schema) field(name string) (Field, bool) {
	for _, fld := range s {
		if fld.Name == name {
			return fld, true
		}
	}
	return Field{}, false
}

// Validate runs the ordered rules of the named field and returns the first
// non-empty message. Unknown fields are valid.
func (s Schema) Validate(name string, value interface{}, all Values) string {
	fld, ok := s.field(name)
	if !ok {
		return ""
	}
	for _, rule := range fld.Rules {
		if msg := rule(value, all); msg != "" {
			return msg
		}
	}
	return ""
}

// Form owns the state of one mounted form: values, errors, touched flags and
// the submitting guard. A Form is bound to a single screen and is never
// shared, so it is not safe for concurrent use.
//
// Validation is lazy: a field's error is only (re)computed once the field has
// been touched, or when ValidateAll runs. Pristine forms never flash errors.
type Form struct {
	schema     Schema
	initial    Values
	values     Values
	errors     map[string]string
	touched    map[string]bool
	submitting bool
	observers  []func()
}

// New creates a Form over the given schema, seeded with a snapshot of the
// initial values. Reset restores that exact snapshot.
func New(schema Schema, initial Values) *Form {
	f := &Form{
		schema:  schema,
		initial: initial,
	}
	f.clear()
	return f
}

func (f *Form) clear() {
	f.values = make(Values, len(f.initial))
	for k, v := range f.initial {
		f.values[k] = v
	}
	f.errors = make(map[string]string)
	f.touched = make(map[string]bool)
	f.submitting = false
}

// Subscribe registers fn to be called after every state transition.
func (f *Form) Subscribe(fn func()) {
	f.observers = append(f.observers, fn)
}

func (f *Form) notify() {
	for _, fn := range f.observers {
		fn()
	}
}

// SetValue overwrites a field's value. The field is re-validated immediately
// if it was touched; so is every touched field that declares it as a
// dependency. Both updates are synchronous: reading errors right after
// SetValue returns always observes the new state.
func (f *Form) SetValue(name string, value interface{}) {
	f.values[name] = value

	if f.touched[name] {
		f.errors[name] = f.schema.Validate(name, value, f.values)
	}
	for _, fld := range f.schema {
		if fld.Name == name || !f.touched[fld.Name] {
			continue
		}
		for _, dep := range fld.DependsOn {
			if dep == name {
				f.errors[fld.Name] = f.schema.Validate(fld.Name, f.values[fld.Name], f.values)
				break
			}
		}
	}
	f.notify()
}

// SetFieldTouched marks a field touched (blurred) and validates it. This is
// what first populates the field's error.
func (f *Form) SetFieldTouched(name string) {
	f.touched[name] = true
	f.errors[name] = f.schema.Validate(name, f.values[name], f.values)
	f.notify()
}

// ValidateAll validates every schema field against the current values, marks
// all of them touched, replaces the error set wholesale and reports whether
// the form is clean. Always called as the submit gate.
func (f *Form) ValidateAll() bool {
	errs := make(map[string]string, len(f.schema))
	valid := true
	for _, fld := range f.schema {
		msg := f.schema.Validate(fld.Name, f.values[fld.Name], f.values)
		errs[fld.Name] = msg
		f.touched[fld.Name] = true
		if msg != "" {
			valid = false
		}
	}
	f.errors = errs
	f.notify()
	return valid
}

// SetSubmitting flips the double-submit guard. Callers set it true before the
// async submit action and false in a defer, so a network failure can never
// leave the form stuck.
func (f *Form) SetSubmitting(submitting bool) {
	f.submitting = submitting
	f.notify()
}

// Reset restores the initial values snapshot and clears errors, touched flags
// and the submitting guard.
func (f *Form) Reset() {
	f.clear()
	f.notify()
}

func (f *Form) Submitting() bool { return f.submitting }

// Value returns the current value of a field.
func (f *Form) Value(name string) interface{} { return f.values[name] }

// Values returns a copy of the current values.
func (f *Form) Values() Values {
	vals := make(Values, len(f.values))
	for k, v := range f.values {
		vals[k] = v
	}
	return vals
}

// Error returns the current error of a field ("" when valid or not yet
// validated).
func (f *Form) Error(name string) string { return f.errors[name] }

// Errors returns a copy of the current error set.
func (f *Form) Errors() map[string]string {
	errs := make(map[string]string, len(f.errors))
	for k, v := range f.errors {
		errs[k] = v
	}
	return errs
}

// Touched reports whether the user has interacted with the field.
func (f *Form) Touched(name string) bool { return f.touched[name] }

// IsValid reports whether every schema field currently has a value free of
// errors. Used to enable/disable the submit affordance.
func (f *Form) IsValid() bool {
	for _, fld := range f.schema {
		if f.errors[fld.Name] != "" {
			return false
		}
		if f.values[fld.Name] == nil || text(f.values[fld.Name]) == "" {
			return false
		}
	}
	return true
}
