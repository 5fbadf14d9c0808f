package main

// Name is an interned identifier or short literal. Two Names compare equal
// if and only if they were interned from equal strings -- the String Table
// invariant that the rest of the engine leans on so that symbol lookups,
// typedef resolution, and struct-tag matching can all use Name equality
// instead of string comparison.
type Name uint

// stringTable interns identifiers and short string/char literals so that
// name equality reduces to pointer (here: integer ID) equality throughout
// the engine. It is owned by the Interpreter and lives for the process
// lifetime of that Interpreter.
type stringTable struct {
	strings []string
	ids     map[string]Name
}

// text returns the string a Name was interned from, or "" for an unknown id.
func (t stringTable) text(id Name) string {
	if i := int(id) - 1; i >= 0 && i < len(t.strings) {
		return t.strings[i]
	}
	return ""
}

// lookup returns the Name previously interned for s, or 0 if s was never
// interned.
func (t stringTable) lookup(s string) Name {
	return t.ids[s]
}

// intern returns the Name for s, interning it if this is the first time it
// has been seen.
func (t *stringTable) intern(s string) (id Name) {
	id, defined := t.ids[s]
	if !defined {
		if t.ids == nil {
			t.ids = make(map[string]Name)
		}
		id = Name(len(t.strings)) + 1
		t.strings = append(t.strings, s)
		t.ids[s] = id
	}
	return id
}
