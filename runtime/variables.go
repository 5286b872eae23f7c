package runtime

import "strings"

// CanonicalName implements Applesoft's two-character aliasing quirk: only
// the first two characters of the base name matter, plus the type suffix,
// so COUNT and COUNTRY refer to the same cell.
func CanonicalName(name string) string {
	suffix := ""
	base := name
	if n := len(name); n > 0 {
		switch name[n-1] {
		case '$', '%':
			suffix = name[n-1:]
			base = name[:n-1]
		}
	}
	base = strings.ToUpper(base)
	if len(base) > 2 {
		base = base[:2]
	}
	return base + suffix
}

// defaultValueFor returns the default Value for a canonical name's suffix.
func defaultValueFor(canonical string) Value {
	if strings.HasSuffix(canonical, "$") {
		return String("")
	}
	return Number(0)
}

func suffixOf(canonical string) byte {
	if canonical == "" {
		return 0
	}
	last := canonical[len(canonical)-1]
	if last == '$' || last == '%' {
		return last
	}
	return 0
}

// VariableTable holds every scalar variable by canonical name.
type VariableTable struct {
	values map[string]Value
}

func NewVariableTable() *VariableTable {
	return &VariableTable{values: map[string]Value{}}
}

func (t *VariableTable) Get(name string) Value {
	c := CanonicalName(name)
	if v, ok := t.values[c]; ok {
		return v
	}
	return defaultValueFor(c)
}

// Set assigns value to name, raising TYPE MISMATCH if the suffix and the
// value's kind disagree.
func (t *VariableTable) Set(name string, value Value, line int) error {
	c := CanonicalName(name)
	if err := checkTypeMatch(c, value, line); err != nil {
		return err
	}
	t.values[c] = value
	return nil
}

func checkTypeMatch(canonical string, value Value, line int) error {
	wantsString := suffixOf(canonical) == '$'
	if wantsString != (value.Kind == StringKind) {
		return errTypeMismatch(line)
	}
	return nil
}
