package transform

import "fmt"

// Fields is a Mapper that copies a record's values in column order.
func Fields(e Extractor) ([]string, error) {
	out := make([]string, e.Len())
	for i := range out {
		out[i], _ = e.ByIndex(i)
	}
	return out, nil
}

// Project returns a Mapper that lays a record out in the column order of
// header, looking fields up by name.
//
// When strict is true, a header column missing from the record is an
// error. When strict is false it is emitted as an empty string. Record
// fields that are not named in header are dropped in both modes.
func Project(header []string, strict bool) Mapper[[]string] {
	cols := append([]string(nil), header...)
	return func(e Extractor) ([]string, error) {
		out := make([]string, len(cols))
		for i, name := range cols {
			v, ok := e.ByName(name)
			if !ok && strict {
				return nil, fmt.Errorf("record from %s has no column %q", e.Meta().Name, name)
			}
			out[i] = v
		}
		return out, nil
	}
}
