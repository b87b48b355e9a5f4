package transform

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/carlodf/csvshard/connector"
)

func TestProject(t *testing.T) {
	t.Parallel()

	rec := fakeRecord{
		vals:  []string{"1", "ada", "x"},
		names: []string{"id", "name", "extra"},
		meta:  connector.SrcMeta{Name: "data.001.csv"},
	}

	cases := []struct {
		name    string
		header  []string
		strict  bool
		want    []string
		wantErr string
	}{
		{name: "same order", header: []string{"id", "name", "extra"}, strict: true, want: []string{"1", "ada", "x"}},
		{name: "reordered", header: []string{"name", "id"}, strict: true, want: []string{"ada", "1"}},
		{name: "missing column lenient", header: []string{"id", "email"}, strict: false, want: []string{"1", ""}},
		{name: "missing column strict", header: []string{"id", "email"}, strict: true, wantErr: `data.001.csv has no column "email"`},
		{name: "empty header", header: nil, strict: true, want: []string{}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := Project(tc.header, tc.strict)(rec)
			if tc.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
					t.Fatalf("err = %v, want it to contain %q", err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("Project(%q) mismatch (-want +got):\n%s", tc.header, diff)
			}
		})
	}
}

func TestProject_CopiesHeader(t *testing.T) {
	t.Parallel()
	header := []string{"id"}
	m := Project(header, true)
	header[0] = "changed"

	got, err := m(fakeRecord{vals: []string{"7"}, names: []string{"id"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]string{"7"}, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestFields(t *testing.T) {
	t.Parallel()
	rec := fakeRecord{vals: []string{"1", "", "x"}, names: []string{"id", "name", "extra"}}

	got, err := Fields(rec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]string{"1", "", "x"}, got); diff != "" {
		t.Fatalf("Fields mismatch (-want +got):\n%s", diff)
	}

	// The result must not alias the record.
	rec.vals[0] = "changed"
	if got[0] != "1" {
		t.Fatalf("Fields result aliases the record: %q", got)
	}
}
