package conf

import (
	"errors"
	"reflect"
	"testing"
)

func TestOptCoerce(t *testing.T) {
	cases := []struct {
		name    string
		opt     Opt
		input   any
		want    any
		wantErr bool
	}{
		{name: "string from int", opt: StrOpt("s"), input: 42, want: "42"},
		{name: "int from string", opt: IntOpt("i"), input: " 30 ", want: 30},
		{name: "int rejects words", opt: IntOpt("i"), input: "soon", wantErr: true},
		{name: "int leading zero is decimal", opt: IntOpt("i"), input: "010", want: 10},
		{name: "int leading zero eight", opt: IntOpt("i"), input: "08", want: 8},
		{name: "int rejects hex", opt: IntOpt("i"), input: "0x10", wantErr: true},
		{name: "port leading zero", opt: PortOpt("p"), input: "08080", want: 8080},
		{name: "float from string", opt: FloatOpt("f"), input: "1.5", want: 1.5},
		{name: "bool yes", opt: BoolOpt("b"), input: "yes", want: true},
		{name: "bool off", opt: BoolOpt("b"), input: "Off", want: false},
		{name: "bool true string", opt: BoolOpt("b"), input: "true", want: true},
		{name: "list from csv", opt: ListOpt("l"), input: "a, b,,c", want: []string{"a", "b", "c"}},
		{name: "multistring from slice", opt: MultiStrOpt("m"), input: []any{"log", "noop"}, want: []string{"log", "noop"}},
		{name: "nil stays nil", opt: IntOpt("i"), input: nil, want: nil},
		{name: "blank int is unset", opt: IntOpt("i"), input: "  ", want: nil},
		{name: "blank string kept", opt: StrOpt("s"), input: "", want: ""},
		{name: "port upper bound", opt: PortOpt("p"), input: 65536, wantErr: true},
		{name: "port in range", opt: PortOpt("p"), input: "5672", want: 5672},
		{name: "choice accepted", opt: StrOpt("c", WithChoices("a", "b")), input: "b", want: "b"},
		{name: "choice rejected", opt: StrOpt("c", WithChoices("a", "b")), input: "z", wantErr: true},
		{name: "list choices", opt: ListOpt("c", WithChoices("a", "b")), input: "a,z", wantErr: true},
		{name: "min bound", opt: IntOpt("n", WithMin(1)), input: 0, wantErr: true},
		{name: "max bound float", opt: FloatOpt("n", WithMax(2)), input: 2.5, wantErr: true},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.opt.Coerce(tc.input)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %#v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("want %#v, got %#v", tc.want, got)
			}
		})
	}
}

func TestOptDefinitionValidation(t *testing.T) {
	cases := map[string]Opt{
		"empty name":    StrOpt(" "),
		"bad type":      NewOpt("x", OptType("duration")),
		"min above max": IntOpt("x", WithMin(5), WithMax(1)),
	}
	for name, opt := range cases {
		if err := opt.validateDefinition(); !errors.Is(err, ErrInvalidOpt) {
			t.Fatalf("%s: expected ErrInvalidOpt, got %v", name, err)
		}
	}
}

func TestOptEqualIgnoresEmptySlices(t *testing.T) {
	a := StrOpt("x", WithChoices())
	b := StrOpt("x")
	if !a.equal(b) {
		t.Fatalf("expected empty and nil choices to compare equal")
	}
	if a.equal(StrOpt("x", WithHelp("different"))) {
		t.Fatalf("expected help text to matter")
	}
}

func TestOptCloneIsolatesBounds(t *testing.T) {
	opt := IntOpt("x", WithMin(1), WithChoices("a"))
	clone := opt.clone()
	*clone.Min = 10
	clone.Choices[0] = "b"
	if *opt.Min != 1 || opt.Choices[0] != "a" {
		t.Fatalf("expected clone to be independent, got %+v", opt)
	}
}
