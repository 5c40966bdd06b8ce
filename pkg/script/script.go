package script

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

var (
	ErrEmptyScript = errors.New("script has no steps")
	ErrUnknownOp   = errors.New("unknown op")
	ErrInvalidStep = errors.New("invalid step")
	ErrUnknownBag  = errors.New("unknown bag")
	ErrExpectation = errors.New("expectation failed")
	ErrSkipped     = errors.New("skipped after earlier failure")
)

type Op string

const (
	OpAdd    Op = "add"
	OpAddAll Op = "add_all"
	OpClone  Op = "clone"
	OpCount  Op = "count"
	OpGrab   Op = "grab"
	OpRemove Op = "remove"
	OpSize   Op = "size"
	OpUnion  Op = "union"
	OpShow   Op = "show"
)

// Script is a named list of steps.
type Script struct {
	Name  string `yaml:"name"`
	Steps []Step `yaml:"steps"`
}

// Step is one bag operation. Bag names the bag the op reads or writes; From
// names the source bags of add_all, clone and union.
type Step struct {
	Op          Op       `yaml:"op"`
	Bag         string   `yaml:"bag"`
	Value       *int     `yaml:"value,omitempty"`
	Values      []int    `yaml:"values,omitempty"`
	From        []string `yaml:"from,omitempty"`
	Expect      *int     `yaml:"expect,omitempty"`
	ExpectFound *bool    `yaml:"expect_found,omitempty"`
}

//go:embed demo.yaml
var demoScript []byte

// Demo returns the built-in example script.
func Demo() *Script {
	s, err := Parse(demoScript)
	if err != nil {
		panic(fmt.Sprintf("script: embedded demo is invalid: %v", err))
	}
	return s
}

// Load reads and parses the script at path.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load script %s: %w", path, err)
	}

	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("load script %s: %w", path, err)
	}
	if s.Name == "" {
		s.Name = path
	}
	return s, nil
}

// Parse decodes a YAML script and validates every step. Unknown fields are
// rejected.
func Parse(data []byte) (*Script, error) {
	var s Script

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyScript
		}
		return nil, fmt.Errorf("decode script: %w", err)
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Script) Validate() error {
	if len(s.Steps) == 0 {
		return ErrEmptyScript
	}
	for i, st := range s.Steps {
		if err := st.Validate(); err != nil {
			return fmt.Errorf("step %d: %w", i+1, err)
		}
	}
	return nil
}

// Validate checks that the step carries the fields its op needs.
func (st Step) Validate() error {
	if st.Bag == "" {
		return fmt.Errorf("%w: %s needs a bag", ErrInvalidStep, st.Op)
	}

	switch st.Op {
	case OpAdd:
		if st.Value == nil && len(st.Values) == 0 {
			return fmt.Errorf("%w: add needs value or values", ErrInvalidStep)
		}
	case OpCount, OpRemove:
		if st.Value == nil {
			return fmt.Errorf("%w: %s needs a value", ErrInvalidStep, st.Op)
		}
	case OpAddAll, OpClone:
		if len(st.From) != 1 {
			return fmt.Errorf("%w: %s needs exactly one source bag, got %d", ErrInvalidStep, st.Op, len(st.From))
		}
	case OpUnion:
		if len(st.From) != 2 {
			return fmt.Errorf("%w: union needs exactly two source bags, got %d", ErrInvalidStep, len(st.From))
		}
	case OpGrab, OpSize, OpShow:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownOp, st.Op)
	}

	if st.Expect != nil && st.Op != OpCount && st.Op != OpSize && st.Op != OpGrab {
		return fmt.Errorf("%w: expect is not supported by %s", ErrInvalidStep, st.Op)
	}
	if st.ExpectFound != nil && st.Op != OpRemove {
		return fmt.Errorf("%w: expect_found is only supported by remove", ErrInvalidStep)
	}
	return nil
}

// check compares an outcome with the step's expectations.
func (st Step) check(o Outcome) error {
	if st.Expect != nil && o.Value != *st.Expect {
		return fmt.Errorf("%w: %s %s = %d, want %d", ErrExpectation, st.Op, st.Bag, o.Value, *st.Expect)
	}
	if st.ExpectFound != nil && o.Found != *st.ExpectFound {
		return fmt.Errorf("%w: remove %s found = %v, want %v", ErrExpectation, st.Bag, o.Found, *st.ExpectFound)
	}
	return nil
}
