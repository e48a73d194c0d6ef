package task

import (
	"errors"
	"fmt"
)

// Field types understood by the reply schema.
const (
	TypeString = "string"
	TypeArray  = "array"
	TypeAny    = "any"
)

// Field is a named input or output slot of a task.
type Field struct {
	Name string
	Desc string
	Type string
}

// Demo is a worked example rendered ahead of the real request.
type Demo struct {
	Inputs  map[string]string
	Outputs map[string]string
}

// Definition describes one model task: what it is told, what it receives and
// which fields its reply must carry.
type Definition struct {
	Name         string
	Instructions string
	Inputs       []Field
	Outputs      []Field
	Demos        []Demo
}

// Validate checks that the definition is usable.
func (d *Definition) Validate() error {
	if d == nil {
		return errors.New("task definition is nil")
	}
	if d.Name == "" {
		return errors.New("task name is required")
	}
	if len(d.Outputs) == 0 {
		return fmt.Errorf("task %s declares no outputs", d.Name)
	}
	seen := make(map[string]bool, len(d.Inputs)+len(d.Outputs))
	for _, f := range append(append([]Field{}, d.Inputs...), d.Outputs...) {
		if f.Name == "" {
			return fmt.Errorf("task %s has a field without name", d.Name)
		}
		if seen[f.Name] {
			return fmt.Errorf("task %s declares field %s twice", d.Name, f.Name)
		}
		seen[f.Name] = true
	}
	for i, demo := range d.Demos {
		for name := range demo.Inputs {
			if !d.hasInput(name) {
				return fmt.Errorf("task %s demo %d uses undeclared input %s", d.Name, i, name)
			}
		}
		for name := range demo.Outputs {
			if !d.hasOutput(name) {
				return fmt.Errorf("task %s demo %d uses undeclared output %s", d.Name, i, name)
			}
		}
	}
	return nil
}

func (d *Definition) hasInput(name string) bool {
	for _, f := range d.Inputs {
		if f.Name == name {
			return true
		}
	}
	return false
}

func (d *Definition) hasOutput(name string) bool {
	for _, f := range d.Outputs {
		if f.Name == name {
			return true
		}
	}
	return false
}
