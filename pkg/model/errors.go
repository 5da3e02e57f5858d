package model

import (
	"errors"
	"fmt"
)

// ErrStructural marks a broken internal invariant: containers that should be
// aligned (reactions, rules, matrix rows, genes) disagree.
var ErrStructural = errors.New("structural violation")

var ErrEquationSyntax = errors.New("equation has no direction arrow")

type StructuralError struct {
	Stage  string
	Detail string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("%s: structural violation: %s", e.Stage, e.Detail)
}

func (e *StructuralError) Is(target error) bool {
	return target == ErrStructural
}
