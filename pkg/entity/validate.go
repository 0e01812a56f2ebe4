package entity

import (
	"fmt"
	"sort"
)

// ValidationSeverity indicates whether a finding is a structural error or
// merely informational. Neither stops rendering.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // structurally wrong input
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	Handle   string             // entity handle, empty for document-level findings
	Block    string             // block the entity lives in, empty for model space
	Message  string             // human-readable description
	Severity ValidationSeverity // error or warning
}

func (e ValidationError) Error() string {
	where := ""
	switch {
	case e.Block != "" && e.Handle != "":
		where = fmt.Sprintf(" block %q entity %s:", e.Block, e.Handle)
	case e.Block != "":
		where = fmt.Sprintf(" block %q:", e.Block)
	case e.Handle != "":
		where = fmt.Sprintf(" entity %s:", e.Handle)
	}
	return fmt.Sprintf("[%s]%s %s", e.Severity, where, e.Message)
}

// ValidationResult bundles errors and warnings from all checks.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationError
}

// OK reports whether no errors were found.
func (r ValidationResult) OK() bool { return len(r.Errors) == 0 }

// Validate runs the structural checks on the document: block references
// and block cycles. It never mutates the document.
func Validate(d *Document) []ValidationError {
	var errs []ValidationError
	errs = append(errs, validateBlockCycles(d)...)
	errs = append(errs, validateReferences(d)...)
	return errs
}

// ValidateAll runs structural and geometric checks and splits the findings
// by severity.
func ValidateAll(d *Document) ValidationResult {
	var result ValidationResult
	all := append(Validate(d), validateGeometry(d)...)
	for _, e := range all {
		if e.Severity == SeverityWarning {
			result.Warnings = append(result.Warnings, e)
		} else {
			result.Errors = append(result.Errors, e)
		}
	}
	return result
}

// sortedBlockNames gives deterministic traversal order.
func sortedBlockNames(d *Document) []string {
	names := make([]string, 0, len(d.Blocks))
	for name := range d.Blocks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// validateBlockCycles checks for blocks that insert themselves, directly or
// through other blocks, using DFS with 3-color marking.
func validateBlockCycles(d *Document) []ValidationError {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int)
	var errs []ValidationError

	var visit func(name string) bool // returns true if cycle found
	visit = func(name string) bool {
		switch color[name] {
		case black:
			return false
		case gray:
			errs = append(errs, ValidationError{
				Block:    name,
				Message:  fmt.Sprintf("cycle detected: block %q inserts itself", name),
				Severity: SeverityError,
			})
			return true
		}

		color[name] = gray
		b, ok := d.Block(name)
		if !ok {
			// Missing block; reported by validateReferences.
			color[name] = black
			return false
		}
		for _, ins := range Inserts(b.Entities) {
			target := ins.BlockName
			if tb, ok := d.Block(target); ok {
				target = tb.Name
			}
			if visit(target) {
				return true
			}
		}
		color[name] = black
		return false
	}

	for _, name := range sortedBlockNames(d) {
		if color[name] == white {
			if visit(name) {
				// Report the first cycle only.
				break
			}
		}
	}
	return errs
}

// validateReferences checks that every insert, in model space or inside a
// block, names a block that exists.
func validateReferences(d *Document) []ValidationError {
	var errs []ValidationError
	check := func(owner string, entities []Entity) {
		for _, ins := range Inserts(entities) {
			if _, ok := d.Block(ins.BlockName); !ok {
				errs = append(errs, ValidationError{
					Handle:   ins.Handle,
					Block:    owner,
					Message:  fmt.Sprintf("insert references missing block %q", ins.BlockName),
					Severity: SeverityWarning,
				})
			}
		}
	}
	check("", d.Entities)
	for _, name := range sortedBlockNames(d) {
		check(name, d.Blocks[name].Entities)
	}
	return errs
}
