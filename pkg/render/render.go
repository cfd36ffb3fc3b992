// Package render turns harness results into console text: the live per-test
// lines written by Reporter and the end-of-run summary drawn by Terminal.
package render

import "github.com/dkoosis/jitcheck/pkg/pattern"

// Renderer converts summary patterns to formatted output.
type Renderer interface {
	Render(patterns []pattern.Pattern) string
}
