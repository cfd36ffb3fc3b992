// Package config resolves jitcheck's settings from flags, environment and file.
//
// # Configuration Precedence
//
// Values are resolved in the following order (highest to lowest priority):
//
//  1. CLI flags (-runtime, -timeout, -no-color, ...)
//  2. Environment variables (JITCHECK_RUNTIME, JITCHECK_ROOT, JITCHECK_TIMEOUT, NO_COLOR, CI, ...)
//  3. YAML config file (.jitcheck.yaml in the working directory or ~/.config/jitcheck/.jitcheck.yaml)
//  4. Hardcoded defaults
//
// # Environment Variables
//
//   - JITCHECK_RUNTIME: path of the runtime executable
//   - JITCHECK_ROOT: corpus root directory
//   - JITCHECK_TIMEOUT: per-invocation timeout, e.g. "30s"
//   - JITCHECK_NO_COLOR or NO_COLOR: "true" or "1" disables colors
//   - CI: "true" or "1" disables colors
//   - JITCHECK_DEBUG: any non-empty value enables debug logging
package config
