// Package ciutil detects the execution environment (CI or local) and reads
// environment variables that have more than one accepted name.
package ciutil
