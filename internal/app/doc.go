// Package app wires the CLI configuration, logging, profile loading, and the
// nextflow runner into a single run lifecycle.
package app
