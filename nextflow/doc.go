// Package nextflow wraps the Nextflow workflow engine executable. It renders
// a pipeline script and configuration file for a flat list of independent
// shell commands, runs the engine as a child process, and reports the outcome
// as a binary exit status. All scheduling, retrying, and per-job parallelism
// is owned by the engine itself.
package nextflow
