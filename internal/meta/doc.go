// Package meta loads kernel metadata and invocation descriptions.
//
// Kernel metadata lives in CUE files: each entry under the top-level
// "kernel" struct describes one kernel's iteration space and argument
// descriptors. Invocations are YAML files binding concrete argument
// names to those descriptors; BuildSchedule turns an invocation into
// the initial schedule, one loop per call.
package meta
