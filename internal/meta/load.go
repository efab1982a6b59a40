package meta

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"

	"github.com/psykit/psykit/internal/ir"
)

// Load error codes (E000-E099)
const (
	ErrCodeGeneric     = "E001" // generic/unknown error
	ErrCodeScanError   = "E002" // directory scan error
	ErrCodeNoFiles     = "E003" // no CUE files found
	ErrCodeLoadFailed  = "E004" // CUE load failed
	ErrCodeNotFound    = "E005" // path not found
	ErrCodeBuildFailed = "E006" // CUE build failed
)

// LoadError represents an error that occurred during metadata loading.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Library is the compiled kernel metadata for one metadata directory.
type Library struct {
	kernels map[string]ir.KernelMeta
}

// Lookup returns the metadata for the named kernel.
func (l *Library) Lookup(name string) (ir.KernelMeta, bool) {
	m, ok := l.kernels[name]
	return m, ok
}

// Names returns the kernel names in sorted order.
func (l *Library) Names() []string {
	out := make([]string, 0, len(l.kernels))
	for name := range l.kernels {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of kernels in the library.
func (l *Library) Len() int { return len(l.kernels) }

// LoadDir loads and validates all kernel metadata under dir. Compilation
// and validation errors are collected, not fail-fast; the returned
// library holds every kernel that compiled, even when others failed.
func LoadDir(dir string) (*Library, []error) {
	var errs []error

	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("metadata directory not found: %s", dir)}}
	}
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing metadata directory: %v", err)}}
	}
	if !info.IsDir() {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}}
	}

	cueFiles, err := findCUEFiles(dir)
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}}
	}
	if len(cueFiles) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}}
	}

	ctx := cuecontext.New()
	cfg := &load.Config{Dir: dir}
	instances := load.Instances([]string{"."}, cfg)
	if len(instances) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}}
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, []error{&LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building CUE value: %v", err)}}
	}

	lib := &Library{kernels: make(map[string]ir.KernelMeta)}

	kernelsVal := value.LookupPath(cue.ParsePath("kernel"))
	if kernelsVal.Exists() {
		iter, iterErr := kernelsVal.Fields()
		if iterErr != nil {
			errs = append(errs, &LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("iterating kernels: %v", iterErr)})
			return lib, errs
		}
		for iter.Next() {
			m, compileErr := CompileKernel(iter.Value())
			if compileErr != nil {
				errs = append(errs, compileErr)
				continue
			}
			for _, verr := range Validate(m) {
				verr.Field = "kernel." + m.Name + "." + verr.Field
				errs = append(errs, verr)
			}
			lib.kernels[m.Name] = *m
		}
	}

	if lib.Len() == 0 && len(errs) == 0 {
		errs = append(errs, &LoadError{Code: ErrCodeGeneric, Message: "no kernels found in metadata"})
	}

	return lib, errs
}

// findCUEFiles walks the directory and returns all .cue file paths.
func findCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}
