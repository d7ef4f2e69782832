package profile

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/nfbatch/internal/ctxlog"
	"github.com/vk/nfbatch/internal/fsutil"
)

// Load reads profiles from a single .hcl file or from every .hcl file under
// a directory. Duplicate profile names across files are an error.
func Load(ctx context.Context, path string) (map[string]*Profile, error) {
	logger := ctxlog.FromContext(ctx)

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("profile path %q is not accessible: %w", path, err)
	}

	files := []string{path}
	if info.IsDir() {
		files, err = fsutil.FindFilesByExtension(path, ".hcl")
		if err != nil {
			return nil, fmt.Errorf("failed to scan profile directory %q: %w", path, err)
		}
	}

	evalCtx := newEvalContext()
	profiles := make(map[string]*Profile)
	for _, filePath := range files {
		file, err := decodeFile(ctx, filePath, evalCtx)
		if err != nil {
			return nil, err
		}
		for _, p := range file.Profiles {
			if _, exists := profiles[p.Name]; exists {
				return nil, fmt.Errorf("duplicate profile %q in %s", p.Name, filePath)
			}
			profiles[p.Name] = p
		}
	}

	logger.Debug("Profiles loaded.", "path", path, "count", len(profiles))
	return profiles, nil
}

// Get selects a profile by name, listing the available names on a miss.
func Get(profiles map[string]*Profile, name string) (*Profile, error) {
	if p, ok := profiles[name]; ok {
		return p, nil
	}
	names := make([]string, 0, len(profiles))
	for n := range profiles {
		names = append(names, n)
	}
	sort.Strings(names)
	return nil, fmt.Errorf("profile %q not found (available: %s)", name, strings.Join(names, ", "))
}

// decodeFile parses and decodes a single HCL profile file.
func decodeFile(ctx context.Context, filePath string, evalCtx *hcl.EvalContext) (*File, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Decoding profile file.", "path", filePath)

	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCLFile(filePath)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse profile file %s: %s", filePath, diags.Error())
	}

	var file File
	diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &file)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode profile file %s: %s", filePath, diags.Error())
	}

	logger.Debug("Profile file decoded.", "path", filePath, "profiles_found", len(file.Profiles))
	return &file, nil
}

// newEvalContext exposes the process environment to profile expressions as
// an `env` object, e.g. `queue = env.NF_QUEUE`.
func newEvalContext() *hcl.EvalContext {
	vals := make(map[string]cty.Value)
	for _, kv := range os.Environ() {
		if key, value, found := strings.Cut(kv, "="); found {
			vals[key] = cty.StringVal(value)
		}
	}
	env := cty.EmptyObjectVal
	if len(vals) > 0 {
		env = cty.ObjectVal(vals)
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{"env": env},
	}
}
