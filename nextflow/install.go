package nextflow

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
)

// installURL serves the self-extracting Nextflow launcher script.
const installURL = "https://get.nextflow.io"

// Install downloads the engine launcher into dir and marks it executable.
// It returns the absolute path of the installed executable.
func Install(ctx context.Context, dir string) (string, error) {
	return install(ctx, dir, installURL)
}

func install(ctx context.Context, dir, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create download request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download nextflow launcher: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("nextflow launcher download returned status %s", resp.Status)
	}

	dest := filepath.Join(dir, DefaultExecutable)
	f, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o755)
	if err != nil {
		return "", fmt.Errorf("failed to create %q: %w", dest, err)
	}
	defer f.Close()

	if _, err := io.Copy(f, resp.Body); err != nil {
		return "", fmt.Errorf("failed to write %q: %w", dest, err)
	}

	abs, err := filepath.Abs(dest)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %q: %w", dest, err)
	}
	return abs, nil
}

// EnsureInstalled returns the path of an engine executable already on $PATH,
// installing one into dir when none is found.
func EnsureInstalled(ctx context.Context, dir string) (string, error) {
	if path, err := exec.LookPath(DefaultExecutable); err == nil {
		return path, nil
	}
	return Install(ctx, dir)
}
