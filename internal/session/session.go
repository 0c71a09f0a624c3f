package session

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Input is the payload Claude Code pipes to the statusline command.
type Input struct {
	// Raw is exactly what arrived on stdin; it is forwarded untouched.
	Raw []byte
	// CurrentDir is workspace.current_dir, or the process cwd when absent.
	CurrentDir string
}

// Parse reads all of r and extracts the working directory. It fails only when
// the input cannot be read or is not JSON; every missing field is tolerated.
func Parse(r io.Reader) (Input, error) {
	return parse(r, os.Getwd)
}

func parse(r io.Reader, getwd func() (string, error)) (Input, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Input{}, fmt.Errorf("read input: %w", err)
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return Input{}, fmt.Errorf("parse input: %w", err)
	}

	in := Input{Raw: data, CurrentDir: currentDir(doc)}
	if in.CurrentDir == "" {
		// A failing getwd leaves an empty dir; the formatter copes.
		in.CurrentDir, _ = getwd()
	}
	return in, nil
}

// currentDir walks workspace.current_dir without assuming any shape.
func currentDir(doc any) string {
	root, ok := doc.(map[string]any)
	if !ok {
		return ""
	}
	ws, ok := root["workspace"].(map[string]any)
	if !ok {
		return ""
	}
	dir, _ := ws["current_dir"].(string)
	return dir
}
