package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// JSONMode controls whether output is JSON or human-readable
var JSONMode bool

var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
	exit             = os.Exit
)

// Result represents a generic result for JSON output
type Result struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Print outputs data. In JSON mode, marshals to JSON. Otherwise calls the textFn.
func Print(data interface{}, textFn func()) {
	if JSONMode {
		out, err := json.MarshalIndent(Result{Success: true, Data: data}, "", "  ")
		if err != nil {
			PrintError(err)
			return
		}
		fmt.Fprintln(stdout, string(out))
		return
	}
	textFn()
}

// PrintError outputs err and exits with status 1.
func PrintError(err error) {
	if JSONMode {
		out, _ := json.MarshalIndent(Result{Success: false, Error: err.Error()}, "", "  ")
		fmt.Fprintln(stdout, string(out))
		exit(1)
		return
	}
	fmt.Fprintf(stderr, "Error: %v\n", err)
	exit(1)
}
