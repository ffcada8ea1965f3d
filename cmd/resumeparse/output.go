package main

import (
	"encoding/json"
	"fmt"
	"io"
)

func writeJSONLines(w io.Writer, results []fileResult) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for _, r := range results {
		if err := enc.Encode(r); err != nil {
			return err
		}
	}
	return nil
}

func writeText(w io.Writer, errW io.Writer, results []fileResult) error {
	for i, r := range results {
		if r.Error != nil {
			fmt.Fprintf(errW, "%s: %s: %s\n", r.File, r.Error.Kind, r.Error.Message)
			continue
		}
		if len(results) > 1 {
			if i > 0 {
				fmt.Fprintln(w)
			}
			fmt.Fprintf(w, "==> %s (%s) <==\n", r.File, r.Format)
		}
		if _, err := fmt.Fprintln(w, r.Text); err != nil {
			return err
		}
	}
	return nil
}
