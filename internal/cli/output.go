package cli

import (
	"encoding/json"
	"io"

	"github.com/ZanzyTHEbar/errbuilder-go"
)

func writeJSON(w io.Writer, value any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(value); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to write output").
			WithCause(err)
	}
	return nil
}
