package handlers

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/skout-hq/skout/internal/models"
)

// writeEvent writes ev in the text/event-stream format.
func writeEvent(w io.Writer, ev models.AuthEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, data)
	return err
}
