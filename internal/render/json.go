package render

import (
	"bytes"
	"encoding/json"
)

// PrettyJSON re-indents a JSON document with two spaces, keeping keys in the
// order the server sent them.
func PrettyJSON(raw []byte) (string, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, bytes.TrimSpace(raw), "", "  "); err != nil {
		return "", err
	}
	return buf.String(), nil
}
