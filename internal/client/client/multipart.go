package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"

	"github.com/dmitrijs2005/onboarding/internal/client/models"
)

// encodeSubmission renders the body up front so a retry after a refresh
// can send the same bytes again.
func encodeSubmission(n models.NewSubmission) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if err := w.WriteField("form", n.FormID); err != nil {
		return nil, "", fmt.Errorf("error writing form part: %w", err)
	}

	data := n.Data
	if data == nil {
		data = map[string]any{}
	}
	b, err := json.Marshal(data)
	if err != nil {
		return nil, "", fmt.Errorf("error encoding submission data: %w", err)
	}
	if err := w.WriteField("data", string(b)); err != nil {
		return nil, "", fmt.Errorf("error writing data part: %w", err)
	}

	for _, a := range n.Files {
		part, err := w.CreateFormFile(a.Field, a.Filename)
		if err != nil {
			return nil, "", fmt.Errorf("error creating file part %q: %w", a.Field, err)
		}
		if a.Content == nil {
			continue
		}
		if _, err := io.Copy(part, a.Content); err != nil {
			return nil, "", fmt.Errorf("error reading attachment %q: %w", a.Filename, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("error closing multipart body: %w", err)
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}
