package openai

import "encoding/base64"

// encodeImage prepares raw image bytes for the embeddings input field.
func encodeImage(image []byte) string {
	return base64.StdEncoding.EncodeToString(image)
}
