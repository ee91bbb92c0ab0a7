package embeddings

import "errors"

// ErrEmbedding is returned when embedding generation fails, whether from
// quota, network, or a malformed provider response.
var ErrEmbedding = errors.New("embedding failed")
