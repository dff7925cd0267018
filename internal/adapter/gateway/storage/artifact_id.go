package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/oklog/ulid/v2"
)

const (
	contentFile  = "content"
	metadataFile = "metadata.json"
)

// generateArtifactID combines a content hash with a ULID so that IDs are
// unique and sort by creation time within a hash
func generateArtifactID(content []byte) string {
	hash := sha256.Sum256(content)
	return fmt.Sprintf("%s-%s", hex.EncodeToString(hash[:8]), ulid.Make().String())
}
