// Package events defines the schema-published event and the publishers that
// announce it.
package events

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/google/uuid"

	"github.com/morezero/typed-rpc/pkg/schema"
)

// SchemaPublishedEvent is emitted when an app starts serving a schema.
type SchemaPublishedEvent struct {
	ID         string `json:"id"`
	App        string `json:"app"`
	Version    string `json:"version"`
	RPCAPI     string `json:"rpcapi"`
	Procedures int    `json:"procedures"`
	Types      int    `json:"types"`
	Etag       string `json:"etag"`
	Timestamp  string `json:"timestamp"`
}

// NewSchemaPublishedEvent describes doc, whose encoded form is data. The etag
// is the hex SHA-256 of data, so identical schemas share an etag.
func NewSchemaPublishedEvent(doc *schema.Document, data []byte) *SchemaPublishedEvent {
	return &SchemaPublishedEvent{
		ID:         uuid.NewString(),
		App:        doc.Info.Name,
		Version:    doc.Info.Version,
		RPCAPI:     doc.RPCAPI,
		Procedures: len(doc.Procedures),
		Types:      len(doc.Types),
		Etag:       Etag(data),
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	}
}

// Etag returns the hex SHA-256 of data.
func Etag(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
