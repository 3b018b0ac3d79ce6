package repository

import (
	"encoding/json"
	"time"
)

// AuditRecord is an append-only trace of one provider call: the payload we
// sent and the payload we got back. It is written after every successful
// cart-create or checkout and never read back by the server.
type AuditRecord struct {
	CreatedAt time.Time
	Request   any
	Response  json.RawMessage
	Sandbox   bool
}
