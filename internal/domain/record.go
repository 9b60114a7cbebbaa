package domain

import "encoding/json"

// Record is a resource, list or acknowledgment exactly as the admin API sent
// it. The console never decodes it, so fields and number formats reach the
// caller unchanged.
type Record = json.RawMessage
