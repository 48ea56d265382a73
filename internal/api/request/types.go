package request

// PutAliasRequest is the request body for creating or updating an alias
type PutAliasRequest struct {
	UUID string `json:"uuid"`
	Note string `json:"note,omitempty"`
}
