package public

// newTx represents a post submitted by a client. The node stamps the
// timestamp itself.
type newTx struct {
	Author  string `json:"author" validate:"required"`
	Content string `json:"content" validate:"required"`
}

// info is a general purpose response for simple status messages.
type info struct {
	Status string `json:"status"`
}
