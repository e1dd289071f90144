package middleware

// MessageBody is the JSON shape of every error and status reply.
type MessageBody struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

func Message(msg string) MessageBody {
	return MessageBody{Message: msg}
}
