package service

// In-band replies for every non-generated outcome.
const (
	MsgNotConfigured  = "OpenAI API key is not configured. Please set OPENAI_API_KEY."
	MsgEmptyInput     = "Please enter a message."
	MsgNoResponse     = "I couldn't generate a response. Please try again."
	MsgGenericFailure = "Something went wrong. Please try again."
)
