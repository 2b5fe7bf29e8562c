package gemini

// promptData is the data passed to the prompt template.
type promptData struct {
	Text string
}

// CardSchema is one card in the model's JSON response.
type CardSchema struct {
	Front string `json:"front"`
	Back  string `json:"back"`
}

// ResponseSchema is the JSON document the prompt asks the model to return.
type ResponseSchema struct {
	Cards []CardSchema `json:"cards"`
}
