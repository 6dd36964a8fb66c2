package llm

// cardPromptTemplate is sent verbatim with the OCR text appended inside the quote block.
const cardPromptTemplate = `Extract structured contact information from this business card text.
Return ONLY a JSON object with these keys:
{
  "name": "Full Name",
  "phones": ["Phone 1", "Phone 2"],
  "email": "Email Address",
  "other": ["Company Name", "Job Title", "Address", "Website"]
}
If a field is missing, use empty string or empty array.
Text:
"""`

// BuildCardPrompt embeds the raw OCR text in the extraction prompt.
func BuildCardPrompt(text string) string {
	return cardPromptTemplate + text + `"""`
}
