package model

// FAQEntry represents an answered question in the FAQ workbook.
type FAQEntry struct {
	ID        string `json:"id"`
	Question  string `json:"question"`
	Answer    string `json:"answer"`
	Timestamp string `json:"timestamp"`
	CreatedBy string `json:"created_by"`
}

// PendingQuestion represents a user question awaiting an answer.
type PendingQuestion struct {
	ID        string `json:"id"`
	Question  string `json:"question"`
	Timestamp string `json:"timestamp"`
	AskedBy   string `json:"asked_by"`
}
