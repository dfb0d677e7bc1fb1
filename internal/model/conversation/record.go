package conversation

import "time"

// Record is one persisted question/answer pair. Rows are append-only;
// nothing in the backend updates or deletes them.
type Record struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	CreatedAt time.Time `json:"created_at"`
}
