package profile

// Profile is a read-only snapshot of a user's demographic attributes.
// Interests is the comma-joined form stored in the analytics users table.
type Profile struct {
	UserID     int    `json:"user_id"`
	Age        int    `json:"age"`
	Profession string `json:"profession"`
	Interests  string `json:"interests"`
}
