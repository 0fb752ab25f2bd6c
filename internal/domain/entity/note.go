package entity

import "time"

// PatientNote is an append-only log entry on a patient's record. Author
// details are denormalized at write time so the note survives any later
// change to the user collection.
type PatientNote struct {
	ID         string    `json:"id"`
	PatientID  string    `json:"patientId"`
	AuthorID   string    `json:"authorId"`
	AuthorName string    `json:"authorName"`
	AuthorRole string    `json:"authorRole"`
	Content    string    `json:"content"`
	Timestamp  time.Time `json:"timestamp"`
}
