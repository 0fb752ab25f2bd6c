package dto

type AddNoteRequest struct {
	Content string `json:"content" validate:"required"`
}
