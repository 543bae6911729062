package transport

import (
	"time"

	"github.com/sharkweb/boardsite/internal/models"
)

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Nickname string `json:"nickname"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse mirrors the auth endpoints' wire contract. RefreshToken is
// reserved and always serialized as null.
type TokenResponse struct {
	AccessToken  string  `json:"accessToken"`
	RefreshToken *string `json:"refreshToken"`
}

type BoardRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type AuthorResponse struct {
	UID      uint   `json:"uid"`
	Email    string `json:"email"`
	Nickname string `json:"nickname"`
}

type BoardResponse struct {
	BID       uint            `json:"bid"`
	Title     string          `json:"title"`
	Content   string          `json:"content"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	Author    *AuthorResponse `json:"author"`
}

// Response is the {status, message, data} envelope board endpoints answer
// with.
type Response struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func ToBoardResponse(b *models.Board) BoardResponse {
	resp := BoardResponse{
		BID:       b.ID,
		Title:     b.Title,
		Content:   b.Content,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
	if b.Author != nil {
		resp.Author = &AuthorResponse{
			UID:      b.Author.ID,
			Email:    b.Author.Email,
			Nickname: b.Author.Nickname,
		}
	}
	return resp
}

func ToBoardResponses(items []models.Board) []BoardResponse {
	out := make([]BoardResponse, len(items))
	for i := range items {
		out[i] = ToBoardResponse(&items[i])
	}
	return out
}
