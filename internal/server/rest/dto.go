package rest

import (
	"time"

	"github.com/dmitrijs2005/snapster/internal/server/models"
	"github.com/dmitrijs2005/snapster/internal/server/services"
)

type registerRequest struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Password  string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type createAlbumRequest struct {
	Name string `json:"name"`
}

type addAlbumFileRequest struct {
	FileID string `json:"fileId"`
}

type userResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	CreatedAt time.Time `json:"createdAt"`
}

func newUserResponse(u *models.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		CreatedAt: u.CreatedAt,
	}
}

type fileResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	URL       *string   `json:"url"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func newFileResponse(v services.FileView) fileResponse {
	return fileResponse{
		ID:        v.File.ID,
		Name:      v.File.Name,
		URL:       v.URL,
		CreatedAt: v.File.CreatedAt,
		UpdatedAt: v.File.UpdatedAt,
	}
}

func newFileResponses(views []services.FileView) []fileResponse {
	out := make([]fileResponse, len(views))
	for i, v := range views {
		out[i] = newFileResponse(v)
	}
	return out
}

type albumResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func newAlbumResponse(a *models.Album) albumResponse {
	return albumResponse{ID: a.ID, Name: a.Name, CreatedAt: a.CreatedAt, UpdatedAt: a.UpdatedAt}
}

type albumPreviewResponse struct {
	albumResponse
	TotalImages int      `json:"totalImages"`
	PreviewURLs []string `json:"previewUrls"`
}

type albumDetailResponse struct {
	albumResponse
	Files []fileResponse `json:"files"`
}
