package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/snapster/internal/common"
)

func (s *HTTPServer) listAlbums(c *gin.Context) {
	previews, err := s.albums.List(c.Request.Context(), currentUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}

	out := make([]albumPreviewResponse, len(previews))
	for i, p := range previews {
		urls := p.PreviewURLs
		if urls == nil {
			urls = []string{}
		}
		out[i] = albumPreviewResponse{
			albumResponse: newAlbumResponse(p.Album),
			TotalImages:   p.TotalImages,
			PreviewURLs:   urls,
		}
	}
	c.JSON(http.StatusOK, out)
}

func (s *HTTPServer) createAlbum(c *gin.Context) {
	var req createAlbumRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, common.ErrorValidation)
		return
	}

	album, err := s.albums.Create(c.Request.Context(), currentUserID(c), req.Name)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newAlbumResponse(album))
}

func (s *HTTPServer) getAlbum(c *gin.Context) {
	detail, err := s.albums.Get(c.Request.Context(), currentUserID(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, albumDetailResponse{
		albumResponse: newAlbumResponse(detail.Album),
		Files:         newFileResponses(detail.Files),
	})
}

func (s *HTTPServer) deleteAlbum(c *gin.Context) {
	if err := s.albums.Delete(c.Request.Context(), currentUserID(c), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *HTTPServer) addAlbumFile(c *gin.Context) {
	var req addAlbumFileRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.FileID == "" {
		writeError(c, common.ErrorValidation)
		return
	}

	if err := s.albums.AddFile(c.Request.Context(), currentUserID(c), c.Param("id"), req.FileID); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *HTTPServer) removeAlbumFile(c *gin.Context) {
	if err := s.albums.RemoveFile(c.Request.Context(), currentUserID(c), c.Param("id"), c.Param("fileId")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
