package server

import (
	"bytes"
	"fmt"
	"mime"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/duynguyendang/maya/pkg/attach"
	"github.com/duynguyendang/maya/pkg/common/errors"
	"github.com/duynguyendang/maya/pkg/export"
	"github.com/duynguyendang/maya/pkg/extract"
)

type sessionResponse struct {
	SessionID string `json:"session_id"`
	Greeting  string `json:"greeting"`
}

type messageRequest struct {
	Message     string              `json:"message"`
	Attachments []attach.Attachment `json:"attachments"`
}

type messageResponse struct {
	Response  string                  `json:"response"`
	SessionID string                  `json:"session_id"`
	Files     []extract.ExtractedFile `json:"files"`
	Cards     []extract.Card          `json:"cards"`
}

type filesResponse struct {
	Files []extract.ExtractedFile `json:"files"`
	Cards []extract.Card          `json:"cards"`
}

func (s *Server) cards(files []extract.ExtractedFile) []extract.Card {
	cards := extract.Cards(files)
	s.checker.Annotate(files, cards)
	return cards
}

func (s *Server) handleCreateSession(c *gin.Context) {
	sess := s.sessions.Create()
	c.JSON(http.StatusCreated, sessionResponse{SessionID: sess.ID, Greeting: sess.Greeting()})
}

func (s *Server) handleDeleteSession(c *gin.Context) {
	if err := s.sessions.Delete(c.Param("id")); err != nil {
		handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleResetSession(c *gin.Context) {
	sess, err := s.sessions.Get(c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	sess.Reset()
	c.JSON(http.StatusOK, sessionResponse{SessionID: sess.ID, Greeting: sess.Greeting()})
}

func (s *Server) handleHistory(c *gin.Context) {
	sess, err := s.sessions.Get(c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session_id": sess.ID, "history": sess.History()})
}

// handleMessage sends a message to the model and returns the reply with its files.
func (s *Server) handleMessage(c *gin.Context) {
	sess, err := s.sessions.Get(c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}

	var req messageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	attachments := make([]attach.Attachment, 0, len(req.Attachments))
	for _, a := range req.Attachments {
		checked, err := attach.New(a.Name, a.Content, s.maxAttachmentMB)
		if err != nil {
			handleError(c, err)
			return
		}
		attachments = append(attachments, checked)
	}

	reply, err := s.chat.Send(c.Request.Context(), sess, req.Message, attachments)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, messageResponse{
		Response:  reply.Text,
		SessionID: sess.ID,
		Files:     reply.Files,
		Cards:     s.cards(reply.Files),
	})
}

// handleExtract runs the extractor over arbitrary text.
func (s *Server) handleExtract(c *gin.Context) {
	var req struct {
		Text string `json:"text"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	files := extract.Extract(req.Text)
	c.JSON(http.StatusOK, filesResponse{Files: files, Cards: s.cards(files)})
}

// handleDownload returns one file as an attachment, under its raw name unless sanitize is set.
func (s *Server) handleDownload(c *gin.Context) {
	var req struct {
		File     extract.ExtractedFile `json:"file"`
		Sanitize bool                  `json:"sanitize"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	name := export.DownloadName(req.File, req.Sanitize)
	if strings.TrimSpace(name) == "" {
		handleError(c, fmt.Errorf("file name is empty: %w", errors.ErrInvalidInput))
		return
	}
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	c.Data(http.StatusOK, "application/octet-stream", []byte(req.File.Content))
}

// handleZip bundles every file into one archive.
func (s *Server) handleZip(c *gin.Context) {
	var req struct {
		Files    []extract.ExtractedFile `json:"files"`
		Sanitize bool                    `json:"sanitize"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if len(req.Files) == 0 {
		handleError(c, fmt.Errorf("no files to bundle: %w", errors.ErrInvalidInput))
		return
	}

	var buf bytes.Buffer
	results, err := export.WriteZip(&buf, req.Files, req.Sanitize)
	if err != nil {
		handleError(c, err)
		return
	}
	for _, r := range results {
		if !r.OK() {
			s.logger.Warn().Str("file", r.File).Str("error", r.Error).Msg("file left out of archive")
		}
	}

	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": "maya-files.zip"}))
	c.Data(http.StatusOK, "application/zip", buf.Bytes())
}
