package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/duynguyendang/maya/internal/metrics"
	"github.com/duynguyendang/maya/pkg/speech"
)

func (s *Server) handleSpeak(c *gin.Context) {
	var req struct {
		Text string `json:"text"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if s.speaker == nil {
		handleError(c, speech.ErrNoAPIKey)
		return
	}
	audio, err := s.speaker.Synthesize(c.Request.Context(), req.Text)
	metrics.ObserveSpeech(err)
	if err != nil {
		handleError(c, err)
		return
	}
	c.Data(http.StatusOK, "audio/mpeg", audio)
}

func (s *Server) handleVoices(c *gin.Context) {
	if s.speaker == nil {
		handleError(c, speech.ErrNoAPIKey)
		return
	}
	voices, err := s.speaker.ListVoices(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"voices": voices})
}
