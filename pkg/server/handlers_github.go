package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/duynguyendang/maya/internal/metrics"
	"github.com/duynguyendang/maya/pkg/extract"
	"github.com/duynguyendang/maya/pkg/github"
)

func (s *Server) handleTokenStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"configured": s.github.Credentials().HasToken(),
		"username":   s.github.Username(),
	})
}

func (s *Server) handleSetToken(c *gin.Context) {
	var req struct {
		Token string `json:"token"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := s.github.Credentials().SetToken(req.Token); err != nil {
		handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleClearToken(c *gin.Context) {
	if err := s.github.Credentials().Clear(); err != nil {
		handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleListRepos(c *gin.Context) {
	repos, err := s.github.ListRepositories(c.Request.Context(), c.Query("user"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, repos)
}

func (s *Server) handleCreateRepo(c *gin.Context) {
	var req github.CreateRepositoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	repo, err := s.github.CreateRepository(c.Request.Context(), req)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, repo)
}

func (s *Server) handleGetRepo(c *gin.Context) {
	repo, err := s.github.GetRepository(c.Request.Context(), c.Param("repo"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, repo)
}

func (s *Server) handleTree(c *gin.Context) {
	tree, err := s.github.GetRepositoryTree(c.Request.Context(), c.Param("repo"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tree": tree})
}

func (s *Server) handleFileContent(c *gin.Context) {
	f, err := s.github.GetFileContent(c.Request.Context(), c.Param("repo"), c.Param("path"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, f)
}

// handleUpload pushes files one commit at a time; per-file failures are reported, not fatal.
func (s *Server) handleUpload(c *gin.Context) {
	var req struct {
		Files []extract.ExtractedFile `json:"files"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	results, err := s.github.UploadFiles(c.Request.Context(), c.Param("repo"), req.Files)
	if err != nil {
		handleError(c, err)
		return
	}
	ok, failed := github.Summarize(results)
	metrics.ObserveUploads(ok, failed)
	c.JSON(http.StatusOK, gin.H{"results": results, "succeeded": ok, "failed": failed})
}

func (s *Server) handleListIssues(c *gin.Context) {
	issues, err := s.github.ListIssues(c.Request.Context(), c.Param("repo"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, issues)
}

func (s *Server) handleCreateIssue(c *gin.Context) {
	var req struct {
		Title string `json:"title"`
		Body  string `json:"body"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	issue, err := s.github.CreateIssue(c.Request.Context(), c.Param("repo"), req.Title, req.Body)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, issue)
}

func (s *Server) handleFork(c *gin.Context) {
	var req struct {
		Owner string `json:"owner" binding:"required"`
		Repo  string `json:"repo" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	fork, err := s.github.ForkRepository(c.Request.Context(), req.Owner, req.Repo)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, fork)
}
