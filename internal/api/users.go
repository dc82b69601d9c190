package api

import (
	"net/http"

	"job-portal/internal/blob"
	"job-portal/internal/model"

	"github.com/gin-gonic/gin"
)

func (s *server) listJobs(c *gin.Context) {
	jobs, err := s.jobs.ListJobs(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "", gin.H{"jobs": jobs})
}

func (s *server) getJob(c *gin.Context) {
	job, err := s.jobs.GetJob(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "", gin.H{"job": job})
}

func (s *server) publicUser(c *gin.Context) {
	user, err := s.profiles.User(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "", gin.H{"user": user})
}

func (s *server) userData(c *gin.Context) {
	user, err := s.jobs.GetUser(c.Request.Context(), userIDOf(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "", gin.H{"user": user})
}

func (s *server) applyForJob(c *gin.Context) {
	var req jobRef
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badBody(c)
		return
	}
	app, err := s.jobs.Apply(c.Request.Context(), userIDOf(c), req.jobID())
	if err != nil {
		s.fail(c, err)
		return
	}
	respond(c, http.StatusCreated, "Applied Successfully", gin.H{"application": app})
}

func (s *server) userApplications(c *gin.Context) {
	apps, err := s.jobs.ListUserApplications(c.Request.Context(), userIDOf(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "", gin.H{"applications": apps})
}

func (s *server) updateResume(c *gin.Context) {
	fh, err := c.FormFile("resume")
	if err != nil {
		s.fail(c, model.Invalid("Resume file is required"))
		return
	}
	f, err := fh.Open()
	if err != nil {
		s.fail(c, model.Invalid("Unreadable resume file"))
		return
	}
	defer f.Close()

	user, err := s.jobs.UpdateResume(c.Request.Context(), userIDOf(c), &blob.File{Name: fh.Filename, Body: f})
	if err != nil {
		s.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Resume Updated", gin.H{"user": user})
}

func (s *server) savedJobs(c *gin.Context) {
	jobs, err := s.jobs.ListSavedJobs(c.Request.Context(), userIDOf(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "", gin.H{"savedJobs": jobs})
}

func (s *server) toggleSaveJob(c *gin.Context) {
	var req jobRef
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badBody(c)
		return
	}
	saved, err := s.jobs.ToggleSaveJob(c.Request.Context(), userIDOf(c), req.jobID())
	if err != nil {
		s.fail(c, err)
		return
	}
	message := "Job removed from saved list"
	if saved {
		message = "Job saved"
	}
	respond(c, http.StatusOK, message, gin.H{"saved": saved})
}

func (s *server) updateUserProfile(c *gin.Context) {
	var patch model.UserProfilePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		s.badBody(c)
		return
	}
	user, err := s.jobs.UpdateUserProfile(c.Request.Context(), userIDOf(c), patch)
	if err != nil {
		s.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Profile updated successfully", gin.H{"user": user})
}
