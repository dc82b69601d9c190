package api

import (
	"net/http"

	"job-portal/internal/blob"
	"job-portal/internal/jobboard"
	"job-portal/internal/model"
	"job-portal/internal/registry"

	"github.com/gin-gonic/gin"
)

func (s *server) registerCompany(c *gin.Context) {
	var req registry.Registration
	if err := c.ShouldBind(&req); err != nil {
		s.badBody(c)
		return
	}

	var logo *blob.File
	if fh, err := c.FormFile("image"); err == nil {
		f, err := fh.Open()
		if err != nil {
			s.fail(c, model.Invalid("Unreadable logo file"))
			return
		}
		defer f.Close()
		logo = &blob.File{Name: fh.Filename, Body: f}
	}

	if err := s.registry.Register(c.Request.Context(), req, logo); err != nil {
		s.fail(c, err)
		return
	}
	respond(c, http.StatusCreated, "Registration successful! Your account is pending admin approval.", nil)
}

func (s *server) companyLogin(c *gin.Context) {
	var req credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badBody(c)
		return
	}
	session, err := s.registry.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		s.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "", gin.H{"token": session.Token, "company": session.Company})
}

func (s *server) companyData(c *gin.Context) {
	respond(c, http.StatusOK, "", gin.H{"company": companyOf(c)})
}

func (s *server) updateCompanyProfile(c *gin.Context) {
	var patch model.CompanyProfilePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		s.badBody(c)
		return
	}
	company, err := s.registry.UpdateProfile(c.Request.Context(), companyOf(c).ID, patch)
	if err != nil {
		s.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Profile updated successfully", gin.H{"company": company})
}

func (s *server) publicCompany(c *gin.Context) {
	page, err := s.profiles.Company(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "", gin.H{"company": page.Company, "jobs": page.Jobs, "stats": page.Stats})
}

func (s *server) postJob(c *gin.Context) {
	var in jobboard.JobInput
	if err := c.ShouldBindJSON(&in); err != nil {
		s.badBody(c)
		return
	}
	job, err := s.jobs.PostJob(c.Request.Context(), companyOf(c), in)
	if err != nil {
		s.fail(c, err)
		return
	}
	respond(c, http.StatusCreated, "Job posted successfully!", gin.H{"newJob": job})
}

func (s *server) listOwnJobs(c *gin.Context) {
	jobs, err := s.jobs.ListOwnJobs(c.Request.Context(), companyOf(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "", gin.H{"jobsData": jobs})
}

func (s *server) listApplicants(c *gin.Context) {
	apps, err := s.jobs.ListApplicants(c.Request.Context(), companyOf(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "", gin.H{"applications": apps})
}

type statusChange struct {
	ID     string                  `json:"id"`
	Status model.ApplicationStatus `json:"status"`
}

func (s *server) changeApplicationStatus(c *gin.Context) {
	var req statusChange
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badBody(c)
		return
	}
	app, err := s.jobs.ChangeApplicationStatus(c.Request.Context(), companyOf(c), req.ID, req.Status)
	if err != nil {
		s.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Status changed", gin.H{"application": app})
}

type jobRef struct {
	ID    string `json:"id"`
	JobID string `json:"jobId"`
}

func (r jobRef) jobID() string {
	if r.JobID != "" {
		return r.JobID
	}
	return r.ID
}

func (s *server) changeVisibility(c *gin.Context) {
	var req jobRef
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badBody(c)
		return
	}
	job, err := s.jobs.ToggleVisibility(c.Request.Context(), companyOf(c), req.jobID())
	if err != nil {
		s.fail(c, err)
		return
	}
	state := "hidden"
	if job.Visible {
		state = "visible"
	}
	respond(c, http.StatusOK, "Job visibility set to "+state+".", gin.H{"job": job})
}
