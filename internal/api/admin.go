package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *server) adminLogin(c *gin.Context) {
	var req credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badBody(c)
		return
	}
	token, err := s.registry.AdminLogin(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		s.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "", gin.H{"token": token})
}

func (s *server) listPendingCompanies(c *gin.Context) {
	rows, err := s.registry.ListPending(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "", gin.H{"pendingCompanies": rows})
}

func (s *server) approveCompany(c *gin.Context) {
	company, err := s.registry.Approve(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Company approved and moved to main collection.", gin.H{"company": company})
}

func (s *server) rejectCompany(c *gin.Context) {
	if err := s.registry.Reject(c.Request.Context(), c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Company registration rejected and removed from pending list.", nil)
}
