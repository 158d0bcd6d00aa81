package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Skufu/MedSage/internal/auth"
	"github.com/Skufu/MedSage/internal/content"
	"github.com/Skufu/MedSage/internal/interaction"
	"github.com/Skufu/MedSage/internal/metrics"
	"github.com/Skufu/MedSage/internal/profile"
	"github.com/Skufu/MedSage/internal/typeahead"
)

func (h *handler) typeahead(c *gin.Context) {
	name := c.Param("vocab")
	candidates, ok := typeahead.Vocabulary(name)
	if !ok {
		errorJSON(c, http.StatusNotFound, fmt.Errorf("unknown vocabulary %q", name))
		return
	}
	q := c.Query("q")
	c.JSON(http.StatusOK, gin.H{
		"vocabulary":  name,
		"search":      q,
		"suggestions": typeahead.Filter(candidates, q),
	})
}

type interactionsRequest struct {
	Drugs []string `json:"drugs"`
}

func (h *handler) checkInteractions(c *gin.Context) {
	mode := c.DefaultQuery("mode", interaction.ModeStatic)
	resolver, ok := h.opts.Resolvers[mode]
	if !ok {
		errorJSON(c, http.StatusBadRequest, fmt.Errorf("unknown mode %q", mode))
		return
	}

	var req interactionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	report, err := resolver.Check(c.Request.Context(), req.Drugs)
	if errors.Is(err, interaction.ErrTooFewDrugs) {
		metrics.RecordInteractionCheck(mode, "rejected")
		errorJSON(c, http.StatusBadRequest, err)
		return
	}
	if err != nil {
		metrics.RecordInteractionCheck(mode, "error")
		errorJSON(c, http.StatusInternalServerError, err)
		return
	}

	outcome := "ok"
	if report.Failed {
		outcome = "failed"
	}
	metrics.RecordInteractionCheck(mode, outcome)
	c.JSON(http.StatusOK, report)
}

// profileJSON writes a page view. Anonymous callers get 401 with the login
// redirect in the body; a failed load is 502.
func profileJSON(c *gin.Context, v profile.View) {
	status := http.StatusOK
	switch {
	case errors.Is(v.Err, auth.ErrNoIdentity):
		status = http.StatusUnauthorized
	case v.State == profile.StateError:
		status = http.StatusBadGateway
	}
	c.JSON(status, v)
}

func (h *handler) loadProfile(c *gin.Context) {
	profileJSON(c, h.opts.Profiles.Load(c.Request.Context(), auth.FromContext(c)))
}

func (h *handler) saveProfile(c *gin.Context) {
	var p profile.Profile
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	profileJSON(c, h.opts.Profiles.Save(c.Request.Context(), auth.FromContext(c), p))
}

func (h *handler) setupProfile(c *gin.Context) {
	var p profile.Profile
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	profileJSON(c, h.opts.Profiles.Setup(c.Request.Context(), auth.FromContext(c), p))
}

func (h *handler) about(c *gin.Context) {
	c.JSON(http.StatusOK, content.GetAbout())
}

func (h *handler) faqs(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"faqs": content.FAQs()})
}

func (h *handler) contactInfo(c *gin.Context) {
	c.JSON(http.StatusOK, content.Contact())
}

func (h *handler) contact(c *gin.Context) {
	var msg content.ContactMessage
	if err := c.ShouldBindJSON(&msg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	msg.Normalize()
	if err := msg.Validate(); err != nil {
		errorJSON(c, http.StatusBadRequest, err)
		return
	}
	h.logger.Info().
		Str("name", msg.Name).
		Str("email", msg.Email).
		Str("subject", msg.Subject).
		Int("length", len(msg.Message)).
		Msg("contact message received")
	c.JSON(http.StatusOK, content.Acknowledge())
}
