package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Skufu/MedSage/internal/session"
	"github.com/Skufu/MedSage/internal/wizard"
)

const sessionCookie = "medsage_session"

var errNoSession = errors.New("no active assessment; start one with POST /api/wizard")

type sessionHandler func(c *gin.Context, s *session.Session)

func (h *handler) lookupSession(c *gin.Context) (*session.Session, error) {
	id, err := c.Cookie(sessionCookie)
	if err != nil || id == "" {
		return nil, session.ErrNotFound
	}
	return h.opts.Sessions.Get(id)
}

func (h *handler) withSession(next sessionHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, err := h.lookupSession(c)
		if err != nil {
			errorJSON(c, http.StatusNotFound, errNoSession)
			return
		}
		h.setSessionCookie(c, s.ID)
		next(c, s)
	}
}

// setSessionCookie re-issues the cookie so its lifetime tracks the
// server's idle timeout.
func (h *handler) setSessionCookie(c *gin.Context, id string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, id, int(h.opts.SessionTTL.Seconds()), "/", "", h.opts.SecureCookies, true)
}

func (h *handler) startWizard(c *gin.Context) {
	if old, err := c.Cookie(sessionCookie); err == nil && old != "" {
		h.opts.Sessions.Delete(old)
	}
	s := h.opts.Sessions.Create()
	h.setSessionCookie(c, s.ID)
	c.JSON(http.StatusCreated, s.Wizard.Snapshot())
}

func (h *handler) snapshot(c *gin.Context, s *session.Session) {
	c.JSON(http.StatusOK, s.Wizard.Snapshot())
}

// formError maps wizard mutation errors to a response.
func formError(c *gin.Context, err error) {
	if errors.Is(err, wizard.ErrInvalidField) {
		errorJSON(c, http.StatusBadRequest, err)
		return
	}
	errorJSON(c, http.StatusInternalServerError, err)
}

func (h *handler) patchForm(c *gin.Context, s *session.Session) {
	var patch wizard.Patch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	if err := s.Wizard.Apply(patch); err != nil {
		formError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.Wizard.Snapshot())
}

type itemRequest struct {
	Value string `json:"value"`
}

func (h *handler) addItem(c *gin.Context, s *session.Session) {
	var req itemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	if err := s.Wizard.AddItem(c.Param("field"), req.Value); err != nil {
		formError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.Wizard.Snapshot())
}

func (h *handler) removeItem(c *gin.Context, s *session.Session) {
	if err := s.Wizard.RemoveItem(c.Param("field"), c.Query("value")); err != nil {
		formError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.Wizard.Snapshot())
}

type searchRequest struct {
	Q string `json:"q"`
}

func (h *handler) search(c *gin.Context, s *session.Session) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	view, err := s.Wizard.Search(c.Param("field"), req.Q)
	if err != nil {
		formError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *handler) focusSearch(c *gin.Context, s *session.Session) {
	view, err := s.Wizard.FocusSearch(c.Param("field"))
	if err != nil {
		formError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *handler) pick(c *gin.Context, s *session.Session) {
	var req itemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	sel, err := s.Wizard.Pick(c.Param("field"), req.Value)
	if err != nil {
		formError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"selected": true, "selection": sel, "snapshot": s.Wizard.Snapshot()})
}

func (h *handler) commitSearch(c *gin.Context, s *session.Session) {
	sel, ok, err := s.Wizard.CommitSearch(c.Param("field"))
	if err != nil {
		formError(c, err)
		return
	}
	resp := gin.H{"selected": ok, "snapshot": s.Wizard.Snapshot()}
	if ok {
		resp["selection"] = sel
	}
	c.JSON(http.StatusOK, resp)
}

func (h *handler) dismissSearch(c *gin.Context, s *session.Session) {
	if err := s.Wizard.DismissSearch(c.Param("field")); err != nil {
		formError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func transitionError(c *gin.Context, s *session.Session, err error) {
	switch {
	case errors.Is(err, wizard.ErrPredictionPending),
		errors.Is(err, wizard.ErrPredictionFailed),
		errors.Is(err, wizard.ErrNotOnDiagnosis):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "snapshot": s.Wizard.Snapshot()})
	default:
		errorJSON(c, http.StatusInternalServerError, err)
	}
}

// advance keeps the prediction running if the client goes away, so the
// session does not record a spurious failure.
func (h *handler) advance(c *gin.Context, s *session.Session) {
	outcome, err := s.Wizard.Advance(context.WithoutCancel(c.Request.Context()))
	if err != nil {
		transitionError(c, s, err)
		return
	}
	resp := gin.H{"outcome": outcome, "snapshot": s.Wizard.Snapshot()}
	if outcome == wizard.OutcomeNavigateResults {
		resp["location"] = wizard.ResultsPath
	}
	c.JSON(http.StatusOK, resp)
}

func (h *handler) retreat(c *gin.Context, s *session.Session) {
	outcome := s.Wizard.Retreat()
	c.JSON(http.StatusOK, gin.H{"outcome": outcome, "snapshot": s.Wizard.Snapshot()})
}

func (h *handler) retry(c *gin.Context, s *session.Session) {
	if err := s.Wizard.Retry(context.WithoutCancel(c.Request.Context())); err != nil {
		transitionError(c, s, err)
		return
	}
	c.JSON(http.StatusOK, s.Wizard.Snapshot())
}

func (h *handler) diseases(c *gin.Context, s *session.Session) {
	c.JSON(http.StatusOK, gin.H{"diseases": s.Wizard.PotentialDiseases()})
}

// recommendations reads back the prediction stored by the wizard.
func (h *handler) recommendations(c *gin.Context) {
	s, err := h.lookupSession(c)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": session.ErrNoResults.Error(), "location": "/symptoms"})
		return
	}
	data, err := s.DiseaseData()
	if errors.Is(err, session.ErrNoResults) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error(), "location": "/symptoms"})
		return
	}
	if err != nil {
		h.logger.Error().Err(err).Str("session", s.ID).Msg("read stored prediction")
		errorJSON(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, data)
}
