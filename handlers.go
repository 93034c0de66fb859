package main

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/mmdatafocus/ghg_reports/config"
	"github.com/mmdatafocus/ghg_reports/middlewares"
	"github.com/mmdatafocus/ghg_reports/models"
	"github.com/mmdatafocus/ghg_reports/storage"
	"github.com/mmdatafocus/ghg_reports/utils"
	"github.com/mmdatafocus/ghg_reports/workflow"
)

const maxBodyBytes = 10 << 20

// app carries what the handlers need. ready flips once the store is open;
// until then application routes answer 503.
type app struct {
	store    storage.Store
	sessions *workflow.SessionManager
	exporter *workflow.Exporter
	logger   *logrus.Logger
	now      func() time.Time
	ready    atomic.Bool
}

func (a *app) start(store storage.Store, sessions *workflow.SessionManager) {
	a.store = store
	a.sessions = sessions
	a.ready.Store(true)
}

func (a *app) readinessGate(c *gin.Context) {
	if !a.ready.Load() {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": "service starting"})
		return
	}
	c.Next()
}

func fail(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"success": false, "error": msg})
}

func (a *app) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "OK",
		"timestamp": a.now().UTC().Format(storage.TimestampLayout),
	})
}

// ---------------------------------------------------------------- /api/data

func (a *app) loadDataHandler(c *gin.Context) {
	userId := c.Param("userId")
	record, err := a.store.Load(c.Request.Context(), userId)
	if err != nil {
		if errors.Is(err, utils.ErrorRecordNotFound) {
			c.JSON(http.StatusOK, gin.H{"success": true, "data": nil})
			return
		}
		config.LogError(a.logger, "DataAPI", "loadDataHandler", "load", userId, err)
		fail(c, http.StatusInternalServerError, "Failed to read data")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": record})
}

func (a *app) saveDataHandler(c *gin.Context) {
	userId := c.Param("userId")
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes))
	if err != nil {
		fail(c, http.StatusBadRequest, "Failed to read request body")
		return
	}
	record, err := storage.Stamp(body, a.now())
	if err != nil {
		fail(c, http.StatusBadRequest, "Request body must be a JSON object")
		return
	}
	if err := a.store.Save(c.Request.Context(), userId, record); err != nil {
		config.LogError(a.logger, "DataAPI", "saveDataHandler", "save", userId, err)
		fail(c, http.StatusInternalServerError, "Failed to save data")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Data saved successfully"})
}

// ---------------------------------------------------------------- export

func reportCodeParam(c *gin.Context) (models.ReportCode, bool) {
	code, err := models.ParseReportCode(c.Param("reportCode"))
	if err != nil {
		fail(c, http.StatusBadRequest, fmt.Sprintf("unknown report %q", c.Param("reportCode")))
		return "", false
	}
	return code, true
}

// exportStateHandler renders a report from the state posted in the body.
func (a *app) exportStateHandler(c *gin.Context) {
	code, ok := reportCodeParam(c)
	if !ok {
		return
	}
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes))
	if err != nil {
		fail(c, http.StatusBadRequest, "Failed to read request body")
		return
	}
	state, err := models.DecodeState(body, a.now())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid state", "fields": utils.ProcessValidationErrors(err)})
		return
	}
	a.sendExport(c, "", code, state)
}

func (a *app) exportSessionHandler(c *gin.Context) {
	code, ok := reportCodeParam(c)
	if !ok {
		return
	}
	sess, _ := middlewares.GetSession(c)
	a.sendExport(c, sess.UserId(), code, sess.State())
}

func (a *app) sendExport(c *gin.Context, userId string, code models.ReportCode, state models.AppState) {
	res, err := a.exporter.Export(c.Request.Context(), userId, code, state)
	if err != nil {
		_ = c.Error(err)
		fail(c, http.StatusInternalServerError, "Failed to generate report: "+err.Error())
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, res.Filename))
	if res.ArchiveObject != "" {
		c.Header("X-Archive-Object", res.ArchiveObject)
	}
	c.Data(http.StatusOK, res.ContentType, res.Data)
}

// ---------------------------------------------------------------- /api/forms

func (a *app) getFormHandler(c *gin.Context) {
	sess, _ := middlewares.GetSession(c)
	c.JSON(http.StatusOK, gin.H{"success": true, "data": sess.State()})
}

func (a *app) replaceFormHandler(c *gin.Context) {
	sess, _ := middlewares.GetSession(c)
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes))
	if err != nil {
		fail(c, http.StatusBadRequest, "Failed to read request body")
		return
	}
	state, err := models.DecodeState(body, a.now())
	if err == nil {
		err = sess.Replace(state)
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid state", "fields": utils.ProcessValidationErrors(err)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": sess.State()})
}

func (a *app) actionHandler(c *gin.Context) {
	sess, _ := middlewares.GetSession(c)
	var env models.ActionEnvelope
	if err := c.ShouldBindJSON(&env); err != nil {
		fail(c, http.StatusBadRequest, "invalid action: "+err.Error())
		return
	}
	action, err := models.DecodeAction(env)
	if err != nil {
		status := http.StatusBadRequest
		var verr *models.ValidationError
		if errors.As(err, &verr) {
			c.JSON(status, gin.H{"success": false, "error": "invalid action payload", "fields": utils.ProcessValidationErrors(err)})
			return
		}
		fail(c, status, err.Error())
		return
	}
	a.dispatch(c, sess, action)
}

type resetRequest struct {
	Confirm string `json:"confirm"`
}

func (a *app) resetHandler(c *gin.Context) {
	sess, _ := middlewares.GetSession(c)
	code, ok := reportCodeParam(c)
	if !ok {
		return
	}
	var req resetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid reset request: "+err.Error())
		return
	}
	a.dispatch(c, sess, models.ResetReport{Report: code, Confirm: req.Confirm})
}

func (a *app) dispatch(c *gin.Context, sess *workflow.FormSession, action models.Action) {
	state, err := sess.Dispatch(action)
	if err != nil {
		fail(c, actionErrorStatus(err), err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": state})
}

func actionErrorStatus(err error) int {
	switch {
	case errors.Is(err, models.ErrItemNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrResetNotConfirmed):
		return http.StatusPreconditionFailed
	}
	return http.StatusBadRequest
}

func (a *app) saveFormHandler(c *gin.Context) {
	sess, _ := middlewares.GetSession(c)
	if err := sess.SaveNow(c.Request.Context()); err != nil {
		config.LogError(a.logger, "FormAPI", "saveFormHandler", "save", sess.UserId(), err)
		fail(c, http.StatusInternalServerError, "Failed to save data")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Data saved successfully"})
}
