package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"quiz-app-service/internal/app"
	"quiz-app-service/internal/domain"
)

type quizHandler struct {
	quizzes *app.QuizService
}

func (h *quizHandler) list(c *gin.Context) {
	filter := domain.QuizFilter{
		Category:  domain.Category(c.Query("category")),
		CreatedBy: c.Query("createdBy"),
	}
	views, err := h.quizzes.Browse(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]quizResponse, len(views))
	for i := range views {
		out[i] = toQuizResponse(views[i])
	}
	c.JSON(http.StatusOK, out)
}

func (h *quizHandler) get(c *gin.Context) {
	view, err := h.quizzes.View(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toQuizResponse(view))
}

func toQuizResponse(view app.QuizView) quizResponse {
	resp := quizResponse{Quiz: view.Quiz}
	if view.Creator != nil {
		resp.Creator = &creatorResponse{Name: view.Creator.Name, Email: view.Creator.Email}
	}
	return resp
}

func (h *quizHandler) create(c *gin.Context) {
	in, ok := bindQuizInput(c)
	if !ok {
		return
	}
	quiz, err := h.quizzes.Create(c.Request.Context(), callerFrom(c), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, quiz)
}

func (h *quizHandler) update(c *gin.Context) {
	in, ok := bindQuizInput(c)
	if !ok {
		return
	}
	quiz, err := h.quizzes.Update(c.Request.Context(), callerFrom(c), c.Param("id"), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, quiz)
}

func (h *quizHandler) delete(c *gin.Context) {
	if err := h.quizzes.Delete(c.Request.Context(), callerFrom(c), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "quiz deleted"})
}

func (h *quizHandler) generateFromBook(c *gin.Context) {
	var req bookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	var in app.BookRequest
	if err := mapInto(&in, &req); err != nil {
		writeError(c, err)
		return
	}
	quiz, err := h.quizzes.GenerateFromBook(c.Request.Context(), callerFrom(c), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, quiz)
}

func (h *quizHandler) generateFromNews(c *gin.Context) {
	var req newsRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, err)
		return
	}
	quiz, err := h.quizzes.GenerateFromNews(c.Request.Context(), callerFrom(c), req.NumberOfQuestions)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, quiz)
}

func bindQuizInput(c *gin.Context) (app.QuizInput, bool) {
	var req quizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return app.QuizInput{}, false
	}
	var in app.QuizInput
	if err := mapInto(&in, &req); err != nil {
		writeError(c, err)
		return app.QuizInput{}, false
	}
	return in, true
}
