package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"quiz-app-service/internal/app"
)

type resultHandler struct {
	results *app.ResultService
}

func (h *resultHandler) submit(c *gin.Context) {
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	answers, err := toSubmitted(req.Answers)
	if err != nil {
		writeError(c, err)
		return
	}
	receipt, err := h.results.Submit(c.Request.Context(), callerFrom(c), app.Submission{
		QuizID:    req.QuizID,
		Answers:   answers,
		TimeTaken: req.TimeTaken,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	var resp submitResponse
	if err := mapInto(&resp, &receipt.Result); err != nil {
		writeError(c, err)
		return
	}
	resp.Unanswered = receipt.Unanswered
	if resp.Unanswered == nil {
		resp.Unanswered = []int{}
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *resultHandler) userResults(c *gin.Context) {
	results, err := h.results.UserResults(c.Request.Context(), callerFrom(c), c.Param("userId"))
	if err != nil {
		writeError(c, err)
		return
	}

	out := make([]userResultResponse, 0, len(results))
	for i := range results {
		var item userResultResponse
		if err := mapInto(&item, &results[i].QuizResult); err != nil {
			writeError(c, err)
			return
		}
		if results[i].QuizTitle != "" {
			item.Quiz = &quizSummary{Title: results[i].QuizTitle, Category: results[i].QuizCategory}
		}
		out = append(out, item)
	}
	c.JSON(http.StatusOK, out)
}

func (h *resultHandler) userStats(c *gin.Context) {
	stats, err := h.results.UserStats(c.Request.Context(), callerFrom(c), c.Param("userId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *resultHandler) quizLeaderboard(c *gin.Context) {
	limit, err := parseLimit(c)
	if err != nil {
		writeError(c, err)
		return
	}
	entries, err := h.results.QuizLeaderboard(c.Request.Context(), c.Param("quizId"), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (h *resultHandler) globalLeaderboard(c *gin.Context) {
	limit, err := parseLimit(c)
	if err != nil {
		writeError(c, err)
		return
	}
	rankings, err := h.results.GlobalLeaderboard(c.Request.Context(), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rankings)
}
