package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/letsssgooo/lessonquiz/internal/engine"
	"github.com/letsssgooo/lessonquiz/internal/quiz"
	"github.com/letsssgooo/lessonquiz/internal/report"
	"github.com/letsssgooo/lessonquiz/internal/storage"
)

// Максимальный размер JSON квиза.
const maxQuizSize = 1 << 20

var errQuestionNotFound = errors.New("question not found")

// Handler обслуживает HTTP API квизов.
type Handler struct {
	engine *engine.Engine
	store  storage.Storage
	log    *slog.Logger
}

func NewHandler(e *engine.Engine, store storage.Storage, log *slog.Logger) *Handler {
	return &Handler{
		engine: e,
		store:  store,
		log:    log,
	}
}

// CreateQuiz загружает квиз из JSON тела запроса.
func (h *Handler) CreateQuiz(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxQuizSize))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "quiz is too large"})
			return
		}

		h.fail(c, err)
		return
	}

	q, err := h.engine.LoadQuiz(c.Request.Context(), body)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, q)
}

// ListQuizzes возвращает все сохранённые квизы.
func (h *Handler) ListQuizzes(c *gin.Context) {
	quizzes, err := h.store.ListQuizzes(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"quizzes": quizzes})
}

func (h *Handler) GetQuiz(c *gin.Context) {
	q, err := h.engine.GetQuiz(c.Request.Context(), c.Param("quiz_id"))
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, q)
}

// DeleteQuiz удаляет квиз и закрывает его сессии.
func (h *Handler) DeleteQuiz(c *gin.Context) {
	if err := h.engine.DeleteQuiz(c.Request.Context(), c.Param("quiz_id")); err != nil {
		h.fail(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ExportAttempts отдаёт попытки квиза в CSV.
func (h *Handler) ExportAttempts(c *gin.Context) {
	quizID := c.Param("quiz_id")

	if _, err := h.engine.GetQuiz(c.Request.Context(), quizID); err != nil {
		h.fail(c, err)
		return
	}

	attempts, err := h.store.ListAttempts(c.Request.Context(), quizID)
	if err != nil {
		h.fail(c, err)
		return
	}

	data, err := report.ExportAttemptsCSV(attempts)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+quizID+`-attempts.csv"`)
	c.Data(http.StatusOK, "text/csv", data)
}

// OpenSession открывает сессию ученика.
func (h *Handler) OpenSession(c *gin.Context) {
	var req struct {
		LearnerID string `json:"learner_id" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	s, err := h.engine.OpenSession(c.Request.Context(), c.Param("quiz_id"), req.LearnerID)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, s.View())
}

func (h *Handler) GetSession(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, s.View())
}

// SessionAnswers возвращает сохранённые результаты по вопросам сессии.
// Сессия может быть уже закрыта: результаты читаются из хранилища.
func (h *Handler) SessionAnswers(c *gin.Context) {
	answers, err := h.store.ListAnswers(c.Request.Context(), c.Param("session_id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	if answers == nil {
		answers = []quiz.AnswerReport{}
	}

	c.JSON(http.StatusOK, gin.H{"answers": answers})
}

func (h *Handler) CloseSession(c *gin.Context) {
	if err := h.engine.CloseSession(c.Param("session_id")); err != nil {
		h.fail(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) Start(c *gin.Context) {
	h.act(c, (*engine.Session).Start)
}

func (h *Handler) Next(c *gin.Context) {
	h.act(c, (*engine.Session).Next)
}

func (h *Handler) Previous(c *gin.Context) {
	h.act(c, (*engine.Session).Previous)
}

func (h *Handler) Submit(c *gin.Context) {
	h.act(c, (*engine.Session).Submit)
}

func (h *Handler) GoTo(c *gin.Context) {
	idx, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "index must be a number"})
		return
	}

	h.act(c, func(s *engine.Session) (engine.View, error) {
		return s.GoTo(idx)
	})
}

// Answer записывает ответ. Тело содержит ровно одно из полей choice, choices или text.
func (h *Handler) Answer(c *gin.Context) {
	var req answerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	answer, err := req.answer()
	if err != nil {
		h.fail(c, err)
		return
	}

	questionID := c.Param("question_id")
	h.act(c, func(s *engine.Session) (engine.View, error) {
		if _, ok := s.Quiz().Question(questionID); !ok {
			return engine.View{}, errQuestionNotFound
		}

		return s.Answer(questionID, answer)
	})
}

func (h *Handler) Reveal(c *gin.Context) {
	questionID := c.Param("question_id")
	h.act(c, func(s *engine.Session) (engine.View, error) {
		if _, ok := s.Quiz().Question(questionID); !ok {
			return engine.View{}, errQuestionNotFound
		}

		return s.Reveal(questionID)
	})
}

func (h *Handler) act(c *gin.Context, action func(*engine.Session) (engine.View, error)) {
	s, ok := h.session(c)
	if !ok {
		return
	}

	view, err := action(s)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

func (h *Handler) session(c *gin.Context) (*engine.Session, bool) {
	s, err := h.engine.GetSession(c.Param("session_id"))
	if err != nil {
		h.fail(c, err)
		return nil, false
	}

	return s, true
}

func (h *Handler) fail(c *gin.Context, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		h.log.Error("request failed", slog.String("path", c.FullPath()), slog.Any("err", err))
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}

	c.JSON(status, gin.H{"error": err.Error()})
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, quiz.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, engine.ErrQuizNotFound),
		errors.Is(err, engine.ErrSessionNotFound),
		errors.Is(err, errQuestionNotFound):
		return http.StatusNotFound
	case errors.Is(err, engine.ErrSessionClosed):
		return http.StatusGone
	default:
		return http.StatusInternalServerError
	}
}
