package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// Question is one compatibility questionnaire item.
type Question struct {
	ID      int      `json:"id"`
	Text    string   `json:"text"`
	Options []string `json:"options"`
}

var questions = []Question{
	{0, "Which movie genre could you watch forever?", []string{"Sci-Fi", "Comedy", "Thriller/Horror", "Romance", "Documentary"}},
	{1, "A perfect evening is...", []string{"A quiet night in with a book", "Out with friends at a party", "Trying a new restaurant", "Playing video games"}},
	{2, "When you're stressed, you tend to:", []string{"Listen to music", "Exercise or go for a walk", "Talk it out with someone", "Need some alone time"}},
	{3, "What's your preferred vacation style?", []string{"Action-packed adventure", "Relaxing on a beach", "Exploring a new city", "A quiet retreat in nature"}},
	{4, "What quality do you value most in others?", []string{"Honesty", "Kindness", "Humor", "Intelligence"}},
	{5, "Pick a creative outlet:", []string{"Playing an instrument", "Cooking or baking", "Drawing or painting", "Writing"}},
	{6, "Are you more of a planner or a spontaneous person?", []string{"I plan everything", "I go with the flow", "A bit of both"}},
	{7, "What's your love language for receiving affection?", []string{"Words of Affirmation", "Acts of Service", "Receiving Gifts", "Quality Time", "Physical Touch"}},
	{8, "Cats or Dogs?", []string{"Dogs, for sure", "Cats, definitely", "Both are great!", "Neither, thanks"}},
	{9, "An ideal conversation is...", []string{"Light, funny, and full of jokes", "Deep, thoughtful, and philosophical", "An exchange of new ideas", "Comfortable and easy-going"}},
	{10, "What do you do when you first wake up?", []string{"Check my phone", "Hit the snooze button", "Meditate or stretch", "Get up immediately"}},
	{11, "What is most important for your future?", []string{"Career success", "Family and relationships", "Travel and experiences", "Personal growth"}},
}

// GetQuestion serves one questionnaire item by id.
func (h *Handler) GetQuestion(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 0 || id >= len(questions) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, questions[id])
}

type answersRequest struct {
	Answers []string `json:"answers" binding:"required"`
}

// SubmitAnswers stores the caller's answer-set, unlocking matching.
func (h *Handler) SubmitAnswers(c *gin.Context) {
	user := h.currentUser(c)
	if user == nil {
		return
	}

	var req answersRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Answers) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "answers are required"})
		return
	}

	if err := h.Storage.SaveAnswers(user.ID, req.Answers); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save answers"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}
