package main

import (
	"flag"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	openai "github.com/sashabaranov/go-openai"
)

// mockserver fakes an OpenAI-compatible backend for manual testing.
// Magic words in the prompt trigger failure modes:
//
//	"throttle me" -> 429
//	"break"       -> 500
//	"slow"        -> 5s delay before answering
func main() {
	port := flag.String("port", "8001", "Port to run the server on")
	flag.Parse()

	r := gin.Default()

	r.POST("/v1/chat/completions", func(c *gin.Context) {
		var req openai.ChatCompletionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": err.Error()}})
			return
		}

		var prompt string
		for _, msg := range req.Messages {
			if msg.Role == openai.ChatMessageRoleUser {
				prompt = msg.Content
			}
		}

		switch {
		case strings.Contains(prompt, "throttle me"):
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": gin.H{"message": "rate limit exceeded", "type": "rate_limit_error"},
			})
			return
		case strings.Contains(prompt, "break"):
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": gin.H{"message": "internal error", "type": "server_error"},
			})
			return
		case strings.Contains(prompt, "slow"):
			time.Sleep(5 * time.Second)
		}

		resp := openai.ChatCompletionResponse{
			ID:      "chatcmpl-mock",
			Object:  "chat.completion",
			Created: time.Now().Unix(),
			Model:   req.Model,
			Choices: []openai.ChatCompletionChoice{
				{
					Message: openai.ChatCompletionMessage{
						Role:    openai.ChatMessageRoleAssistant,
						Content: "This is a mock reply to: " + prompt,
					},
					FinishReason: openai.FinishReasonStop,
				},
			},
			Usage: openai.Usage{
				PromptTokens:     len(strings.Fields(prompt)),
				CompletionTokens: 8,
			},
		}

		c.JSON(http.StatusOK, resp)
	})

	if err := r.Run(":" + *port); err != nil {
		log.Fatal(err)
	}
}
