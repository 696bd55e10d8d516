// internal/explorer/answer-query/models.go
package answerquery

type Input struct {
	Question string `json:"question"`
}

type Output struct {
	Answer string `json:"answer"`
	Prompt string `json:"prompt"`
	Digest string `json:"digest"`
}
