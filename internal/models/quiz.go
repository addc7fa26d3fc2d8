package models

import "encoding/json"

type Quiz struct {
	ID           string
	LessonID     string
	Questions    []QuizQuestion
	PassingScore float64
}

type QuizQuestion struct {
	ID            string   `json:"id"`
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correct_answer"`
	Points        int      `json:"points"`
}

func (q *Quiz) QuestionsJSON() (string, error) {
	data, err := json.Marshal(q.Questions)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func ParseQuizQuestions(data string) ([]QuizQuestion, error) {
	var questions []QuizQuestion
	if err := json.Unmarshal([]byte(data), &questions); err != nil {
		return nil, err
	}
	return questions, nil
}
