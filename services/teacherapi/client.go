// Package teacherapi is the REST client of the teacher dashboard endpoints.
package teacherapi

import (
	"context"
	"fmt"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/edupredict/predictcli/core"
	"github.com/edupredict/predictcli/services/predictapi"
	"github.com/edupredict/predictcli/services/rest"
)

var (
	studentsFailedText   = "failed to load student list"
	predictFailedText    = "failed to predict score"
	saveScoresFailedText = "failed to save scores"
	allScoresFailedText  = "failed to load score table"
	historyFailedText    = "failed to load prediction history"
	deleteFailedText     = "failed to delete prediction"
)

// Student is one of the teacher's students (same class_name).
type Student struct {
	ID        int         `json:"id"`
	Username  string      `json:"username"`
	Email     string      `json:"email"`
	Name      string      `json:"name"`
	ClassName null.String `json:"class_name"`
}

// ScoreSheet is one student's recorded inputs plus the predicted outcome.
type ScoreSheet struct {
	StudentID      int             `json:"student_id"`
	StudentName    string          `json:"student_name"`
	Input          predictapi.Input `json:"input"`
	PredictedScore null.Float64    `json:"predictedScore"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// PredictionRecord is one entry of the teacher's prediction history.
type PredictionRecord struct {
	ID             int       `json:"id"`
	StudentID      int       `json:"student_id"`
	StudentName    string    `json:"student_name"`
	PredictedScore float64   `json:"predictedScore"`
	CreatedAt      time.Time `json:"created_at"`
}

type studentPayload struct {
	StudentID int `json:"student_id"`
	predictapi.Input
}

type Client struct {
	rest.Client
}

func NewClient(baseURL string, log core.Logger) *Client {
	return &Client{Client: rest.NewClient(baseURL, log)}
}

// Students lists the students in the teacher's class.
func (c *Client) Students(ctx context.Context, token string) ([]Student, error) {
	var resp struct {
		Students []Student `json:"students"`
	}
	if err := c.Get(ctx, "/api/teacher/students/", token, &resp, rest.DetailOrError(studentsFailedText)); err != nil {
		return nil, err
	}
	return resp.Students, nil
}

// Predict scores one student's inputs on the teacher's behalf.
func (c *Client) Predict(ctx context.Context, token string, studentID int, in predictapi.Input) (predictapi.Prediction, error) {
	var pred predictapi.Prediction
	payload := studentPayload{StudentID: studentID, Input: in}
	if err := c.Post(ctx, "/api/teacher/predict/", token, payload, &pred, rest.DetailOrError(predictFailedText)); err != nil {
		return predictapi.Prediction{}, err
	}
	return pred, nil
}

// SaveScores records one student's inputs without predicting.
func (c *Client) SaveScores(ctx context.Context, token string, studentID int, in predictapi.Input) error {
	payload := studentPayload{StudentID: studentID, Input: in}
	return c.Post(ctx, "/api/teacher/save-scores/", token, payload, nil, rest.DetailOrError(saveScoresFailedText))
}

// AllScores returns the recorded score sheet of every student in the class.
func (c *Client) AllScores(ctx context.Context, token string) ([]ScoreSheet, error) {
	var resp struct {
		Students []ScoreSheet `json:"students"`
	}
	if err := c.Get(ctx, "/api/teacher/all-scores/", token, &resp, rest.DetailOrError(allScoresFailedText)); err != nil {
		return nil, err
	}
	return resp.Students, nil
}

// PredictionHistory lists the teacher's past predictions.
func (c *Client) PredictionHistory(ctx context.Context, token string) ([]PredictionRecord, error) {
	var resp struct {
		Predictions []PredictionRecord `json:"predictions"`
	}
	if err := c.Get(ctx, "/api/teacher/prediction-history/", token, &resp, rest.DetailOrError(historyFailedText)); err != nil {
		return nil, err
	}
	return resp.Predictions, nil
}

// DeletePrediction removes one history entry.
func (c *Client) DeletePrediction(ctx context.Context, token string, predictionID int) error {
	path := fmt.Sprintf("/api/teacher/prediction/%d/", predictionID)
	return c.Delete(ctx, path, token, rest.DetailOrError(deleteFailedText))
}
