// Package predictapi is the REST client of the student prediction endpoints.
package predictapi

import (
	"context"
	"fmt"
	"time"

	"github.com/edupredict/predictcli/core"
	"github.com/edupredict/predictcli/services/rest"
)

var (
	predictFailedText = "failed to get prediction"
	historyFailedText = "failed to load prediction history"
)

// Input is one set of prediction features, as the screens collect them.
type Input struct {
	StudyHoursPerWeek         float64 `json:"studyHoursPerWeek"`
	AttendanceRate            float64 `json:"attendanceRate"`
	PastExamScores            float64 `json:"pastExamScores"`
	ParentalEducationLevel    string  `json:"parentalEducationLevel"`
	InternetAccessAtHome      string  `json:"internetAccessAtHome"`
	ExtracurricularActivities string  `json:"extracurricularActivities"`
}

type Prediction struct {
	PredictedScore float64 `json:"predictedScore"`
}

type HistoryEntry struct {
	ID             int       `json:"id"`
	Input          Input     `json:"input"`
	PredictedScore float64   `json:"predictedScore"`
	CreatedAt      time.Time `json:"created_at"`
}

type historyResponse struct {
	Predictions []HistoryEntry `json:"predictions"`
}

type Client struct {
	rest.Client
}

func NewClient(baseURL string, log core.Logger) *Client {
	return &Client{Client: rest.NewClient(baseURL, log)}
}

// Predict scores one set of inputs. The token is optional: anonymous
// predictions work, they are just not recorded in the history.
func (c *Client) Predict(ctx context.Context, token string, in Input) (Prediction, error) {
	var pred Prediction
	if err := c.Post(ctx, "/api/predict/", token, in, &pred, rest.DetailOrError(predictFailedText)); err != nil {
		return Prediction{}, err
	}
	return pred, nil
}

// History pages through the caller's recorded predictions, newest first.
func (c *Client) History(ctx context.Context, token string, limit, offset int) ([]HistoryEntry, error) {
	var resp historyResponse
	path := fmt.Sprintf("/api/predictions/history/?limit=%d&offset=%d", limit, offset)
	if err := c.Get(ctx, path, token, &resp, rest.DetailOrError(historyFailedText)); err != nil {
		return nil, err
	}
	return resp.Predictions, nil
}
