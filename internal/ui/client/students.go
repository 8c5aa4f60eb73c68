package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/multiplica-sam/sam/internal/ui/types"
)

// Student returns the full record of a student with its history tables (GET /aluno/{id})
func (c *Client) Student(ctx context.Context, studentID int) (*types.StudentResponse, error) {
	path := fmt.Sprintf("/aluno/%d", studentID)

	var res types.StudentResponse
	if err := c.get(ctx, path, &res); err != nil {
		return nil, err
	}
	if res.Failed() {
		return nil, c.fail(ctx, path, NewClientRejectedError(path, res.Error))
	}
	return &res, nil
}

// StudentSummaries returns the summary of every student, limited to one church when churchID > 0 (GET /resumo-alunos[?id_igreja=])
func (c *Client) StudentSummaries(ctx context.Context, churchID int) ([]types.StudentSummary, error) {
	path := "/resumo-alunos"
	if churchID > 0 {
		q := url.Values{}
		q.Set("id_igreja", strconv.Itoa(churchID))
		path += "?" + q.Encode()
	}

	var res types.StudentSummariesResponse
	if err := c.get(ctx, path, &res); err != nil {
		return nil, err
	}
	if res.Failed() {
		return nil, c.fail(ctx, path, NewClientRejectedError(path, res.Error))
	}
	if res.Data == nil {
		return []types.StudentSummary{}, nil
	}
	return res.Data, nil
}
