package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/multiplica-sam/sam/internal/ui/types"
)

// Report is a generated locality PDF held in memory until it is delivered
type Report struct {
	ChurchID    int
	FileName    string
	ContentType string
	Data        []byte
}

// LocalityReport downloads the PDF report of a locality (GET /pdf/localidade/{id}).
// code is the locality code used to name the file.
func (c *Client) LocalityReport(ctx context.Context, churchID int, code string) (*Report, error) {
	path := fmt.Sprintf("/pdf/localidade/%d", churchID)

	data, contentType, err := c.getBytes(ctx, path)
	if err != nil {
		return nil, err
	}
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	return &Report{
		ChurchID:    churchID,
		FileName:    types.ReportFileName(code, c.now()),
		ContentType: contentType,
		Data:        data,
	}, nil
}
