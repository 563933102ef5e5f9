package dispatch

import (
	"context"

	"odata_batch/internal/batch"
)

type Dispatcher interface {
	Dispatch(ctx context.Context, batchID string, parts []*batch.Part) (any, error)
}

type Summary struct {
	BatchID string        `json:"batch_id"`
	Parts   []PartSummary `json:"parts"`
}

type PartSummary struct {
	Changeset bool             `json:"changeset"`
	Requests  []RequestSummary `json:"requests"`
}

type RequestSummary struct {
	Method       string              `json:"method"`
	BaseURI      string              `json:"base_uri"`
	ResourcePath string              `json:"resource_path"`
	Query        string              `json:"query,omitempty"`
	RequestURI   string              `json:"request_uri"`
	Headers      map[string][]string `json:"headers"`
	BodyLength   int                 `json:"body_length"`
	ContentID    string              `json:"content_id,omitempty"`
	Line         int                 `json:"line"`
}

// Describer answers a decoded batch with a summary of what it would execute.
type Describer struct{}

func NewDescriber() *Describer {
	return &Describer{}
}

func (d *Describer) Dispatch(ctx context.Context, batchID string, parts []*batch.Part) (any, error) {
	summary := Summary{
		BatchID: batchID,
		Parts:   make([]PartSummary, 0, len(parts)),
	}
	for _, part := range parts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		summary.Parts = append(summary.Parts, describePart(part))
	}
	return summary, nil
}

func describePart(part *batch.Part) PartSummary {
	requests := part.Requests()
	ps := PartSummary{
		Changeset: part.IsChangeset(),
		Requests:  make([]RequestSummary, 0, len(requests)),
	}
	for _, req := range requests {
		ps.Requests = append(ps.Requests, RequestSummary{
			Method:       req.Method,
			BaseURI:      req.BaseURI,
			ResourcePath: req.ResourcePath,
			Query:        req.Query,
			RequestURI:   req.RequestURI,
			Headers:      req.Header.Map(),
			BodyLength:   len(req.Body),
			ContentID:    req.ContentID(),
			Line:         req.Line,
		})
	}
	return ps
}
