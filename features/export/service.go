package export

import (
	"context"
	"log/slog"
	"time"

	"decoder/internal/insight"
	"decoder/internal/publish"
)

const defaultSender = "Manual"

type Publisher interface {
	Publish(ctx context.Context, req publish.Request) (*publish.Result, error)
}

type Service struct {
	publisher Publisher
	extractor *insight.Extractor
	appURL    string
}

func NewService(p Publisher, e *insight.Extractor, appURL string) *Service {
	if e == nil {
		e = insight.Default()
	}
	return &Service{publisher: p, extractor: e, appURL: appURL}
}

// Export publishes req.Content, keyed by its fingerprint. The request must
// have passed Validate.
func (s *Service) Export(ctx context.Context, req Request) (*Result, error) {
	items := s.extractor.ActionItems(req.Content)
	priority := s.extractor.Priority(req.Subject, req.Content)
	labels := insight.Prioritization(req.Content)

	from := req.From
	if from == "" {
		from = defaultSender
	}
	received, _ := time.Parse(time.RFC3339, req.Date)

	res := &Result{Analysis: Analysis{ActionItems: items, Priority: priority}}
	res.Metrics.TodosCount = len(items)
	if res.Analysis.ActionItems == nil {
		res.Analysis.ActionItems = []string{}
	}

	pub, err := s.publisher.Publish(ctx, publish.Request{
		Content:     req.Content,
		Analysis:    req.Content,
		ActionItems: items,
		Properties: publish.Properties{
			Subject:    req.Subject,
			Sender:     from,
			ReceivedAt: received,
			Priority:   string(priority),
			SourceType: req.SourceType,
			Framework:  req.Framework,
			OriginURL:  req.OriginURL,
			Confidence: insight.Confidence(req.Content),
			Impact:     string(labels.Impact),
			Effort:     string(labels.Effort),
			ROI:        string(labels.ROI),
			Tags:       req.Tags,
			Deadline:   req.Deadline,
			Origin:     publish.OriginManual,
			Owner:      req.OwnerID,
			NotifyLink: req.WhatsAppLink,
			AppLink:    s.appURL,
		},
	})
	if pub != nil {
		res.Notion = &pub.Document
		res.Idempotent = pub.Idempotent()
		res.Metrics.AppendedBlocks = pub.Appended
	}
	if err != nil {
		return res, err
	}

	slog.InfoContext(ctx, "manual export published", "document_id", pub.Document.ID, "fingerprint", pub.Fingerprint, "idempotent", res.Idempotent, "appended", pub.Appended)
	return res, nil
}
