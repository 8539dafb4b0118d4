package broadcast

import "github.com/sungwon/newsletter/internal/mail"

// Outcome is the result of one delivery attempt.
type Outcome struct {
	Address   string
	Succeeded bool
	Err       error
}

// Summary aggregates the outcomes of one broadcast.
type Summary struct {
	RecipientCount int              `json:"recipient_count"`
	FailureCount   int              `json:"failure_count"`
	Failed         []FailedDelivery `json:"failed"`
}

// FailedDelivery names a recipient whose delivery failed and why.
type FailedDelivery struct {
	Address   string `json:"address"`
	Reason    string `json:"reason"`
	Permanent bool   `json:"permanent"`
}

// Summarize counts outcomes and lists failures in outcome order. Failed is
// never nil so it encodes as an empty JSON array.
func Summarize(outcomes []Outcome) Summary {
	s := Summary{
		RecipientCount: len(outcomes),
		Failed:         []FailedDelivery{},
	}
	for _, o := range outcomes {
		if o.Succeeded {
			continue
		}
		reason := "unknown error"
		if o.Err != nil {
			reason = o.Err.Error()
		}
		s.Failed = append(s.Failed, FailedDelivery{
			Address:   o.Address,
			Reason:    reason,
			Permanent: mail.IsPermanent(o.Err),
		})
	}
	s.FailureCount = len(s.Failed)
	return s
}
