package llm

import (
	"context"
	"time"
)

// Recorder はLLM呼び出しの計測インターフェース。metrics.Collectorが満たす。
type Recorder interface {
	RecordLLMLatency(duration time.Duration)
	RecordLLMFailure(kind string)
}

// InstrumentedClient はClientをラップし、呼び出しのレイテンシと失敗を記録する。
// kindは呼び出し元の用途を表すラベル（"summary"、"report"）。
type InstrumentedClient struct {
	inner    Client
	recorder Recorder
	kind     string
}

var _ Client = (*InstrumentedClient)(nil)

// NewInstrumentedClient はInstrumentedClientを生成する。
func NewInstrumentedClient(inner Client, recorder Recorder, kind string) *InstrumentedClient {
	return &InstrumentedClient{
		inner:    inner,
		recorder: recorder,
		kind:     kind,
	}
}

// Complete は内側のクライアントへ委譲し、所要時間と失敗を記録する。
func (c *InstrumentedClient) Complete(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	result, err := c.inner.Complete(ctx, prompt)
	c.recorder.RecordLLMLatency(time.Since(start))
	if err != nil {
		c.recorder.RecordLLMFailure(c.kind)
	}
	return result, err
}
