package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labforms/coc-extractor/internal/llm"
)

func TestExtractQueue(t *testing.T) {
	gen := &fakeGenerator{
		responses: map[int]string{1: pageOneResponse},
		failPages: map[int]bool{},
	}
	proc := newTestProcessor(gen)

	type outcome struct {
		job Job
		doc *Document
		err error
	}
	done := make(chan outcome, 3)
	sink := func(_ context.Context, job Job, doc *Document, err error) {
		done <- outcome{job: job, doc: doc, err: err}
	}

	q := NewExtractQueue(proc, sink, nil, WithWorkers(2), WithQueueSize(4), WithJobTimeout(time.Minute))

	ids := make(map[uuid.UUID]struct{})
	for i := 0; i < 3; i++ {
		job := Job{
			DocumentID: uuid.New(),
			Pages:      []llm.PageImage{{Page: 1, MIMEType: "image/png", Data: []byte("img")}},
		}
		ids[job.DocumentID] = struct{}{}
		require.NoError(t, q.Enqueue(context.Background(), job))
	}

	for i := 0; i < 3; i++ {
		select {
		case out := <-done:
			require.NoError(t, out.err)
			require.NotNil(t, out.doc)
			assert.Len(t, out.doc.ExtractedFields, 3)
			delete(ids, out.job.DocumentID)
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for queued jobs")
		}
	}
	assert.Empty(t, ids)

	q.Shutdown(context.Background())
}

func TestExtractQueueShutdownRejectsEnqueue(t *testing.T) {
	proc := newTestProcessor(&fakeGenerator{responses: map[int]string{}, failPages: map[int]bool{}})
	q := NewExtractQueue(proc, nil, nil, WithWorkers(1))
	q.Shutdown(context.Background())

	err := q.Enqueue(context.Background(), Job{DocumentID: uuid.New()})
	assert.ErrorIs(t, err, ErrQueueClosed)
}
