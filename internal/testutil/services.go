package testutil

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/khoahotran/social-api/internal/application/service"
)

type Upload struct {
	Path string
	Body []byte
}

// FakeUploader records uploads and returns https://media.test/<path>.
type FakeUploader struct {
	mu      sync.Mutex
	Uploads []Upload
	Deleted []string
	Err     error
}

func (u *FakeUploader) Upload(_ context.Context, file io.Reader, path string) (string, error) {
	if u.Err != nil {
		return "", u.Err
	}
	body, err := io.ReadAll(file)
	if err != nil {
		return "", err
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	u.Uploads = append(u.Uploads, Upload{Path: path, Body: body})
	return "https://media.test/" + path, nil
}

func (u *FakeUploader) Delete(_ context.Context, path string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.Deleted = append(u.Deleted, path)
	return nil
}

// FakePublisher records events. Set Err to simulate a broker outage.
type FakePublisher struct {
	mu           sync.Mutex
	PostEvents   []service.PostEventPayload
	FollowEvents []service.FollowEventPayload
	Err          error
}

var ErrBrokerDown = errors.New("broker down")

func (p *FakePublisher) PublishPostEvent(_ context.Context, payload service.PostEventPayload) error {
	if p.Err != nil {
		return p.Err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.PostEvents = append(p.PostEvents, payload)
	return nil
}

func (p *FakePublisher) PublishFollowEvent(_ context.Context, payload service.FollowEventPayload) error {
	if p.Err != nil {
		return p.Err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.FollowEvents = append(p.FollowEvents, payload)
	return nil
}

func (p *FakePublisher) PostEventTypes() []service.PostEventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]service.PostEventType, len(p.PostEvents))
	for i, e := range p.PostEvents {
		out[i] = e.EventType
	}
	return out
}
